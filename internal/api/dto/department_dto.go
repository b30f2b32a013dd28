package dto

import (
	"time"

	"github.com/spec-kit/grievance-service/internal/domain"
	"github.com/spec-kit/grievance-service/internal/repository"
)

// CreateDepartmentRequest payload for admin-driven department creation.
type CreateDepartmentRequest struct {
	Name             string `json:"name"`
	AssignedName     string `json:"assignedName"`
	AssignedEmail    string `json:"assignedEmail"`
	AssignedPassword string `json:"assignedPassword"`
	Otp              string `json:"otp"`
}

// DepartmentResponse is the department projection.
type DepartmentResponse struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Slug      string           `json:"slug"`
	CreatedBy string           `json:"createdBy"`
	Assigned  *AccountResponse `json:"assigned,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`
}

// NewDepartmentResponse maps a domain department.
func NewDepartmentResponse(dept *domain.Department) DepartmentResponse {
	return DepartmentResponse{
		ID:        dept.ID,
		Name:      dept.Name,
		Slug:      dept.Slug,
		CreatedBy: dept.CreatedBy.Name,
		CreatedAt: dept.CreatedAt,
	}
}

// NewDepartmentResponses maps directory entries with account projections.
func NewDepartmentResponses(entries []repository.DepartmentWithAccount) []DepartmentResponse {
	result := make([]DepartmentResponse, 0, len(entries))
	for i := range entries {
		resp := NewDepartmentResponse(&entries[i].Department)
		account := NewAccountResponse(&entries[i].Assigned)
		resp.Assigned = &account
		result = append(result, resp)
	}
	return result
}
