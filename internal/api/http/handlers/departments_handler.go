package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/grievance-service/internal/api/dto"
	"github.com/spec-kit/grievance-service/internal/auth"
	"github.com/spec-kit/grievance-service/internal/service"
	apperrors "github.com/spec-kit/grievance-service/pkg/util/errorutil"
)

// DepartmentsHandler exposes the admin department endpoints.
type DepartmentsHandler struct {
	departments *service.DepartmentService
}

// NewDepartmentsHandler constructs handler.
func NewDepartmentsHandler(departmentService *service.DepartmentService) *DepartmentsHandler {
	return &DepartmentsHandler{departments: departmentService}
}

// SendOtp handles POST /departments/send-otp: mails a code to the
// prospective assignee's address.
func (h *DepartmentsHandler) SendOtp(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.SendOtpRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	if err := h.departments.RequestAssigneeCode(c.UserContext(), identity, req.Email); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "message": "OTP sent to the assignee's email"})
}

// Create handles POST /departments/create.
func (h *DepartmentsHandler) Create(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.CreateDepartmentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	dept, err := h.departments.Create(c.UserContext(), identity, service.CreateDepartmentInput{
		Name:          req.Name,
		AssigneeEmail: req.AssignedEmail,
		AssigneeName:  req.AssignedName,
		Password:      req.AssignedPassword,
		Otp:           req.Otp,
	})
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"success":    true,
		"message":    "Department created",
		"department": dto.NewDepartmentResponse(dept),
	})
}

// List handles GET /departments/get.
func (h *DepartmentsHandler) List(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	entries, err := h.departments.List(c.UserContext(), identity)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success":     true,
		"departments": dto.NewDepartmentResponses(entries),
	})
}
