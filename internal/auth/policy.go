package auth

import (
	"github.com/spec-kit/grievance-service/internal/domain"
	apperrors "github.com/spec-kit/grievance-service/pkg/util/errorutil"
)

// TicketScope narrows a ticket listing to what the caller may see. Exactly
// one of the fields is set for non-admin callers; All is set for admins.
type TicketScope struct {
	All          bool
	SubmitterID  *string
	AssignedDept *string
}

// CanCreateTicket allows ticket creation for citizen accounts only.
func CanCreateTicket(identity domain.Identity) bool {
	return identity.Role == domain.RoleUser
}

// CanReadTicket decides single-ticket visibility. Callers outside the scope
// are told the ticket does not exist, so a deny here must surface as
// not-found, never as forbidden.
func CanReadTicket(identity domain.Identity, ticket *domain.Ticket) bool {
	switch identity.Role {
	case domain.RoleAdmin:
		return true
	case domain.RoleUser:
		return ticket.Submitter.UserID == identity.AccountID
	case domain.RoleDepartment:
		return ticket.AssignedDept != nil && *ticket.AssignedDept == identity.DepartmentName()
	}
	return false
}

// CanAppendStatus decides who may append a status entry. Admins may touch
// any ticket; a department only tickets already assigned to it.
func CanAppendStatus(identity domain.Identity, ticket *domain.Ticket) bool {
	switch identity.Role {
	case domain.RoleAdmin:
		return true
	case domain.RoleDepartment:
		return ticket.AssignedDept != nil && *ticket.AssignedDept == identity.DepartmentName()
	}
	return false
}

// ScopeForList derives the listing scope for the caller's role.
func ScopeForList(identity domain.Identity) (TicketScope, error) {
	switch identity.Role {
	case domain.RoleAdmin:
		return TicketScope{All: true}, nil
	case domain.RoleUser:
		submitterID := identity.AccountID
		return TicketScope{SubmitterID: &submitterID}, nil
	case domain.RoleDepartment:
		dept := identity.DepartmentName()
		if dept == "" {
			return TicketScope{}, apperrors.NewForbidden("department not assigned")
		}
		return TicketScope{AssignedDept: &dept}, nil
	}
	return TicketScope{}, apperrors.NewForbidden("invalid role")
}

// CanManageDepartments gates department creation and listing.
func CanManageDepartments(identity domain.Identity) bool {
	return identity.Role == domain.RoleAdmin
}
