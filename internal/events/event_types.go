package events

import (
	"time"

	"github.com/spec-kit/grievance-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventDepartmentCreated   EventType = "department_created"
	EventOtpRequested        EventType = "otp_requested"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	AccountID string      `json:"account_id"`
	Role      domain.Role `json:"role"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	TicketID    string `json:"ticket_id"`
	SubmitterID string `json:"submitter_id"`
	Title       string `json:"title"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	TicketID     string              `json:"ticket_id"`
	SubmitterID  string              `json:"submitter_id"`
	OldStatus    domain.TicketStatus `json:"old_status"`
	NewStatus    domain.TicketStatus `json:"new_status"`
	AssignedDept *string             `json:"assigned_dept,omitempty"`
	Remarks      *string             `json:"remarks,omitempty"`
}

// DepartmentCreatedPayload payload.
type DepartmentCreatedPayload struct {
	DepartmentID   string `json:"department_id"`
	Name           string `json:"name"`
	Slug           string `json:"slug"`
	AssignedEmail  string `json:"assigned_email"`
	CreatedByAdmin string `json:"created_by_admin"`
}

// OtpRequestedPayload payload. Carries the destination and purpose only;
// the code itself is never attached to events.
type OtpRequestedPayload struct {
	Address string            `json:"address"`
	Purpose domain.OtpPurpose `json:"purpose"`
}
