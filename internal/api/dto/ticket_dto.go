package dto

import (
	"time"

	"github.com/spec-kit/grievance-service/internal/domain"
	"github.com/spec-kit/grievance-service/internal/service"
)

// CreateTicketRequest payload for citizen submissions.
type CreateTicketRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Phone       string  `json:"phone"`
	FileURL     *string `json:"fileUrl"`
}

// UpdateTicketRequest payload for lifecycle updates.
type UpdateTicketRequest struct {
	Status       string  `json:"status"`
	Remarks      *string `json:"remarks"`
	AssignedDept *string `json:"assignedDept"`
}

// TicketLookupRequest payload for the OTP-gated public status lookup.
type TicketLookupRequest struct {
	Email    string `json:"email"`
	Otp      string `json:"otp"`
	TicketID string `json:"ticketId"`
}

// HistoryEntryResponse is one audit-trail record.
type HistoryEntryResponse struct {
	Status    string    `json:"status"`
	ActorName string    `json:"actorName"`
	ActorRole string    `json:"actorRole"`
	Remarks   *string   `json:"remarks,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// TicketResponse is the full ticket projection for scoped callers.
type TicketResponse struct {
	ID            string                 `json:"id"`
	SubmitterID   string                 `json:"submitterId"`
	SubmitterName string                 `json:"submitterName"`
	Title         string                 `json:"title"`
	Description   string                 `json:"description"`
	Phone         string                 `json:"phone"`
	FileURL       *string                `json:"fileUrl,omitempty"`
	Status        string                 `json:"status"`
	AssignedDept  *string                `json:"assignedDept,omitempty"`
	History       []HistoryEntryResponse `json:"history"`
	CreatedAt     time.Time              `json:"createdAt"`
	UpdatedAt     time.Time              `json:"updatedAt"`
}

// TicketStatusResponse is the redacted projection returned by the public
// lookup: no submitter identity, phone or description.
type TicketStatusResponse struct {
	TicketID string                 `json:"ticketId"`
	Title    string                 `json:"title"`
	Status   string                 `json:"status"`
	History  []HistoryEntryResponse `json:"history"`
}

// NewTicketResponse maps a domain ticket.
func NewTicketResponse(ticket *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:            ticket.ID,
		SubmitterID:   ticket.Submitter.UserID,
		SubmitterName: ticket.Submitter.Name,
		Title:         ticket.Title,
		Description:   ticket.Description,
		Phone:         ticket.Phone,
		FileURL:       ticket.FileURL,
		Status:        string(ticket.Status),
		AssignedDept:  ticket.AssignedDept,
		History:       newHistoryResponses(ticket.History),
		CreatedAt:     ticket.CreatedAt,
		UpdatedAt:     ticket.UpdatedAt,
	}
}

// NewTicketResponses maps a slice of tickets.
func NewTicketResponses(tickets []domain.Ticket) []TicketResponse {
	result := make([]TicketResponse, 0, len(tickets))
	for i := range tickets {
		result = append(result, NewTicketResponse(&tickets[i]))
	}
	return result
}

// NewTicketStatusResponse maps the redacted lookup projection.
func NewTicketStatusResponse(projection *service.StatusProjection) TicketStatusResponse {
	return TicketStatusResponse{
		TicketID: projection.TicketID,
		Title:    projection.Title,
		Status:   string(projection.Status),
		History:  newHistoryResponses(projection.History),
	}
}

func newHistoryResponses(history []domain.StatusHistoryEntry) []HistoryEntryResponse {
	result := make([]HistoryEntryResponse, 0, len(history))
	for _, entry := range history {
		result = append(result, HistoryEntryResponse{
			Status:    string(entry.Status),
			ActorName: entry.Actor.Name,
			ActorRole: string(entry.Actor.Role),
			Remarks:   entry.Remarks,
			CreatedAt: entry.CreatedAt,
		})
	}
	return result
}
