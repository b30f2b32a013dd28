package domain

import "time"

// TicketStatus enumerates lifecycle states for grievance tickets.
type TicketStatus string

const (
	TicketStatusSubmitted    TicketStatus = "Submitted"
	TicketStatusAssigned     TicketStatus = "Assigned"
	TicketStatusInProgress   TicketStatus = "In-Progress"
	TicketStatusAwaitingUser TicketStatus = "Awaiting User Response"
	TicketStatusResolved     TicketStatus = "Resolved"
	TicketStatusClosed       TicketStatus = "Closed"
)

// ParseTicketStatus validates a raw status string.
func ParseTicketStatus(raw string) (TicketStatus, bool) {
	switch TicketStatus(raw) {
	case TicketStatusSubmitted, TicketStatusAssigned, TicketStatusInProgress,
		TicketStatusAwaitingUser, TicketStatusResolved, TicketStatusClosed:
		return TicketStatus(raw), true
	}
	return "", false
}

var allowedTransitions = map[TicketStatus][]TicketStatus{
	TicketStatusSubmitted:    {TicketStatusAssigned, TicketStatusInProgress, TicketStatusClosed},
	TicketStatusAssigned:     {TicketStatusInProgress, TicketStatusAwaitingUser, TicketStatusResolved, TicketStatusClosed},
	TicketStatusInProgress:   {TicketStatusAwaitingUser, TicketStatusResolved, TicketStatusClosed},
	TicketStatusAwaitingUser: {TicketStatusInProgress, TicketStatusResolved, TicketStatusClosed},
	TicketStatusResolved:     {TicketStatusInProgress, TicketStatusClosed},
	TicketStatusClosed:       {},
}

// CanTransition reports whether moving from current to next is allowed.
func CanTransition(current, next TicketStatus) bool {
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}

// SubmitterSnapshot is the submitter reference captured at ticket creation.
type SubmitterSnapshot struct {
	UserID string
	Name   string
}

// ActorSnapshot identifies who appended a history entry, captured at write
// time rather than referenced live.
type ActorSnapshot struct {
	UserID string
	Name   string
	Role   Role
}

// StatusHistoryEntry is an immutable audit record; entries are only ever
// appended, never mutated or removed.
type StatusHistoryEntry struct {
	ID        string
	TicketID  string
	Status    TicketStatus
	Actor     ActorSnapshot
	Remarks   *string
	CreatedAt time.Time
}

// Ticket is the central grievance aggregate. Status always equals the status
// of the most recently appended history entry.
type Ticket struct {
	ID           string
	Submitter    SubmitterSnapshot
	Title        string
	Description  string
	Phone        string
	FileURL      *string
	Status       TicketStatus
	AssignedDept *string
	History      []StatusHistoryEntry
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
