package domain

import "testing"

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name    string
		current TicketStatus
		next    TicketStatus
		want    bool
	}{
		{"submitted to assigned", TicketStatusSubmitted, TicketStatusAssigned, true},
		{"submitted to in-progress", TicketStatusSubmitted, TicketStatusInProgress, true},
		{"submitted to resolved", TicketStatusSubmitted, TicketStatusResolved, false},
		{"assigned to in-progress", TicketStatusAssigned, TicketStatusInProgress, true},
		{"in-progress to awaiting user", TicketStatusInProgress, TicketStatusAwaitingUser, true},
		{"awaiting user back to in-progress", TicketStatusAwaitingUser, TicketStatusInProgress, true},
		{"resolved reopened", TicketStatusResolved, TicketStatusInProgress, true},
		{"resolved to closed", TicketStatusResolved, TicketStatusClosed, true},
		{"closed is terminal", TicketStatusClosed, TicketStatusInProgress, false},
		{"closed to closed", TicketStatusClosed, TicketStatusClosed, false},
		{"no self transition", TicketStatusInProgress, TicketStatusInProgress, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanTransition(tt.current, tt.next); got != tt.want {
				t.Errorf("CanTransition(%q, %q) = %v, want %v", tt.current, tt.next, got, tt.want)
			}
		})
	}
}

func TestParseTicketStatus(t *testing.T) {
	if _, ok := ParseTicketStatus("Awaiting User Response"); !ok {
		t.Error("expected Awaiting User Response to parse")
	}
	if _, ok := ParseTicketStatus("Open"); ok {
		t.Error("expected Open to be rejected")
	}
}
