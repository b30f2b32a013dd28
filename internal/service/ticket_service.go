package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/grievance-service/internal/auth"
	"github.com/spec-kit/grievance-service/internal/domain"
	"github.com/spec-kit/grievance-service/internal/events"
	"github.com/spec-kit/grievance-service/internal/repository"
	apperrors "github.com/spec-kit/grievance-service/pkg/util/errorutil"
)

// TicketService drives the grievance ticket lifecycle.
type TicketService struct {
	tickets     repository.TicketRepository
	departments repository.DepartmentRepository
	accounts    repository.AccountRepository
	otpService  *OtpService
	dispatcher  events.Dispatcher
	logger      *zap.Logger
}

// NewTicketService builds the service.
func NewTicketService(
	tickets repository.TicketRepository,
	departments repository.DepartmentRepository,
	accounts repository.AccountRepository,
	otpService *OtpService,
	dispatcher events.Dispatcher,
	logger *zap.Logger,
) *TicketService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TicketService{
		tickets:     tickets,
		departments: departments,
		accounts:    accounts,
		otpService:  otpService,
		dispatcher:  dispatcher,
		logger:      logger,
	}
}

// CreateTicketInput is the citizen-facing submission payload.
type CreateTicketInput struct {
	Title       string
	Description string
	Phone       string
	FileURL     *string
}

// AppendStatusInput carries a lifecycle update request.
type AppendStatusInput struct {
	TicketID     string
	Status       string
	Remarks      *string
	AssignedDept *string
}

// ListTicketsInput carries optional listing filters.
type ListTicketsInput struct {
	Statuses []string
}

// StatusProjection is the redacted view returned by the OTP-gated status
// lookup: lifecycle data only, no submitter identity or contact details.
type StatusProjection struct {
	TicketID string
	Title    string
	Status   domain.TicketStatus
	History  []domain.StatusHistoryEntry
}

// Create opens a ticket for the calling citizen. Every ticket starts with a
// synthetic "Ticket created" history entry so the audit trail is never empty.
func (s *TicketService) Create(ctx context.Context, identity domain.Identity, input CreateTicketInput) (*domain.Ticket, error) {
	if !auth.CanCreateTicket(identity) {
		return nil, apperrors.NewForbidden("only citizens may open tickets")
	}

	input.Title = strings.TrimSpace(input.Title)
	input.Description = strings.TrimSpace(input.Description)
	input.Phone = strings.TrimSpace(input.Phone)
	if input.Title == "" || input.Description == "" || input.Phone == "" {
		return nil, apperrors.NewValidationError("title, description and phone are required", nil)
	}

	ticket := &domain.Ticket{
		Submitter:   domain.SubmitterSnapshot{UserID: identity.AccountID, Name: identity.Name},
		Title:       input.Title,
		Description: input.Description,
		Phone:       input.Phone,
		FileURL:     input.FileURL,
		Status:      domain.TicketStatusSubmitted,
	}
	remarks := "Ticket created"
	initial := &domain.StatusHistoryEntry{
		Status:  domain.TicketStatusSubmitted,
		Actor:   domain.ActorSnapshot{UserID: identity.AccountID, Name: identity.Name, Role: identity.Role},
		Remarks: &remarks,
	}
	if err := s.tickets.Create(ctx, ticket, initial); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, identity, events.Event{
		Type: events.EventTicketCreated,
		Payload: events.TicketCreatedPayload{
			TicketID:    ticket.ID,
			SubmitterID: ticket.Submitter.UserID,
			Title:       ticket.Title,
		},
	})
	s.logger.Info("ticket created", zap.String("ticket_id", ticket.ID), zap.String("submitter", ticket.Submitter.UserID))
	return ticket, nil
}

// Get returns one ticket if the caller's scope covers it. Tickets outside
// the caller's scope are reported as not found.
func (s *TicketService) Get(ctx context.Context, identity domain.Identity, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", nil)
		}
		return nil, apperrors.MapError(err)
	}
	if !auth.CanReadTicket(identity, ticket) {
		return nil, apperrors.NewNotFound("ticket", nil)
	}
	return ticket, nil
}

// List returns the tickets the caller's role entitles them to: admins see
// everything, citizens their own submissions, departments their assignments.
// The status filter is admin-only.
func (s *TicketService) List(ctx context.Context, identity domain.Identity, input ListTicketsInput) ([]domain.Ticket, error) {
	scope, err := auth.ScopeForList(identity)
	if err != nil {
		return nil, err
	}

	filter := repository.TicketFilter{
		SubmitterID:  scope.SubmitterID,
		AssignedDept: scope.AssignedDept,
	}
	if len(input.Statuses) > 0 {
		if identity.Role != domain.RoleAdmin {
			return nil, apperrors.NewForbidden("status filtering is restricted to admins")
		}
		for _, raw := range input.Statuses {
			status, ok := domain.ParseTicketStatus(raw)
			if !ok {
				return nil, apperrors.NewValidationError("unknown ticket status", map[string]any{"status": raw})
			}
			filter.Statuses = append(filter.Statuses, status)
		}
	}

	tickets, err := s.tickets.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// AppendStatus advances a ticket's lifecycle. The transition must be allowed
// from the current status, the caller must be entitled to touch the ticket,
// and an assignment target must name an existing department. The history
// append and status update commit together.
func (s *TicketService) AppendStatus(ctx context.Context, identity domain.Identity, input AppendStatusInput) (*domain.Ticket, error) {
	next, ok := domain.ParseTicketStatus(input.Status)
	if !ok {
		return nil, apperrors.NewValidationError("unknown ticket status", map[string]any{"status": input.Status})
	}

	ticket, err := s.tickets.GetByID(ctx, input.TicketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", nil)
		}
		return nil, apperrors.MapError(err)
	}
	if !auth.CanAppendStatus(identity, ticket) {
		return nil, apperrors.NewNotFound("ticket", nil)
	}
	if !domain.CanTransition(ticket.Status, next) {
		return nil, apperrors.NewConflict("status transition not allowed",
			map[string]any{"from": string(ticket.Status), "to": string(next)})
	}

	var assignedDept *string
	if input.AssignedDept != nil && *input.AssignedDept != "" {
		if identity.Role != domain.RoleAdmin {
			return nil, apperrors.NewForbidden("only admins may assign departments")
		}
		dept, err := s.departments.GetByName(ctx, *input.AssignedDept)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewNotFound("department", map[string]any{"name": *input.AssignedDept})
			}
			return nil, apperrors.MapError(err)
		}
		assignedDept = &dept.Name
	}

	entry := &domain.StatusHistoryEntry{
		Status:  next,
		Actor:   domain.ActorSnapshot{UserID: identity.AccountID, Name: identity.Name, Role: identity.Role},
		Remarks: input.Remarks,
	}
	updated, err := s.tickets.AppendStatus(ctx, input.TicketID, entry, assignedDept)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", nil)
		}
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, identity, events.Event{
		Type: events.EventTicketStatusChanged,
		Payload: events.TicketStatusChangedPayload{
			TicketID:     updated.ID,
			SubmitterID:  updated.Submitter.UserID,
			OldStatus:    ticket.Status,
			NewStatus:    next,
			AssignedDept: updated.AssignedDept,
			Remarks:      input.Remarks,
		},
	})
	s.logger.Info("ticket status appended",
		zap.String("ticket_id", updated.ID),
		zap.String("from", string(ticket.Status)),
		zap.String("to", string(next)))
	return updated, nil
}

// StatusLookup returns a redacted ticket projection after the caller proves
// control of the submitter's email with a ticket-lookup OTP. No session is
// required; the code is the credential.
func (s *TicketService) StatusLookup(ctx context.Context, email, code, ticketID string) (*StatusProjection, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := s.otpService.VerifyCode(ctx, email, code, domain.OtpPurposeTicketLookup); err != nil {
		return nil, err
	}

	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", nil)
		}
		return nil, apperrors.MapError(err)
	}

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", nil)
		}
		return nil, apperrors.MapError(err)
	}
	// The code only proves control of the submitter's own address.
	if ticket.Submitter.UserID != account.ID {
		return nil, apperrors.NewNotFound("ticket", nil)
	}

	return &StatusProjection{
		TicketID: ticket.ID,
		Title:    ticket.Title,
		Status:   ticket.Status,
		History:  ticket.History,
	}, nil
}

func (s *TicketService) publish(ctx context.Context, identity domain.Identity, event events.Event) {
	event.Actor = events.Actor{AccountID: identity.AccountID, Role: identity.Role}
	publishEvent(ctx, s.dispatcher, event)
}
