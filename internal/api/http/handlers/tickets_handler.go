package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/grievance-service/internal/api/dto"
	"github.com/spec-kit/grievance-service/internal/auth"
	"github.com/spec-kit/grievance-service/internal/service"
	apperrors "github.com/spec-kit/grievance-service/pkg/util/errorutil"
)

// TicketsHandler exposes the grievance ticket endpoints.
type TicketsHandler struct {
	tickets *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{tickets: ticketService}
}

// Create handles POST /ticket/create.
func (h *TicketsHandler) Create(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.tickets.Create(c.UserContext(), identity, service.CreateTicketInput{
		Title:       req.Title,
		Description: req.Description,
		Phone:       req.Phone,
		FileURL:     req.FileURL,
	})
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Ticket created",
		"ticket":  dto.NewTicketResponse(ticket),
	})
}

// List handles GET /ticket/tickets. Admins may filter with ?status=a,b.
func (h *TicketsHandler) List(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var statuses []string
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		for _, status := range strings.Split(raw, ",") {
			if status = strings.TrimSpace(status); status != "" {
				statuses = append(statuses, status)
			}
		}
	}

	tickets, err := h.tickets.List(c.UserContext(), identity, service.ListTicketsInput{Statuses: statuses})
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"tickets": dto.NewTicketResponses(tickets),
	})
}

// Get handles GET /ticket/:id.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	ticket, err := h.tickets.Get(c.UserContext(), identity, c.Params("id"))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"ticket":  dto.NewTicketResponse(ticket),
	})
}

// Update handles PATCH /ticket/:id/update.
func (h *TicketsHandler) Update(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.tickets.AppendStatus(c.UserContext(), identity, service.AppendStatusInput{
		TicketID:     c.Params("id"),
		Status:       req.Status,
		Remarks:      req.Remarks,
		AssignedDept: req.AssignedDept,
	})
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Ticket updated",
		"ticket":  dto.NewTicketResponse(ticket),
	})
}

// StatusLookup handles POST /ticket/verify-otp: the OTP-gated public status
// check that needs no session.
func (h *TicketsHandler) StatusLookup(c *fiber.Ctx) error {
	var req dto.TicketLookupRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	projection, err := h.tickets.StatusLookup(c.UserContext(), req.Email, req.Otp, req.TicketID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"ticket":  dto.NewTicketStatusResponse(projection),
	})
}
