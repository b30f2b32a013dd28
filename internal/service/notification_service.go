package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/grievance-service/internal/config"
	"github.com/spec-kit/grievance-service/internal/events"
	"github.com/spec-kit/grievance-service/internal/mail"
	"github.com/spec-kit/grievance-service/internal/repository"
)

// NotificationService handles emitting notifications for domain events.
type NotificationService struct {
	dispatcher events.Dispatcher
	accounts   repository.AccountRepository
	mailer     mail.Mailer
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(
	dispatcher events.Dispatcher,
	accounts repository.AccountRepository,
	mailer mail.Mailer,
	logger *zap.Logger,
	cfg config.NotificationConfig,
) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		accounts:   accounts,
		mailer:     mailer,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handleTicketCreated)
	n.dispatcher.Subscribe(events.EventTicketStatusChanged, n.handleTicketStatusChanged)
	n.dispatcher.Subscribe(events.EventDepartmentCreated, n.handleDepartmentCreated)
}

func (n *NotificationService) handleTicketCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketCreatedPayload)
	if !ok {
		return nil
	}
	n.logger.Info("TicketCreated", zap.String("ticket_id", payload.TicketID))
	n.emailSubmitter(ctx, payload.SubmitterID,
		"Grievance received",
		fmt.Sprintf("<p>Your grievance <b>%s</b> has been received. Ticket ID: %s</p>", payload.Title, payload.TicketID))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleTicketStatusChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketStatusChangedPayload)
	if !ok {
		return nil
	}
	n.logger.Info("TicketStatusChanged",
		zap.String("ticket_id", payload.TicketID),
		zap.String("from", string(payload.OldStatus)),
		zap.String("to", string(payload.NewStatus)))
	n.emailSubmitter(ctx, payload.SubmitterID,
		"Grievance status updated",
		fmt.Sprintf("<p>Your ticket %s moved from <b>%s</b> to <b>%s</b>.</p>",
			payload.TicketID, payload.OldStatus, payload.NewStatus))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleDepartmentCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.DepartmentCreatedPayload)
	if !ok {
		return nil
	}
	n.logger.Info("DepartmentCreated", zap.String("department_id", payload.DepartmentID), zap.String("slug", payload.Slug))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) emailSubmitter(ctx context.Context, accountID, subject, body string) {
	if !n.cfg.EmailEnabled || n.mailer == nil {
		return
	}
	account, err := n.accounts.GetByID(ctx, accountID)
	if err != nil {
		n.logger.Warn("notification recipient lookup failed", zap.String("account_id", accountID), zap.Error(err))
		return
	}
	if err := n.mailer.Send(account.Email, subject, body); err != nil {
		n.logger.Warn("notification mail failed", zap.String("account_id", accountID), zap.Error(err))
	}
}

func (n *NotificationService) sendWebhookNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("event_type", string(event.Type)))
}
