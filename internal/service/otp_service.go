package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/grievance-service/internal/domain"
	"github.com/spec-kit/grievance-service/internal/events"
	"github.com/spec-kit/grievance-service/internal/mail"
	"github.com/spec-kit/grievance-service/internal/ratelimit"
	"github.com/spec-kit/grievance-service/internal/repository"
	"github.com/spec-kit/grievance-service/pkg/otp"
	apperrors "github.com/spec-kit/grievance-service/pkg/util/errorutil"
)

// OtpService coordinates the send-code / verify-code workflow. Per address
// the ledger holds at most one live code; issuing a new one replaces it.
type OtpService struct {
	otps       repository.OtpRepository
	accounts   repository.AccountRepository
	limiter    ratelimit.Limiter
	mailer     mail.Mailer
	dispatcher events.Dispatcher
	logger     *zap.Logger
	ttl        time.Duration
	now        func() time.Time
}

// OtpDependencies bundles collaborators for the OTP service.
type OtpDependencies struct {
	OtpRepo     repository.OtpRepository
	AccountRepo repository.AccountRepository
	Limiter     ratelimit.Limiter
	Mailer      mail.Mailer
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
	TTL         time.Duration
}

// NewOtpService builds the service.
func NewOtpService(deps OtpDependencies) *OtpService {
	ttl := deps.TTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OtpService{
		otps:       deps.OtpRepo,
		accounts:   deps.AccountRepo,
		limiter:    deps.Limiter,
		mailer:     deps.Mailer,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		ttl:        ttl,
		now:        time.Now,
	}
}

// RequestCode issues a fresh code for the address, replacing any live one.
// Signup-purpose requests refuse addresses that already hold an account;
// reset and ticket-lookup requests silently no-op for unknown addresses so
// the endpoint cannot be used to enumerate accounts.
func (s *OtpService) RequestCode(ctx context.Context, address string, purpose domain.OtpPurpose) error {
	address = strings.ToLower(strings.TrimSpace(address))
	if address == "" {
		return apperrors.NewValidationError("email is required", nil)
	}

	if s.limiter != nil {
		allowed, retryAfter, err := s.limiter.Allow(ctx, address)
		if err != nil {
			s.logger.Warn("otp rate limiter unavailable", zap.Error(err))
		} else if !allowed {
			return apperrors.NewRateLimited(int(math.Ceil(retryAfter.Seconds())))
		}
	}

	_, err := s.accounts.GetByEmail(ctx, address)
	exists := err == nil
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return apperrors.MapError(err)
	}

	switch purpose {
	case domain.OtpPurposeSignup:
		if exists {
			return apperrors.NewConflict("email already registered", map[string]any{"email": address})
		}
	case domain.OtpPurposeReset, domain.OtpPurposeTicketLookup:
		if !exists {
			// Report success without issuing a code.
			return nil
		}
	default:
		return apperrors.NewValidationError("unknown OTP purpose", nil)
	}

	code, err := otp.Generate()
	if err != nil {
		return apperrors.MapError(err)
	}

	record := &domain.OtpRecord{
		Address:   address,
		CodeHash:  otp.Hash(code),
		Purpose:   purpose,
		ExpiresAt: s.now().Add(s.ttl),
	}
	if err := s.otps.Replace(ctx, record); err != nil {
		return apperrors.MapError(err)
	}

	subject, heading := otpMailText(purpose)
	if err := s.mailer.Send(address, subject, mail.OtpBody(heading, code, int(s.ttl.Minutes()))); err != nil {
		return apperrors.MapError(err)
	}

	s.publish(ctx, events.Event{
		Type:    events.EventOtpRequested,
		Payload: events.OtpRequestedPayload{Address: address, Purpose: purpose},
	})
	s.logger.Info("otp issued", zap.String("purpose", string(purpose)))
	return nil
}

// VerifyCode checks a submitted code. Codes are single use: a match consumes
// the record, expiry deletes it, a plain mismatch leaves it so the caller
// may retry until expiry.
func (s *OtpService) VerifyCode(ctx context.Context, address, submittedCode string, purpose domain.OtpPurpose) error {
	address = strings.ToLower(strings.TrimSpace(address))

	record, err := s.otps.Get(ctx, address)
	if err != nil {
		return apperrors.MapError(err)
	}
	if record == nil || record.Purpose != purpose {
		return apperrors.NewInvalidOtp()
	}
	if record.Expired(s.now()) {
		if err := s.otps.Delete(ctx, address); err != nil {
			return apperrors.MapError(err)
		}
		return apperrors.NewInvalidOtp()
	}
	if err := otp.Verify(record.CodeHash, submittedCode); err != nil {
		return apperrors.NewInvalidOtp()
	}
	if err := s.otps.Delete(ctx, address); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

func (s *OtpService) publish(ctx context.Context, event events.Event) {
	publishEvent(ctx, s.dispatcher, event)
}

func otpMailText(purpose domain.OtpPurpose) (subject, heading string) {
	switch purpose {
	case domain.OtpPurposeSignup:
		return "Verify your email", "Email Verification"
	case domain.OtpPurposeReset:
		return "Your Password Reset OTP", "Password Reset OTP"
	case domain.OtpPurposeTicketLookup:
		return "Your Ticket Status OTP", "Ticket Status Lookup"
	}
	return "Your OTP", "Verification"
}
