package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/grievance-service/internal/auth"
	"github.com/spec-kit/grievance-service/internal/domain"
	"github.com/spec-kit/grievance-service/internal/repository"
	apperrors "github.com/spec-kit/grievance-service/pkg/util/errorutil"
)

// AuthService implements login, OTP-gated citizen signup and password reset.
type AuthService struct {
	accounts   repository.AccountRepository
	otpService *OtpService
	tokens     *auth.TokenManager
	logger     *zap.Logger
	bcryptCost int
}

// NewAuthService builds the service.
func NewAuthService(accounts repository.AccountRepository, otpService *OtpService, tokens *auth.TokenManager, logger *zap.Logger, bcryptCost int) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		accounts:   accounts,
		otpService: otpService,
		tokens:     tokens,
		logger:     logger,
		bcryptCost: bcryptCost,
	}
}

// Session is the result of a successful authentication.
type Session struct {
	Token     string
	ExpiresAt time.Time
	Account   *domain.Account
}

// SignupInput carries the citizen registration payload plus the OTP proving
// control of the email address.
type SignupInput struct {
	Email        string
	Password     string
	Name         string
	Address      string
	Sex          string
	VoterID      *string
	NationalID   *string
	Constituency string
	Contact      *string
	Otp          string
}

// Login verifies credentials and issues a session token. Unknown email and
// wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, apperrors.NewValidationError("email and password are required", nil)
	}

	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, apperrors.MapError(err)
	}
	if err := auth.ComparePassword(account.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}

	token, expiresAt, err := s.tokens.GenerateToken(account)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	s.logger.Info("login succeeded", zap.String("account_id", account.ID), zap.String("role", string(account.Role)))
	return &Session{Token: token, ExpiresAt: expiresAt, Account: account}, nil
}

// Signup registers a citizen account. The OTP must be a live signup-purpose
// code for the email; verification consumes it before any write happens.
func (s *AuthService) Signup(ctx context.Context, input SignupInput) (*domain.Account, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || input.Password == "" {
		return nil, apperrors.NewValidationError("email and password are required", nil)
	}

	if err := s.otpService.VerifyCode(ctx, email, input.Otp, domain.OtpPurposeSignup); err != nil {
		return nil, err
	}

	existing, err := s.accounts.FindConflict(ctx, email, input.NationalID, input.VoterID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}
	if existing != nil {
		return nil, apperrors.NewConflict("account already exists", conflictDetails(existing, email, input.NationalID, input.VoterID))
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	account := &domain.Account{
		Email:        email,
		PasswordHash: hash,
		Name:         strings.TrimSpace(input.Name),
		Role:         domain.RoleUser,
		Profile: &domain.CitizenProfile{
			Address:      strings.TrimSpace(input.Address),
			Sex:          strings.TrimSpace(input.Sex),
			VoterID:      input.VoterID,
			NationalID:   input.NationalID,
			Constituency: strings.TrimSpace(input.Constituency),
			Contact:      input.Contact,
		},
	}
	if err := account.Validate(); err != nil {
		return nil, apperrors.NewValidationError(err.Error(), nil)
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.logger.Info("citizen registered", zap.String("account_id", account.ID))
	return account, nil
}

// ResetPassword sets a new password after the caller proves control of the
// email with a live reset-purpose OTP.
func (s *AuthService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if newPassword == "" {
		return apperrors.NewValidationError("new password is required", nil)
	}

	if err := s.otpService.VerifyCode(ctx, email, code, domain.OtpPurposeReset); err != nil {
		return err
	}

	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("account", nil)
		}
		return apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return apperrors.MapError(err)
	}
	if err := s.accounts.UpdatePassword(ctx, account.ID, hash); err != nil {
		return apperrors.MapError(err)
	}

	s.logger.Info("password reset", zap.String("account_id", account.ID))
	return nil
}

// conflictDetails names which identifier collided so the caller can correct
// the right field.
func conflictDetails(existing *domain.Account, email string, nationalID, voterID *string) map[string]any {
	details := map[string]any{}
	if strings.EqualFold(existing.Email, email) {
		details["email"] = "already registered"
	}
	if existing.Profile != nil {
		if nationalID != nil && existing.Profile.NationalID != nil && *existing.Profile.NationalID == *nationalID {
			details["national_id"] = "already registered"
		}
		if voterID != nil && existing.Profile.VoterID != nil && *existing.Profile.VoterID == *voterID {
			details["voter_id"] = "already registered"
		}
	}
	return details
}
