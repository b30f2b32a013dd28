package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/grievance-service/internal/auth"
	"github.com/spec-kit/grievance-service/internal/domain"
	"github.com/spec-kit/grievance-service/internal/events"
	"github.com/spec-kit/grievance-service/internal/repository"
	apperrors "github.com/spec-kit/grievance-service/pkg/util/errorutil"
	"github.com/spec-kit/grievance-service/pkg/util/slugutil"
)

// slugRetryLimit bounds the unique-violation retry loop on creation.
const slugRetryLimit = 5

// DepartmentService manages departments and their assigned accounts.
type DepartmentService struct {
	departments repository.DepartmentRepository
	accounts    repository.AccountRepository
	otpService  *OtpService
	dispatcher  events.Dispatcher
	logger      *zap.Logger
	bcryptCost  int
}

// NewDepartmentService builds the service.
func NewDepartmentService(
	departments repository.DepartmentRepository,
	accounts repository.AccountRepository,
	otpService *OtpService,
	dispatcher events.Dispatcher,
	logger *zap.Logger,
	bcryptCost int,
) *DepartmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DepartmentService{
		departments: departments,
		accounts:    accounts,
		otpService:  otpService,
		dispatcher:  dispatcher,
		logger:      logger,
		bcryptCost:  bcryptCost,
	}
}

// CreateDepartmentInput carries the admin's creation payload. The OTP was
// sent to the assignee's address and proves it is deliverable.
type CreateDepartmentInput struct {
	Name          string
	AssigneeEmail string
	AssigneeName  string
	Password      string
	Otp           string
}

// RequestAssigneeCode sends a signup-purpose OTP to the prospective
// department account's address. Admin only.
func (s *DepartmentService) RequestAssigneeCode(ctx context.Context, identity domain.Identity, email string) error {
	if !auth.CanManageDepartments(identity) {
		return apperrors.NewForbidden("admin role required")
	}
	return s.otpService.RequestCode(ctx, email, domain.OtpPurposeSignup)
}

// Create provisions a department together with its single Department-role
// account in one transaction. The OTP is consumed before any write.
func (s *DepartmentService) Create(ctx context.Context, identity domain.Identity, input CreateDepartmentInput) (*domain.Department, error) {
	if !auth.CanManageDepartments(identity) {
		return nil, apperrors.NewForbidden("admin role required")
	}

	name := strings.TrimSpace(input.Name)
	email := strings.ToLower(strings.TrimSpace(input.AssigneeEmail))
	if name == "" || email == "" || input.Password == "" {
		return nil, apperrors.NewValidationError("name, assignee email and password are required", nil)
	}

	if err := s.otpService.VerifyCode(ctx, email, input.Otp, domain.OtpPurposeSignup); err != nil {
		return nil, err
	}

	if _, err := s.departments.GetByName(ctx, name); err == nil {
		return nil, apperrors.NewConflict("department already exists", map[string]any{"name": name})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}
	if _, err := s.accounts.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflict("email already registered", map[string]any{"email": email})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	base := slugutil.Slugify(name)
	if base == "" {
		return nil, apperrors.NewValidationError("department name yields an empty slug", nil)
	}

	// A concurrent creation can claim the candidate slug between the
	// existence probe and the insert; the unique index is the arbiter and
	// we retry with the next suffix.
	for attempt := 0; attempt < slugRetryLimit; attempt++ {
		slug, err := s.nextFreeSlug(ctx, base, attempt)
		if err != nil {
			return nil, apperrors.MapError(err)
		}

		account := &domain.Account{
			Email:        email,
			PasswordHash: hash,
			Name:         strings.TrimSpace(input.AssigneeName),
			Role:         domain.RoleDepartment,
			Department:   &name,
		}
		dept := &domain.Department{
			Name:      name,
			Slug:      slug,
			CreatedBy: domain.CreatorSnapshot{UserID: identity.AccountID, Name: identity.Name},
		}

		err = s.departments.CreateWithAccount(ctx, dept, account)
		if errors.Is(err, repository.ErrSlugTaken) {
			continue
		}
		if err != nil {
			return nil, apperrors.MapError(err)
		}

		s.publish(ctx, identity, events.Event{
			Type: events.EventDepartmentCreated,
			Payload: events.DepartmentCreatedPayload{
				DepartmentID:   dept.ID,
				Name:           dept.Name,
				Slug:           dept.Slug,
				AssignedEmail:  email,
				CreatedByAdmin: identity.AccountID,
			},
		})
		s.logger.Info("department created", zap.String("department_id", dept.ID), zap.String("slug", dept.Slug))
		return dept, nil
	}
	return nil, apperrors.NewConflict("could not allocate a unique slug", map[string]any{"name": name})
}

// List returns all departments with their assigned accounts. Admin only.
func (s *DepartmentService) List(ctx context.Context, identity domain.Identity) ([]repository.DepartmentWithAccount, error) {
	if !auth.CanManageDepartments(identity) {
		return nil, apperrors.NewForbidden("admin role required")
	}
	result, err := s.departments.ListWithAccounts(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return result, nil
}

// nextFreeSlug probes candidates base, base-2, base-3, ... starting at the
// given attempt offset.
func (s *DepartmentService) nextFreeSlug(ctx context.Context, base string, attempt int) (string, error) {
	for i := attempt; ; i++ {
		candidate := base
		if i > 0 {
			candidate = fmt.Sprintf("%s-%d", base, i+1)
		}
		taken, err := s.departments.ExistsBySlug(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
}

func (s *DepartmentService) publish(ctx context.Context, identity domain.Identity, event events.Event) {
	event.Actor = events.Actor{AccountID: identity.AccountID, Role: identity.Role}
	publishEvent(ctx, s.dispatcher, event)
}
