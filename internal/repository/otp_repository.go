package repository

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/grievance-service/internal/domain"
)

const otpKeyPrefix = "otp:"

// OtpRepository is the ledger of live one-time codes, one per address.
// Backed by redis: SET with TTL gives the atomic replace-and-expire the
// ledger requires, so two valid codes never coexist for the same address.
type OtpRepository interface {
	// Replace stores the record, overwriting any live code for the address.
	Replace(ctx context.Context, record *domain.OtpRecord) error
	// Get returns the live record for the address, or nil when none exists.
	Get(ctx context.Context, address string) (*domain.OtpRecord, error)
	Delete(ctx context.Context, address string) error
}

type otpRepository struct {
	client *redis.Client
}

// NewOtpRepository returns a redis-backed ledger.
func NewOtpRepository(client *redis.Client) OtpRepository {
	return &otpRepository{client: client}
}

type otpPayload struct {
	CodeHash  string    `json:"code_hash"`
	Purpose   string    `json:"purpose"`
	ExpiresAt time.Time `json:"expires_at"`
}

func otpKey(address string) string {
	return otpKeyPrefix + strings.ToLower(strings.TrimSpace(address))
}

func (r *otpRepository) Replace(ctx context.Context, record *domain.OtpRecord) error {
	payload, err := json.Marshal(otpPayload{
		CodeHash:  record.CodeHash,
		Purpose:   string(record.Purpose),
		ExpiresAt: record.ExpiresAt,
	})
	if err != nil {
		return err
	}
	ttl := time.Until(record.ExpiresAt)
	if ttl <= 0 {
		return errors.New("otp record already expired")
	}
	return r.client.Set(ctx, otpKey(record.Address), payload, ttl).Err()
}

func (r *otpRepository) Get(ctx context.Context, address string) (*domain.OtpRecord, error) {
	raw, err := r.client.Get(ctx, otpKey(address)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var payload otpPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, err
	}
	return &domain.OtpRecord{
		Address:   strings.ToLower(strings.TrimSpace(address)),
		CodeHash:  payload.CodeHash,
		Purpose:   domain.OtpPurpose(payload.Purpose),
		ExpiresAt: payload.ExpiresAt,
	}, nil
}

func (r *otpRepository) Delete(ctx context.Context, address string) error {
	return r.client.Del(ctx, otpKey(address)).Err()
}
