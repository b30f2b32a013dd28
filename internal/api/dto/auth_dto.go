package dto

import (
	"time"

	"github.com/spec-kit/grievance-service/internal/domain"
)

// LoginRequest payload for all roles.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SendOtpRequest payload for every code-issuing endpoint.
type SendOtpRequest struct {
	Email string `json:"email"`
}

// SignupRequest payload for citizen registration. The otp field carries the
// code sent to the email beforehand.
type SignupRequest struct {
	Email        string  `json:"email"`
	Password     string  `json:"password"`
	Name         string  `json:"name"`
	Address      string  `json:"address"`
	Sex          string  `json:"sex"`
	VoterID      *string `json:"voterId"`
	NationalID   *string `json:"nationalId"`
	Constituency string  `json:"constituency"`
	Contact      *string `json:"contact"`
	Otp          string  `json:"otp"`
}

// ResetPasswordRequest consumes a reset code and sets the new password.
type ResetPasswordRequest struct {
	Email    string `json:"email"`
	Otp      string `json:"otp"`
	Password string `json:"password"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// AccountResponse is the account projection returned to clients. The
// password hash never leaves the service.
type AccountResponse struct {
	ID           string  `json:"id"`
	Email        string  `json:"email"`
	Name         string  `json:"name"`
	Role         string  `json:"role"`
	Department   *string `json:"department,omitempty"`
	Address      string  `json:"address,omitempty"`
	Sex          string  `json:"sex,omitempty"`
	VoterID      *string `json:"voterId,omitempty"`
	NationalID   *string `json:"nationalId,omitempty"`
	Constituency string  `json:"constituency,omitempty"`
	Contact      *string `json:"contact,omitempty"`
}

// NewAccountResponse maps a domain account to its public projection.
func NewAccountResponse(account *domain.Account) AccountResponse {
	resp := AccountResponse{
		ID:         account.ID,
		Email:      account.Email,
		Name:       account.Name,
		Role:       string(account.Role),
		Department: account.Department,
	}
	if p := account.Profile; p != nil {
		resp.Address = p.Address
		resp.Sex = p.Sex
		resp.VoterID = p.VoterID
		resp.NationalID = p.NationalID
		resp.Constituency = p.Constituency
		resp.Contact = p.Contact
	}
	return resp
}
