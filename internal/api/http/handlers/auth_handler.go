package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/grievance-service/internal/api/dto"
	"github.com/spec-kit/grievance-service/internal/domain"
	"github.com/spec-kit/grievance-service/internal/service"
	apperrors "github.com/spec-kit/grievance-service/pkg/util/errorutil"
)

// AuthHandler exposes login, signup and password-reset endpoints.
type AuthHandler struct {
	auth *service.AuthService
	otps *service.OtpService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, otpService *service.OtpService) *AuthHandler {
	return &AuthHandler{auth: authService, otps: otpService}
}

// Login handles POST /login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	session, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Login successful",
		"account": dto.NewAccountResponse(session.Account),
		"auth":    dto.AuthResponse{Token: session.Token, ExpiresAt: session.ExpiresAt},
	})
}

// SendSignupOtp handles POST /signup/send-otp.
func (h *AuthHandler) SendSignupOtp(c *fiber.Ctx) error {
	return h.sendOtp(c, domain.OtpPurposeSignup, "OTP sent to your email")
}

// SendResetOtp handles POST /send-otp. Unknown addresses get the same
// success response as known ones.
func (h *AuthHandler) SendResetOtp(c *fiber.Ctx) error {
	return h.sendOtp(c, domain.OtpPurposeReset, "If the email is registered, an OTP has been sent")
}

// SendLookupOtp handles POST /ticket/send-otp.
func (h *AuthHandler) SendLookupOtp(c *fiber.Ctx) error {
	return h.sendOtp(c, domain.OtpPurposeTicketLookup, "If the email is registered, an OTP has been sent")
}

func (h *AuthHandler) sendOtp(c *fiber.Ctx, purpose domain.OtpPurpose, message string) error {
	var req dto.SendOtpRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	if err := h.otps.RequestCode(c.UserContext(), req.Email, purpose); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "message": message})
}

// Signup handles POST /signup.
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req dto.SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	account, err := h.auth.Signup(c.UserContext(), service.SignupInput{
		Email:        req.Email,
		Password:     req.Password,
		Name:         req.Name,
		Address:      req.Address,
		Sex:          req.Sex,
		VoterID:      req.VoterID,
		NationalID:   req.NationalID,
		Constituency: req.Constituency,
		Contact:      req.Contact,
		Otp:          req.Otp,
	})
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Account created",
		"account": dto.NewAccountResponse(account),
	})
}

// ResetPassword handles POST /verify-otp.
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req dto.ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	if err := h.auth.ResetPassword(c.UserContext(), req.Email, req.Otp, req.Password); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "message": "Password updated"})
}
