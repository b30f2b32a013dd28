package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/grievance-service/internal/api/http/handlers"
	"github.com/spec-kit/grievance-service/internal/auth"
	"github.com/spec-kit/grievance-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	Departments    *handlers.DepartmentsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	// Session and OTP-gated account flows; no session required.
	app.Post("/login", cfg.Auth.Login)
	app.Post("/signup/send-otp", cfg.Auth.SendSignupOtp)
	app.Post("/signup", cfg.Auth.Signup)
	app.Post("/send-otp", cfg.Auth.SendResetOtp)
	app.Post("/verify-otp", cfg.Auth.ResetPassword)

	// Public ticket status lookup, gated by an emailed code instead of a
	// session. Registered before the parameterized ticket routes.
	ticket := app.Group("/ticket")
	ticket.Post("/send-otp", cfg.Auth.SendLookupOtp)
	ticket.Post("/verify-otp", cfg.Tickets.StatusLookup)

	ticket.Post("/create", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleUser), cfg.Tickets.Create)
	ticket.Get("/tickets", cfg.AuthMiddleware.Handle, auth.RequireRole(), cfg.Tickets.List)
	ticket.Get("/:id", cfg.AuthMiddleware.Handle, auth.RequireRole(), cfg.Tickets.Get)
	ticket.Patch("/:id/update", cfg.AuthMiddleware.Handle,
		auth.RequireRole(domain.RoleAdmin, domain.RoleDepartment), cfg.Tickets.Update)

	departments := app.Group("/departments", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleAdmin))
	departments.Post("/send-otp", cfg.Departments.SendOtp)
	departments.Post("/create", cfg.Departments.Create)
	departments.Get("/get", cfg.Departments.List)
}
