package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/moderation-service/internal/api/http/handlers"
	"github.com/spec-kit/moderation-service/internal/auth"
	"github.com/spec-kit/moderation-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	Punishments    *handlers.PunishmentsHandler
	Moderation     *handlers.ModerationHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/auth/staff/login", cfg.Auth.Login)

	// Tickets are created by the player-facing panel; creation carries
	// no staff session.
	app.Post("/tickets", cfg.Tickets.CreateTicket)

	staff := app.Group("", cfg.AuthMiddleware.Handle, auth.RequireStaffRole())
	staff.Get("/tickets/:id", cfg.Tickets.GetTicket)
	staff.Get("/players/:identifier/status", cfg.Punishments.Status)
	staff.Get("/players/:identifier/audit", cfg.Punishments.AuditTrail)
	staff.Get("/moderation/catalog", cfg.Moderation.ListCatalog)

	moderators := app.Group("", cfg.AuthMiddleware.Handle,
		auth.RequireStaffRole(domain.StaffRoleAdmin, domain.StaffRoleModerator))
	moderators.Post("/punishments", cfg.Punishments.Apply)
	moderators.Post("/punishments/pardon", cfg.Punishments.Pardon)

	admins := app.Group("", cfg.AuthMiddleware.Handle,
		auth.RequireStaffRole(domain.StaffRoleAdmin))
	admins.Get("/moderation/settings", cfg.Moderation.GetSettings)
	admins.Put("/moderation/settings", cfg.Moderation.UpdateSettings)
}
