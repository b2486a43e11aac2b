package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/ticketdesk/transcript-ledger/internal/api/http/handlers"
	"github.com/ticketdesk/transcript-ledger/internal/auth"
	"github.com/ticketdesk/transcript-ledger/internal/domain"
	"github.com/ticketdesk/transcript-ledger/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Reports        *handlers.ReportsHandler
	Auth           *handlers.AuthHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	if cfg.Auth != nil {
		app.Post("/auth/token", cfg.Auth.Token)
	}

	reports := app.Group("/reports", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleReporter))
	reports.Get("/owners/:id/tickets", cfg.Reports.OwnerTickets)
	reports.Get("/referrals", cfg.Reports.Referrals)
	reports.Get("/approvals", cfg.Reports.Approvals)
	reports.Get("/tickets/:number/history", cfg.Reports.TicketHistory)
}
