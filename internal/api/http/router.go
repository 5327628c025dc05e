package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	Comments       *handlers.CommentsHandler
	Users          *handlers.UsersHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes. Role checks at the route level cover
// coarse access; per-operation rules live in the lifecycle policy.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/password/reset/request", cfg.Auth.RequestPasswordReset)
	authGroup.Post("/password/reset/confirm", cfg.Auth.ConfirmPasswordReset)
	authGroup.Post("/password/change", cfg.AuthMiddleware.Handle, cfg.Auth.ChangePassword)

	api := app.Group("/api/v1", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())

	tickets := api.Group("/tickets")
	tickets.Post("", cfg.Tickets.Create)
	tickets.Get("", cfg.Tickets.List)
	tickets.Get("/:id", cfg.Tickets.Get)
	tickets.Patch("/:id", cfg.Tickets.Edit)
	tickets.Delete("/:id", auth.RequireRole(domain.RoleAdmin), cfg.Tickets.Delete)
	tickets.Post("/:id/assign", auth.RequireRole(domain.RoleAdmin, domain.RoleManager), cfg.Tickets.Assign)
	tickets.Post("/:id/claim", auth.RequireRole(domain.RoleAgent), cfg.Tickets.Claim)
	tickets.Post("/:id/accept", auth.RequireRole(domain.RoleAgent), cfg.Tickets.Accept)
	tickets.Post("/:id/reject", auth.RequireRole(domain.RoleAgent), cfg.Tickets.Reject)
	tickets.Post("/:id/status", auth.RequireStaff(), cfg.Tickets.UpdateStatus)
	tickets.Post("/:id/due-date", auth.RequireStaff(), cfg.Tickets.SetDueDate)
	tickets.Get("/:id/history", cfg.Tickets.History)
	tickets.Post("/:id/comments", cfg.Comments.Create)
	tickets.Get("/:id/comments", cfg.Comments.List)

	comments := api.Group("/comments")
	comments.Patch("/:id", cfg.Comments.Update)
	comments.Delete("/:id", cfg.Comments.Delete)

	users := api.Group("/users")
	users.Get("/me", cfg.Users.Me)
	users.Patch("/me", cfg.Users.UpdateMe)
	users.Get("", auth.RequireRole(domain.RoleAdmin, domain.RoleManager), cfg.Users.List)
	users.Get("/:id", auth.RequireStaff(), cfg.Users.Get)
	users.Patch("/:id/role", auth.RequireRole(domain.RoleAdmin, domain.RoleManager), cfg.Users.ChangeRole)
}
