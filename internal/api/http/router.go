package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/condoops/incident-service/internal/api/http/handlers"
	"github.com/condoops/incident-service/internal/auth"
	"github.com/condoops/incident-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Incidents      *handlers.IncidentsHandler
	Visits         *handlers.VisitsHandler
	Buildings      *handlers.BuildingsHandler
	Notifications  *handlers.NotificationsHandler
	Inventory      *handlers.InventoryHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/login", cfg.Users.Login)
	authGroup.Post("/logout", cfg.Users.Logout)
	authGroup.Get("/me", cfg.AuthMiddleware.Handle, cfg.Users.Me)

	incidents := app.Group("/incidents", cfg.AuthMiddleware.Handle)
	incidents.Post("", cfg.Incidents.Create)
	incidents.Get("", cfg.Incidents.List)
	incidents.Get("/:id", cfg.Incidents.Get)
	incidents.Patch("/:id", cfg.Incidents.Update)
	incidents.Delete("/:id", cfg.Incidents.Delete)
	incidents.Post("/:id/assign", cfg.Incidents.Assign)
	incidents.Post("/:id/resolve", cfg.Incidents.Resolve)
	incidents.Post("/:id/escalate", cfg.Incidents.Escalate)
	incidents.Post("/:id/reject", cfg.Incidents.Reject)
	incidents.Get("/:id/comments", cfg.Incidents.ListComments)
	incidents.Post("/:id/comments", cfg.Incidents.AddComment)

	visits := app.Group("/visits", cfg.AuthMiddleware.Handle)
	visits.Get("", cfg.Visits.List)
	visits.Get("/:id", cfg.Visits.Get)

	adminVisits := visits.Group("", auth.RequireRole(domain.RolePlatformAdmin, domain.RoleBuildingAdmin))
	adminVisits.Post("", cfg.Visits.Create)
	adminVisits.Patch("/:id", cfg.Visits.Update)
	adminVisits.Delete("/:id", cfg.Visits.Delete)

	buildings := app.Group("/buildings", cfg.AuthMiddleware.Handle)
	buildings.Get("", cfg.Buildings.List)
	buildings.Get("/:id/stats", cfg.Buildings.Stats)
	buildings.Post("/:id/products", cfg.Inventory.CreateProduct)
	buildings.Get("/:id/products", cfg.Inventory.ListProducts)

	notifications := app.Group("/notifications", cfg.AuthMiddleware.Handle)
	notifications.Get("", cfg.Notifications.List)
	notifications.Post("/:id/read", cfg.Notifications.MarkRead)

	products := app.Group("/products", cfg.AuthMiddleware.Handle)
	products.Post("/:id/movements", cfg.Inventory.RecordMovement)
	products.Get("/:id/movements", cfg.Inventory.ListMovements)
}
