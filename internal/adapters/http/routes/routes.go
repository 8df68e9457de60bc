package routes

import (
	"aidtrust/internal/adapters/http/handlers"
	"aidtrust/internal/adapters/http/middleware"
	"aidtrust/internal/adapters/persistence/repositories"
	"aidtrust/internal/config"
	"aidtrust/internal/core/domain"
	"aidtrust/internal/core/services"
	"aidtrust/internal/pkg/metrics"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	staff      = []domain.Role{domain.RoleAdmin, domain.RoleDepartmentHOD, domain.RoleInquiryOfficer, domain.RoleTrustee}
	everyone   = append([]domain.Role{domain.RoleUser}, staff...)
	userAdmins = []domain.Role{domain.RoleAdmin, domain.RoleDepartmentHOD}
	fundReader = []domain.Role{domain.RoleAdmin, domain.RoleTrustee}
)

// Setup configures all routes for the application
func Setup(app *fiber.App, store repositories.Store, cfg *config.Config) {
	repos := store.Repos()

	// Initialize services
	audit := services.NewAuditLog()
	authService := services.NewAuthService(repos.Users, cfg.JWT)
	userService := services.NewUserService(repos.Users, authService)
	appService := services.NewApplicationService(store, audit)
	fundService := services.NewFundService(store, audit)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(store, cfg.AppMode)
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	appHandler := handlers.NewApplicationHandler(appService)
	fundHandler := handlers.NewFundHandler(fundService)

	gate := middleware.NewGate(repos.Users, cfg.JWT.Secret)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	api := app.Group("/api", middleware.NoStore())

	setupUserRoutes(api, gate, authHandler, userHandler, appHandler)
	setupAdminRoutes(api.Group("/admin"), gate, userHandler, appHandler, fundHandler)
}

// setupUserRoutes configures the applicant facing routes
func setupUserRoutes(
	api fiber.Router,
	gate *middleware.Gate,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	appHandler *handlers.ApplicationHandler,
) {
	account := api.Group("/user/user")
	account.Post("/login", middleware.AuthRateLimiter(), authHandler.Login)
	account.Get("/me", gate.Authorize(everyone...), userHandler.GetMe)
	account.Put("/profile", gate.Authorize(everyone...), userHandler.UpdateProfile)

	application := api.Group("/application")
	application.Get("/token/:token", appHandler.GetByToken)
	application.Post("/", gate.Authorize(domain.RoleUser), appHandler.Submit)
	application.Get("/mine", gate.Authorize(domain.RoleUser), appHandler.ListMine)
	application.Post("/:id/documents", gate.Authorize(domain.RoleUser), appHandler.AttachDocument)
}

// setupAdminRoutes configures the staff routes
func setupAdminRoutes(
	admin fiber.Router,
	gate *middleware.Gate,
	userHandler *handlers.UserHandler,
	appHandler *handlers.ApplicationHandler,
	fundHandler *handlers.FundHandler,
) {
	// Applications: static paths before /:id
	application := admin.Group("/application")
	application.Get("/filter", gate.Authorize(domain.RoleAdmin, domain.RoleTrustee), appHandler.Filter)
	application.Get("/trustee/applications", gate.Authorize(domain.RoleTrustee), appHandler.ListForTrustee)
	application.Get("/inquiry/applications", gate.Authorize(domain.RoleInquiryOfficer), appHandler.ListAssigned)
	application.Get("/:id", gate.Authorize(everyone...), appHandler.GetDetail)
	application.Get("/:id/history", gate.Authorize(everyone...), appHandler.History)
	application.Get("/:id/documents", gate.Authorize(staff...), appHandler.ListDocuments)
	application.Patch("/:id/assign", gate.Authorize(domain.RolesFor(domain.EventAssignOfficer)...), appHandler.AssignOfficer)
	application.Patch("/:id/inquiry", gate.Authorize(domain.RolesFor(domain.EventInquiryReport)...), appHandler.SubmitInquiry)
	application.Patch("/:id/return", gate.Authorize(domain.RolesFor(domain.EventReturn)...), appHandler.Return)
	application.Patch("/:id/forward", gate.Authorize(domain.RolesFor(domain.EventForward)...), appHandler.Forward)
	application.Patch("/:id/review", gate.Authorize(domain.RolesFor(domain.EventTrusteeReview)...), appHandler.TrusteeReview)
	application.Patch("/:id/status", gate.Authorize(domain.RolesFor(domain.EventDecide)...), appHandler.Decide)

	// Funds
	funds := admin.Group("/funds")
	funds.Post("/", gate.Authorize(domain.RolesFor(domain.EventDisburse)...), fundHandler.Disburse)
	funds.Get("/", gate.Authorize(fundReader...), fundHandler.List)
	funds.Get("/total", gate.Authorize(domain.RoleAdmin), fundHandler.Totals)
	funds.Get("/:id", gate.Authorize(fundReader...), fundHandler.Get)
	funds.Patch("/:id", gate.Authorize(domain.RoleAdmin), fundHandler.UpdateDocuments)

	// Users
	users := admin.Group("/user")
	users.Get("/get-all-users", gate.Authorize(userAdmins...), userHandler.ListUsers)
	users.Get("/role/:role", gate.Authorize(userAdmins...), userHandler.ListByRole)
	users.Post("/create-user", gate.Authorize(userAdmins...), userHandler.CreateUser)
}
