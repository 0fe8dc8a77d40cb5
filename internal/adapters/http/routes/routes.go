package routes

import (
	"bioponto/internal/adapters/http/handlers"
	"bioponto/internal/adapters/http/middleware"
	"bioponto/internal/adapters/persistence/repositories"
	"bioponto/internal/config"
	"bioponto/internal/core/services"
	"bioponto/internal/pkg/metrics"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

// Dependencies are the outbound adapters chosen by configuration
type Dependencies struct {
	Device    services.CaptureDevice
	Registrar services.Registrar
	Notifier  services.Notifier
	Registry  *prometheus.Registry
	Clock     services.Clock
}

// Runtime holds the long running parts that main must stop on shutdown
type Runtime struct {
	PunchService *services.PunchService
	CronService  *services.CronService
}

// Setup configures all routes for the application
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config, deps Dependencies) *Runtime {
	loc := cfg.Location()
	m := metrics.New(deps.Registry)

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)
	unitRepo := repositories.NewUnitRepository(db)
	employeeRepo := repositories.NewEmployeeRepository(db)
	punchRepo := repositories.NewPunchRepository(db)
	vacationRepo := repositories.NewVacationRepository(db)

	// Biometric pipeline
	guard := services.NewDeviceGuard(deps.Device, cfg.Device.CaptureTimeout, m)
	biometricService := services.NewBiometricService(guard, employeeRepo, services.NewMatchEngine(), m)
	resolver := services.NewPunchStateResolver(vacationRepo, punchRepo, unitRepo)
	punchService := services.NewPunchService(
		biometricService,
		employeeRepo,
		resolver,
		punchRepo,
		deps.Registrar,
		deps.Notifier,
		m,
		deps.Clock,
	)

	// Back office services
	authService := services.NewAuthService(userRepo, refreshTokenRepo, cfg, deps.Clock)
	userService := services.NewUserService(userRepo, refreshTokenRepo)
	unitService := services.NewUnitService(unitRepo)
	employeeService := services.NewEmployeeService(employeeRepo, unitRepo, biometricService, loc)
	vacationService := services.NewVacationService(vacationRepo, employeeRepo, loc)
	recordService := services.NewPunchRecordService(punchRepo)
	dashboardService := services.NewDashboardService(employeeRepo, unitRepo, punchRepo, vacationRepo, deps.Clock)
	cronService := services.NewCronService(
		cfg.Cron.StaleSweepSpec,
		cfg.Cron.AlertRecipient,
		loc,
		punchRepo,
		refreshTokenRepo,
		deps.Notifier,
		deps.Clock,
	)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(config.HealthCheck, biometricService, cfg.AppMode)
	authHandler := handlers.NewAuthHandler(authService, cfg)
	userHandler := handlers.NewUserHandler(userService)
	kioskHandler := handlers.NewKioskHandler(punchService)
	employeeHandler := handlers.NewEmployeeHandler(employeeService)
	unitHandler := handlers.NewUnitHandler(unitService)
	vacationHandler := handlers.NewVacationHandler(vacationService)
	recordHandler := handlers.NewPunchRecordHandler(recordService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Prometheus scrape endpoint
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})))

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API v1 group
	apiV1 := app.Group("/api/v1")
	apiV1.Get("/", healthHandler.APIInfo)

	// Kiosk routes (terminal key)
	kioskRoutes := apiV1.Group("/kiosk")
	kioskRoutes.Use(middleware.KioskAuth(cfg), middleware.KioskRateLimiter(cfg))
	kioskRoutes.Post("/punch", kioskHandler.Punch)
	kioskRoutes.Post("/identify", kioskHandler.Identify)

	// Auth routes (public)
	setupAuthRoutes(apiV1.Group("/auth"), authHandler, cfg)

	// Everything below needs an operator session
	auth := middleware.AuthMiddleware(cfg)

	apiV1.Put("/profile/password", auth, userHandler.ChangePassword)

	userRoutes := apiV1.Group("/users", auth, middleware.AdminOnly())
	setupUserRoutes(userRoutes, userHandler)

	employeeRoutes := apiV1.Group("/employees", auth, middleware.OperatorOrAdmin())
	setupEmployeeRoutes(employeeRoutes, employeeHandler, vacationHandler, recordHandler)

	unitRoutes := apiV1.Group("/units", auth, middleware.OperatorOrAdmin())
	setupUnitRoutes(unitRoutes, unitHandler, recordHandler)

	vacationRoutes := apiV1.Group("/vacations", auth, middleware.OperatorOrAdmin())
	vacationRoutes.Post("/", vacationHandler.CreateVacation)
	vacationRoutes.Delete("/:id", vacationHandler.DeleteVacation)

	apiV1.Get("/dashboard", auth, middleware.OperatorOrAdmin(), dashboardHandler.GetAttendance)

	return &Runtime{
		PunchService: punchService,
		CronService:  cronService,
	}
}

// setupAuthRoutes configures authentication routes
func setupAuthRoutes(router fiber.Router, handler *handlers.AuthHandler, cfg *config.Config) {
	// Public routes
	router.Post("/login", middleware.AuthRateLimiter(), handler.Login)
	router.Post("/refresh", handler.RefreshToken)
	router.Post("/logout", handler.Logout)

	// Protected routes
	router.Get("/me", middleware.AuthMiddleware(cfg), handler.Me)
	router.Post("/logout-all", middleware.AuthMiddleware(cfg), handler.LogoutAll)
}

// setupUserRoutes configures operator management routes (Admin only)
func setupUserRoutes(router fiber.Router, handler *handlers.UserHandler) {
	router.Get("/", handler.ListUsers)
	router.Post("/", handler.CreateUser)
	router.Get("/:id", handler.GetUser)
	router.Put("/:id", handler.UpdateUser)
	router.Delete("/:id", handler.DeleteUser)
}

// setupEmployeeRoutes configures employee, enrollment and per-employee history routes
func setupEmployeeRoutes(
	router fiber.Router,
	handler *handlers.EmployeeHandler,
	vacationHandler *handlers.VacationHandler,
	recordHandler *handlers.PunchRecordHandler,
) {
	router.Get("/", handler.ListEmployees)
	router.Get("/:id", handler.GetEmployee)
	router.Put("/:id", handler.UpdateEmployee)

	// Enrollment holds the reader for up to the capture timeout
	router.Post("/", middleware.StrictRateLimiter(), handler.CreateEmployee)
	router.Put("/:id/biometric", middleware.StrictRateLimiter(), handler.UpdateBiometric)

	router.Get("/:id/vacations", vacationHandler.ListByEmployee)
	router.Get("/:id/punches", recordHandler.ListByEmployee)
}

// setupUnitRoutes configures unit routes; creation is Admin only
func setupUnitRoutes(router fiber.Router, handler *handlers.UnitHandler, recordHandler *handlers.PunchRecordHandler) {
	router.Get("/", handler.ListUnits)
	router.Get("/:id", handler.GetUnit)
	router.Post("/", middleware.AdminOnly(), handler.CreateUnit)

	router.Get("/:id/punches", recordHandler.UnitSheet)
}
