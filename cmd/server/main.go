package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bioponto/internal/adapters/device"
	"bioponto/internal/adapters/http/middleware"
	"bioponto/internal/adapters/http/routes"
	"bioponto/internal/adapters/notify"
	"bioponto/internal/adapters/persistence/models"
	"bioponto/internal/adapters/registration"
	"bioponto/internal/config"
	"bioponto/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	_ "bioponto/docs" // Swagger docs
)

// @title BioPonto API
// @version 1.0
// @description Biometric time clock: kiosk punches and back-office administration

// @contact.name API Support
// @contact.email suporte@bioponto.local

// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @securityDefinitions.apikey KioskKey
// @in header
// @name X-Kiosk-Key

const shutdownTimeout = 30 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer config.CloseDatabase()

	// Auto migrate (creates tables if not exist)
	if err := models.AutoMigrate(db); err != nil {
		log.Fatalf("❌ Failed to auto migrate: %v", err)
	}
	log.Println("✅ Database migration completed")

	if cfg.IsDev() {
		if err := config.NewSeeder(db).Run(); err != nil {
			log.Printf("⚠️ Warning: Failed to seed data: %v", err)
		}
	}

	// Outbound adapters
	deps, err := buildDependencies(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to set up adapters: %v", err)
	}

	// Create Fiber app; enrollment and punches wait on the reader
	app := fiber.New(fiber.Config{
		AppName:      "BioPonto API v1.0",
		ErrorHandler: middleware.CustomErrorHandler,
		ReadTimeout:  cfg.Device.CaptureTimeout + 30*time.Second,
		WriteTimeout: cfg.Device.CaptureTimeout + 30*time.Second,
	})

	// Setup middlewares
	middleware.Setup(app, cfg)

	// Setup routes (pass db and cfg for dependency injection)
	runtime := routes.Setup(app, db, cfg, deps)

	// Stale punch sweep and token cleanup
	if err := runtime.CronService.Start(); err != nil {
		log.Fatalf("❌ Failed to start cron: %v", err)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Start server; returns once the shutdown drain is complete
	log.Printf("🚀 Server starting on port %s [MODE: %s, TZ: %s, DEVICE: %s]", cfg.Port, cfg.AppMode, cfg.Timezone, cfg.Device.Driver)
	listen := func() error { return app.Listen(":" + cfg.Port) }
	if err := run(app, listen, quit, func() { drain(runtime) }); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

func buildDependencies(cfg *config.Config) (routes.Dependencies, error) {
	var capture services.CaptureDevice
	switch cfg.Device.Driver {
	case "simulator":
		log.Printf("🧪 Using simulated fingerprint reader (%s)", cfg.Device.SimulatorFile)
		capture = device.NewSimulator(cfg.Device.SimulatorFile)
	default:
		capture = device.NewBridge(cfg.Device.BridgeURL)
	}

	var registrar services.Registrar = registration.NewClient(cfg.Registration)
	if cfg.Registration.URL == "" {
		log.Println("⚠️ Warning: REGISTRATION_URL not set, punches stay local")
		registrar = registration.LogRegistrar{}
	}

	notifier, err := notify.New(cfg.Notify)
	if err != nil {
		return routes.Dependencies{}, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	loc := cfg.Location()
	return routes.Dependencies{
		Device:    capture,
		Registrar: registrar,
		Notifier:  notifier,
		Registry:  registry,
		Clock:     func() time.Time { return time.Now().In(loc) },
	}, nil
}

// run serves until a signal arrives on quit, then stops accepting requests and
// calls drainFn. Listen returns as soon as the listener closes, so run waits
// for the shutdown goroutine before returning.
func run(app *fiber.App, listen func() error, quit <-chan os.Signal, drainFn func()) error {
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-quit

		log.Println("🛑 Shutting down server...")
		if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			log.Printf("❌ Error during shutdown: %v", err)
		}
		drainFn()
		log.Println("✅ Server stopped gracefully")
	}()

	if err := listen(); err != nil {
		return err
	}
	<-stopped
	return nil
}

// drain waits for cron jobs and pending receipts
func drain(runtime *routes.Runtime) {
	runtime.CronService.Stop()

	done := make(chan struct{})
	go func() {
		runtime.PunchService.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(shutdownTimeout):
		log.Println("⚠️ Gave up waiting for pending notifications")
	}
}
