package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // kiosks run in slim containers without zoneinfo

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	AppMode      string
	Port         string
	Timezone     string
	Database     DatabaseConfig
	JWT          JWTConfig
	Cookie       CookieConfig
	Device       DeviceConfig
	Registration RegistrationConfig
	Notify       NotifyConfig
	Kiosk        KioskConfig
	Cron         CronConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// JWTConfig holds operator token configuration
type JWTConfig struct {
	Secret           string
	RefreshSecret    string
	AccessTokenMins  int
	RefreshTokenDays int
}

// CookieConfig holds cookie configuration
type CookieConfig struct {
	Secure   bool
	SameSite string
	Domain   string
}

// DeviceConfig selects the fingerprint reader driver
type DeviceConfig struct {
	Driver         string // "bridge" or "simulator"
	BridgeURL      string
	CaptureTimeout time.Duration
	SimulatorFile  string // template served by the simulator
}

// RegistrationConfig points at the payroll punch endpoint
type RegistrationConfig struct {
	URL         string
	Timeout     time.Duration
	MaxAttempts int
}

// NotifyConfig selects how receipts and alerts are delivered
type NotifyConfig struct {
	Driver   string // "api", "smtp" or "" (log only)
	APIURL   string
	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	From     string
}

// KioskConfig protects the terminal endpoints
type KioskConfig struct {
	APIKeyHash string // bcrypt hash of the shared kiosk key
	RateLimit  int    // requests per minute per terminal
}

// CronConfig schedules background jobs
type CronConfig struct {
	StaleSweepSpec string
	AlertRecipient string
}

// Global config instance
var AppConfig *Config

// Load reads configuration from .env file and environment variables
func Load() (*Config, error) {
	// Load .env file (ignore error if file doesn't exist in production)
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	// Get APP_MODE (default to "dev") - trim spaces for Windows compatibility
	appMode := strings.TrimSpace(getEnv("APP_MODE", "dev"))
	if appMode != "dev" && appMode != "prod" {
		return nil, fmt.Errorf("invalid APP_MODE: '%s' (must be 'dev' or 'prod')", appMode)
	}

	// Build config based on APP_MODE
	config := &Config{
		AppMode:      appMode,
		Port:         getEnv("PORT", "3000"),
		Timezone:     getEnv("TZ_NAME", "America/Sao_Paulo"),
		Database:     loadDatabaseConfig(appMode),
		JWT:          loadJWTConfig(appMode),
		Cookie:       loadCookieConfig(appMode),
		Device:       loadDeviceConfig(),
		Registration: loadRegistrationConfig(),
		Notify:       loadNotifyConfig(),
		Kiosk:        loadKioskConfig(),
		Cron:         loadCronConfig(),
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	// Set global config
	AppConfig = config

	log.Printf("✅ Configuration loaded successfully [MODE: %s]", appMode)
	return config, nil
}

// loadDatabaseConfig loads database config based on mode
func loadDatabaseConfig(mode string) DatabaseConfig {
	prefix := modePrefix(mode)

	return DatabaseConfig{
		Host:     getEnv(prefix+"DB_HOST", "localhost"),
		Port:     getEnv(prefix+"DB_PORT", "3306"),
		User:     getEnv(prefix+"DB_USER", "root"),
		Password: getEnv(prefix+"DB_PASS", ""),
		DBName:   getEnv(prefix+"DB_NAME", "bioponto"),
	}
}

// loadJWTConfig loads JWT config based on mode
func loadJWTConfig(mode string) JWTConfig {
	prefix := modePrefix(mode)

	accessMins, _ := strconv.Atoi(getEnv("ACCESS_TOKEN_MINUTES", "15"))
	refreshDays, _ := strconv.Atoi(getEnv("REFRESH_TOKEN_DAYS", "7"))

	return JWTConfig{
		Secret:           getEnv(prefix+"JWT_SECRET", "default_secret"),
		RefreshSecret:    getEnv(prefix+"JWT_REFRESH_SECRET", "default_refresh_secret"),
		AccessTokenMins:  accessMins,
		RefreshTokenDays: refreshDays,
	}
}

// loadCookieConfig loads cookie config based on mode
func loadCookieConfig(mode string) CookieConfig {
	prefix := modePrefix(mode)

	secure, _ := strconv.ParseBool(getEnv(prefix+"COOKIE_SECURE", "false"))

	return CookieConfig{
		Secure:   secure,
		SameSite: getEnv("COOKIE_SAMESITE", "lax"),
		Domain:   getEnv("COOKIE_DOMAIN", ""),
	}
}

func loadDeviceConfig() DeviceConfig {
	return DeviceConfig{
		Driver:         strings.ToLower(getEnv("DEVICE_DRIVER", "bridge")),
		BridgeURL:      getEnv("DEVICE_BRIDGE_URL", "http://127.0.0.1:8089"),
		CaptureTimeout: getDuration("DEVICE_CAPTURE_TIMEOUT", 15*time.Second),
		SimulatorFile:  getEnv("DEVICE_SIMULATOR_FILE", ""),
	}
}

func loadRegistrationConfig() RegistrationConfig {
	attempts, _ := strconv.Atoi(getEnv("REGISTRATION_MAX_ATTEMPTS", "3"))
	return RegistrationConfig{
		URL:         getEnv("REGISTRATION_URL", ""),
		Timeout:     getDuration("REGISTRATION_TIMEOUT", 10*time.Second),
		MaxAttempts: attempts,
	}
}

func loadNotifyConfig() NotifyConfig {
	port, _ := strconv.Atoi(getEnv("SMTP_PORT", "587"))
	return NotifyConfig{
		Driver:   strings.ToLower(getEnv("NOTIFY_DRIVER", "")),
		APIURL:   getEnv("NOTIFY_API_URL", ""),
		SMTPHost: getEnv("SMTP_HOST", ""),
		SMTPPort: port,
		SMTPUser: getEnv("SMTP_USER", ""),
		SMTPPass: getEnv("SMTP_PASS", ""),
		From:     getEnv("NOTIFY_FROM", "no-reply@bioponto.local"),
	}
}

func loadKioskConfig() KioskConfig {
	limit, _ := strconv.Atoi(getEnv("KIOSK_RATE_LIMIT", "30"))
	return KioskConfig{
		APIKeyHash: getEnv("KIOSK_API_KEY_HASH", ""),
		RateLimit:  limit,
	}
}

func loadCronConfig() CronConfig {
	return CronConfig{
		StaleSweepSpec: getEnv("CRON_STALE_SWEEP", "0 3 * * *"),
		AlertRecipient: getEnv("CRON_ALERT_RECIPIENT", ""),
	}
}

func (c *Config) validate() error {
	switch c.Device.Driver {
	case "bridge", "simulator":
	default:
		return fmt.Errorf("invalid DEVICE_DRIVER: '%s' (must be 'bridge' or 'simulator')", c.Device.Driver)
	}
	switch c.Notify.Driver {
	case "", "api", "smtp":
	default:
		return fmt.Errorf("invalid NOTIFY_DRIVER: '%s' (must be 'api', 'smtp' or empty)", c.Notify.Driver)
	}
	if c.Notify.Driver == "api" && c.Notify.APIURL == "" {
		return fmt.Errorf("NOTIFY_API_URL is required when NOTIFY_DRIVER=api")
	}
	if c.Notify.Driver == "smtp" && c.Notify.SMTPHost == "" {
		return fmt.Errorf("SMTP_HOST is required when NOTIFY_DRIVER=smtp")
	}
	if c.Registration.MaxAttempts < 1 {
		c.Registration.MaxAttempts = 1
	}
	if c.IsProd() && c.Kiosk.APIKeyHash == "" {
		return fmt.Errorf("KIOSK_API_KEY_HASH is required in prod mode")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid TZ_NAME '%s': %w", c.Timezone, err)
	}
	return nil
}

// modePrefix returns the env prefix for the mode
func modePrefix(mode string) string {
	if mode == "prod" {
		return "PROD_"
	}
	return "DEV_"
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDuration parses a Go duration ("15s", "2m") with default value
func getDuration(key string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return d
}

// IsDev returns true if running in development mode
func (c *Config) IsDev() bool {
	return c.AppMode == "dev"
}

// IsProd returns true if running in production mode
func (c *Config) IsProd() bool {
	return c.AppMode == "prod"
}

// Location returns the wall clock location shared by punches and storage
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// GetAllowedOrigins returns allowed origins for CORS
func (c *Config) GetAllowedOrigins() string {
	origins := getEnv("ALLOWED_ORIGINS", "")
	if origins == "" {
		if c.IsDev() {
			return "*"
		}
		return "http://localhost:5173"
	}
	return origins
}
