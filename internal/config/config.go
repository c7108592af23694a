package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the process configuration, read from the environment.
type Config struct {
	DatabaseURL    string `env:"DATABASE_URL"`
	ServerPort     string `env:"SERVER_PORT" envDefault:"8080"`
	AllowedOrigins string `env:"ALLOWED_ORIGINS"`

	JWTSecret string        `env:"JWT_SECRET"`
	JWTTTL    time.Duration `env:"JWT_TTL" envDefault:"168h"`

	OrderNumberStart   int64 `env:"ORDER_NUMBER_START" envDefault:"16000"`
	InvoiceNumberStart int64 `env:"INVOICE_NUMBER_START" envDefault:"16000"`

	Timezone string `env:"TIMEZONE" envDefault:"America/New_York"`

	SMTP SMTPConfig `envPrefix:"SMTP_"`

	InternalEmail        string `env:"INTERNAL_EMAIL" envDefault:"holly@oysterpondsshellfish.com"`
	ShipperCertification string `env:"SHIPPER_CERTIFICATION" envDefault:"NY27496SS"`
	PDFConcurrency       int64  `env:"PDF_CONCURRENCY" envDefault:"4"`
	PortalBaseURL        string `env:"PORTAL_BASE_URL" envDefault:"http://localhost:5173"`
	ReminderHour         uint   `env:"REMINDER_HOUR" envDefault:"8"`

	OpenAIAPIKey string `env:"OPENAI_API_KEY"`
	OpenAIModel  string `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"console"`

	location *time.Location
}

// SMTPConfig holds outbound mail settings. An empty User or Pass disables sending.
type SMTPConfig struct {
	Host   string `env:"HOST" envDefault:"smtp.gmail.com"`
	Port   int    `env:"PORT" envDefault:"587"`
	Secure bool   `env:"SECURE" envDefault:"false"`
	User   string `env:"USER"`
	Pass   string `env:"PASS"`
}

// Configured reports whether credentials are present.
func (c SMTPConfig) Configured() bool {
	return c.User != "" && c.Pass != ""
}

// Load reads an optional .env file and parses the environment into a Config.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return Parse()
}

// Parse parses the current environment without touching .env files.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", cfg.Timezone, err)
	}
	cfg.location = loc

	if cfg.ReminderHour > 23 {
		return nil, fmt.Errorf("REMINDER_HOUR must be between 0 and 23, got %d", cfg.ReminderHour)
	}
	if cfg.PDFConcurrency < 1 {
		return nil, fmt.Errorf("PDF_CONCURRENCY must be at least 1, got %d", cfg.PDFConcurrency)
	}
	return cfg, nil
}

// Location is the business timezone used for day, week and month boundaries.
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.Local
	}
	return c.location
}

// RequireDatabase returns an error when DATABASE_URL is empty.
func (c *Config) RequireDatabase() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable not set")
	}
	return nil
}

// RequireServer validates settings needed by the HTTP server.
func (c *Config) RequireServer() error {
	if err := c.RequireDatabase(); err != nil {
		return err
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET environment variable not set")
	}
	return nil
}
