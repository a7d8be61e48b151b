// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Filename string `yaml:"filename"`
}

// BookingConfig is the booking policy handed to the validation engine.
// Tests exercise alternate policies by constructing their own values.
type BookingConfig struct {
	OpensAt          string `yaml:"opens_at"`
	ClosesAt         string `yaml:"closes_at"`
	MinDurationHours int    `yaml:"min_duration_hours"`
	MaxDurationHours int    `yaml:"max_duration_hours"`
	DailyQuota       int    `yaml:"daily_quota"`
}

type PaymentsConfig struct {
	GatewayURL string        `yaml:"gateway_url"`
	Currency   string        `yaml:"currency"`
	Timeout    time.Duration `yaml:"timeout"`
}

type EmailConfig struct {
	Enabled         bool   `yaml:"enabled"`
	Region          string `yaml:"region"`
	Sender          string `yaml:"sender"`
	AccessKeyID     string `yaml:"-"` // Loaded from environment
	SecretAccessKey string `yaml:"-"` // Loaded from environment
}

type Config struct {
	App struct {
		Name        string `yaml:"name"`
		Environment string `yaml:"environment"`
		Port        int    `yaml:"port"`
		Timezone    string `yaml:"timezone"`
	} `yaml:"app"`

	Database DatabaseConfig `yaml:"database"`
	Booking  BookingConfig  `yaml:"booking"`
	Payments PaymentsConfig `yaml:"payments"`
	Email    EmailConfig    `yaml:"email"`
}

// Load loads both .env and yaml configuration
func Load(configPath string) (*Config, error) {
	// Load .env file if it exists
	envPath := filepath.Join(filepath.Dir(configPath), ".env")
	if err := godotenv.Load(envPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	// Load sensitive values from environment
	cfg.Email.AccessKeyID = os.Getenv("AWS_ACCESS_KEY_ID")
	cfg.Email.SecretAccessKey = os.Getenv("AWS_SECRET_ACCESS_KEY")

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Booking.OpensAt == "" {
		c.Booking.OpensAt = "08:00"
	}
	if c.Booking.ClosesAt == "" {
		c.Booking.ClosesAt = "23:00"
	}
	if c.Booking.MinDurationHours == 0 {
		c.Booking.MinDurationHours = 1
	}
	if c.Booking.MaxDurationHours == 0 {
		c.Booking.MaxDurationHours = 4
	}
	if c.Booking.DailyQuota == 0 {
		c.Booking.DailyQuota = 3
	}
	if c.Payments.Currency == "" {
		c.Payments.Currency = "ARS"
	}
	if c.Payments.Timeout == 0 {
		c.Payments.Timeout = 10 * time.Second
	}
	if c.App.Timezone == "" {
		c.App.Timezone = "Local"
	}
}

func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app name is required")
	}
	if c.App.Port == 0 {
		return fmt.Errorf("app port is required")
	}
	if c.Database.Driver == "" {
		return fmt.Errorf("database driver is required")
	}
	if c.Database.Driver != "sqlite" {
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}
	if c.Database.Filename == "" {
		return fmt.Errorf("database filename is required for sqlite")
	}

	if _, err := time.Parse("15:04", c.Booking.OpensAt); err != nil {
		return fmt.Errorf("booking opens_at must be HH:MM: %w", err)
	}
	if _, err := time.Parse("15:04", c.Booking.ClosesAt); err != nil {
		return fmt.Errorf("booking closes_at must be HH:MM: %w", err)
	}
	if c.Booking.MinDurationHours <= 0 || c.Booking.MaxDurationHours < c.Booking.MinDurationHours {
		return fmt.Errorf("booking duration bounds are invalid")
	}
	if c.Booking.DailyQuota <= 0 {
		return fmt.Errorf("booking daily_quota must be positive")
	}
	if _, err := time.LoadLocation(c.App.Timezone); err != nil {
		return fmt.Errorf("app timezone is invalid: %w", err)
	}

	if c.Email.Enabled {
		if c.Email.Region == "" || c.Email.Sender == "" {
			return fmt.Errorf("email region and sender are required when email is enabled")
		}
	}

	return nil
}
