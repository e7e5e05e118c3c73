package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string `validate:"required,oneof=development production"`
	Addr      string `validate:"required"`
	PublicURL string `validate:"omitempty,url"`
	StaticDir string

	Database   DatabaseConfig
	Enrollment EnrollmentConfig
	Log        LogConfig
}

type DatabaseConfig struct {
	Path        string        `validate:"required"`
	BusyTimeout time.Duration `validate:"min=1ms"`
}

// EnrollmentConfig selects which schema variant the service captures.
type EnrollmentConfig struct {
	Variant string `validate:"oneof=full reduced"`
}

type LogConfig struct {
	Level  string `validate:"oneof=debug info warn error"`
	Format string `validate:"oneof=json console"`
}

var validate = validator.New()

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{
		Env:       strings.ToLower(v.GetString("ENV")),
		Addr:      v.GetString("ADDR"),
		PublicURL: strings.TrimRight(v.GetString("PUBLIC_URL"), "/"),
		StaticDir: v.GetString("STATIC_DIR"),
		Database: DatabaseConfig{
			Path:        v.GetString("DB_PATH"),
			BusyTimeout: parseDuration(v.GetString("DB_BUSY_TIMEOUT"), 5*time.Second),
		},
		Enrollment: EnrollmentConfig{
			Variant: strings.ToLower(v.GetString("ENROLLMENT_VARIANT")),
		},
		Log: LogConfig{
			Level:  strings.ToLower(v.GetString("LOG_LEVEL")),
			Format: strings.ToLower(v.GetString("LOG_FORMAT")),
		},
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("ADDR", ":8080")
	v.SetDefault("PUBLIC_URL", "")
	v.SetDefault("STATIC_DIR", "")

	v.SetDefault("DB_PATH", "enrollments.db")
	v.SetDefault("DB_BUSY_TIMEOUT", "5s")

	v.SetDefault("ENROLLMENT_VARIANT", "full")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return d
}
