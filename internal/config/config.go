// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	// server
	Port                string  `validate:"required,numeric"`
	ExportRatePerMinute float64 `validate:"min=0"`
	ExportRateBurst     int     `validate:"min=1"`

	// logging
	LogLevel string `validate:"oneof=trace debug info warn error fatal panic disabled"`
	LogFile  string

	// rendering
	ChromePath           string
	TemplatesDir         string        `validate:"required"`
	RenderTimeout        time.Duration `validate:"min=1s"`
	RenderAttempts       int           `validate:"min=1,max=5"`
	MaxConcurrentRenders int           `validate:"min=1,max=16"`
	ArtifactsDir         string

	// blank page removal
	RemoveBlankPages          bool
	BlankPageMinContentLength int `validate:"min=0"`
	BlankPageTextOperators    []string

	// storage and events
	JobsDatabaseURL string
	NatsURL         string
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present; real environment variables win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:                      getEnv("PORT", "3000"),
		ExportRatePerMinute:       getEnvFloat("EXPORT_RATE_PER_MINUTE", 30),
		ExportRateBurst:           getEnvInt("EXPORT_RATE_BURST", 5),
		LogLevel:                  strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFile:                   getEnv("LOG_FILE", ""),
		ChromePath:                getEnv("CHROME_PATH", ""),
		TemplatesDir:              getEnv("TEMPLATES_DIR", "templates"),
		RenderTimeout:             time.Duration(getEnvInt("RENDER_TIMEOUT_SECONDS", 60)) * time.Second,
		RenderAttempts:            getEnvInt("RENDER_ATTEMPTS", 3),
		MaxConcurrentRenders:      getEnvInt("MAX_CONCURRENT_RENDERS", 2),
		ArtifactsDir:              getEnv("ARTIFACTS_DIR", ""),
		RemoveBlankPages:          getEnvBool("REMOVE_BLANK_PAGES", true),
		BlankPageMinContentLength: getEnvInt("BLANK_PAGE_MIN_CONTENT_LENGTH", 50),
		BlankPageTextOperators:    getEnvList("BLANK_PAGE_TEXT_OPERATORS"),
		JobsDatabaseURL:           getEnv("JOBS_DATABASE_URL", ""),
		NatsURL:                   getEnv("NATS_URL", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// getEnv returns the value of an environment variable or a default value.
func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// getEnvInt returns the integer value of an environment variable or a default.
func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

// getEnvList splits a comma or space separated variable. Unset yields nil.
func getEnvList(key string) []string {
	val := os.Getenv(key)
	if val == "" {
		return nil
	}
	return strings.FieldsFunc(val, func(r rune) bool { return r == ',' || r == ' ' })
}
