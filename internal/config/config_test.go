package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "LOG_LEVEL", "TEMPLATES_DIR", "RENDER_TIMEOUT_SECONDS", "RENDER_ATTEMPTS",
		"MAX_CONCURRENT_RENDERS", "REMOVE_BLANK_PAGES", "EXPORT_RATE_PER_MINUTE", "EXPORT_RATE_BURST", "BLANK_PAGE_MIN_CONTENT_LENGTH", "BLANK_PAGE_TEXT_OPERATORS"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "templates", cfg.TemplatesDir)
	assert.Equal(t, 60*time.Second, cfg.RenderTimeout)
	assert.Equal(t, 3, cfg.RenderAttempts)
	assert.Equal(t, 2, cfg.MaxConcurrentRenders)
	assert.True(t, cfg.RemoveBlankPages)
	assert.Equal(t, 50, cfg.BlankPageMinContentLength)
	assert.Nil(t, cfg.BlankPageTextOperators)
	assert.Equal(t, 30.0, cfg.ExportRatePerMinute)
	assert.Equal(t, 5, cfg.ExportRateBurst)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("RENDER_TIMEOUT_SECONDS", "15")
	t.Setenv("REMOVE_BLANK_PAGES", "false")
	t.Setenv("BLANK_PAGE_MIN_CONTENT_LENGTH", "120")
	t.Setenv("BLANK_PAGE_TEXT_OPERATORS", "Tj, TJ Do")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 15*time.Second, cfg.RenderTimeout)
	assert.False(t, cfg.RemoveBlankPages)
	assert.Equal(t, 120, cfg.BlankPageMinContentLength)
	assert.Equal(t, []string{"Tj", "TJ", "Do"}, cfg.BlankPageTextOperators)
}

func TestLoad_IgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("RENDER_ATTEMPTS", "many")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.RenderAttempts)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Port:                 "3000",
			LogLevel:             "info",
			TemplatesDir:         "templates",
			RenderTimeout:        time.Minute,
			RenderAttempts:       3,
			MaxConcurrentRenders: 2,
			ExportRateBurst:      1,
		}
	}

	tests := []struct {
		name      string
		mutate    func(c *Config)
		shouldErr bool
	}{
		{name: "valid config", mutate: func(c *Config) {}},
		{name: "non numeric port", mutate: func(c *Config) { c.Port = "http" }, shouldErr: true},
		{name: "unknown log level", mutate: func(c *Config) { c.LogLevel = "loud" }, shouldErr: true},
		{name: "zero attempts", mutate: func(c *Config) { c.RenderAttempts = 0 }, shouldErr: true},
		{name: "too many renders", mutate: func(c *Config) { c.MaxConcurrentRenders = 64 }, shouldErr: true},
		{name: "sub-second timeout", mutate: func(c *Config) { c.RenderTimeout = time.Millisecond }, shouldErr: true},
		{name: "zero burst", mutate: func(c *Config) { c.ExportRateBurst = 0 }, shouldErr: true},
		{name: "negative rate", mutate: func(c *Config) { c.ExportRatePerMinute = -1 }, shouldErr: true},
		{name: "negative threshold", mutate: func(c *Config) { c.BlankPageMinContentLength = -1 }, shouldErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.shouldErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
