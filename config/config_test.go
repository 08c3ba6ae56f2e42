package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           "3001",
			AppEnv:         "production",
			AllowedOrigins: []string{"https://itmade.fr"},
		},
		Contact: ContactConfig{
			SendTimeout: 15 * time.Second,
		},
		RateLimit: RateLimitConfig{
			Max:    10,
			Window: 15 * time.Minute,
		},
		Email: EmailConfig{
			Transport: TransportEmailJS,
		},
	}
}

// chdirTemp moves the test into an empty directory so no .env file is picked up
func chdirTemp(t *testing.T) {
	t.Helper()
	originalDir, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(originalDir) })
}

func TestConfig_IsDevelopment(t *testing.T) {
	tests := []struct {
		name     string
		config   *Config
		expected bool
	}{
		{
			name:     "development environment",
			config:   &Config{Server: ServerConfig{AppEnv: "development"}},
			expected: true,
		},
		{
			name:     "debug gin mode",
			config:   &Config{Server: ServerConfig{GinMode: "debug"}},
			expected: true,
		},
		{
			name:     "production environment",
			config:   &Config{Server: ServerConfig{AppEnv: "production"}},
			expected: false,
		},
		{
			name:     "release mode",
			config:   &Config{Server: ServerConfig{GinMode: "release", AppEnv: "production"}},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.config.IsDevelopment())
		})
	}
}

func TestConfig_IsProduction(t *testing.T) {
	tests := []struct {
		name     string
		appEnv   string
		expected bool
	}{
		{name: "production environment", appEnv: "production", expected: true},
		{name: "development environment", appEnv: "development", expected: false},
		{name: "staging environment", appEnv: "staging", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Server: ServerConfig{AppEnv: tt.appEnv}}
			assert.Equal(t, tt.expected, cfg.IsProduction())
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*Config)
		errorMsg string
	}{
		{
			name:   "valid config",
			mutate: func(*Config) {},
		},
		{
			name:     "missing port",
			mutate:   func(c *Config) { c.Server.Port = "" },
			errorMsg: "PORT is required",
		},
		{
			name:     "missing CORS origins",
			mutate:   func(c *Config) { c.Server.AllowedOrigins = nil },
			errorMsg: "ALLOWED_CORS_ORIGINS is required",
		},
		{
			name:     "unknown transport",
			mutate:   func(c *Config) { c.Email.Transport = "carrier-pigeon" },
			errorMsg: "EMAIL_TRANSPORT must be one of",
		},
		{
			name:     "zero quota",
			mutate:   func(c *Config) { c.RateLimit.Max = 0 },
			errorMsg: "CONTACT_RATE_LIMIT_MAX must be positive",
		},
		{
			name:     "zero window",
			mutate:   func(c *Config) { c.RateLimit.Window = 0 },
			errorMsg: "CONTACT_RATE_LIMIT_WINDOW",
		},
		{
			name:     "zero send timeout",
			mutate:   func(c *Config) { c.Contact.SendTimeout = 0 },
			errorMsg: "CONTACT_SEND_TIMEOUT",
		},
		{
			name: "profiling without endpoint",
			mutate: func(c *Config) {
				c.Profiling.Enabled = true
			},
			errorMsg: "O11Y_PROFILING_ENDPOINT is required",
		},
		{
			name: "missing transport credentials are not a startup error",
			mutate: func(c *Config) {
				c.Email.EmailJS = EmailJSConfig{}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errorMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestEmailConfig_Configured(t *testing.T) {
	cfg := EmailConfig{
		EmailJS: EmailJSConfig{ServiceID: "svc", TemplateID: "tpl"},
	}
	assert.False(t, cfg.EmailJSConfigured())

	cfg.EmailJS.PublicKey = "pub"
	assert.True(t, cfg.EmailJSConfigured())

	cfg.Resend = ResendConfig{APIKey: "re_123", SenderEmail: "site@itmade.fr"}
	assert.False(t, cfg.ResendConfigured(), "recipient is required")
	cfg.Recipient = "contact@itmade.fr"
	assert.True(t, cfg.ResendConfigured())

	cfg.Mailgun = MailgunConfig{APIKey: "key", Domain: "mg.itmade.fr"}
	assert.False(t, cfg.MailgunConfigured())
	cfg.Mailgun.From = "site@mg.itmade.fr"
	assert.True(t, cfg.MailgunConfigured())
}

func TestEmailConfig_CredentialStatus(t *testing.T) {
	cfg := EmailConfig{
		Transport: TransportEmailJS,
		EmailJS:   EmailJSConfig{ServiceID: "svc", PublicKey: "pub"},
	}

	assert.Equal(t, map[string]bool{
		"service_id":  true,
		"template_id": false,
		"public_key":  true,
		"private_key": false,
	}, cfg.CredentialStatus())

	cfg.Transport = TransportMailgun
	cfg.Mailgun.Domain = "mg.itmade.fr"
	status := cfg.CredentialStatus()
	assert.True(t, status["domain"])
	assert.False(t, status["api_key"])
}

func TestLoad_WithDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()

	require.NoError(t, err)
	require.NotNil(t, cfg)

	// Check defaults
	assert.Equal(t, "3001", cfg.Server.Port)
	assert.Equal(t, "release", cfg.Server.GinMode)
	assert.Equal(t, "production", cfg.Server.AppEnv)
	assert.Equal(t, []string{"https://itmade.fr", "https://www.itmade.fr"}, cfg.Server.AllowedOrigins)
	assert.Empty(t, cfg.Server.TrustedProxies)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 10, cfg.RateLimit.Max)
	assert.Equal(t, 15*time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, 15*time.Second, cfg.Contact.SendTimeout)
	assert.Equal(t, int64(100*1024), cfg.Contact.MaxBodyBytes)
	assert.True(t, cfg.Contact.BreakerEnabled)
	assert.Equal(t, TransportEmailJS, cfg.Email.Transport)
	assert.Equal(t, "https://api.emailjs.com/api/v1.0/email/send", cfg.Email.EmailJS.APIURL)
}

func TestLoad_WithEnvironmentVariables(t *testing.T) {
	chdirTemp(t)

	t.Setenv("PORT", "9000")
	t.Setenv("APP_ENV", "development")
	t.Setenv("ALLOWED_CORS_ORIGINS", "https://staging.itmade.fr, ,https://itmade.fr")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.1,10.0.0.2")
	t.Setenv("CONTACT_RATE_LIMIT_MAX", "3")
	t.Setenv("CONTACT_RATE_LIMIT_WINDOW", "1m")
	t.Setenv("EMAIL_TRANSPORT", " Resend ")
	t.Setenv("RESEND_API_KEY", "re_test")
	t.Setenv("RESEND_FROM_EMAIL", "site@itmade.fr")
	t.Setenv("CONTACT_RECIPIENT", "contact@itmade.fr")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "development", cfg.Server.AppEnv)
	assert.Equal(t, []string{"https://staging.itmade.fr", "https://itmade.fr"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, cfg.Server.TrustedProxies)
	assert.Equal(t, 3, cfg.RateLimit.Max)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, "redis://localhost:6379/0", cfg.RateLimit.RedisURL)
	assert.Equal(t, TransportResend, cfg.Email.Transport)
	assert.True(t, cfg.Email.ResendConfigured())
}

func TestLoad_ValidationFailure(t *testing.T) {
	chdirTemp(t)
	t.Setenv("EMAIL_TRANSPORT", "fax")

	cfg, err := Load()

	assert.Error(t, err)
	assert.Nil(t, cfg)
}
