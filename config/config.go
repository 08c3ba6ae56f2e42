package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Supported outbound email transports
const (
	TransportEmailJS = "emailjs"
	TransportResend  = "resend"
	TransportMailgun = "mailgun"
)

// Config holds all application configuration
//
//nolint:govet // Field alignment optimization would reduce readability
type Config struct {
	Server        ServerConfig
	Contact       ContactConfig
	RateLimit     RateLimitConfig
	Email         EmailConfig
	ReCAPTCHA     ReCAPTCHAConfig
	Sentry        SentryConfig
	Logging       LoggingConfig
	Observability ObservabilityConfig
	Profiling     ProfilingConfig
}

type ServerConfig struct {
	Port           string
	GinMode        string
	AppEnv         string
	StaticDir      string
	AllowedOrigins []string
	TrustedProxies []string
}

type ContactConfig struct {
	SendTimeout    time.Duration
	MaxBodyBytes   int64
	FallbackEmail  string
	BreakerEnabled bool
}

type RateLimitConfig struct {
	Max      int
	Window   time.Duration
	RedisURL string
}

type EmailConfig struct {
	Transport string
	Recipient string
	EmailJS   EmailJSConfig
	Resend    ResendConfig
	Mailgun   MailgunConfig
}

type EmailJSConfig struct {
	APIURL     string
	ServiceID  string
	TemplateID string
	PublicKey  string
	PrivateKey string
}

type ResendConfig struct {
	APIKey      string
	SenderEmail string
	SenderName  string
}

type MailgunConfig struct {
	APIKey string
	Domain string
	From   string
}

type ReCAPTCHAConfig struct {
	SecretKey string
}

type SentryConfig struct {
	DSN string
}

type LoggingConfig struct {
	Level string
	Dir   string
}

type ObservabilityConfig struct {
	AlloyEndpoint     string
	ServiceName       string
	ServiceNamespace  string
	ServiceVersion    string
	ServiceInstanceID string
}

type ProfilingConfig struct {
	Enabled               bool
	Endpoint              string
	AppName               string
	SampleTypes           string
	UploadIntervalSeconds int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("PORT", "3001")
	v.SetDefault("GIN_MODE", "release")
	v.SetDefault("APP_ENV", "production")
	v.SetDefault("STATIC_DIR", "dist/itmade/browser")
	v.SetDefault("ALLOWED_CORS_ORIGINS", "https://itmade.fr,https://www.itmade.fr")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_DIR", "/app/logs")

	v.SetDefault("CONTACT_SEND_TIMEOUT", "15s")
	v.SetDefault("CONTACT_MAX_BODY_BYTES", 100*1024)
	v.SetDefault("CONTACT_FALLBACK_EMAIL", "contact@itmade.fr")
	v.SetDefault("CIRCUIT_BREAKER_ENABLED", true)
	v.SetDefault("CONTACT_RATE_LIMIT_MAX", 10)
	v.SetDefault("CONTACT_RATE_LIMIT_WINDOW", "15m")

	v.SetDefault("EMAIL_TRANSPORT", TransportEmailJS)
	v.SetDefault("EMAILJS_API_URL", "https://api.emailjs.com/api/v1.0/email/send")

	v.SetDefault("O11Y_EXPORTER_ENDPOINT", "") // tracing disabled unless set
	v.SetDefault("O11Y_BE_SERVICE_NAME", "itmade-api")
	v.SetDefault("O11Y_SERVICE_NAMESPACE", "itmade")
	v.SetDefault("O11Y_BE_SERVICE_VERSION", "1.0.0")
	v.SetDefault("O11Y_PROFILING_ENABLED", false)
	v.SetDefault("O11Y_PROFILING_APP_NAME", "itmade-api")
	v.SetDefault("O11Y_PROFILING_SAMPLE_TYPES", "cpu,alloc_space,goroutines")
	v.SetDefault("O11Y_PROFILING_UPLOAD_INTERVAL_SECONDS", 15)

	// Automatically read environment variables
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read from .env file if it exists
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("..")
	_ = v.ReadInConfig() //nolint:errcheck // Ignore error if .env file doesn't exist

	cfg := &Config{
		Server: ServerConfig{
			Port:           v.GetString("PORT"),
			GinMode:        v.GetString("GIN_MODE"),
			AppEnv:         v.GetString("APP_ENV"),
			StaticDir:      v.GetString("STATIC_DIR"),
			AllowedOrigins: splitList(v.GetString("ALLOWED_CORS_ORIGINS")),
			TrustedProxies: splitList(v.GetString("TRUSTED_PROXIES")),
		},
		Contact: ContactConfig{
			SendTimeout:    v.GetDuration("CONTACT_SEND_TIMEOUT"),
			MaxBodyBytes:   v.GetInt64("CONTACT_MAX_BODY_BYTES"),
			FallbackEmail:  v.GetString("CONTACT_FALLBACK_EMAIL"),
			BreakerEnabled: v.GetBool("CIRCUIT_BREAKER_ENABLED"),
		},
		RateLimit: RateLimitConfig{
			Max:      v.GetInt("CONTACT_RATE_LIMIT_MAX"),
			Window:   v.GetDuration("CONTACT_RATE_LIMIT_WINDOW"),
			RedisURL: v.GetString("REDIS_URL"),
		},
		Email: EmailConfig{
			Transport: strings.ToLower(strings.TrimSpace(v.GetString("EMAIL_TRANSPORT"))),
			Recipient: v.GetString("CONTACT_RECIPIENT"),
			EmailJS: EmailJSConfig{
				APIURL:     v.GetString("EMAILJS_API_URL"),
				ServiceID:  v.GetString("EMAILJS_SERVICE_ID"),
				TemplateID: v.GetString("EMAILJS_TEMPLATE_ID"),
				PublicKey:  v.GetString("EMAILJS_PUBLIC_KEY"),
				PrivateKey: v.GetString("EMAILJS_PRIVATE_KEY"),
			},
			Resend: ResendConfig{
				APIKey:      v.GetString("RESEND_API_KEY"),
				SenderEmail: v.GetString("RESEND_FROM_EMAIL"),
				SenderName:  v.GetString("RESEND_FROM_NAME"),
			},
			Mailgun: MailgunConfig{
				APIKey: v.GetString("MAILGUN_API_KEY"),
				Domain: v.GetString("MAILGUN_DOMAIN"),
				From:   v.GetString("MAILGUN_FROM"),
			},
		},
		ReCAPTCHA: ReCAPTCHAConfig{
			SecretKey: v.GetString("RECAPTCHA_SECRET_KEY"),
		},
		Sentry: SentryConfig{
			DSN: v.GetString("SENTRY_DSN"),
		},
		Logging: LoggingConfig{
			Level: v.GetString("LOG_LEVEL"),
			Dir:   v.GetString("LOG_DIR"),
		},
		Observability: ObservabilityConfig{
			AlloyEndpoint:     v.GetString("O11Y_EXPORTER_ENDPOINT"),
			ServiceName:       v.GetString("O11Y_BE_SERVICE_NAME"),
			ServiceNamespace:  v.GetString("O11Y_SERVICE_NAMESPACE"),
			ServiceVersion:    v.GetString("O11Y_BE_SERVICE_VERSION"),
			ServiceInstanceID: v.GetString("SERVICE_INSTANCE_ID"),
		},
		Profiling: ProfilingConfig{
			Enabled:               v.GetBool("O11Y_PROFILING_ENABLED"),
			Endpoint:              v.GetString("O11Y_PROFILING_ENDPOINT"),
			AppName:               v.GetString("O11Y_PROFILING_APP_NAME"),
			SampleTypes:           v.GetString("O11Y_PROFILING_SAMPLE_TYPES"),
			UploadIntervalSeconds: v.GetInt("O11Y_PROFILING_UPLOAD_INTERVAL_SECONDS"),
		},
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// splitList parses a comma-separated list, dropping empty entries
func splitList(value string) []string {
	items := []string{}
	for _, item := range strings.Split(value, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}

// Validate checks if required configuration values are set.
// Transport credentials are not checked here: a missing credential is reported
// per request as a configuration error so the site keeps serving pages.
func (c *Config) Validate() error {
	// Server configuration
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if len(c.Server.AllowedOrigins) == 0 {
		return fmt.Errorf("ALLOWED_CORS_ORIGINS is required")
	}

	switch c.Email.Transport {
	case TransportEmailJS, TransportResend, TransportMailgun:
	default:
		return fmt.Errorf("EMAIL_TRANSPORT must be one of %s, %s, %s (got %q)",
			TransportEmailJS, TransportResend, TransportMailgun, c.Email.Transport)
	}

	// Contact quota
	if c.RateLimit.Max <= 0 {
		return fmt.Errorf("CONTACT_RATE_LIMIT_MAX must be positive")
	}
	if c.RateLimit.Window <= 0 {
		return fmt.Errorf("CONTACT_RATE_LIMIT_WINDOW must be a positive duration")
	}
	if c.Contact.SendTimeout <= 0 {
		return fmt.Errorf("CONTACT_SEND_TIMEOUT must be a positive duration")
	}

	if c.Profiling.Enabled && c.Profiling.Endpoint == "" {
		return fmt.Errorf("O11Y_PROFILING_ENDPOINT is required when profiling is enabled")
	}

	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.AppEnv == "development" || c.Server.GinMode == "debug"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Server.AppEnv == "production"
}

// EmailJSConfigured reports whether the credentials EmailJS requires are present
func (c *EmailConfig) EmailJSConfigured() bool {
	return c.EmailJS.ServiceID != "" && c.EmailJS.TemplateID != "" && c.EmailJS.PublicKey != ""
}

// ResendConfigured reports whether the Resend transport can send
func (c *EmailConfig) ResendConfigured() bool {
	return c.Resend.APIKey != "" && c.Resend.SenderEmail != "" && c.Recipient != ""
}

// MailgunConfigured reports whether the Mailgun transport can send
func (c *EmailConfig) MailgunConfigured() bool {
	return c.Mailgun.APIKey != "" && c.Mailgun.Domain != "" && c.Mailgun.From != "" && c.Recipient != ""
}

// CredentialStatus reports which credentials of the selected transport are set.
// Values are never returned, only their presence.
func (c *EmailConfig) CredentialStatus() map[string]bool {
	switch c.Transport {
	case TransportResend:
		return map[string]bool{
			"api_key":    c.Resend.APIKey != "",
			"from_email": c.Resend.SenderEmail != "",
			"recipient":  c.Recipient != "",
		}
	case TransportMailgun:
		return map[string]bool{
			"api_key":   c.Mailgun.APIKey != "",
			"domain":    c.Mailgun.Domain != "",
			"from":      c.Mailgun.From != "",
			"recipient": c.Recipient != "",
		}
	default:
		return map[string]bool{
			"service_id":  c.EmailJS.ServiceID != "",
			"template_id": c.EmailJS.TemplateID != "",
			"public_key":  c.EmailJS.PublicKey != "",
			"private_key": c.EmailJS.PrivateKey != "",
		}
	}
}
