package config

import (
	"os"
	"strings"
	"time"
)

const (
	// EmailProviderSendGrid sends operator email through the SendGrid v3 API.
	EmailProviderSendGrid = "sendgrid"
	// EmailProviderSES sends operator email through AWS SES v2.
	EmailProviderSES = "ses"
)

// Config holds application configuration
type Config struct {
	Port               string
	Env                string
	LogLevel           string
	CORSAllowedOrigins []string
	OutboundTimeout    time.Duration
	Channels           Channels

	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string
}

// Channels groups the per-channel settings. It is read-only once loaded and
// safe to share between concurrent requests.
type Channels struct {
	Email    EmailChannel
	WhatsApp WhatsAppChannel
}

// EmailChannel configures operator notification by email.
type EmailChannel struct {
	Provider string
	APIKey   string
	Host     string
	To       string
}

// Configured reports whether every required field is present. SES takes its
// credentials from the AWS chain, so only the destination is required there.
func (c EmailChannel) Configured() bool {
	return len(c.Missing()) == 0
}

// Missing lists the environment keys that keep the channel disabled.
func (c EmailChannel) Missing() []string {
	var missing []string
	if c.Provider != EmailProviderSES && c.APIKey == "" {
		missing = append(missing, "SENDGRID_API_KEY")
	}
	if c.To == "" {
		missing = append(missing, "ADMIN_EMAIL")
	}
	return missing
}

// WhatsAppChannel configures operator notification through Twilio WhatsApp.
type WhatsAppChannel struct {
	AccountSID string
	AuthToken  string
	From       string
	To         string
	BaseURL    string
}

// Configured reports whether every required field is present.
func (c WhatsAppChannel) Configured() bool {
	return len(c.Missing()) == 0
}

// Missing lists the environment keys that keep the channel disabled.
func (c WhatsAppChannel) Missing() []string {
	var missing []string
	if c.AccountSID == "" {
		missing = append(missing, "TWILIO_ACCOUNT_SID")
	}
	if c.AuthToken == "" {
		missing = append(missing, "TWILIO_AUTH_TOKEN")
	}
	if c.From == "" {
		missing = append(missing, "TWILIO_WHATSAPP_FROM")
	}
	if c.To == "" {
		missing = append(missing, "ADMIN_WHATSAPP_TO")
	}
	return missing
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:               getEnv("PORT", "8080"),
		Env:                getEnv("ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS"),
		OutboundTimeout:    getEnvAsDuration("OUTBOUND_TIMEOUT", 10*time.Second),
		Channels:           LoadChannels(),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),
	}
}

// LoadChannels reads only the channel settings.
func LoadChannels() Channels {
	return Channels{
		Email: EmailChannel{
			Provider: strings.ToLower(getEnv("EMAIL_PROVIDER", EmailProviderSendGrid)),
			APIKey:   getEnv("SENDGRID_API_KEY", ""),
			Host:     getEnv("SENDGRID_HOST", ""),
			To:       getEnv("ADMIN_EMAIL", ""),
		},
		WhatsApp: WhatsAppChannel{
			AccountSID: getEnv("TWILIO_ACCOUNT_SID", ""),
			AuthToken:  getEnv("TWILIO_AUTH_TOKEN", ""),
			From:       getEnv("TWILIO_WHATSAPP_FROM", ""),
			To:         getEnv("ADMIN_WHATSAPP_TO", ""),
			BaseURL:    getEnv("TWILIO_BASE_URL", ""),
		},
	}
}

// getEnv retrieves a trimmed environment variable or returns a default value.
// Whitespace-only values count as unset.
func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil && value > 0 {
		return value
	}
	return defaultValue
}
