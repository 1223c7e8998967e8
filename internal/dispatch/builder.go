package dispatch

import (
	"strings"
	"time"

	"github.com/wolfman30/voiceflow-enquiry/internal/config"
	"github.com/wolfman30/voiceflow-enquiry/internal/notify"
	"github.com/wolfman30/voiceflow-enquiry/internal/observability/metrics"
	"github.com/wolfman30/voiceflow-enquiry/pkg/logging"
)

// Dependencies carries the process-wide clients channel senders are built from.
type Dependencies struct {
	// SES is required only when the email provider is "ses".
	SES     notify.SESAPI
	Timeout time.Duration
	Metrics *metrics.RelayMetrics
	Logger  *logging.Logger
}

// FromConfig builds a dispatcher with senders for every fully configured
// channel. Partially configured channels are left out and the missing keys
// are logged, never surfaced to callers.
func FromConfig(ch config.Channels, deps Dependencies) *Dispatcher {
	logger := deps.Logger
	if logger == nil {
		logger = logging.Default()
	}

	cfg := Config{Metrics: deps.Metrics, Logger: logger}

	if missing := ch.Email.Missing(); len(missing) == 0 {
		if sender := buildEmailSender(ch.Email, deps, logger); sender != nil {
			cfg.Email = sender
			cfg.EmailTo = ch.Email.To
			logger.Info("dispatch: email channel enabled", "provider", ch.Email.Provider)
		} else {
			logger.Warn("dispatch: email channel disabled", "provider", ch.Email.Provider, "reason", "provider client unavailable")
		}
	} else {
		logger.Info("dispatch: email channel disabled", "missing", strings.Join(missing, ", "))
	}

	if missing := ch.WhatsApp.Missing(); len(missing) == 0 {
		cfg.WhatsApp = notify.NewTwilioWhatsAppSender(notify.TwilioConfig{
			AccountSID: ch.WhatsApp.AccountSID,
			AuthToken:  ch.WhatsApp.AuthToken,
			BaseURL:    ch.WhatsApp.BaseURL,
			Timeout:    deps.Timeout,
		}, logger)
		cfg.WhatsAppFrom = ch.WhatsApp.From
		cfg.WhatsAppTo = ch.WhatsApp.To
		logger.Info("dispatch: whatsapp channel enabled")
	} else {
		logger.Info("dispatch: whatsapp channel disabled", "missing", strings.Join(missing, ", "))
	}

	return New(cfg)
}

// buildEmailSender returns nil (as an untyped interface) when no sender can
// be built, so the dispatcher sees the channel as unconfigured.
func buildEmailSender(ch config.EmailChannel, deps Dependencies, logger *logging.Logger) notify.EmailSender {
	switch ch.Provider {
	case config.EmailProviderSES:
		if sender := notify.NewSESSender(deps.SES, logger); sender != nil {
			return sender
		}
	default:
		if sender := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:  ch.APIKey,
			Host:    ch.Host,
			Timeout: deps.Timeout,
		}, logger); sender != nil {
			return sender
		}
	}
	return nil
}
