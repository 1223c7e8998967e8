package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfman30/voiceflow-enquiry/pkg/logging"
)

var tracer = otel.Tracer("voiceflow.internal.notify")

const sendGridMailEndpoint = "/v3/mail/send"

// EmailSender defines the interface for sending emails.
// Implementations can be swapped (SendGrid, SES) without changing callers.
type EmailSender interface {
	Send(ctx context.Context, msg EmailMessage) error
}

// EmailMessage represents an email to be sent. From is the enquirer's own
// address; To is always the configured operator destination.
type EmailMessage struct {
	From     string
	FromName string
	To       string
	ReplyTo  string
	Subject  string
	Body     string // Plain text body
}

func (m EmailMessage) validate() error {
	switch {
	case m.From == "":
		return errors.New("notify: email sender address required")
	case m.To == "":
		return errors.New("notify: email recipient required")
	}
	return nil
}

// SendGridSender sends emails via SendGrid API.
type SendGridSender struct {
	request rest.Request
	timeout time.Duration
	logger  *logging.Logger
}

// SendGridConfig holds configuration for SendGrid.
type SendGridConfig struct {
	APIKey  string
	Host    string // empty means https://api.sendgrid.com
	Timeout time.Duration
}

// NewSendGridSender creates a new SendGrid email sender. It returns nil when
// no API key is configured.
func NewSendGridSender(cfg SendGridConfig, logger *logging.Logger) *SendGridSender {
	if cfg.APIKey == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	request := sendgrid.GetRequest(cfg.APIKey, sendGridMailEndpoint, cfg.Host)
	request.Method = rest.Post
	return &SendGridSender{
		request: request,
		timeout: cfg.Timeout,
		logger:  logger,
	}
}

// Send sends an email via SendGrid.
func (s *SendGridSender) Send(ctx context.Context, msg EmailMessage) error {
	if s == nil || s.request.BaseURL == "" {
		return errors.New("notify: sendgrid client not configured")
	}
	if err := msg.validate(); err != nil {
		return err
	}

	ctx, span := tracer.Start(ctx, "notify.sendgrid.send")
	defer span.End()
	span.SetAttributes(attribute.String("voiceflow.email.to", msg.To))

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	message := mail.NewV3MailInit(
		mail.NewEmail(msg.FromName, msg.From),
		msg.Subject,
		mail.NewEmail("", msg.To),
		mail.NewContent("text/plain", msg.Body),
	)
	if msg.ReplyTo != "" {
		message.SetReplyTo(mail.NewEmail(msg.FromName, msg.ReplyTo))
	}

	// Each send gets its own copy of the request so concurrent sends never share a body.
	client := &sendgrid.Client{Request: s.request}
	response, err := client.SendWithContext(ctx, message)
	if err != nil {
		span.RecordError(err)
		s.logger.Error("sendgrid send failed", "error", err, "to", msg.To)
		return fmt.Errorf("notify: sendgrid send failed: %w", err)
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		perr := &ProviderError{Provider: "sendgrid", StatusCode: response.StatusCode, Message: truncateForLog(response.Body, 512)}
		span.RecordError(perr)
		s.logger.Warn("sendgrid returned error status", "status", response.StatusCode, "to", msg.To)
		return perr
	}

	s.logger.Info("email sent via sendgrid", "to", msg.To, "subject", msg.Subject, "status", response.StatusCode)
	return nil
}

var _ EmailSender = (*SendGridSender)(nil)
