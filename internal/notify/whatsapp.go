package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfman30/voiceflow-enquiry/pkg/logging"
)

const (
	defaultTwilioBaseURL = "https://api.twilio.com"
	whatsAppPrefix       = "whatsapp:"
)

// WhatsAppSender delivers a single WhatsApp message.
type WhatsAppSender interface {
	SendWhatsApp(ctx context.Context, msg WhatsAppMessage) error
}

// WhatsAppMessage is one outbound WhatsApp message. From and To come from
// configuration, never from the enquirer.
type WhatsAppMessage struct {
	From string
	To   string
	Body string
}

// TwilioConfig holds the Twilio account credentials.
type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	BaseURL    string
	Timeout    time.Duration
}

// TwilioWhatsAppSender posts WhatsApp messages using Twilio's REST API.
type TwilioWhatsAppSender struct {
	accountSID string
	authToken  string
	baseURL    string
	httpClient *http.Client
	logger     *logging.Logger
}

// NewTwilioWhatsAppSender builds a sender, or nil when credentials are missing.
func NewTwilioWhatsAppSender(cfg TwilioConfig, logger *logging.Logger) *TwilioWhatsAppSender {
	if cfg.AccountSID == "" || cfg.AuthToken == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultTwilioBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &TwilioWhatsAppSender{
		accountSID: cfg.AccountSID,
		authToken:  cfg.AuthToken,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// SendWhatsApp issues one Messages.json request. There is no retry.
func (s *TwilioWhatsAppSender) SendWhatsApp(ctx context.Context, msg WhatsAppMessage) error {
	if s == nil || s.accountSID == "" || s.authToken == "" {
		return errors.New("notify: twilio credentials missing")
	}
	if msg.From == "" || msg.To == "" {
		return errors.New("notify: whatsapp from and to required")
	}
	if strings.TrimSpace(msg.Body) == "" {
		return errors.New("notify: whatsapp body required")
	}

	ctx, span := tracer.Start(ctx, "notify.twilio.whatsapp")
	defer span.End()
	span.SetAttributes(attribute.String("voiceflow.whatsapp.to", msg.To))

	payload := url.Values{}
	payload.Set("From", WhatsAppAddress(msg.From))
	payload.Set("To", WhatsAppAddress(msg.To))
	payload.Set("Body", msg.Body)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", s.baseURL, url.PathEscape(s.accountSID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(payload.Encode()))
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("notify: build twilio request: %w", err)
	}
	req.SetBasicAuth(s.accountSID, s.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		s.logger.Error("twilio whatsapp send failed", "error", err, "to", msg.To)
		return fmt.Errorf("notify: twilio send failed: %w", err)
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		perr := &ProviderError{Provider: "twilio", StatusCode: resp.StatusCode, Message: formatTwilioError(body)}
		span.RecordError(perr)
		s.logger.Warn("twilio returned error status", "status", resp.StatusCode, "to", msg.To)
		return perr
	}

	s.logger.Info("whatsapp sent via twilio", "to", msg.To, "status", resp.StatusCode)
	return nil
}

// WhatsAppAddress adds the whatsapp: channel prefix Twilio expects.
func WhatsAppAddress(addr string) string {
	addr = strings.TrimSpace(addr)
	if addr == "" || strings.HasPrefix(strings.ToLower(addr), whatsAppPrefix) {
		return addr
	}
	return whatsAppPrefix + addr
}

type twilioAPIError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func formatTwilioError(body []byte) string {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return ""
	}
	var parsed twilioAPIError
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Message != "" {
		if parsed.Code != 0 {
			return fmt.Sprintf("code %d: %s", parsed.Code, parsed.Message)
		}
		return parsed.Message
	}
	return truncateForLog(string(body), 512)
}

var _ WhatsAppSender = (*TwilioWhatsAppSender)(nil)
