package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/wolfman30/voiceflow-enquiry/internal/enquiry"
	"github.com/wolfman30/voiceflow-enquiry/internal/notify"
	"github.com/wolfman30/voiceflow-enquiry/internal/observability/metrics"
	"github.com/wolfman30/voiceflow-enquiry/pkg/logging"
)

var tracer = otel.Tracer("voiceflow.internal.dispatch")

// Config wires the channel senders and their fixed destinations. A nil sender
// or an empty destination leaves that channel unconfigured.
type Config struct {
	Email   notify.EmailSender
	EmailTo string

	WhatsApp     notify.WhatsAppSender
	WhatsAppFrom string
	WhatsAppTo   string

	Metrics *metrics.RelayMetrics
	Logger  *logging.Logger
}

// Dispatcher attempts every configured channel for an enquiry. It holds no
// per-request state and is safe for concurrent use.
type Dispatcher struct {
	email        notify.EmailSender
	emailTo      string
	whatsapp     notify.WhatsAppSender
	whatsappFrom string
	whatsappTo   string
	metrics      *metrics.RelayMetrics
	logger       *logging.Logger
}

// New creates a dispatcher.
func New(cfg Config) *Dispatcher {
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	return &Dispatcher{
		email:        cfg.Email,
		emailTo:      cfg.EmailTo,
		whatsapp:     cfg.WhatsApp,
		whatsappFrom: cfg.WhatsAppFrom,
		whatsappTo:   cfg.WhatsAppTo,
		metrics:      cfg.Metrics,
		logger:       cfg.Logger,
	}
}

// EmailEnabled reports whether the email channel will be attempted.
func (d *Dispatcher) EmailEnabled() bool {
	return d.email != nil && d.emailTo != ""
}

// WhatsAppEnabled reports whether the WhatsApp channel will be attempted.
func (d *Dispatcher) WhatsAppEnabled() bool {
	return d.whatsapp != nil && d.whatsappFrom != "" && d.whatsappTo != ""
}

// Dispatch runs the email and WhatsApp attempts concurrently and waits for
// both to settle. Provider rejections are logged but keep the outcome OK;
// only faults (transport errors, panics) fail it.
func (d *Dispatcher) Dispatch(ctx context.Context, e enquiry.Enquiry) enquiry.Outcome {
	// Outbound calls run to completion even if the caller goes away.
	ctx = context.WithoutCancel(ctx)
	ctx, span := tracer.Start(ctx, "dispatch.enquiry")
	defer span.End()

	results := make([]enquiry.ChannelResult, 2)
	var g errgroup.Group
	g.Go(func() error {
		results[0] = d.attempt(ctx, enquiry.ChannelEmail, d.EmailEnabled(), func(ctx context.Context) error {
			return d.email.Send(ctx, notify.EmailMessage{
				From:     e.Email,
				FromName: e.Name,
				To:       d.emailTo,
				ReplyTo:  e.Email,
				Subject:  enquiry.Subject(e),
				Body:     enquiry.EmailText(e),
			})
		})
		return nil
	})
	g.Go(func() error {
		results[1] = d.attempt(ctx, enquiry.ChannelWhatsApp, d.WhatsAppEnabled(), func(ctx context.Context) error {
			return d.whatsapp.SendWhatsApp(ctx, notify.WhatsAppMessage{
				From: d.whatsappFrom,
				To:   d.whatsappTo,
				Body: enquiry.WhatsAppText(e),
			})
		})
		return nil
	})
	_ = g.Wait()

	outcome := enquiry.Outcome{OK: true, Results: results}
	var faults []error
	for _, r := range results {
		span.SetAttributes(attribute.String("voiceflow.channel."+string(r.Channel), string(r.Status)))
		if r.Status == enquiry.StatusFailed {
			faults = append(faults, fmt.Errorf("%s: %w", r.Channel, r.Err))
		}
	}
	if len(faults) > 0 {
		outcome.OK = false
		outcome.Err = fmt.Errorf("%w: %w", enquiry.ErrDispatchFault, errors.Join(faults...))
		span.RecordError(outcome.Err)
	}
	return outcome
}

// attempt runs one channel send and never lets an error or panic escape.
func (d *Dispatcher) attempt(ctx context.Context, ch enquiry.Channel, enabled bool, send func(context.Context) error) (res enquiry.ChannelResult) {
	res.Channel = ch
	if !enabled {
		res.Status = enquiry.StatusSkipped
		d.logger.Debug("dispatch: channel not configured, skipping", "channel", ch)
		d.metrics.ObserveChannel(string(ch), string(res.Status), 0)
		return res
	}

	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			res.Status = enquiry.StatusFailed
			res.Err = fmt.Errorf("panic: %v", rec)
		}
		res.Duration = time.Since(start)
		d.record(res)
	}()

	err := send(ctx)
	res.Err = err
	res.Status = classify(err)
	return res
}

func (d *Dispatcher) record(res enquiry.ChannelResult) {
	d.metrics.ObserveChannel(string(res.Channel), string(res.Status), res.Duration.Seconds())
	switch res.Status {
	case enquiry.StatusSent:
		d.logger.Info("dispatch: channel sent", "channel", res.Channel, "duration_ms", res.Duration.Milliseconds())
	case enquiry.StatusRejected:
		d.logger.Warn("dispatch: provider rejected notification", "channel", res.Channel, "error", res.Err)
	case enquiry.StatusFailed:
		d.logger.Error("dispatch: channel failed", "channel", res.Channel, "error", res.Err)
	}
}

func classify(err error) enquiry.ChannelStatus {
	if err == nil {
		return enquiry.StatusSent
	}
	var perr *notify.ProviderError
	if errors.As(err, &perr) {
		return enquiry.StatusRejected
	}
	return enquiry.StatusFailed
}

var _ enquiry.Dispatcher = (*Dispatcher)(nil)
