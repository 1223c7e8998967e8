package notify

import (
	"context"
	"errors"
	"fmt"
	"net/mail"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/aws/smithy-go"

	"github.com/wolfman30/voiceflow-enquiry/pkg/logging"
)

// SESAPI is the subset of the SES v2 client the sender needs.
type SESAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESSender sends emails via AWS SES.
type SESSender struct {
	client SESAPI
	logger *logging.Logger
}

// NewSESSender creates a new AWS SES email sender.
func NewSESSender(client SESAPI, logger *logging.Logger) *SESSender {
	if client == nil {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &SESSender{
		client: client,
		logger: logger,
	}
}

// Send sends an email via AWS SES.
func (s *SESSender) Send(ctx context.Context, msg EmailMessage) error {
	if s == nil || s.client == nil {
		return errors.New("notify: SES client not configured")
	}
	if err := msg.validate(); err != nil {
		return err
	}

	ctx, span := tracer.Start(ctx, "notify.ses.send")
	defer span.End()

	fromAddress := (&mail.Address{Name: msg.FromName, Address: msg.From}).String()

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{msg.To},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(msg.Subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Text: &types.Content{
						Data:    aws.String(msg.Body),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}
	if msg.ReplyTo != "" {
		input.ReplyToAddresses = []string{msg.ReplyTo}
	}

	output, err := s.client.SendEmail(ctx, input)
	if err != nil {
		span.RecordError(err)
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			// SES answered; treat it like any other provider rejection.
			s.logger.Warn("SES rejected email", "code", apiErr.ErrorCode(), "to", msg.To)
			return &ProviderError{Provider: "ses", StatusCode: sesStatusCode(err), Message: apiErr.ErrorMessage()}
		}
		s.logger.Error("SES send failed", "error", err, "to", msg.To)
		return fmt.Errorf("notify: SES send failed: %w", err)
	}

	s.logger.Info("email sent via SES", "to", msg.To, "subject", msg.Subject, "message_id", aws.ToString(output.MessageId))
	return nil
}

func sesStatusCode(err error) int {
	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) {
		return respErr.HTTPStatusCode()
	}
	return 0
}

var _ EmailSender = (*SESSender)(nil)
