package mainconfig

import (
	"context"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"

	appconfig "github.com/wolfman30/voiceflow-enquiry/internal/config"
	"github.com/wolfman30/voiceflow-enquiry/internal/dispatch"
	"github.com/wolfman30/voiceflow-enquiry/internal/observability/metrics"
	"github.com/wolfman30/voiceflow-enquiry/pkg/logging"
)

// LoadAWSConfig centralizes AWS SDK initialization so both binaries share the
// same LocalStack/production wiring.
func LoadAWSConfig(ctx context.Context, cfg *appconfig.Config) (aws.Config, error) {
	loaders := []func(*config.LoadOptions) error{config.WithRegion(cfg.AWSRegion)}
	if strings.TrimSpace(cfg.AWSAccessKeyID) != "" && strings.TrimSpace(cfg.AWSSecretAccessKey) != "" {
		loaders = append(loaders, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, ""),
		))
	}
	return config.LoadDefaultConfig(ctx, loaders...)
}

// NewSESClient builds an SES v2 client, honouring AWS_ENDPOINT_OVERRIDE.
func NewSESClient(awsCfg aws.Config, cfg *appconfig.Config) *sesv2.Client {
	return sesv2.NewFromConfig(awsCfg, func(o *sesv2.Options) {
		if endpoint := strings.TrimSpace(cfg.AWSEndpointOverride); endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
}

// BuildDispatcher wires the channel senders both binaries use. The AWS SDK is
// only loaded when SES is the selected email provider.
func BuildDispatcher(ctx context.Context, cfg *appconfig.Config, m *metrics.RelayMetrics, logger *logging.Logger) (*dispatch.Dispatcher, error) {
	deps := dispatch.Dependencies{
		Timeout: cfg.OutboundTimeout,
		Metrics: m,
		Logger:  logger,
	}
	if cfg.Channels.Email.Provider == appconfig.EmailProviderSES {
		awsCfg, err := LoadAWSConfig(ctx, cfg)
		if err != nil {
			return nil, err
		}
		deps.SES = NewSESClient(awsCfg, cfg)
	}
	return dispatch.FromConfig(cfg.Channels, deps), nil
}
