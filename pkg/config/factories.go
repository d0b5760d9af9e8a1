package config

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/archivelab/coral/internal/logger"
	"github.com/archivelab/coral/pkg/notify"
	websocketNotify "github.com/archivelab/coral/pkg/notify/websocket"
	"github.com/archivelab/coral/pkg/store"
	badgerstore "github.com/archivelab/coral/pkg/store/badger"
	memorystore "github.com/archivelab/coral/pkg/store/memory"
)

// NewStore builds the configured store backend.
func NewStore(ctx context.Context, cfg StoreConfig) (store.Store, error) {
	switch cfg.Type {
	case "memory":
		logger.Info("using in-memory store backend")
		return memorystore.New(), nil
	case "badger":
		logger.Info("using badger store backend at %s", cfg.Badger.DBPath)
		return badgerstore.New(ctx, cfg.Badger)
	default:
		return nil, fmt.Errorf("unknown store type %q", cfg.Type)
	}
}

// NewPublisher builds the configured notification transport.
func NewPublisher(ctx context.Context, cfg NotifyConfig) (notify.Publisher, error) {
	switch cfg.Type {
	case "log":
		return notify.LogPublisher{}, nil
	case "websocket":
		logger.Info("connecting to event broker at %s", cfg.WebSocket.URL)
		return websocketNotify.New(ctx, cfg.WebSocket.URL)
	default:
		return nil, fmt.Errorf("unknown notify type %q", cfg.Type)
	}
}

// NewS3Client builds the shared S3 client for content ingestion. A custom
// endpoint switches to path-style addressing for MinIO/Localstack
// compatibility; empty credentials fall back to the default chain.
func NewS3Client(ctx context.Context, cfg S3Config) (*s3.Client, error) {
	if cfg.Region == "" {
		return nil, fmt.Errorf("content.s3.region is required")
	}

	var options []func(*awsConfig.LoadOptions) error
	options = append(options, awsConfig.WithRegion(cfg.Region))

	if cfg.Endpoint != "" {
		//nolint:staticcheck // TODO: migrate to BaseEndpoint when AWS SDK v2 stabilizes the new API
		resolver := aws.EndpointResolverWithOptionsFunc(
			func(service, region string, _ ...interface{}) (aws.Endpoint, error) {
				//nolint:staticcheck
				return aws.Endpoint{
					URL:               cfg.Endpoint,
					HostnameImmutable: true,
					Source:            aws.EndpointSourceCustom,
				}, nil
			},
		)
		//nolint:staticcheck
		options = append(options, awsConfig.WithEndpointResolverWithOptions(resolver))
	}

	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		provider := credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")
		options = append(options, awsConfig.WithCredentialsProvider(provider))
	}

	maxRetries := cfg.MaxRetries
	options = append(options, awsConfig.WithRetryer(func() aws.Retryer {
		return retry.NewStandard(func(o *retry.StandardOptions) {
			o.MaxAttempts = maxRetries
		})
	}))

	awsCfg, err := awsConfig.LoadDefaultConfig(ctx, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.UsePathStyle = true
		}
	}), nil
}
