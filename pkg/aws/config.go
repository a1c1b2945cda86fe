package aws

import (
	"context"
	"fmt"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"go.uber.org/zap"
)

// Options tune how the SDK config is loaded. Endpoint points every client at
// LocalStack; the static keys are only used together with it.
type Options struct {
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

// LoadAWSConfig loads the default credential chain and applies opts.
func LoadAWSConfig(ctx context.Context, opts Options) (sdkaws.Config, error) {
	var loadOpts []func(*config.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(opts.Region))
	}
	if opts.Endpoint != "" && opts.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return cfg, fmt.Errorf("failed to load aws config: %w", err)
	}

	if opts.Endpoint != "" {
		cfg.BaseEndpoint = sdkaws.String(opts.Endpoint)
		zap.L().Info("aws custom endpoint configured",
			zap.String("endpoint", opts.Endpoint),
			zap.String("region", cfg.Region))
	}
	return cfg, nil
}
