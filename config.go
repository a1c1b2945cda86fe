package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	awspkg "catalog-service/pkg/aws"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const (
	StoreDynamoDB = "dynamodb"
	StoreMongo    = "mongo"
	StoreMemory   = "memory"
)

// Config holds all environment variables for the catalog service.
type Config struct {
	Port      string
	Env       string
	JWTSecret string

	StoreDriver    string
	DDBTablePrefix string
	MongoURL       string
	MongoDB        string
	RedisURL       string

	AWS              awspkg.Options
	S3Endpoint       string
	S3Bucket         string
	S3Prefix         string
	CloudFrontDomain string

	ImportTopicArn      string
	CloudWatchEnabled   bool
	CloudWatchNamespace string
	CloudWatchLogGroup  string

	CORSAllowedOrigins []string
	RateLimitRPS       float64
	RateLimitBurst     int
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// LoadConfig reads the environment (and an optional .env file), applies
// defaults and validates required fields. With AWS_USE_SECRETS=true the JWT
// secret is taken from Secrets Manager when available.
func LoadConfig(ctx context.Context) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:      getenv("PORT", "8082"),
		Env:       getenv("APP_ENV", "development"),
		JWTSecret: os.Getenv("JWT_SECRET"),

		StoreDriver:    strings.ToLower(getenv("STORE_DRIVER", StoreDynamoDB)),
		DDBTablePrefix: getenv("DDB_TABLE_PREFIX", "catalog_"),
		MongoURL:       getenv("MONGO_URL", "mongodb://localhost:27017"),
		MongoDB:        getenv("MONGO_DB", "catalog"),
		RedisURL:       getenv("REDIS_URL", "redis://redis:6379"),

		AWS: awspkg.Options{
			Region:          getenv("AWS_REGION", "us-east-1"),
			Endpoint:        os.Getenv("AWS_ENDPOINT"),
			AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		},
		S3Bucket:         getenv("AWS_S3_BUCKET", "catalog"),
		S3Prefix:         os.Getenv("AWS_S3_PREFIX"),
		CloudFrontDomain: os.Getenv("AWS_CLOUDFRONT_DOMAIN"),

		ImportTopicArn:      os.Getenv("IMPORT_EVENTS_TOPIC_ARN"),
		CloudWatchEnabled:   os.Getenv("CLOUDWATCH_ENABLED") == "true",
		CloudWatchNamespace: getenv("CLOUDWATCH_NAMESPACE", "Catalog"),
		CloudWatchLogGroup:  getenv("CLOUDWATCH_LOG_GROUP", "/catalog/services"),
	}
	cfg.S3Endpoint = getenv("AWS_S3_ENDPOINT", cfg.AWS.Endpoint)

	for _, o := range strings.Split(getenv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"), ",") {
		if o = strings.TrimSuffix(strings.TrimSpace(o), "/"); o != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, o)
		}
	}

	rps, err := strconv.ParseFloat(getenv("RATE_LIMIT_RPS", "10"), 64)
	if err != nil || rps <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_RPS must be a positive number")
	}
	cfg.RateLimitRPS = rps
	burst, err := strconv.Atoi(getenv("RATE_LIMIT_BURST", "20"))
	if err != nil || burst < 1 {
		return nil, fmt.Errorf("RATE_LIMIT_BURST must be a positive integer")
	}
	cfg.RateLimitBurst = burst

	switch cfg.StoreDriver {
	case StoreDynamoDB, StoreMongo, StoreMemory:
	default:
		return nil, fmt.Errorf("unsupported STORE_DRIVER %q", cfg.StoreDriver)
	}

	if os.Getenv("AWS_USE_SECRETS") == "true" {
		if awsCfg, err := awspkg.LoadAWSConfig(ctx, cfg.AWS); err == nil {
			sm := awspkg.NewSecretsClient(awsCfg)
			if jwt, err := sm.GetSecret(ctx, "catalog/JWT_SECRET"); err == nil && jwt != "" {
				cfg.JWTSecret = jwt
			} else if err != nil {
				zap.L().Warn("Falling back to JWT_SECRET from env", zap.Error(err))
			}
		}
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	return cfg, nil
}
