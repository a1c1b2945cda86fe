package aws

import (
	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// NewS3Client creates an S3 client. Path-style addressing is forced when a
// custom endpoint is configured since LocalStack does not serve virtual hosts.
func NewS3Client(cfg sdkaws.Config) *s3.Client {
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if cfg.BaseEndpoint != nil {
			o.UsePathStyle = true
		}
	})
}

func NewS3Presigner(client *s3.Client) *s3.PresignClient {
	return s3.NewPresignClient(client)
}
