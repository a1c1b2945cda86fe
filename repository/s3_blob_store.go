package repository

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3API is the subset of the S3 client the blob store uses.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3BlobStore stores objects in one bucket under an optional key prefix.
type S3BlobStore struct {
	client    S3API
	presigner *s3.PresignClient
	bucket    string
	prefix    string
	endpoint  string
	cdnDomain string
}

func NewS3BlobStore(client S3API, presigner *s3.PresignClient, bucket, prefix, endpoint, cdnDomain string) *S3BlobStore {
	return &S3BlobStore{
		client:    client,
		presigner: presigner,
		bucket:    bucket,
		prefix:    prefix,
		endpoint:  endpoint,
		cdnDomain: cdnDomain,
	}
}

func (s *S3BlobStore) objectKey(key string) string {
	return s.prefix + strings.TrimPrefix(key, "/")
}

// PublicURL returns the URL an object is served from: the CDN domain when
// configured, the custom endpoint for LocalStack, else the bucket's S3 URL.
func (s *S3BlobStore) PublicURL(objectKey string) string {
	switch {
	case s.cdnDomain != "":
		return fmt.Sprintf("https://%s/%s", strings.TrimRight(s.cdnDomain, "/"), objectKey)
	case s.endpoint != "":
		return fmt.Sprintf("%s/%s/%s", strings.TrimRight(s.endpoint, "/"), s.bucket, objectKey)
	default:
		return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.bucket, objectKey)
	}
}

func (s *S3BlobStore) Upload(ctx context.Context, key, contentType string, data []byte) (string, error) {
	objectKey := s.objectKey(key)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(objectKey),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to s3: %w", err)
	}
	return s.PublicURL(objectKey), nil
}

func (s *S3BlobStore) Download(ctx context.Context, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to download from s3: %w", err)
	}
	defer out.Body.Close()
	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read s3 object: %w", err)
	}
	return data, nil
}

func (s *S3BlobStore) Delete(ctx context.Context, keyOrURL string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.keyFromURL(keyOrURL)),
	})
	if err != nil {
		return fmt.Errorf("failed to delete s3 object: %w", err)
	}
	return nil
}

// keyFromURL strips any of the public URL forms back to the object key.
func (s *S3BlobStore) keyFromURL(keyOrURL string) string {
	for _, base := range []string{s.PublicURL(""), fmt.Sprintf("https://%s.s3.amazonaws.com/", s.bucket)} {
		if strings.HasPrefix(keyOrURL, base) {
			return strings.TrimPrefix(keyOrURL, base)
		}
	}
	if strings.Contains(keyOrURL, "://") {
		return keyOrURL
	}
	return s.objectKey(keyOrURL)
}

func (s *S3BlobStore) PresignUpload(ctx context.Context, key, contentType string, expires time.Duration) (PresignedUpload, error) {
	objectKey := s.objectKey(key)
	req, err := s.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(objectKey),
		ContentType: aws.String(contentType),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = expires
	})
	if err != nil {
		return PresignedUpload{}, fmt.Errorf("failed to presign put object: %w", err)
	}
	headers := make(map[string]string)
	for k, v := range req.SignedHeader {
		if len(v) > 0 {
			headers[k] = v[0]
		}
	}
	return PresignedUpload{URL: req.URL, Key: objectKey, PublicURL: s.PublicURL(objectKey), Headers: headers}, nil
}
