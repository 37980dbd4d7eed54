package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/noah-isme/cubis-academy-api/internal/config"
)

// objectAPI is the subset of the S3 client used by the backend.
type objectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type s3Backend struct {
	provider  string
	client    objectAPI
	bucket    string
	publicURL string
}

func newS3Backend(cfg config.StorageConfig) (*s3Backend, error) {
	if cfg.AWSBucket == "" || cfg.AWSRegion == "" || cfg.AWSAccessKey == "" || cfg.AWSSecretKey == "" {
		return nil, fmt.Errorf("%w: s3 requires region, bucket and credentials", ErrMissingConfig)
	}

	client := s3.New(s3.Options{
		Region:      cfg.AWSRegion,
		Credentials: credentials.NewStaticCredentialsProvider(cfg.AWSAccessKey, cfg.AWSSecretKey, ""),
	})

	publicURL := cfg.AWSPublicURL
	if publicURL == "" {
		publicURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.AWSBucket, cfg.AWSRegion)
	}

	return &s3Backend{
		provider:  config.StorageS3,
		client:    client,
		bucket:    cfg.AWSBucket,
		publicURL: strings.TrimRight(publicURL, "/"),
	}, nil
}

func newR2Backend(cfg config.StorageConfig) (*s3Backend, error) {
	if cfg.R2AccountID == "" || cfg.R2Bucket == "" || cfg.R2AccessKey == "" || cfg.R2SecretKey == "" {
		return nil, fmt.Errorf("%w: r2 requires account id, bucket and credentials", ErrMissingConfig)
	}
	if cfg.R2PublicURL == "" {
		return nil, fmt.Errorf("%w: r2 requires a public url", ErrMissingConfig)
	}

	client := s3.New(s3.Options{
		Region:       "auto",
		BaseEndpoint: aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.R2AccountID)),
		UsePathStyle: true,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.R2AccessKey, cfg.R2SecretKey, ""),
	})

	return &s3Backend{
		provider:  config.StorageR2,
		client:    client,
		bucket:    cfg.R2Bucket,
		publicURL: strings.TrimRight(cfg.R2PublicURL, "/"),
	}, nil
}

func (b *s3Backend) name() string { return b.provider }

func (b *s3Backend) put(ctx context.Context, key string, body []byte, contentType string) error {
	_, err := b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(b.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(body))),
	})
	return err
}

func (b *s3Backend) remove(ctx context.Context, key string) error {
	_, err := b.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	})
	return err
}

func (b *s3Backend) url(key string) string {
	return b.publicURL + "/" + key
}
