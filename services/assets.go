package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"

	"github.com/linkme-io/linkme-backend/config"
	"github.com/linkme-io/linkme-backend/errs"
)

// AssetStore hosts profile images (QR codes, avatars, custom designs).
type AssetStore interface {
	// Put stores body under key and returns its public URL.
	Put(ctx context.Context, key, contentType string, body []byte) (string, error)
	// Delete removes the asset behind url. URLs the store does not own are ignored.
	Delete(ctx context.Context, url string) error
}

// S3API is the part of the S3 client the asset store needs.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type S3AssetStore struct {
	client     S3API
	bucket     string
	publicBase string
	timeout    time.Duration
}

func NewS3AssetStore(client S3API, bucket, publicBase string, timeout time.Duration) *S3AssetStore {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &S3AssetStore{
		client:     client,
		bucket:     bucket,
		publicBase: strings.TrimSuffix(publicBase, "/"),
		timeout:    timeout,
	}
}

// NewS3AssetStoreFromConfig builds the store from S3_* settings. It returns
// nil, nil when S3_BUCKET is unset so callers can run without asset hosting.
func NewS3AssetStoreFromConfig(ctx context.Context, cfg map[string]string) (*S3AssetStore, error) {
	bucket := config.GetString(cfg, "S3_BUCKET", "")
	if bucket == "" {
		return nil, nil
	}
	region := config.GetString(cfg, "S3_REGION", "us-east-1")
	endpoint := config.GetString(cfg, "S3_ENDPOINT", "")

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, errs.NewConfigError("aws", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	publicBase := config.GetString(cfg, "ASSET_PUBLIC_BASE_URL", "")
	if publicBase == "" {
		if endpoint != "" {
			publicBase = fmt.Sprintf("%s/%s", strings.TrimSuffix(endpoint, "/"), bucket)
		} else {
			publicBase = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region)
		}
	}

	timeout := config.GetSeconds(cfg, "ASSET_TIMEOUT_SECONDS", 15*time.Second)
	log.Info().Str("bucket", bucket).Str("publicBase", publicBase).Msg("asset storage enabled")
	return NewS3AssetStore(client, bucket, publicBase, timeout), nil
}

func (s *S3AssetStore) Put(ctx context.Context, key, contentType string, body []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(s.bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(body),
		ContentType:  aws.String(contentType),
		CacheControl: aws.String("public, max-age=31536000"),
	})
	if err != nil {
		return "", s.wrap("upload "+key, err)
	}
	return s.publicBase + "/" + key, nil
}

func (s *S3AssetStore) Delete(ctx context.Context, url string) error {
	key, ok := s.keyFor(url)
	if !ok {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return s.wrap("delete "+key, err)
	}
	return nil
}

func (s *S3AssetStore) keyFor(url string) (string, bool) {
	prefix := s.publicBase + "/"
	if !strings.HasPrefix(url, prefix) {
		return "", false
	}
	key := strings.TrimPrefix(url, prefix)
	return key, key != ""
}

func (s *S3AssetStore) wrap(operation string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return errs.NewAssetTimeoutError(operation, s.timeout)
	}
	return errs.NewUpstreamError("asset storage", err)
}
