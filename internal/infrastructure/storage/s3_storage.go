// Package storage keeps payment proof images in object storage.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	apporder "github.com/tungtungsport/storefront/internal/application/order"
	infraconfig "github.com/tungtungsport/storefront/internal/infrastructure/config"
	"go.uber.org/zap"
)

var _ apporder.ProofStorage = (*S3ProofStorage)(nil)

// ErrKeyRequired is returned when an operation is called without an object key
var ErrKeyRequired = errors.New("storage key is required")

// S3ProofStorage stores proof images in an S3-compatible bucket
// (AWS S3, MinIO and the like).
type S3ProofStorage struct {
	client            *s3.Client
	presignClient     *s3.PresignClient
	bucket            string
	presignExpiration time.Duration
	logger            *zap.Logger
}

// S3ProofStorageOption is a functional option for configuring S3ProofStorage
type S3ProofStorageOption func(*S3ProofStorage)

// WithLogger sets a custom logger
func WithLogger(logger *zap.Logger) S3ProofStorageOption {
	return func(s *S3ProofStorage) {
		s.logger = logger
	}
}

// WithPresignExpiration sets the lifetime of download URLs
func WithPresignExpiration(d time.Duration) S3ProofStorageOption {
	return func(s *S3ProofStorage) {
		s.presignExpiration = d
	}
}

// NewS3ProofStorage creates an S3ProofStorage from configuration
func NewS3ProofStorage(cfg *infraconfig.StorageConfig, opts ...S3ProofStorageOption) (*S3ProofStorage, error) {
	if cfg == nil {
		return nil, errors.New("storage configuration is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}
	if cfg.AccessKey == "" {
		return nil, errors.New("storage access key is required")
	}
	if cfg.SecretKey == "" {
		return nil, errors.New("storage secret key is required")
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithRegion(region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	endpoint, err := normalizeEndpoint(cfg.Endpoint, cfg.UseSSL)
	if err != nil {
		return nil, err
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	s := &S3ProofStorage{
		client:            client,
		presignClient:     s3.NewPresignClient(client),
		bucket:            cfg.Bucket,
		presignExpiration: cfg.PresignExpiration,
		logger:            zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.presignExpiration <= 0 {
		s.presignExpiration = 15 * time.Minute
	}
	return s, nil
}

// normalizeEndpoint adds the scheme to a custom endpoint. An empty endpoint
// keeps the AWS default.
func normalizeEndpoint(endpoint string, useSSL bool) (string, error) {
	if endpoint == "" {
		return "", nil
	}
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		if useSSL {
			endpoint = "https://" + endpoint
		} else {
			endpoint = "http://" + endpoint
		}
	}
	if _, err := url.Parse(endpoint); err != nil {
		return "", fmt.Errorf("invalid storage endpoint: %w", err)
	}
	return endpoint, nil
}

// EnsureBucket creates the bucket if it doesn't exist
func (s *S3ProofStorage) EnsureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	if err == nil {
		return nil
	}

	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	if !errors.As(err, &notFound) && !errors.As(err, &noSuchBucket) {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	s.logger.Info("Creating storage bucket", zap.String("bucket", s.bucket))
	_, err = s.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(s.bucket)})
	if err != nil {
		var alreadyOwned *types.BucketAlreadyOwnedByYou
		if errors.As(err, &alreadyOwned) {
			return nil
		}
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// Upload streams a proof image into the bucket
func (s *S3ProofStorage) Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) error {
	if key == "" {
		return ErrKeyRequired
	}
	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	}
	if size > 0 {
		input.ContentLength = aws.Int64(size)
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("failed to upload object: %w", err)
	}
	s.logger.Debug("Payment proof stored", zap.String("key", key), zap.Int64("size", size))
	return nil
}

// Delete removes an object. Deleting a missing key is not an error.
func (s *S3ProofStorage) Delete(ctx context.Context, key string) error {
	if key == "" {
		return ErrKeyRequired
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

// PresignURL returns a time-limited download URL for staff review
func (s *S3ProofStorage) PresignURL(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", ErrKeyRequired
	}
	req, err := s.presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.presignExpiration))
	if err != nil {
		return "", fmt.Errorf("failed to generate download URL: %w", err)
	}
	return req.URL, nil
}

// Exists checks whether an object is stored under key
func (s *S3ProofStorage) Exists(ctx context.Context, key string) (bool, error) {
	if key == "" {
		return false, ErrKeyRequired
	}
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var notFound *types.NotFound
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &notFound) || errors.As(err, &noSuchKey) {
			return false, nil
		}
		// some S3-compatible servers only report the code in the message
		if strings.Contains(err.Error(), "NotFound") || strings.Contains(err.Error(), "NoSuchKey") {
			return false, nil
		}
		return false, fmt.Errorf("failed to check object existence: %w", err)
	}
	return true, nil
}

// Bucket returns the bucket name
func (s *S3ProofStorage) Bucket() string {
	return s.bucket
}
