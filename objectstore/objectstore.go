package objectstore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/storage"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// URLSigner turns a stored image id into a time-limited download URL.
type URLSigner interface {
	SignedURL(ctx context.Context, key string) (string, error)
}

type S3Signer struct {
	presign *s3.PresignClient
	bucket  string
	ttl     time.Duration
}

// NewS3Signer works against AWS S3 or any S3-compatible endpoint such as R2.
func NewS3Signer(endpoint, region, accessKeyID, secretAccessKey, bucket string, ttl time.Duration) *S3Signer {
	opts := s3.Options{
		Region:      region,
		Credentials: credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, ""),
	}
	if endpoint != "" {
		opts.BaseEndpoint = aws.String(endpoint)
		opts.UsePathStyle = true
	}

	return &S3Signer{
		presign: s3.NewPresignClient(s3.New(opts)),
		bucket:  bucket,
		ttl:     ttl,
	}
}

func (s *S3Signer) SignedURL(ctx context.Context, key string) (string, error) {
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.ttl))
	if err != nil {
		return "", fmt.Errorf("failed to presign %s: %w", key, err)
	}
	return req.URL, nil
}

type GCSSigner struct {
	bucket *storage.BucketHandle
	ttl    time.Duration
	now    func() time.Time
}

// NewGCSSigner signs with the service account the bucket handle was opened with.
func NewGCSSigner(bucket *storage.BucketHandle, ttl time.Duration) *GCSSigner {
	return &GCSSigner{bucket: bucket, ttl: ttl, now: time.Now}
}

func (s *GCSSigner) SignedURL(ctx context.Context, key string) (string, error) {
	url, err := s.bucket.SignedURL(key, &storage.SignedURLOptions{
		Scheme:  storage.SigningSchemeV4,
		Method:  "GET",
		Expires: s.now().Add(s.ttl),
	})
	if err != nil {
		return "", fmt.Errorf("failed to sign %s: %w", key, err)
	}
	return url, nil
}
