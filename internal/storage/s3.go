package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// DocumentStore resolves stored object keys to URLs a browser can open.
type DocumentStore interface {
	URLFor(ctx context.Context, key string) (string, error)
}

type presigner interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*presignedRequest, error)
}

// presignedRequest mirrors the URL part of the SDK's presign result
type presignedRequest struct {
	URL string
}

type s3Presigner struct {
	client *s3.PresignClient
}

func (p s3Presigner) PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*presignedRequest, error) {
	req, err := p.client.PresignGetObject(ctx, params, optFns...)
	if err != nil {
		return nil, err
	}
	return &presignedRequest{URL: req.URL}, nil
}

// S3Store serves POD documents from a bucket. Public URLs go through the
// CloudFront domain when one is configured, otherwise a presigned S3 URL is issued.
type S3Store struct {
	presign          presigner
	Bucket           string
	Region           string
	CloudFrontDomain string
	PresignTTL       time.Duration
}

func NewS3Store(cfg aws.Config, bucket, cloudFrontDomain string) *S3Store {
	return &S3Store{
		presign:          s3Presigner{client: s3.NewPresignClient(s3.NewFromConfig(cfg))},
		Bucket:           bucket,
		Region:           cfg.Region,
		CloudFrontDomain: cloudFrontDomain,
		PresignTTL:       15 * time.Minute,
	}
}

func (s *S3Store) URLFor(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("empty object key")
	}
	// Already a URL (uploaded elsewhere or resolved earlier)
	if strings.HasPrefix(key, "http://") || strings.HasPrefix(key, "https://") {
		return key, nil
	}
	key = strings.TrimPrefix(key, "/")

	if s.CloudFrontDomain != "" {
		return fmt.Sprintf("https://%s/%s", s.CloudFrontDomain, key), nil
	}

	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.PresignTTL))
	if err != nil {
		return "", fmt.Errorf("failed to presign %s: %w", key, err)
	}
	return req.URL, nil
}
