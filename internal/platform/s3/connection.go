package s3

import (
	"context"
	"fmt"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"idverify/internal/platform/config"
)

// S3 is a client for an S3-compatible object store bound to one bucket.
type S3 struct {
	Client *minio.Client
	Bucket string
}

// NewConnection builds the client. It does not contact the server.
func NewConnection(cfg config.S3Config) (*S3, error) {
	endpoint, secure := normalizeEndpoint(cfg.Endpoint, cfg.UseSSL)
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: secure,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create s3 client for %s: %w", endpoint, err)
	}
	return &S3{Client: client, Bucket: cfg.Bucket}, nil
}

// Health reports whether the bucket is reachable.
func (s *S3) Health(ctx context.Context) error {
	ok, err := s.Client.BucketExists(ctx, s.Bucket)
	if err != nil {
		return fmt.Errorf("s3 bucket check failed: %w", err)
	}
	if !ok {
		return fmt.Errorf("s3 bucket %q not found", s.Bucket)
	}
	return nil
}

// normalizeEndpoint accepts endpoints written as URLs. minio wants a bare
// host:port; an https scheme turns TLS on.
func normalizeEndpoint(endpoint string, useSSL bool) (string, bool) {
	switch {
	case strings.HasPrefix(endpoint, "https://"):
		return strings.TrimSuffix(strings.TrimPrefix(endpoint, "https://"), "/"), true
	case strings.HasPrefix(endpoint, "http://"):
		return strings.TrimSuffix(strings.TrimPrefix(endpoint, "http://"), "/"), useSSL
	}
	return strings.TrimSuffix(endpoint, "/"), useSSL
}
