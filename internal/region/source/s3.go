package source

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"

	"idverify/pkg/domain/residentid"
	"idverify/pkg/platform/sentinel"
)

// maxObjectBytes bounds how much of a region object is read into memory.
const maxObjectBytes = 64 << 20

// ObjectGetter is the part of *minio.Client used by S3Object.
type ObjectGetter interface {
	GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (*minio.Object, error)
}

// S3Object loads a region table stored as an object in an S3-compatible
// bucket. Objects ending in .xlsx are decoded as workbooks, everything else
// as YAML.
type S3Object struct {
	client ObjectGetter
	bucket string
	key    string
}

func NewS3Object(client ObjectGetter, bucket, key string) *S3Object {
	return &S3Object{client: client, bucket: bucket, key: key}
}

func (s *S3Object) Name() string {
	return "s3:" + s.bucket + "/" + s.key
}

func (s *S3Object) Load(ctx context.Context) (map[string]residentid.Region, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, s.key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get s3://%s/%s: %v: %w", s.bucket, s.key, err, sentinel.ErrUnavailable)
	}
	defer obj.Close()

	// GetObject is lazy; errors such as NoSuchKey surface on first read.
	data, err := io.ReadAll(io.LimitReader(obj, maxObjectBytes))
	if err != nil {
		return nil, classifyS3(s.bucket, s.key, err)
	}
	return decodeObject(s.key, data)
}

func decodeObject(key string, data []byte) (map[string]residentid.Region, error) {
	if strings.EqualFold(path.Ext(key), ".xlsx") {
		return DecodeXLSX(bytes.NewReader(data))
	}
	return DecodeYAML(bytes.NewReader(data))
}

func classifyS3(bucket, key string, err error) error {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchBucket":
		return fmt.Errorf("read s3://%s/%s: %v: %w", bucket, key, err, sentinel.ErrNotFound)
	}
	return fmt.Errorf("read s3://%s/%s: %v: %w", bucket, key, err, sentinel.ErrUnavailable)
}
