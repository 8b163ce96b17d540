package s3

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"idverify/internal/platform/config"
)

func TestNormalizeEndpoint(t *testing.T) {
	tests := []struct {
		in         string
		useSSL     bool
		wantHost   string
		wantSecure bool
	}{
		{"localhost:9000", false, "localhost:9000", false},
		{"http://localhost:9000/", false, "localhost:9000", false},
		{"https://s3.example.com", false, "s3.example.com", true},
		{"minio:9000", true, "minio:9000", true},
	}
	for _, tt := range tests {
		host, secure := normalizeEndpoint(tt.in, tt.useSSL)
		assert.Equal(t, tt.wantHost, host, tt.in)
		assert.Equal(t, tt.wantSecure, secure, tt.in)
	}
}

func TestNewConnection(t *testing.T) {
	conn, err := NewConnection(config.S3Config{
		Endpoint:  "http://localhost:9000",
		AccessKey: "minioadmin",
		SecretKey: "minioadmin",
		Region:    "us-east-1",
		Bucket:    "regions",
	})
	require.NoError(t, err)
	assert.Equal(t, "regions", conn.Bucket)
	assert.Equal(t, "localhost:9000", conn.Client.EndpointURL().Host)
}
