package metadata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClientIPFromRequest(t *testing.T) {
	tests := []struct {
		name       string
		headers    map[string]string
		remoteAddr string
		want       string
	}{
		{"first forwarded hop", map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"}, "10.0.0.2:5000", "203.0.113.7"},
		{"single forwarded hop", map[string]string{"X-Forwarded-For": " 203.0.113.8 "}, "10.0.0.2:5000", "203.0.113.8"},
		{"real ip header", map[string]string{"X-Real-IP": "198.51.100.4"}, "10.0.0.2:5000", "198.51.100.4"},
		{"ipv4 remote addr", nil, "192.0.2.1:43122", "192.0.2.1"},
		{"ipv6 remote addr", nil, "[::1]:8080", "::1"},
		{"remote addr without port", nil, "192.0.2.1", "192.0.2.1"},
		{"nothing known", nil, "", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, ClientIPFromRequest(req))
		})
	}
}

func TestClientIP_Middleware(t *testing.T) {
	var got string
	h := ClientIP(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetClientIP(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.9:1234"
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "192.0.2.9", got)
	assert.Equal(t, "", GetClientIP(context.Background()))
}
