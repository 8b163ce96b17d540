package testutil

import (
	"net/http"
	"time"

	"idverify/pkg/requestcontext"
)

// AtTime pins the request time seen by handlers and services.
func AtTime(req *http.Request, now time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), now))
}

// WithAdminToken sets the admin token header.
func WithAdminToken(req *http.Request, token string) *http.Request {
	req.Header.Set("X-Admin-Token", token)
	return req
}
