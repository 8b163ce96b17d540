package httptransport

import (
	"context"
	"net/http"
	"sort"
	"time"

	"idverify/internal/region"
	"idverify/pkg/platform/httputil"
)

const healthCheckTimeout = 2 * time.Second

// Checker is a backing service that can report its health, such as the
// Redis client or the S3 connection.
type Checker interface {
	Health(ctx context.Context) error
}

// CheckerFunc adapts a function to Checker.
type CheckerFunc func(ctx context.Context) error

func (f CheckerFunc) Health(ctx context.Context) error {
	return f(ctx)
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  string            `json:"status"`
	Regions RegionHealth      `json:"regions"`
	Checks  map[string]string `json:"checks,omitempty"`
}

// RegionHealth describes the active region table.
type RegionHealth struct {
	Loaded  bool   `json:"loaded"`
	Source  string `json:"source,omitempty"`
	Entries int    `json:"entries"`
	Stale   bool   `json:"stale"`
}

// healthHandler reports 200 when a region table is loaded and every checker
// passes, 503 otherwise. A stale table still serves and does not degrade.
func healthHandler(holder *region.Holder, stale func() bool, checks map[string]Checker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		table := holder.Current()
		resp := HealthResponse{
			Status: "ok",
			Regions: RegionHealth{
				Loaded:  table != nil,
				Source:  table.Source(),
				Entries: table.Len(),
				Stale:   stale != nil && stale(),
			},
		}
		if table == nil {
			resp.Status = "degraded"
		}

		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()

		names := make([]string, 0, len(checks))
		for name := range checks {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if resp.Checks == nil {
				resp.Checks = make(map[string]string, len(checks))
			}
			if err := checks[name].Health(ctx); err != nil {
				resp.Checks[name] = err.Error()
				resp.Status = "degraded"
				continue
			}
			resp.Checks[name] = "ok"
		}

		status := http.StatusOK
		if resp.Status != "ok" {
			status = http.StatusServiceUnavailable
		}
		httputil.WriteJSON(w, status, resp)
	}
}
