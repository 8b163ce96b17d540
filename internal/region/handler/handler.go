package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"idverify/internal/region"
	dErrors "idverify/pkg/domain-errors"
	"idverify/pkg/domain/residentid"
	"idverify/pkg/platform/httputil"
	"idverify/pkg/requestcontext"
)

// Reloader rebuilds the region table from its source.
type Reloader interface {
	Reload(ctx context.Context) (*region.Table, error)
}

// Handler serves region table lookups and the admin reload endpoint.
type Handler struct {
	holder   *region.Holder
	reloader Reloader
	logger   *slog.Logger
}

func New(holder *region.Holder, reloader Reloader, logger *slog.Logger) *Handler {
	return &Handler{
		holder:   holder,
		reloader: reloader,
		logger:   logger,
	}
}

// Register mounts the public lookup endpoints.
func (h *Handler) Register(r chi.Router) {
	r.Get("/v1/regions", h.HandleSummary)
	r.Get("/v1/regions/{code}", h.HandleLookup)
}

// RegisterAdmin mounts the reload endpoint. The caller guards it with the
// admin token middleware.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Post("/admin/regions/reload", h.HandleReload)
}

// HandleLookup handles GET /v1/regions/{code}.
func (h *Handler) HandleLookup(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if !region.ValidCode(code) {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "region code must be 6 digits"))
		return
	}

	table := h.holder.Current()
	entry, ok := table.Lookup(code)
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "region code not found"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toRegionResponse(code, entry))
}

// HandleSummary handles GET /v1/regions.
func (h *Handler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, toSummary(h.holder.Current()))
}

// HandleReload handles POST /admin/regions/reload.
func (h *Handler) HandleReload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	table, err := h.reloader.Reload(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "region reload failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "region table reloaded by admin",
		"request_id", requestID,
		"source", table.Source(),
		"entries", table.Len(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, toSummary(table))
}

// RegionResponse is one region table entry.
type RegionResponse struct {
	Code       string `json:"code"`
	Province   string `json:"province"`
	Prefecture string `json:"prefecture"`
	County     string `json:"county"`
	Source     string `json:"source"`
}

// SummaryResponse describes the active snapshot.
type SummaryResponse struct {
	Loaded  bool   `json:"loaded"`
	Source  string `json:"source"`
	Entries int    `json:"entries"`
}

func toRegionResponse(code string, r residentid.Region) RegionResponse {
	return RegionResponse{
		Code:       code,
		Province:   r.Province,
		Prefecture: r.Prefecture,
		County:     r.County,
		Source:     r.Source,
	}
}

func toSummary(t *region.Table) SummaryResponse {
	return SummaryResponse{
		Loaded:  t != nil,
		Source:  t.Source(),
		Entries: t.Len(),
	}
}
