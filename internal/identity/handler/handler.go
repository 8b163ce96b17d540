package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"idverify/internal/identity/models"
	"idverify/pkg/platform/httputil"
	"idverify/pkg/requestcontext"
)

// Service defines the verification operations used by the handler.
type Service interface {
	Verify(ctx context.Context, raw string) (*models.Result, error)
	VerifyBatch(ctx context.Context, raws []string) ([]models.Result, error)
}

// Handler exposes identity verification over HTTP.
type Handler struct {
	service       Service
	logger        *slog.Logger
	exposeReasons bool
}

// New constructs the handler. When exposeReasons is false every rejection
// carries the same generic description and no reason.
func New(service Service, logger *slog.Logger, exposeReasons bool) *Handler {
	return &Handler{
		service:       service,
		logger:        logger,
		exposeReasons: exposeReasons,
	}
}

// Register mounts the identity endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/v1/identity/verify", h.HandleVerify)
	r.Post("/v1/identity/verify/batch", h.HandleVerifyBatch)
}

// HandleVerify handles POST /v1/identity/verify.
func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[VerifyRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.service.Verify(ctx, req.IDNumber)
	if err != nil {
		h.logger.WarnContext(ctx, "identity verification failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "identity verified",
		"request_id", requestID,
		"outcome", result.Outcome(),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if !result.Valid {
		httputil.WriteJSON(w, http.StatusUnprocessableEntity, h.toInvalidResponse(*result))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toVerifyResponse(result.Decoded, requestcontext.Now(ctx)))
}

// HandleVerifyBatch handles POST /v1/identity/verify/batch. The response is
// 200 whenever the batch itself was accepted; per-item outcomes are in the
// body.
func (h *Handler) HandleVerifyBatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[BatchVerifyRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	results, err := h.service.VerifyBatch(ctx, req.IDNumbers)
	if err != nil {
		h.logger.WarnContext(ctx, "batch verification failed",
			"request_id", requestID,
			"batch_size", len(req.IDNumbers),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	resp := h.toBatchResponse(results, requestcontext.Now(ctx))
	h.logger.InfoContext(ctx, "identity batch verified",
		"request_id", requestID,
		"batch_size", len(results),
		"valid", resp.Valid,
		"invalid", resp.Invalid,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, resp)
}
