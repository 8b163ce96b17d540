package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"idverify/internal/identity/models"
	"idverify/internal/platform/metrics"
	dErrors "idverify/pkg/domain-errors"
	"idverify/pkg/domain/residentid"
	"idverify/pkg/requestcontext"
)

const (
	DefaultBatchLimit       = 1000
	DefaultBatchConcurrency = 8

	tracerName = "idverify/internal/identity/service"
)

// RegionProvider supplies the region table snapshot used for decoding.
// *region.Holder implements it.
type RegionProvider interface {
	Table() residentid.RegionTable
}

// Service validates and decodes resident identity numbers.
type Service struct {
	regions          RegionProvider
	validator        *residentid.Validator
	policy           residentid.Policy
	logger           *slog.Logger
	metrics          *metrics.Metrics
	tracer           trace.Tracer
	batchLimit       int
	batchConcurrency int
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithPolicy overrides the date rules applied by the validator.
func WithPolicy(policy residentid.Policy) Option {
	return func(s *Service) {
		s.policy = policy
	}
}

// WithBatchLimit caps the number of identity numbers in one batch.
func WithBatchLimit(limit int) Option {
	return func(s *Service) {
		s.batchLimit = limit
	}
}

// WithBatchConcurrency bounds the goroutines used by VerifyBatch.
func WithBatchConcurrency(n int) Option {
	return func(s *Service) {
		s.batchConcurrency = n
	}
}

// WithTracer replaces the global OpenTelemetry tracer.
func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tracer
	}
}

// New constructs a Service.
func New(regions RegionProvider, opts ...Option) (*Service, error) {
	if regions == nil {
		return nil, errors.New("region provider is required")
	}
	s := &Service{
		regions:          regions,
		policy:           residentid.DefaultPolicy(),
		logger:           slog.Default(),
		tracer:           otel.Tracer(tracerName),
		batchLimit:       DefaultBatchLimit,
		batchConcurrency: DefaultBatchConcurrency,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.batchLimit <= 0 {
		return nil, fmt.Errorf("batch limit must be positive, got %d", s.batchLimit)
	}
	if s.batchConcurrency <= 0 {
		return nil, fmt.Errorf("batch concurrency must be positive, got %d", s.batchConcurrency)
	}
	s.validator = residentid.NewValidator(s.policy)
	return s, nil
}

// Policy returns the validation policy in effect.
func (s *Service) Policy() residentid.Policy {
	return s.validator.Policy()
}

// BatchLimit returns the largest batch VerifyBatch accepts.
func (s *Service) BatchLimit() int {
	return s.batchLimit
}

// Verify validates raw and, when it is valid, decodes it against the current
// region table. A rejected number is a Result with Valid false, not an
// error. Blank input is a CodeValidation error.
func (s *Service) Verify(ctx context.Context, raw string) (*models.Result, error) {
	input := strings.TrimSpace(raw)
	if input == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "identity number is required")
	}

	ctx, span := s.tracer.Start(ctx, "identity.Verify")
	defer span.End()

	result := s.check(ctx, input, s.regions.Table(), requestcontext.Now(ctx))
	span.SetAttributes(attribute.String("idverify.outcome", result.Outcome()))
	return &result, nil
}

// VerifyBatch verifies raws concurrently against a single region snapshot.
// Results keep the input order. Blank entries are rejected as bad_length
// rather than failing the batch.
func (s *Service) VerifyBatch(ctx context.Context, raws []string) ([]models.Result, error) {
	if len(raws) == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "at least one identity number is required")
	}
	if len(raws) > s.batchLimit {
		return nil, dErrors.New(dErrors.CodeValidation,
			fmt.Sprintf("batch of %d exceeds the limit of %d", len(raws), s.batchLimit))
	}

	ctx, span := s.tracer.Start(ctx, "identity.VerifyBatch",
		trace.WithAttributes(attribute.Int("idverify.batch_size", len(raws))))
	defer span.End()

	if s.metrics != nil {
		s.metrics.ObserveBatchSize(len(raws))
	}

	now := requestcontext.Now(ctx)
	table := s.regions.Table()
	results := make([]models.Result, len(raws))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.batchConcurrency)
	for i, raw := range raws {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = s.check(gctx, strings.TrimSpace(raw), table, now)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, dErrors.Wrap(err, dErrors.CodeTimeout, "batch verification timed out")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "batch verification cancelled")
	}
	return results, nil
}

// check runs the validator and decoder on an already trimmed input.
func (s *Service) check(ctx context.Context, input string, table residentid.RegionTable, now time.Time) models.Result {
	start := time.Now()

	var result models.Result
	n, err := s.validator.Validate(input, now)
	if err != nil {
		reason, _ := residentid.ReasonOf(err)
		result = models.Invalid(input, reason)
		s.logger.DebugContext(ctx, "identity number rejected",
			"request_id", requestcontext.RequestID(ctx),
			"reason", reason.String(),
			"detail", err.Error(),
		)
	} else {
		result = models.Valid(input, residentid.Decode(n, table))
		if !result.Decoded.RegionKnown {
			s.logger.DebugContext(ctx, "region code not in table",
				"request_id", requestcontext.RequestID(ctx),
				"region_code", result.Decoded.RegionCode,
			)
			if s.metrics != nil {
				s.metrics.IncrementRegionMisses()
			}
		}
	}

	if s.metrics != nil {
		s.metrics.RecordVerification(result.Outcome(), time.Since(start).Seconds())
	}
	return result
}
