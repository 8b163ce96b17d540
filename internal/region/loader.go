package region

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"idverify/internal/platform/metrics"
	"idverify/pkg/domain/residentid"
	dErrors "idverify/pkg/domain-errors"
	"idverify/pkg/platform/circuit"
	"idverify/pkg/platform/sentinel"
)

// DefaultStaleAfter is how many consecutive failed reloads mark the active
// table as stale.
const DefaultStaleAfter = 3

// Source produces the raw region entries. Implementations live in
// internal/region/source.
type Source interface {
	Name() string
	Load(ctx context.Context) (map[string]residentid.Region, error)
}

// Loader builds snapshots from a Source and publishes them to a Holder.
type Loader struct {
	source  Source
	holder  *Holder
	logger  *slog.Logger
	metrics *metrics.Metrics
	breaker *circuit.Breaker

	// serializes reloads so an older load never overwrites a newer one
	mu sync.Mutex
}

type LoaderOption func(*Loader)

func WithLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) {
		l.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) LoaderOption {
	return func(l *Loader) {
		l.metrics = m
	}
}

// WithBreaker replaces the breaker that tracks consecutive reload failures.
func WithBreaker(b *circuit.Breaker) LoaderOption {
	return func(l *Loader) {
		l.breaker = b
	}
}

// NewLoader constructs a Loader.
func NewLoader(source Source, holder *Holder, opts ...LoaderOption) (*Loader, error) {
	if source == nil {
		return nil, errors.New("region source is required")
	}
	if holder == nil {
		return nil, errors.New("region holder is required")
	}
	l := &Loader{
		source: source,
		holder: holder,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.breaker == nil {
		l.breaker = circuit.New("region:"+source.Name(), circuit.WithFailureThreshold(DefaultStaleAfter))
	}
	return l, nil
}

// Stale reports whether recent reloads have kept failing, so the active
// table may be out of date.
func (l *Loader) Stale() bool {
	return l.breaker.IsOpen()
}

// Holder returns the holder the loader publishes to.
func (l *Loader) Holder() *Holder {
	return l.holder
}

// Reload loads the source, builds a table and swaps it in. On failure the
// previous snapshot stays active.
func (l *Loader) Reload(ctx context.Context) (*Table, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	start := time.Now()
	name := l.source.Name()

	entries, err := l.source.Load(ctx)
	if err != nil {
		l.recordReload(ctx, name, false, 0, start)
		l.logger.ErrorContext(ctx, "region table load failed",
			"source", name,
			"error", err,
		)
		if errors.Is(err, sentinel.ErrUnavailable) || errors.Is(err, context.DeadlineExceeded) {
			return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "region source unavailable")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load region table")
	}

	table, err := NewTable(entries, name)
	if err != nil {
		l.recordReload(ctx, name, false, 0, start)
		l.logger.ErrorContext(ctx, "region table rejected",
			"source", name,
			"error", err,
		)
		return nil, dErrors.Wrap(err, dErrors.CodeInvariantViolation, "region table is malformed")
	}

	previous := l.holder.Swap(table)
	l.recordReload(ctx, name, true, table.Len(), start)
	l.logger.InfoContext(ctx, "region table loaded",
		"source", name,
		"entries", table.Len(),
		"previous_entries", previous.Len(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return table, nil
}

// Run reloads every interval until ctx is done. Failures are logged and the
// previous snapshot keeps serving. A non-positive interval returns at once.
func (l *Loader) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = l.Reload(ctx)
		}
	}
}

func (l *Loader) recordReload(ctx context.Context, source string, ok bool, entries int, start time.Time) {
	if ok {
		if _, change := l.breaker.RecordSuccess(); change.Closed {
			l.logger.InfoContext(ctx, "region source recovered", "source", source)
		}
	} else if _, change := l.breaker.RecordFailure(); change.Opened {
		l.logger.WarnContext(ctx, "region source keeps failing; serving a stale table",
			"source", source,
			"entries", l.holder.Current().Len(),
		)
	}

	if l.metrics == nil {
		return
	}
	l.metrics.SetRegionStale(l.breaker.IsOpen())
	l.metrics.RecordReload(source, ok, entries, time.Since(start).Seconds())
}
