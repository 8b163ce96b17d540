package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	identityhandler "idverify/internal/identity/handler"
	"idverify/internal/identity/service"
	"idverify/internal/platform/config"
	"idverify/internal/platform/database"
	"idverify/internal/platform/httpserver"
	"idverify/internal/platform/logger"
	"idverify/internal/platform/metrics"
	"idverify/internal/platform/redis"
	"idverify/internal/platform/s3"
	"idverify/internal/region"
	regionhandler "idverify/internal/region/handler"
	"idverify/internal/region/source"
	httptransport "idverify/internal/transport/http"
	"idverify/pkg/platform/circuit"
)

// main wires configuration, the region table, the identity service and the
// HTTP server. Business logic lives in the internal packages.
func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "idverify:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.FromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	b, err := openBackends(ctx, cfg)
	if err != nil {
		return err
	}
	defer b.close(log)

	src, err := source.New(source.Options{
		Kind:      source.Kind(cfg.Region.Source),
		Path:      cfg.Region.Path,
		Provinces: cfg.Region.Provinces,
		RedisKey:  cfg.Region.RedisKey,
		Bucket:    cfg.S3.Bucket,
		ObjectKey: cfg.S3.ObjectKey,
	}, b.deps)
	if err != nil {
		return fmt.Errorf("region source: %w", err)
	}

	holder := region.NewHolder(nil)
	loader, err := region.NewLoader(src, holder,
		region.WithLogger(log),
		region.WithMetrics(m),
		region.WithBreaker(circuit.New("region:"+src.Name(), circuit.WithFailureThreshold(region.DefaultStaleAfter))),
	)
	if err != nil {
		return err
	}
	// A malformed or missing table at start-up is fatal; later reload
	// failures keep the previous snapshot.
	if _, err := loader.Reload(ctx); err != nil {
		return fmt.Errorf("initial region load: %w", err)
	}
	go loader.Run(ctx, cfg.Region.RefreshInterval)

	svc, err := service.New(holder,
		service.WithLogger(log),
		service.WithMetrics(m),
		service.WithPolicy(cfg.Validation),
		service.WithBatchLimit(cfg.BatchLimit),
		service.WithBatchConcurrency(cfg.BatchConcurrency),
	)
	if err != nil {
		return err
	}

	router := httptransport.NewRouter(httptransport.Deps{
		Identity:   identityhandler.New(svc, log, cfg.ExposeReasons),
		Regions:    regionhandler.New(holder, loader, log),
		Holder:     holder,
		Stale:      loader.Stale,
		Checks:     b.checks,
		Gatherer:   reg,
		AdminToken: cfg.AdminAPIToken,
		Logger:     log,
	})
	if cfg.AdminAPIToken == "" {
		log.Warn("ADMIN_API_TOKEN is not set; admin routes are disabled")
	}

	return httpserver.Run(ctx, httpserver.New(cfg.Addr, router), log)
}

// backends holds the optional external clients. Only those needed by the
// configured region source, plus Redis whenever REDIS_URL is set, are opened.
type backends struct {
	deps   source.Deps
	checks map[string]httptransport.Checker
	db     *sql.DB
	redis  *redis.Client
}

func openBackends(ctx context.Context, cfg config.Server) (*backends, error) {
	b := &backends{checks: make(map[string]httptransport.Checker)}

	rc, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	if rc != nil {
		b.redis = rc
		b.deps.Redis = rc.Client
		b.checks["redis"] = rc
	}

	switch source.Kind(cfg.Region.Source) {
	case source.KindPostgres:
		db, err := database.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			b.close(slog.Default())
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		b.db = db
		b.deps.DB = db
		b.checks["postgres"] = httptransport.CheckerFunc(db.PingContext)
	case source.KindS3:
		conn, err := s3.NewConnection(cfg.S3)
		if err != nil {
			b.close(slog.Default())
			return nil, fmt.Errorf("connect s3: %w", err)
		}
		b.deps.S3 = conn.Client
		b.checks["s3"] = conn
	}
	return b, nil
}

func (b *backends) close(log *slog.Logger) {
	if b.db != nil {
		if err := b.db.Close(); err != nil {
			log.Warn("closing postgres", "error", err)
		}
	}
	if b.redis != nil {
		if err := b.redis.Close(); err != nil {
			log.Warn("closing redis", "error", err)
		}
	}
}
