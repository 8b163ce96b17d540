package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"idverify/pkg/domain/residentid"
)

// Server captures process level configuration.
type Server struct {
	Addr          string
	AdminAPIToken string
	LogLevel      string
	LogFormat     string

	// ExposeReasons adds the rejection reason to API responses. Off by
	// default so every invalid number looks the same to callers.
	ExposeReasons bool

	Validation       residentid.Policy
	BatchLimit       int
	BatchConcurrency int

	Region      RegionConfig
	DatabaseURL string
	Redis       RedisConfig
	S3          S3Config
}

// RegionConfig selects where the region table is loaded from.
type RegionConfig struct {
	Source          string
	Path            string
	RefreshInterval time.Duration
	Provinces       []string
	RedisKey        string
}

// RedisConfig configures the shared Redis client. An empty URL disables it.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// S3Config configures the object store client used by the s3 region source.
type S3Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Region    string
	UseSSL    bool
	Bucket    string
	ObjectKey string
}

// FromEnv builds a Server config from environment variables. A .env file in
// the working directory is loaded first when present; real environment
// variables win over it.
func FromEnv() (Server, error) {
	_ = godotenv.Load()

	p := parser{}
	cfg := Server{
		Addr:          getenv("IDVERIFY_ADDR", ":8080"),
		AdminAPIToken: os.Getenv("ADMIN_API_TOKEN"),
		LogLevel:      getenv("LOG_LEVEL", "info"),
		LogFormat:     getenv("LOG_FORMAT", "json"),
		ExposeReasons: p.boolean("EXPOSE_REASONS", false),
		Validation: residentid.Policy{
			MinBirthYear:      p.integer("MIN_BIRTH_YEAR", residentid.DefaultMinBirthYear),
			RejectFutureDates: p.boolean("REJECT_FUTURE_BIRTH_DATES", true),
		},
		BatchLimit:       p.integer("BATCH_LIMIT", 1000),
		BatchConcurrency: p.integer("BATCH_CONCURRENCY", 8),
		Region: RegionConfig{
			Source:          getenv("REGION_SOURCE", "embedded"),
			Path:            os.Getenv("REGION_PATH"),
			RefreshInterval: p.duration("REGION_REFRESH_INTERVAL", 0),
			Provinces:       splitList(os.Getenv("REGION_PROVINCES")),
			RedisKey:        os.Getenv("REGION_REDIS_KEY"),
		},
		DatabaseURL: os.Getenv("DATABASE_URL"),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     p.integer("REDIS_POOL_SIZE", 10),
			MinIdleConns: p.integer("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  p.duration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  p.duration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: p.duration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		S3: S3Config{
			Endpoint:  getenv("S3_ENDPOINT", "localhost:9000"),
			AccessKey: os.Getenv("S3_ACCESS_KEY"),
			SecretKey: os.Getenv("S3_SECRET_KEY"),
			Region:    getenv("S3_REGION", "us-east-1"),
			UseSSL:    p.boolean("S3_USE_SSL", false),
			Bucket:    os.Getenv("S3_BUCKET"),
			ObjectKey: os.Getenv("S3_OBJECT_KEY"),
		},
	}
	if len(p.errs) > 0 {
		return Server{}, errors.Join(p.errs...)
	}
	if err := cfg.Validate(); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

// Validate checks cross-field requirements.
func (c Server) Validate() error {
	if c.BatchLimit <= 0 {
		return fmt.Errorf("BATCH_LIMIT must be positive, got %d", c.BatchLimit)
	}
	if c.BatchConcurrency <= 0 {
		return fmt.Errorf("BATCH_CONCURRENCY must be positive, got %d", c.BatchConcurrency)
	}
	if c.Region.RefreshInterval < 0 {
		return fmt.Errorf("REGION_REFRESH_INTERVAL must not be negative")
	}
	switch c.Region.Source {
	case "embedded":
	case "yaml", "xlsx", "file":
		if c.Region.Path == "" {
			return fmt.Errorf("REGION_PATH is required for region source %q", c.Region.Source)
		}
	case "postgres":
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required for region source \"postgres\"")
		}
	case "redis":
		if c.Redis.URL == "" {
			return errors.New("REDIS_URL is required for region source \"redis\"")
		}
	case "s3":
		if c.S3.Bucket == "" || c.S3.ObjectKey == "" {
			return errors.New("S3_BUCKET and S3_OBJECT_KEY are required for region source \"s3\"")
		}
	default:
		return fmt.Errorf("unknown REGION_SOURCE %q", c.Region.Source)
	}
	return nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parser collects conversion errors so every bad key is reported at once.
type parser struct {
	errs []error
}

func (p *parser) integer(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %q is not an integer", k, v))
		return def
	}
	return n
}

func (p *parser) boolean(k string, def bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %q is not a boolean", k, v))
		return def
	}
	return b
}

func (p *parser) duration(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %q is not a duration", k, v))
		return def
	}
	return d
}
