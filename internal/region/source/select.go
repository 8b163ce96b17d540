package source

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/redis/go-redis/v9"

	"idverify/internal/region"
)

// Kind names a region source in configuration.
type Kind string

const (
	KindEmbedded Kind = "embedded"
	KindYAML     Kind = "yaml"
	KindXLSX     Kind = "xlsx"
	KindFile     Kind = "file"
	KindPostgres Kind = "postgres"
	KindRedis    Kind = "redis"
	KindS3       Kind = "s3"
)

// Options selects and parameterizes a source.
type Options struct {
	Kind      Kind
	Path      string
	Provinces []string
	RedisKey  string
	Bucket    string
	ObjectKey string
}

// Deps carries the clients a source may need. Only the one matching
// Options.Kind has to be set.
type Deps struct {
	DB    *sql.DB
	Redis redis.Cmdable
	S3    ObjectGetter
}

// New builds the source named by opts.Kind. KindFile picks YAML or XLSX by
// the path's extension.
func New(opts Options, deps Deps) (region.Source, error) {
	switch opts.Kind {
	case "", KindEmbedded:
		return NewEmbedded(), nil
	case KindYAML:
		if opts.Path == "" {
			return nil, fmt.Errorf("yaml region source needs a path")
		}
		return NewYAMLFile(opts.Path), nil
	case KindXLSX:
		if opts.Path == "" {
			return nil, fmt.Errorf("xlsx region source needs a path")
		}
		return NewXLSXFile(opts.Path), nil
	case KindFile:
		return FromPath(opts.Path)
	case KindPostgres:
		if deps.DB == nil {
			return nil, fmt.Errorf("postgres region source needs a database")
		}
		return NewPostgres(deps.DB, opts.Provinces...), nil
	case KindRedis:
		if deps.Redis == nil {
			return nil, fmt.Errorf("redis region source needs a redis client")
		}
		return NewRedis(deps.Redis, opts.RedisKey), nil
	case KindS3:
		if deps.S3 == nil {
			return nil, fmt.Errorf("s3 region source needs an s3 client")
		}
		if opts.Bucket == "" || opts.ObjectKey == "" {
			return nil, fmt.Errorf("s3 region source needs a bucket and object key")
		}
		return NewS3Object(deps.S3, opts.Bucket, opts.ObjectKey), nil
	default:
		return nil, fmt.Errorf("unknown region source %q", opts.Kind)
	}
}

// FromPath picks the file source for path by extension.
func FromPath(path string) (region.Source, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return NewXLSXFile(path), nil
	case ".yaml", ".yml":
		return NewYAMLFile(path), nil
	case "":
		return nil, fmt.Errorf("region file path is required")
	default:
		return nil, fmt.Errorf("unsupported region file %q: want .yaml, .yml or .xlsx", path)
	}
}
