package source

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"idverify/pkg/domain/residentid"
	"idverify/pkg/platform/sentinel"
)

// DefaultRedisKey is the hash holding the region table.
const DefaultRedisKey = "idverify:regions"

const fieldSeparator = "|"

// Redis reads a region table from a hash: field = region code,
// value = "province|prefecture|county|source".
type Redis struct {
	client redis.Cmdable
	key    string
}

func NewRedis(client redis.Cmdable, key string) *Redis {
	if key == "" {
		key = DefaultRedisKey
	}
	return &Redis{client: client, key: key}
}

func (s *Redis) Name() string {
	return "redis:" + s.key
}

func (s *Redis) Load(ctx context.Context) (map[string]residentid.Region, error) {
	fields, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("hgetall %s: %v: %w", s.key, err, sentinel.ErrUnavailable)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("hash %s: %w", s.key, sentinel.ErrNotFound)
	}

	records := make([]Record, 0, len(fields))
	for code, value := range fields {
		parts := strings.Split(value, fieldSeparator)
		if len(parts) != 4 {
			return nil, fmt.Errorf("hash %s field %s: want 4 parts, got %d: %w", s.key, code, len(parts), sentinel.ErrMalformed)
		}
		records = append(records, Record{
			Code:       code,
			Province:   parts[0],
			Prefecture: parts[1],
			County:     parts[2],
			Source:     parts[3],
		})
	}
	return build(records, "")
}

// Publish replaces the hash with entries in a single MULTI/EXEC so readers
// never see a half-written table.
func (s *Redis) Publish(ctx context.Context, entries map[string]residentid.Region) error {
	values := make(map[string]any, len(entries))
	for code, r := range entries {
		values[code] = EncodeRedisValue(r)
	}
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.key)
		if len(values) > 0 {
			pipe.HSet(ctx, s.key, values)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", s.key, err)
	}
	return nil
}

// EncodeRedisValue formats r as a hash value.
func EncodeRedisValue(r residentid.Region) string {
	return strings.Join([]string{r.Province, r.Prefecture, r.County, r.Source}, fieldSeparator)
}
