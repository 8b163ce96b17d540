//go:build integration

package source

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"idverify/pkg/domain/residentid"
	"idverify/pkg/platform/sentinel"
	"idverify/pkg/testutil/containers"
)

var seedRegions = map[string]residentid.Region{
	"110101": {Province: "北京市", Prefecture: "市辖区", County: "东城区", Source: "2023"},
	"440305": {Province: "广东省", Prefecture: "深圳市", County: "南山区", Source: "2023"},
	"120000": {Province: "天津市", Source: "2023"},
}

func TestPostgres_Integration(t *testing.T) {
	pg := containers.NewPostgres(t, PostgresSchema)
	ctx := context.Background()

	src := NewPostgres(pg.DB)
	_, err := src.Load(ctx)
	assert.ErrorIs(t, err, sentinel.ErrEmpty)

	require.NoError(t, src.Save(ctx, seedRegions))
	entries, err := src.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, seedRegions, entries)

	// Saving again upserts instead of failing on the primary key.
	updated := map[string]residentid.Region{"120000": {Province: "天津市", Source: "2024"}}
	require.NoError(t, src.Save(ctx, updated))
	entries, err = src.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2024", entries["120000"].Source)

	filtered, err := NewPostgres(pg.DB, "44").Load(ctx)
	require.NoError(t, err)
	assert.Len(t, filtered, 1)
	assert.Contains(t, filtered, "440305")
}

func TestPostgres_MissingTable_Integration(t *testing.T) {
	pg := containers.NewPostgres(t, "")
	_, err := NewPostgres(pg.DB).Load(context.Background())
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestRedis_Integration(t *testing.T) {
	rc := containers.NewRedis(t)
	ctx := context.Background()
	require.NoError(t, rc.Flush(ctx))

	src := NewRedis(rc.Client, "")
	_, err := src.Load(ctx)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)

	require.NoError(t, src.Publish(ctx, seedRegions))
	entries, err := src.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, seedRegions, entries)

	require.NoError(t, rc.Client.HSet(ctx, DefaultRedisKey, "110102", "北京市|市辖区").Err())
	_, err = src.Load(ctx)
	assert.ErrorIs(t, err, sentinel.ErrMalformed)
}
