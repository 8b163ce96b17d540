package source

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"idverify/pkg/domain/residentid"
	"idverify/pkg/platform/sentinel"
)

// PostgresSchema creates the table read by Postgres.
const PostgresSchema = `
CREATE TABLE IF NOT EXISTS region_codes (
	code       CHAR(6) PRIMARY KEY,
	province   TEXT NOT NULL,
	prefecture TEXT NOT NULL DEFAULT '',
	county     TEXT NOT NULL DEFAULT '',
	source     TEXT NOT NULL DEFAULT ''
)`

const selectRegions = `SELECT code, province, prefecture, county, source FROM region_codes`

// undefined_table
const pqUndefinedTable = "42P01"

// Postgres reads the region_codes table. When provinces is non-empty only
// codes under those 2-digit province prefixes are loaded.
type Postgres struct {
	db        *sql.DB
	provinces []string
}

func NewPostgres(db *sql.DB, provinces ...string) *Postgres {
	return &Postgres{db: db, provinces: provinces}
}

func (s *Postgres) Name() string {
	return "postgres"
}

func (s *Postgres) Load(ctx context.Context) (map[string]residentid.Region, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if len(s.provinces) > 0 {
		rows, err = s.db.QueryContext(ctx, selectRegions+` WHERE left(code, 2) = ANY($1) ORDER BY code`, pq.Array(s.provinces))
	} else {
		rows, err = s.db.QueryContext(ctx, selectRegions+` ORDER BY code`)
	}
	if err != nil {
		return nil, classifyPostgres(err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.Code, &rec.Province, &rec.Prefecture, &rec.County, &rec.Source); err != nil {
			return nil, fmt.Errorf("scan region row: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, classifyPostgres(err)
	}
	return build(records, "")
}

// Save upserts entries into region_codes in one transaction. Used to seed
// the table from another source.
func (s *Postgres) Save(ctx context.Context, entries map[string]residentid.Region) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return classifyPostgres(err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO region_codes (code, province, prefecture, county, source)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (code) DO UPDATE SET
			province = EXCLUDED.province,
			prefecture = EXCLUDED.prefecture,
			county = EXCLUDED.county,
			source = EXCLUDED.source
	`)
	if err != nil {
		return classifyPostgres(err)
	}
	defer stmt.Close()

	for code, r := range entries {
		if _, err := stmt.ExecContext(ctx, code, r.Province, r.Prefecture, r.County, r.Source); err != nil {
			return fmt.Errorf("upsert region %s: %w", code, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit regions: %w", err)
	}
	return nil
}

func classifyPostgres(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if pqErr.Code == pqUndefinedTable {
			return fmt.Errorf("query region_codes: %v: %w", err, sentinel.ErrNotFound)
		}
		return fmt.Errorf("query region_codes: %w", err)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("query region_codes: %v: %w", err, sentinel.ErrUnavailable)
}
