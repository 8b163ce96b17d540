// Package source loads region tables from the places they are published:
// a bundled YAML file, YAML or XLSX files on disk, a PostgreSQL table, a
// Redis hash, or an object in an S3-compatible bucket.
//
// Every source produces the same shape, a map from 6-digit region code to
// residentid.Region, and applies the same record rules through build.
package source

import (
	"fmt"
	"strings"

	"idverify/internal/region"
	"idverify/pkg/domain/residentid"
	"idverify/pkg/platform/sentinel"
)

// Record is one region table row as stored by the file and database sources.
type Record struct {
	Code       string `yaml:"code"`
	Province   string `yaml:"province"`
	Prefecture string `yaml:"prefecture"`
	County     string `yaml:"county"`
	Source     string `yaml:"source"`
}

func (r Record) region() residentid.Region {
	return residentid.Region{
		Province:   r.Province,
		Prefecture: r.Prefecture,
		County:     r.County,
		Source:     r.Source,
	}
}

func (r Record) trimmed() Record {
	return Record{
		Code:       strings.TrimSpace(r.Code),
		Province:   strings.TrimSpace(r.Province),
		Prefecture: strings.TrimSpace(r.Prefecture),
		County:     strings.TrimSpace(r.County),
		Source:     strings.TrimSpace(r.Source),
	}
}

// build turns records into entries. defaultTag fills an empty Source field.
// A bad code, a missing province or a duplicate code is ErrMalformed.
func build(records []Record, defaultTag string) (map[string]residentid.Region, error) {
	if len(records) == 0 {
		return nil, sentinel.ErrEmpty
	}
	entries := make(map[string]residentid.Region, len(records))
	for i, raw := range records {
		rec := raw.trimmed()
		if !region.ValidCode(rec.Code) {
			return nil, fmt.Errorf("record %d: code %q: %w", i+1, rec.Code, sentinel.ErrMalformed)
		}
		if rec.Province == "" {
			return nil, fmt.Errorf("record %d: code %s has no province: %w", i+1, rec.Code, sentinel.ErrMalformed)
		}
		if _, dup := entries[rec.Code]; dup {
			return nil, fmt.Errorf("record %d: duplicate code %s: %w", i+1, rec.Code, sentinel.ErrMalformed)
		}
		if rec.Source == "" {
			rec.Source = defaultTag
		}
		entries[rec.Code] = rec.region()
	}
	return entries, nil
}
