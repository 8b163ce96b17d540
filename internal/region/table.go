// Package region holds the administrative region table consulted when an
// identity number is decoded.
//
// A Table is an immutable snapshot. Hot reloads build a fresh Table and swap
// it into a Holder atomically; readers keep whatever snapshot they loaded.
package region

import (
	"fmt"
	"sort"

	"idverify/pkg/domain/residentid"
)

// CodeLength is the width of a region code.
const CodeLength = 6

// Table is an immutable region code lookup. The zero value and a nil *Table
// are empty tables.
type Table struct {
	entries map[string]residentid.Region
	source  string
}

// NewTable copies entries into a new snapshot. Every key must be a 6-digit
// code and every entry must name a province.
func NewTable(entries map[string]residentid.Region, source string) (*Table, error) {
	copied := make(map[string]residentid.Region, len(entries))
	for code, r := range entries {
		if !ValidCode(code) {
			return nil, fmt.Errorf("region code %q must be %d digits", code, CodeLength)
		}
		if r.Province == "" {
			return nil, fmt.Errorf("region code %s has no province", code)
		}
		copied[code] = r
	}
	return &Table{entries: copied, source: source}, nil
}

// MustTable is NewTable that panics. Use only in tests and for bundled data.
func MustTable(entries map[string]residentid.Region, source string) *Table {
	t, err := NewTable(entries, source)
	if err != nil {
		panic(err)
	}
	return t
}

// Lookup implements residentid.RegionTable.
func (t *Table) Lookup(code string) (residentid.Region, bool) {
	if t == nil {
		return residentid.Region{}, false
	}
	r, ok := t.entries[code]
	return r, ok
}

// Len returns the number of entries.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// Source names where the snapshot was loaded from.
func (t *Table) Source() string {
	if t == nil {
		return ""
	}
	return t.source
}

// Codes returns every region code in ascending order.
func (t *Table) Codes() []string {
	if t == nil {
		return nil
	}
	codes := make([]string, 0, len(t.entries))
	for code := range t.entries {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// ValidCode reports whether code is six ASCII digits.
func ValidCode(code string) bool {
	if len(code) != CodeLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return false
		}
	}
	return true
}
