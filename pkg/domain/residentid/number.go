// Package residentid validates and decodes 18-character resident identity
// numbers (GB 11643-1999).
//
// The package is pure: no I/O, no context.Context, and no time.Now() calls.
// The current time is always received as a parameter so that the date gate
// stays deterministic under test.
//
// Layout of a number (0-indexed):
//
//	0-5    region code (administrative division)
//	6-13   birth date YYYYMMDD
//	14-16  sequence code; index 16 carries the sex parity
//	17     check character, MOD 11-2 over 0-16
package residentid

// Length is the only accepted identifier length.
const Length = 18

// Field offsets. Indexing a [Length]byte with these constants is bounds
// checked by the compiler.
const (
	regionStart   = 0
	regionEnd     = 6
	provinceEnd   = 2
	yearStart     = 6
	monthStart    = 10
	dayStart      = 12
	dateEnd       = 14
	sequenceIndex = 16
	checkIndex    = 17
)

// Number is a validated, normalized identity number.
//
// Invariants:
//   - 17 ASCII digits followed by a digit or 'X'
//   - embedded birth date is a real calendar date
//   - check character matches the MOD 11-2 checksum
//
// The zero value is not a valid number; use Validate or MustParse.
type Number struct {
	raw [Length]byte
}

// String returns the normalized number (upper-case check character).
func (n Number) String() string {
	if n.IsZero() {
		return ""
	}
	return string(n.raw[:])
}

// IsZero reports whether n is the zero value.
func (n Number) IsZero() bool {
	return n.raw[0] == 0
}

// RegionCode returns the 6-digit administrative division code.
func (n Number) RegionCode() string {
	return string(n.raw[regionStart:regionEnd])
}

// ProvinceCode returns the 2-digit province-level prefix of the region code.
func (n Number) ProvinceCode() string {
	return string(n.raw[regionStart:provinceEnd])
}

// BirthDate returns the embedded birth date.
func (n Number) BirthDate() BirthDate {
	return BirthDate{
		Year:  digits(n.raw[yearStart:monthStart]),
		Month: digits(n.raw[monthStart:dayStart]),
		Day:   digits(n.raw[dayStart:dateEnd]),
	}
}

// Sex returns the sex encoded by the parity of the sequence code.
func (n Number) Sex() Sex {
	if (n.raw[sequenceIndex]-'0')%2 == 1 {
		return Male
	}
	return Female
}

// CheckDigit returns the check character ('0'-'9' or 'X').
func (n Number) CheckDigit() byte {
	return n.raw[checkIndex]
}

// digits parses a run of ASCII digits. Callers guarantee the input.
func digits(b []byte) int {
	v := 0
	for _, c := range b {
		v = v*10 + int(c-'0')
	}
	return v
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
