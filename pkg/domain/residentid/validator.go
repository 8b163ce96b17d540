package residentid

import (
	"strings"
	"time"
	"unicode/utf8"
)

// DefaultMinBirthYear is the earliest birth year accepted by DefaultPolicy.
const DefaultMinBirthYear = 1840

// Policy holds the date rules that are not fixed by the national standard.
type Policy struct {
	MinBirthYear int
	// RejectFutureDates rejects birth dates later than the validation date.
	RejectFutureDates bool
}

// DefaultPolicy returns the policy used by Validate.
func DefaultPolicy() Policy {
	return Policy{MinBirthYear: DefaultMinBirthYear, RejectFutureDates: true}
}

// Validator runs the gates in order: length, format, date, checksum.
// It holds no mutable state and is safe for concurrent use.
type Validator struct {
	policy Policy
}

// NewValidator constructs a Validator. A zero MinBirthYear falls back to
// DefaultMinBirthYear.
func NewValidator(policy Policy) *Validator {
	if policy.MinBirthYear == 0 {
		policy.MinBirthYear = DefaultMinBirthYear
	}
	return &Validator{policy: policy}
}

// Policy returns the validator's policy.
func (v *Validator) Policy() Policy {
	return v.policy
}

// Validate normalizes raw and checks it. now is only consulted by the
// future-date rule. Surrounding whitespace is not trimmed.
// Every rejection is a *ValidationError.
func (v *Validator) Validate(raw string, now time.Time) (Number, error) {
	normalized := strings.ToUpper(raw)

	if n := utf8.RuneCountInString(normalized); n != Length {
		return Number{}, reject(BadLength, "got %d characters", n)
	}
	// 18 runes that are all ASCII occupy exactly 18 bytes.
	if len(normalized) != Length {
		return Number{}, reject(BadFormat, "non-ASCII character present")
	}

	var num Number
	for i := 0; i < checkIndex; i++ {
		c := normalized[i]
		if !isDigit(c) {
			return Number{}, reject(BadFormat, "position %d is %q", i, c)
		}
		num.raw[i] = c
	}
	last := normalized[checkIndex]
	if !isDigit(last) && last != 'X' {
		return Number{}, reject(BadFormat, "check character is %q", last)
	}
	num.raw[checkIndex] = last

	if err := checkDate(num.BirthDate(), v.policy, now); err != nil {
		return Number{}, err
	}

	if want := checksum(num.raw[:checkIndex]); want != last {
		return Number{}, reject(BadChecksum, "expected %q, got %q", want, last)
	}
	return num, nil
}

// Validate checks raw with DefaultPolicy.
func Validate(raw string, now time.Time) (Number, error) {
	return NewValidator(DefaultPolicy()).Validate(raw, now)
}

// MustParse validates raw without the future-date rule, panicking if invalid.
// Use only in tests or for values known to be valid.
func MustParse(raw string) Number {
	n, err := NewValidator(Policy{MinBirthYear: DefaultMinBirthYear}).Validate(raw, time.Time{})
	if err != nil {
		panic(err)
	}
	return n
}
