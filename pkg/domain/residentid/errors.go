package residentid

import (
	"errors"
	"fmt"
)

// Reason discriminates why a candidate number was rejected.
type Reason int

const (
	ReasonNone Reason = iota
	BadLength
	BadFormat
	BadDate
	BadChecksum
)

var reasonNames = map[Reason]string{
	ReasonNone:  "none",
	BadLength:   "bad_length",
	BadFormat:   "bad_format",
	BadDate:     "bad_date",
	BadChecksum: "bad_checksum",
}

func (r Reason) String() string {
	if name, ok := reasonNames[r]; ok {
		return name
	}
	return fmt.Sprintf("reason(%d)", int(r))
}

// Reasons lists every failure reason in gate order.
func Reasons() []Reason {
	return []Reason{BadLength, BadFormat, BadDate, BadChecksum}
}

// GenericMessage is the single message shown to end users for any rejected
// number. The discriminated Reason stays available to logs and tests.
const GenericMessage = "invalid resident identity number"

// Sentinels matched by errors.Is against a *ValidationError.
var (
	ErrBadLength   = errors.New("identity number must be 18 characters")
	ErrBadFormat   = errors.New("identity number must be 17 digits followed by a digit or X")
	ErrBadDate     = errors.New("identity number carries an invalid birth date")
	ErrBadChecksum = errors.New("identity number check character does not match")
)

var reasonSentinels = map[Reason]error{
	BadLength:   ErrBadLength,
	BadFormat:   ErrBadFormat,
	BadDate:     ErrBadDate,
	BadChecksum: ErrBadChecksum,
}

// ValidationError is returned for every rejected candidate.
type ValidationError struct {
	Reason Reason
	Detail string
}

func (e *ValidationError) Error() string {
	base := e.Unwrap()
	if base == nil {
		return "invalid identity number"
	}
	if e.Detail == "" {
		return base.Error()
	}
	return base.Error() + ": " + e.Detail
}

// Unwrap exposes the sentinel for the reason.
func (e *ValidationError) Unwrap() error {
	return reasonSentinels[e.Reason]
}

// ReasonOf extracts the rejection reason from err.
func ReasonOf(err error) (Reason, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Reason, true
	}
	return ReasonNone, false
}

func reject(reason Reason, format string, args ...any) error {
	return &ValidationError{Reason: reason, Detail: fmt.Sprintf(format, args...)}
}
