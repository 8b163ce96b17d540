// Package models holds the verification results shared by the identity
// service and its transports.
package models

import "idverify/pkg/domain/residentid"

// Result is the outcome of verifying one identity number. Decoded is set
// only when Valid is true; Reason is set only when it is false.
type Result struct {
	Input   string
	Valid   bool
	Reason  residentid.Reason
	Decoded *residentid.Decoded
}

// Valid builds an accepted result.
func Valid(input string, decoded residentid.Decoded) Result {
	return Result{Input: input, Valid: true, Decoded: &decoded}
}

// Invalid builds a rejected result.
func Invalid(input string, reason residentid.Reason) Result {
	return Result{Input: input, Reason: reason}
}

// Outcome labels the result for metrics and logs: "valid" or the rejection
// reason.
func (r Result) Outcome() string {
	if r.Valid {
		return "valid"
	}
	return r.Reason.String()
}
