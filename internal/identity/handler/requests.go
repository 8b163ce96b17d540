package handler

import (
	"strings"

	dErrors "idverify/pkg/domain-errors"
)

// maxInputLength bounds a single id_number before it reaches the service.
// Anything this long is already a bad_length rejection.
const maxInputLength = 64

// VerifyRequest is the body of POST /v1/identity/verify.
type VerifyRequest struct {
	IDNumber string `json:"id_number"`
}

// Validate implements httputil.Validatable.
func (r *VerifyRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if len(r.IDNumber) > maxInputLength {
		return dErrors.New(dErrors.CodeValidation, "id_number is too long")
	}
	r.IDNumber = strings.TrimSpace(r.IDNumber)
	if r.IDNumber == "" {
		return dErrors.New(dErrors.CodeValidation, "id_number is required")
	}
	return nil
}

// BatchVerifyRequest is the body of POST /v1/identity/verify/batch.
type BatchVerifyRequest struct {
	IDNumbers []string `json:"id_numbers"`
}

// Validate implements httputil.Validatable. The batch limit is enforced by
// the service.
func (r *BatchVerifyRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if len(r.IDNumbers) == 0 {
		return dErrors.New(dErrors.CodeValidation, "id_numbers must not be empty")
	}
	for _, n := range r.IDNumbers {
		if len(n) > maxInputLength {
			return dErrors.New(dErrors.CodeValidation, "id_numbers contains an entry that is too long")
		}
	}
	return nil
}
