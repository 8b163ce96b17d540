package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Region sources and stores return
// these (optionally wrapped) so services can translate them into coded errors.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: key, object or table does not exist in the backing store
// - ErrEmpty: the backing store exists but holds no usable records
// - ErrUnavailable: backend temporarily unreachable
// - ErrMalformed: stored data could not be decoded
//
// For validation errors (bad input, missing fields), use pkg/domain-errors directly.
var (
	ErrNotFound    = errors.New("not found")
	ErrEmpty       = errors.New("empty")
	ErrUnavailable = errors.New("unavailable")
	ErrMalformed   = errors.New("malformed")
)
