package metadata

import (
	"errors"
	"fmt"
	"time"
)

// ErrNoCover is returned when the catalog confirms the book has no cover
// image. It is a normal outcome, distinct from a transport failure while
// fetching a cover that exists.
var ErrNoCover = errors.New("cover not available")

// FailureKind classifies why a catalog interaction failed.
type FailureKind string

const (
	// FailTimeout covers request deadlines and caller cancellation.
	FailTimeout FailureKind = "timeout"
	// FailUnreachable covers connection-level errors and unexpected
	// server statuses.
	FailUnreachable FailureKind = "unreachable"
	// FailRateLimited means the catalog is throttling us (Douban answers
	// 403 when it does).
	FailRateLimited FailureKind = "rate_limited"
	// FailMalformedPayload means the response body did not match either
	// expected payload shape.
	FailMalformedPayload FailureKind = "malformed_payload"
	// FailNotFound means the catalog has no such subject.
	FailNotFound FailureKind = "not_found"
)

// LookupError is the typed failure surfaced to the host for transport and
// payload problems. A "no match" outcome is not an error and is never
// reported through this type.
type LookupError struct {
	Kind FailureKind
	// RetryAfter carries the catalog's backoff hint for FailRateLimited.
	// 0 means the catalog gave none.
	RetryAfter time.Duration
	Err        error
}

func (e *LookupError) Error() string {
	if e.Err == nil {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *LookupError) Unwrap() error {
	return e.Err
}

// AsLookupError unwraps err to a *LookupError if there is one in the chain.
func AsLookupError(err error) (*LookupError, bool) {
	var le *LookupError
	if errors.As(err, &le) {
		return le, true
	}
	return nil, false
}

// IsRateLimited reports whether err is a rate-limit failure, so callers can
// schedule backoff without unwrapping themselves.
func IsRateLimited(err error) bool {
	le, ok := AsLookupError(err)
	return ok && le.Kind == FailRateLimited
}
