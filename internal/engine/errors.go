package engine

import (
	"errors"
	"fmt"
	"strings"
)

// InvalidRequestError marks a malformed request: bad constraint set, wrong
// product-id count for comparison. Surfaced to the caller verbatim, never
// retried.
type InvalidRequestError struct {
	Reason string
}

func (e *InvalidRequestError) Error() string {
	return "invalid request: " + e.Reason
}

// NewInvalidRequest creates an InvalidRequestError with a formatted reason.
func NewInvalidRequest(format string, args ...any) *InvalidRequestError {
	return &InvalidRequestError{Reason: fmt.Sprintf(format, args...)}
}

// NotFoundError reports product ids absent from the record store.
type NotFoundError struct {
	ProductIDs []string
}

func (e *NotFoundError) Error() string {
	return "product not found: " + strings.Join(e.ProductIDs, ", ")
}

// PolicyViolationError is an internal guard: a non-usable field value was
// about to be used as live data. Unreachable from valid inputs; if it fires
// it is an engine bug and must fail loudly.
type PolicyViolationError struct {
	ProductID string
	Field     string
}

func (e *PolicyViolationError) Error() string {
	return fmt.Sprintf("policy violation: non-usable field %s for product %s placed as live data", e.Field, e.ProductID)
}

// IsInvalidRequest reports whether any error in the chain is an
// InvalidRequestError.
func IsInvalidRequest(err error) bool {
	var ir *InvalidRequestError
	return errors.As(err, &ir)
}

// IsNotFound reports whether any error in the chain is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
