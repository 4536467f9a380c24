package booking

import (
	"errors"
	"fmt"
)

// Rejection reasons returned to the caller when a commit loses the race
// between offer and submission. The caller redirects the client back to slot
// selection with an explanatory banner.
const (
	ReasonStaffUnavailable     = "failed-staff-user"
	ReasonInsufficientCapacity = "failed-resource"
)

// ErrNotFound marks a referenced appointment type, slot or provider that does
// not exist or is not eligible under the current filter or invite scope.
var ErrNotFound = errors.New("not found")

// ValidationError rejects malformed input before any computation runs.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ConflictError is the soft, expected race between offer and commit. It is
// only ever produced by the commit pipeline's revalidation step.
type ConflictError struct {
	Reason  string
	Message string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: %s", e.Reason, e.Message)
}

// NewStaffConflict reports that the chosen staff member no longer has free
// time covering the requested interval.
func NewStaffConflict(staffID string) error {
	return &ConflictError{
		Reason:  ReasonStaffUnavailable,
		Message: fmt.Sprintf("staff member %s is no longer available for the requested time", staffID),
	}
}

// NewCapacityConflict reports that the offered resource set can no longer
// absorb the asked capacity.
func NewCapacityConflict(asked int) error {
	return &ConflictError{
		Reason:  ReasonInsufficientCapacity,
		Message: fmt.Sprintf("remaining capacity is below the requested %d", asked),
	}
}

// IsConflict reports whether err is a soft commit rejection.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

// ConflictReason extracts the machine-readable reason, or "".
func ConflictReason(err error) string {
	var ce *ConflictError
	if errors.As(err, &ce) {
		return ce.Reason
	}
	return ""
}

// IsNotFound reports whether err is the hard not-found failure.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
