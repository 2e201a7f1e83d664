package records

import (
	"errors"
	"fmt"

	"github.com/elevatic20/worktime-app/internal/storage"
)

var (
	// ErrInvalidShift matches every *ValidationError.
	ErrInvalidShift = errors.New("invalid shift")
	// ErrNotFound is returned when no shift has the requested id.
	ErrNotFound = errors.New("shift not found")
	// ErrAmbiguous is returned when an id prefix matches more than one shift.
	ErrAmbiguous = errors.New("ambiguous shift id")
	// ErrIndexOutOfRange is returned by the positional operations.
	ErrIndexOutOfRange = errors.New("shift index out of range")
	// ErrMonthMismatch is returned when a shift's date is outside the store's month.
	ErrMonthMismatch = errors.New("shift date outside store month")
	// ErrInvalidUser is returned by Open for unusable user names.
	ErrInvalidUser = storage.ErrInvalidUser
)

// ValidationError rejects user input before anything is mutated.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return e.Field + ": " + e.Reason
}

// Is lets errors.Is(err, ErrInvalidShift) match any ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidShift
}

// PersistenceError reports a failed durable write. The in-memory sequence is
// left as it was before the operation.
type PersistenceError struct {
	Key string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("saving %s: %v", e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
