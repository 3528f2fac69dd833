package usecase

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by booking operations. Callers inspect them with
// errors.Is; the adaptor maps each kind to a stable HTTP status.
var (
	ErrValidation         = errors.New("validation failed")
	ErrSeatConflict       = errors.New("seat already booked")
	ErrNotFound           = errors.New("booking not found")
	ErrForbidden          = errors.New("booking does not belong to this user")
	ErrInvalidState       = errors.New("booking is not in a cancellable state")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// storageFailure tags unexpected persistence errors as retryable. The driver
// detail stays in the message for logs but the kind is what callers see.
func storageFailure(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrStorageUnavailable, op, err)
}
