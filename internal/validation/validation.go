// Package validation holds the input checks an event must pass before it is stored.
package validation

import (
	"math"

	apperrors "event-registry/pkg/app_errors"
)

// ValidateCreation checks title, location, date and duration in that order and
// returns the first failure. date must be strictly after now and now+duration
// must fit in an int64.
func ValidateCreation(name string, date int64, locationName string, duration int64, now int64) error {
	if name == "" {
		return apperrors.ErrEmptyTitle
	}
	if locationName == "" {
		return apperrors.ErrEmptyLocation
	}
	if date <= now {
		return apperrors.ErrDateNotFuture
	}
	if duration <= 0 || duration > math.MaxInt64-now {
		return apperrors.ErrInvalidDuration
	}
	return nil
}
