package jalali

import (
	"errors"
	"fmt"
)

// Sentinel errors reported by field validation and arithmetic. They are
// raised synchronously by whichever call forces a fields-to-time
// conversion (Time, Get, Add, Roll) and always before any state is
// mutated, so a failing Calendar still holds its previous values.
var (
	// ErrUnsupportedField is returned when Add or Roll is asked to
	// operate on a field with no arithmetic meaning (zone or DST
	// offset) or on an unknown field.
	ErrUnsupportedField = errors.New("field does not support arithmetic")

	// ErrInvalidEra is returned when the era field holds anything other
	// than BH or AH. Unlike other range errors this is rejected even in
	// lenient mode.
	ErrInvalidEra = errors.New("era must be BH or AH")

	// ErrFieldOutOfRange is returned in strict mode when an explicitly
	// set field lies outside its valid range. Day-of-month and
	// day-of-year are checked against the actual month/year length, not
	// the static maximum.
	ErrFieldOutOfRange = errors.New("field value out of range")

	// ErrDayOfWeekInMonthZero is returned when day-of-week-in-month is
	// explicitly set to zero, which has no defined meaning.
	ErrDayOfWeekInMonthZero = errors.New("day-of-week-in-month must not be zero")
)

func fieldRangeError(f Field, value, min, max int) error {
	return fmt.Errorf("%w: %s=%d, want %d..%d", ErrFieldOutOfRange, f, value, min, max)
}

func unsupportedFieldError(f Field) error {
	return fmt.Errorf("%w: %s", ErrUnsupportedField, f)
}
