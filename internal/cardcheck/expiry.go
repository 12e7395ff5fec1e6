package cardcheck

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidExpiry is returned for an out-of-range month or a year that
// is neither 2 nor 4 digits.
var ErrInvalidExpiry = errors.New("invalid expiry")

// Status classifies a card's expiry relative to a reference date.
type Status string

const (
	StatusExpired      Status = "expired"
	StatusExpiringSoon Status = "expiring_soon"
	StatusValid        Status = "valid"
)

// expiringSoonMonths is the advance-warning window, in calendar months.
const expiringSoonMonths = 3

// NormalizeYear maps a 2-digit year onto 2000..2099 and accepts 4-digit
// years as-is.
func NormalizeYear(year int) (int, error) {
	switch {
	case year >= 0 && year <= 99:
		return 2000 + year, nil
	case year >= 1000 && year <= 9999:
		return year, nil
	default:
		return 0, fmt.Errorf("%w: year must be 2 or 4 digits", ErrInvalidExpiry)
	}
}

// ExpiryStatus evaluates a card's month/year expiry against asOf at
// calendar-month granularity. A card is valid through the last day of
// its expiry month; within three calendar months of asOf (inclusive,
// the current month counts) it is reported as expiring soon.
func ExpiryStatus(month, year int, asOf time.Time) (Status, error) {
	if month < 1 || month > 12 {
		return "", fmt.Errorf("%w: month must be 1..12", ErrInvalidExpiry)
	}
	y, err := NormalizeYear(year)
	if err != nil {
		return "", err
	}

	monthsLeft := (y-asOf.Year())*12 + month - int(asOf.Month())
	switch {
	case monthsLeft < 0:
		return StatusExpired, nil
	case monthsLeft <= expiringSoonMonths:
		return StatusExpiringSoon, nil
	default:
		return StatusValid, nil
	}
}
