package services

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound            = errors.New("not_found")
	ErrEmptyCart           = errors.New("cart_empty")
	ErrExternalIDExhausted = errors.New("external_id_exhausted")
	ErrInvalidTransition   = errors.New("invalid_status_transition")
	ErrInvalidCredentials  = errors.New("invalid_credentials")
	ErrUserExists          = errors.New("user_already_exists")
)

// Clock returns the current time. Services take one so tests can pin "today".
type Clock func() time.Time

// dayBounds returns the start of the local day containing t and the start of the next one
func dayBounds(t time.Time, loc *time.Location) (time.Time, time.Time) {
	lt := t.In(loc)
	start := time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}

// money converts a decimal amount to a JSON friendly float rounded to cents
func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
