// Package booking validates proposed reservations against the
// existing ledger: date-range sanity, past-date rejection and
// overlap detection for the manual entry path.
package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/okhomenko/staysync/app/database"
	"github.com/okhomenko/staysync/app/ical"
)

// Validator checks a proposed reservation window against an
// apartment's existing reservations.
type Validator struct {
	reservations database.ReservationRepository
	now          func() time.Time
}

func NewValidator(reservations database.ReservationRepository) *Validator {
	return &Validator{
		reservations: reservations,
		now:          time.Now,
	}
}

// SetClock overrides the time source. Intended for tests.
func (v *Validator) SetClock(now func() time.Time) {
	v.now = now
}

// CheckOverlap validates the proposed window and queries for
// conflicting reservations. Two reservations conflict when their
// half-open [check_in, check_out) intervals intersect, so back-to-back
// turnover (checkout and new check-in on the same date) is allowed.
// For daily-rental apartments a same-day window is permitted; nightly
// apartments require a minimum one-night stay.
//
// excludeID, when non-empty, is the reservation being edited; it is
// excluded from the conflict query so a record never conflicts with
// itself. Returns nil when the window is acceptable.
func (v *Validator) CheckOverlap(ctx context.Context, apartment *database.Apartment, checkIn, checkOut, excludeID string) error {
	if _, err := time.Parse(ical.DateFormat, checkIn); err != nil {
		return &InvalidRangeError{CheckIn: checkIn, CheckOut: checkOut, Reason: "malformed check-in date"}
	}
	if _, err := time.Parse(ical.DateFormat, checkOut); err != nil {
		return &InvalidRangeError{CheckIn: checkIn, CheckOut: checkOut, Reason: "malformed check-out date"}
	}

	if checkOut < checkIn {
		return &InvalidRangeError{CheckIn: checkIn, CheckOut: checkOut, Reason: "check-out precedes check-in"}
	}
	if !apartment.DailyRental && checkOut == checkIn {
		return &InvalidRangeError{CheckIn: checkIn, CheckOut: checkOut, Reason: "minimum stay is one night"}
	}

	today := v.now().Format(ical.DateFormat)
	if checkIn < today {
		return &PastDateError{CheckIn: checkIn, Today: today}
	}

	conflicts, err := v.reservations.FindOverlapping(ctx, apartment.ID, checkIn, checkOut, excludeID)
	if err != nil {
		return fmt.Errorf("failed to query overlapping reservations: %w", err)
	}

	if len(conflicts) > 0 {
		first := conflicts[0]
		return &ConflictError{
			ReservationID: first.ID,
			CheckIn:       first.CheckIn,
			CheckOut:      first.CheckOut,
		}
	}

	return nil
}
