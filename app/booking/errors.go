package booking

import "fmt"

// InvalidRangeError reports a checkout date before (or, for nightly
// bookings, equal to) the check-in date.
type InvalidRangeError struct {
	CheckIn  string
	CheckOut string
	Reason   string
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid date range %s..%s: %s", e.CheckIn, e.CheckOut, e.Reason)
}

// PastDateError reports a check-in date earlier than the current date.
type PastDateError struct {
	CheckIn string
	Today   string
}

func (e *PastDateError) Error() string {
	return fmt.Sprintf("check-in date %s is in the past (today is %s)", e.CheckIn, e.Today)
}

// ConflictError reports an existing reservation occupying the
// requested window. It carries the conflicting row so the caller can
// surface which booking blocks the submission.
type ConflictError struct {
	ReservationID string
	CheckIn       string
	CheckOut      string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflicts with reservation %s (%s to %s)",
		e.ReservationID, e.CheckIn, e.CheckOut)
}
