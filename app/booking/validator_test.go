package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/okhomenko/staysync/app/database"
)

// fakeReservationRepo implements FindOverlapping over an in-memory
// slice with the same half-open interval rule the SQL query uses.
type fakeReservationRepo struct {
	database.ReservationRepository
	reservations []database.Reservation
}

func (f *fakeReservationRepo) FindOverlapping(ctx context.Context, apartmentID, checkIn, checkOut, excludeID string) ([]database.Reservation, error) {
	var out []database.Reservation
	for _, r := range f.reservations {
		if r.ApartmentID != apartmentID || r.Status != database.ReservationActive {
			continue
		}
		if excludeID != "" && r.ID == excludeID {
			continue
		}
		if r.CheckIn < checkOut && r.CheckOut > checkIn {
			out = append(out, r)
		}
	}
	return out, nil
}

func fixedClock(date string) func() time.Time {
	t, _ := time.Parse("2006-01-02", date)
	return func() time.Time { return t }
}

func newTestValidator(existing []database.Reservation) *Validator {
	v := NewValidator(&fakeReservationRepo{reservations: existing})
	v.SetClock(fixedClock("2026-02-01"))
	return v
}

func TestCheckOverlapAcceptsFreeWindow(t *testing.T) {
	apartment := &database.Apartment{ID: "apt-1"}
	v := newTestValidator(nil)

	if err := v.CheckOverlap(context.Background(), apartment, "2026-03-01", "2026-03-05", ""); err != nil {
		t.Errorf("Expected no error for free window, got: %v", err)
	}
}

func TestCheckOverlapAllowsSameDayTurnover(t *testing.T) {
	apartment := &database.Apartment{ID: "apt-1"}
	v := newTestValidator([]database.Reservation{
		{ID: "res-1", ApartmentID: "apt-1", CheckIn: "2026-03-01", CheckOut: "2026-03-05", Status: database.ReservationActive},
	})

	// New check-in on the existing checkout date is a valid turnover.
	if err := v.CheckOverlap(context.Background(), apartment, "2026-03-05", "2026-03-08", ""); err != nil {
		t.Errorf("Expected turnover to be allowed, got: %v", err)
	}

	// New checkout on the existing check-in date as well.
	if err := v.CheckOverlap(context.Background(), apartment, "2026-02-27", "2026-03-01", ""); err != nil {
		t.Errorf("Expected turnover to be allowed, got: %v", err)
	}
}

func TestCheckOverlapDetectsConflict(t *testing.T) {
	apartment := &database.Apartment{ID: "apt-1"}
	v := newTestValidator([]database.Reservation{
		{ID: "res-1", ApartmentID: "apt-1", CheckIn: "2026-03-01", CheckOut: "2026-03-05", Status: database.ReservationActive},
	})

	err := v.CheckOverlap(context.Background(), apartment, "2026-03-04", "2026-03-06", "")

	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("Expected *ConflictError, got: %v", err)
	}
	if conflict.ReservationID != "res-1" {
		t.Errorf("Expected conflict with 'res-1', got: %s", conflict.ReservationID)
	}
}

func TestCheckOverlapIgnoresCancelledReservations(t *testing.T) {
	apartment := &database.Apartment{ID: "apt-1"}
	v := newTestValidator([]database.Reservation{
		{ID: "res-1", ApartmentID: "apt-1", CheckIn: "2026-03-01", CheckOut: "2026-03-05", Status: database.ReservationCancelled},
	})

	if err := v.CheckOverlap(context.Background(), apartment, "2026-03-02", "2026-03-04", ""); err != nil {
		t.Errorf("Expected cancelled reservation to be ignored, got: %v", err)
	}
}

func TestCheckOverlapExcludesOwnReservation(t *testing.T) {
	apartment := &database.Apartment{ID: "apt-1"}
	v := newTestValidator([]database.Reservation{
		{ID: "res-1", ApartmentID: "apt-1", CheckIn: "2026-03-01", CheckOut: "2026-03-05", Status: database.ReservationActive},
	})

	// Editing res-1 into a window overlapping itself must pass.
	if err := v.CheckOverlap(context.Background(), apartment, "2026-03-02", "2026-03-06", "res-1"); err != nil {
		t.Errorf("Expected own reservation to be excluded, got: %v", err)
	}
}

func TestCheckOverlapRejectsInvertedRange(t *testing.T) {
	apartment := &database.Apartment{ID: "apt-1"}
	v := newTestValidator(nil)

	err := v.CheckOverlap(context.Background(), apartment, "2026-03-05", "2026-03-01", "")

	var invalid *InvalidRangeError
	if !errors.As(err, &invalid) {
		t.Fatalf("Expected *InvalidRangeError, got: %v", err)
	}
}

func TestCheckOverlapSameDayWindow(t *testing.T) {
	v := newTestValidator(nil)

	nightly := &database.Apartment{ID: "apt-1", DailyRental: false}
	err := v.CheckOverlap(context.Background(), nightly, "2026-03-01", "2026-03-01", "")
	var invalid *InvalidRangeError
	if !errors.As(err, &invalid) {
		t.Fatalf("Expected *InvalidRangeError for nightly same-day window, got: %v", err)
	}

	daily := &database.Apartment{ID: "apt-2", DailyRental: true}
	if err := v.CheckOverlap(context.Background(), daily, "2026-03-01", "2026-03-01", ""); err != nil {
		t.Errorf("Expected same-day window for daily rental, got: %v", err)
	}
}

func TestCheckOverlapRejectsPastCheckIn(t *testing.T) {
	apartment := &database.Apartment{ID: "apt-1"}
	v := newTestValidator(nil)

	err := v.CheckOverlap(context.Background(), apartment, "2026-01-15", "2026-01-20", "")

	var past *PastDateError
	if !errors.As(err, &past) {
		t.Fatalf("Expected *PastDateError, got: %v", err)
	}
	if past.Today != "2026-02-01" {
		t.Errorf("Expected today '2026-02-01', got: %s", past.Today)
	}
}

func TestCheckOverlapRejectsMalformedDates(t *testing.T) {
	apartment := &database.Apartment{ID: "apt-1"}
	v := newTestValidator(nil)

	for _, dates := range [][2]string{
		{"03/01/2026", "2026-03-05"},
		{"2026-03-01", "tomorrow"},
	} {
		err := v.CheckOverlap(context.Background(), apartment, dates[0], dates[1], "")
		var invalid *InvalidRangeError
		if !errors.As(err, &invalid) {
			t.Errorf("Expected *InvalidRangeError for %v, got: %v", dates, err)
		}
	}
}
