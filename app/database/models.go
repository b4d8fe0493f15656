package database

import (
	"time"
)

// Reservation sources
const (
	SourceManual  = "manual"
	SourceAirbnb  = "airbnb"
	SourceBooking = "booking"
)

// Reservation statuses
const (
	ReservationActive    = "active"
	ReservationCancelled = "cancelled"
)

// Cleaning session statuses
const (
	CleaningPending    = "pending"
	CleaningInProgress = "in_progress"
	CleaningCompleted  = "completed"
)

type Apartment struct {
	ID           string
	ConfigName   *string // set for rows seeded from property config files
	Name         string
	Address      string
	Beds         int
	MaxGuests    int
	Description  string
	CheckInTime  string // local time "15:00"
	CheckOutTime string // local time "11:00"
	CleaningFee  *float64
	DailyRental  bool // same-day check-in/check-out permitted
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ApartmentFeed is one configured external calendar feed for an apartment.
// Source is fixed at configuration time; sync never re-derives it from the URL.
type ApartmentFeed struct {
	ID           string
	ApartmentID  string
	Source       string // airbnb | booking | manual
	URL          string
	Enabled      bool
	LastSyncedAt *time.Time
	LastError    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Reservation struct {
	ID          string
	ApartmentID string
	GuestName   string
	GuestEmail  string
	GuestPhone  string
	GuestsCount int
	CheckIn     string // ISO date "2006-01-02"
	CheckOut    string // ISO date "2006-01-02"
	Source      string // manual | airbnb | booking
	ExternalID  *string
	Status      string // active | cancelled
	Notes       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type CleaningSession struct {
	ID            string
	ApartmentID   string
	ReservationID *string
	CleanerID     *string
	Status        string // pending | in_progress | completed
	ScheduledDate string // ISO date "2006-01-02"
	StartedAt     *time.Time
	CompletedAt   *time.Time
	Notes         string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type SyncLog struct {
	ID          string
	ApartmentID string
	EventType   string
	Description string
	CreatedAt   time.Time
}
