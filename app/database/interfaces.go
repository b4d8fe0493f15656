package database

import (
	"context"
	"time"
)

type ApartmentRepository interface {
	GetApartment(ctx context.Context, id string) (*Apartment, error)
	GetByConfigName(ctx context.Context, configName string) (*Apartment, error)
	ListApartments(ctx context.Context) ([]Apartment, error)
	GetApartmentCount(ctx context.Context) (int, error)

	CreateApartment(ctx context.Context, a *Apartment) error
	UpdateApartment(ctx context.Context, a *Apartment) error
	DeleteApartment(ctx context.Context, id string) error

	// ListSyncable returns active apartments that have at least one
	// enabled feed, ordered by name.
	ListSyncable(ctx context.Context) ([]Apartment, error)

	GetFeeds(ctx context.Context, apartmentID string) ([]ApartmentFeed, error)
	UpsertFeed(ctx context.Context, f *ApartmentFeed) error
	DeleteFeed(ctx context.Context, apartmentID, source string) error
	UpdateFeedSyncState(ctx context.Context, feedID string, syncedAt time.Time, lastError string) error
}

type ReservationRepository interface {
	GetReservation(ctx context.Context, id string) (*Reservation, error)
	ListReservations(ctx context.Context, apartmentID string) ([]Reservation, error)
	GetReservationStats(ctx context.Context) (total, active, cancelled int, err error)

	CreateReservation(ctx context.Context, r *Reservation) error
	UpdateReservation(ctx context.Context, r *Reservation) error
	UpdateReservationStatus(ctx context.Context, id, status string) error
	DeleteReservation(ctx context.Context, id string) error

	// GetByExternalID looks up an imported reservation by its dedup key.
	// Returns nil when no such row exists.
	GetByExternalID(ctx context.Context, apartmentID, source, externalID string) (*Reservation, error)

	// ListImported returns active feed-sourced reservations for one
	// apartment and source (rows carrying an external id).
	ListImported(ctx context.Context, apartmentID, source string) ([]Reservation, error)

	// FindOverlapping returns active reservations whose half-open
	// [check_in, check_out) window intersects the given one.
	// excludeID may be empty.
	FindOverlapping(ctx context.Context, apartmentID, checkIn, checkOut, excludeID string) ([]Reservation, error)
}

type CleaningRepository interface {
	GetSession(ctx context.Context, id string) (*CleaningSession, error)
	ListSessions(ctx context.Context, apartmentID, status string) ([]CleaningSession, error)
	GetSessionStats(ctx context.Context) (pending, inProgress, completed int, err error)

	CreateSession(ctx context.Context, s *CleaningSession) error
	UpdateSession(ctx context.Context, s *CleaningSession) error
	DeleteSession(ctx context.Context, id string) error

	// GetByReservation returns the session owned by a reservation, or nil.
	GetByReservation(ctx context.Context, reservationID string) (*CleaningSession, error)

	// RescheduleForReservation moves a reservation's session to a new
	// date unless the session has already been completed.
	RescheduleForReservation(ctx context.Context, reservationID, scheduledDate string) error
}

type SyncLogRepository interface {
	Append(ctx context.Context, apartmentID, eventType, description string) error
	ListRecent(ctx context.Context, limit int) ([]SyncLog, error)
}
