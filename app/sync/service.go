// Package sync reconciles external calendar feeds into the local
// reservation ledger and keeps the derived cleaning schedule in step.
package sync

import (
	"context"
	"fmt"
	"log/slog"
	stdsync "sync"
	"time"

	"github.com/okhomenko/staysync/app/database"
	"github.com/okhomenko/staysync/app/ical"
)

// Sync log event types
const (
	logEventAdded     = "reservation_added"
	logEventUpdated   = "reservation_updated"
	logEventCancelled = "reservation_cancelled"
	logEventConflict  = "conflict_detected"
	logEventFailed    = "sync_failed"
)

// Service runs feed reconciliation for apartments. Runs for the same
// apartment are serialized through a per-apartment mutex; the unique
// index on (apartment_id, source, external_id) remains the
// authoritative guard either way.
type Service struct {
	apartments   database.ApartmentRepository
	reservations database.ReservationRepository
	cleanings    database.CleaningRepository
	logs         database.SyncLogRepository
	parser       *ical.Parser

	locks   map[string]*stdsync.Mutex
	locksMu stdsync.Mutex

	now func() time.Time
}

func NewService(
	apartments database.ApartmentRepository,
	reservations database.ReservationRepository,
	cleanings database.CleaningRepository,
	logs database.SyncLogRepository,
	parser *ical.Parser,
) *Service {
	return &Service{
		apartments:   apartments,
		reservations: reservations,
		cleanings:    cleanings,
		logs:         logs,
		parser:       parser,
		locks:        make(map[string]*stdsync.Mutex),
		now:          time.Now,
	}
}

// SetClock overrides the time source. Intended for tests.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Run syncs every active apartment that has at least one enabled feed,
// in name order, and returns the aggregate report. A failing feed is
// recorded against its apartment and never aborts the run.
func (s *Service) Run(ctx context.Context) (*Report, error) {
	started := s.now().UTC()

	apartments, err := s.apartments.ListSyncable(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list syncable apartments: %w", err)
	}

	report := &Report{StartedAt: started}
	for i := range apartments {
		result := s.SyncApartment(ctx, &apartments[i])
		report.Results = append(report.Results, result)
	}
	report.Duration = time.Since(started).String()

	added, updated, skipped, cancelled, failed := report.Totals()
	slog.Info("Sync run completed",
		"properties", len(report.Results),
		"added", added,
		"updated", updated,
		"skipped_duplicates", skipped,
		"cancelled", cancelled,
		"failed", failed,
		"duration", report.Duration)

	return report, nil
}

// SyncApartment reconciles all enabled feeds of one apartment.
func (s *Service) SyncApartment(ctx context.Context, apt *database.Apartment) PropertyResult {
	lock := s.apartmentLock(apt.ID)
	lock.Lock()
	defer lock.Unlock()

	result := PropertyResult{
		ApartmentID:  apt.ID,
		PropertyName: apt.Name,
		Added:        []EventResult{},
		Failed:       []EventResult{},
		SyncedAt:     s.now().UTC(),
	}

	feeds, err := s.apartments.GetFeeds(ctx, apt.ID)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	for _, feed := range feeds {
		if !feed.Enabled {
			continue
		}

		events, err := s.parser.FetchAndParse(ctx, feed.URL)
		if err != nil {
			// Isolate the failure: record it, keep the other feeds
			// and apartments going.
			result.Errors = append(result.Errors, err.Error())
			s.recordFeedState(ctx, feed.ID, err.Error())
			s.log(ctx, apt.ID, logEventFailed, err.Error())
			slog.Error("Feed sync failed", "property", apt.Name, "source", feed.Source, "error", err)
			continue
		}

		s.reconcile(ctx, apt, &feed, events, &result)
		s.recordFeedState(ctx, feed.ID, "")
	}

	slog.Info("Property sync completed",
		"property", apt.Name,
		"added", len(result.Added),
		"updated", result.Updated,
		"skipped_duplicates", result.SkippedDuplicate,
		"cancelled", result.Cancelled,
		"failed", len(result.Failed),
		"feed_errors", len(result.Errors))

	return result
}

// reconcile applies one feed's events to the ledger: insert unseen
// UIDs, update changed ones, and soft-cancel imported reservations
// whose UID vanished from the feed.
func (s *Service) reconcile(ctx context.Context, apt *database.Apartment, feed *database.ApartmentFeed, events []ical.Event, result *PropertyResult) {
	seen := make(map[string]bool, len(events))

	for _, ev := range events {
		seen[ev.UID] = true

		existing, err := s.reservations.GetByExternalID(ctx, apt.ID, feed.Source, ev.UID)
		if err != nil {
			result.Failed = append(result.Failed, EventResult{UID: ev.UID, Error: err.Error()})
			continue
		}

		if existing != nil {
			s.reconcileExisting(ctx, apt, existing, ev, result)
			continue
		}

		s.reconcileNew(ctx, apt, feed, ev, result)
	}

	// Cancellations: a previously imported UID absent from the latest
	// successful fetch. Limited to current and future stays; providers
	// routinely drop past events from their exports.
	imported, err := s.reservations.ListImported(ctx, apt.ID, feed.Source)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		return
	}

	today := s.now().Format(ical.DateFormat)
	for _, res := range imported {
		if res.ExternalID == nil || seen[*res.ExternalID] || res.CheckOut < today {
			continue
		}

		if err := s.reservations.UpdateReservationStatus(ctx, res.ID, database.ReservationCancelled); err != nil {
			result.Failed = append(result.Failed, EventResult{UID: *res.ExternalID, Error: err.Error()})
			continue
		}
		result.Cancelled++
		s.log(ctx, apt.ID, logEventCancelled,
			fmt.Sprintf("%s (%s to %s) no longer present in %s feed", res.GuestName, res.CheckIn, res.CheckOut, res.Source))
	}
}

// reconcileExisting updates an already imported reservation when its
// dates or summary changed upstream, moving the cleaning session to
// the new checkout date. Unchanged events are idempotent skips.
func (s *Service) reconcileExisting(ctx context.Context, apt *database.Apartment, existing *database.Reservation, ev ical.Event, result *PropertyResult) {
	changed := existing.CheckIn != ev.Start ||
		existing.CheckOut != ev.End ||
		existing.GuestName != ev.Summary ||
		existing.Status != database.ReservationActive

	if !changed {
		result.SkippedDuplicate++
		return
	}

	existing.CheckIn = ev.Start
	existing.CheckOut = ev.End
	existing.GuestName = ev.Summary
	existing.Notes = ev.Description
	existing.Status = database.ReservationActive

	if err := s.reservations.UpdateReservation(ctx, existing); err != nil {
		result.Failed = append(result.Failed, EventResult{UID: ev.UID, Error: err.Error()})
		return
	}
	if err := s.cleanings.RescheduleForReservation(ctx, existing.ID, ev.End); err != nil {
		result.Failed = append(result.Failed, EventResult{UID: ev.UID, Error: err.Error()})
		return
	}

	result.Updated++
	s.log(ctx, apt.ID, logEventUpdated,
		fmt.Sprintf("%s moved to %s to %s", ev.Summary, ev.Start, ev.End))
}

// reconcileNew inserts a reservation and its dependent cleaning
// session for an event not seen before. Feed data is authoritative for
// its own window: a conflict against an existing row is logged as a
// warning, never blocks the import.
func (s *Service) reconcileNew(ctx context.Context, apt *database.Apartment, feed *database.ApartmentFeed, ev ical.Event, result *PropertyResult) {
	conflicts, err := s.reservations.FindOverlapping(ctx, apt.ID, ev.Start, ev.End, "")
	if err == nil && len(conflicts) > 0 {
		slog.Warn("Imported event overlaps existing reservation",
			"property", apt.Name, "uid", ev.UID, "conflict_id", conflicts[0].ID)
		s.log(ctx, apt.ID, logEventConflict,
			fmt.Sprintf("%s event %s (%s to %s) overlaps reservation %s", feed.Source, ev.UID, ev.Start, ev.End, conflicts[0].ID))
	}

	uid := ev.UID
	reservation := &database.Reservation{
		ApartmentID: apt.ID,
		GuestName:   ev.Summary,
		GuestsCount: 1,
		CheckIn:     ev.Start,
		CheckOut:    ev.End,
		Source:      feed.Source,
		ExternalID:  &uid,
		Status:      database.ReservationActive,
		Notes:       ev.Description,
	}

	if err := s.reservations.CreateReservation(ctx, reservation); err != nil {
		result.Failed = append(result.Failed, EventResult{UID: ev.UID, Error: err.Error()})
		return
	}

	session := &database.CleaningSession{
		ApartmentID:   apt.ID,
		ReservationID: &reservation.ID,
		Status:        database.CleaningPending,
		ScheduledDate: ev.End,
	}
	if err := s.cleanings.CreateSession(ctx, session); err != nil {
		result.Failed = append(result.Failed, EventResult{UID: ev.UID, Error: err.Error()})
		return
	}

	result.Added = append(result.Added, EventResult{
		UID:      ev.UID,
		Guest:    ev.Summary,
		CheckIn:  ev.Start,
		CheckOut: ev.End,
	})
	s.log(ctx, apt.ID, logEventAdded,
		fmt.Sprintf("%s (%s to %s) imported from %s", ev.Summary, ev.Start, ev.End, feed.Source))
}

func (s *Service) recordFeedState(ctx context.Context, feedID, lastError string) {
	if err := s.apartments.UpdateFeedSyncState(ctx, feedID, s.now().UTC(), lastError); err != nil {
		slog.Warn("Failed to update feed sync state", "feed_id", feedID, "error", err)
	}
}

func (s *Service) log(ctx context.Context, apartmentID, eventType, description string) {
	if err := s.logs.Append(ctx, apartmentID, eventType, description); err != nil {
		slog.Warn("Failed to append sync log", "apartment_id", apartmentID, "error", err)
	}
}

func (s *Service) apartmentLock(id string) *stdsync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()

	lock, ok := s.locks[id]
	if !ok {
		lock = &stdsync.Mutex{}
		s.locks[id] = lock
	}
	return lock
}
