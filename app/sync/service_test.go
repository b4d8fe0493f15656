package sync

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/okhomenko/staysync/app/database"
	"github.com/okhomenko/staysync/app/ical"
)

type fakeApartmentRepo struct {
	database.ApartmentRepository
	apartments []database.Apartment
	feeds      map[string][]database.ApartmentFeed
	syncStates map[string]string
}

func (f *fakeApartmentRepo) ListSyncable(ctx context.Context) ([]database.Apartment, error) {
	return f.apartments, nil
}

func (f *fakeApartmentRepo) GetFeeds(ctx context.Context, apartmentID string) ([]database.ApartmentFeed, error) {
	return f.feeds[apartmentID], nil
}

func (f *fakeApartmentRepo) UpdateFeedSyncState(ctx context.Context, feedID string, syncedAt time.Time, lastError string) error {
	if f.syncStates == nil {
		f.syncStates = make(map[string]string)
	}
	f.syncStates[feedID] = lastError
	return nil
}

type fakeReservationRepo struct {
	database.ReservationRepository
	reservations []*database.Reservation
	nextID       int
}

func (f *fakeReservationRepo) GetByExternalID(ctx context.Context, apartmentID, source, externalID string) (*database.Reservation, error) {
	for _, r := range f.reservations {
		if r.ApartmentID == apartmentID && r.Source == source && r.ExternalID != nil && *r.ExternalID == externalID {
			return r, nil
		}
	}
	return nil, nil
}

func (f *fakeReservationRepo) CreateReservation(ctx context.Context, r *database.Reservation) error {
	f.nextID++
	r.ID = fmt.Sprintf("res-%d", f.nextID)
	f.reservations = append(f.reservations, r)
	return nil
}

func (f *fakeReservationRepo) UpdateReservation(ctx context.Context, r *database.Reservation) error {
	for i, existing := range f.reservations {
		if existing.ID == r.ID {
			f.reservations[i] = r
			return nil
		}
	}
	return fmt.Errorf("reservation %s not found", r.ID)
}

func (f *fakeReservationRepo) UpdateReservationStatus(ctx context.Context, id, status string) error {
	for _, r := range f.reservations {
		if r.ID == id {
			r.Status = status
			return nil
		}
	}
	return fmt.Errorf("reservation %s not found", id)
}

func (f *fakeReservationRepo) ListImported(ctx context.Context, apartmentID, source string) ([]database.Reservation, error) {
	var out []database.Reservation
	for _, r := range f.reservations {
		if r.ApartmentID == apartmentID && r.Source == source && r.ExternalID != nil && r.Status == database.ReservationActive {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeReservationRepo) FindOverlapping(ctx context.Context, apartmentID, checkIn, checkOut, excludeID string) ([]database.Reservation, error) {
	var out []database.Reservation
	for _, r := range f.reservations {
		if r.ApartmentID != apartmentID || r.Status != database.ReservationActive {
			continue
		}
		if r.CheckIn < checkOut && r.CheckOut > checkIn {
			out = append(out, *r)
		}
	}
	return out, nil
}

type fakeCleaningRepo struct {
	database.CleaningRepository
	sessions []*database.CleaningSession
	nextID   int
}

func (f *fakeCleaningRepo) CreateSession(ctx context.Context, s *database.CleaningSession) error {
	f.nextID++
	s.ID = fmt.Sprintf("cs-%d", f.nextID)
	f.sessions = append(f.sessions, s)
	return nil
}

func (f *fakeCleaningRepo) RescheduleForReservation(ctx context.Context, reservationID, scheduledDate string) error {
	for _, s := range f.sessions {
		if s.ReservationID != nil && *s.ReservationID == reservationID && s.Status != database.CleaningCompleted {
			s.ScheduledDate = scheduledDate
		}
	}
	return nil
}

type fakeSyncLogRepo struct {
	database.SyncLogRepository
	entries []database.SyncLog
}

func (f *fakeSyncLogRepo) Append(ctx context.Context, apartmentID, eventType, description string) error {
	f.entries = append(f.entries, database.SyncLog{ApartmentID: apartmentID, EventType: eventType, Description: description})
	return nil
}

func calendarBody(events ...[3]string) string {
	lines := []string{"BEGIN:VCALENDAR", "VERSION:2.0", "PRODID:-//Test//EN"}
	for _, ev := range events {
		lines = append(lines,
			"BEGIN:VEVENT",
			"UID:"+ev[0],
			"DTSTART;VALUE=DATE:"+ev[1],
			"DTEND;VALUE=DATE:"+ev[2],
			"SUMMARY:Reserved",
			"END:VEVENT",
		)
	}
	lines = append(lines, "END:VCALENDAR", "")
	return strings.Join(lines, "\r\n")
}

type testEnv struct {
	service      *Service
	apartments   *fakeApartmentRepo
	reservations *fakeReservationRepo
	cleanings    *fakeCleaningRepo
	logs         *fakeSyncLogRepo
	apartment    database.Apartment
}

func newTestEnv(feedURL string) *testEnv {
	apartment := database.Apartment{ID: "apt-1", Name: "Sea View", Active: true}
	apartments := &fakeApartmentRepo{
		apartments: []database.Apartment{apartment},
		feeds: map[string][]database.ApartmentFeed{
			"apt-1": {{ID: "feed-1", ApartmentID: "apt-1", Source: database.SourceAirbnb, URL: feedURL, Enabled: true}},
		},
	}
	reservations := &fakeReservationRepo{}
	cleanings := &fakeCleaningRepo{}
	logs := &fakeSyncLogRepo{}

	service := NewService(apartments, reservations, cleanings, logs,
		ical.NewParser(5*time.Second, "test-agent"))
	service.SetClock(func() time.Time {
		t, _ := time.Parse("2006-01-02", "2026-02-01")
		return t
	})

	return &testEnv{
		service:      service,
		apartments:   apartments,
		reservations: reservations,
		cleanings:    cleanings,
		logs:         logs,
		apartment:    apartment,
	}
}

func serveCalendar(t *testing.T, body *string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
		w.Write([]byte(*body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestSyncImportsNewEvents(t *testing.T) {
	body := calendarBody(
		[3]string{"uid-1", "20260301", "20260305"},
		[3]string{"uid-2", "20260310", "20260312"},
	)
	server := serveCalendar(t, &body)
	env := newTestEnv(server.URL)

	result := env.service.SyncApartment(context.Background(), &env.apartment)

	if len(result.Added) != 2 {
		t.Fatalf("Expected 2 added, got: %d (errors: %v)", len(result.Added), result.Errors)
	}
	if len(env.reservations.reservations) != 2 {
		t.Fatalf("Expected 2 reservations stored, got: %d", len(env.reservations.reservations))
	}

	first := env.reservations.reservations[0]
	if first.Source != database.SourceAirbnb {
		t.Errorf("Expected source tag from feed, got: %s", first.Source)
	}
	if first.ExternalID == nil || *first.ExternalID != "uid-1" {
		t.Errorf("Expected external_id 'uid-1', got: %v", first.ExternalID)
	}
	if first.CheckIn != "2026-03-01" || first.CheckOut != "2026-03-05" {
		t.Errorf("Unexpected window: %s..%s", first.CheckIn, first.CheckOut)
	}

	// One cleaning session per reservation, on the checkout date.
	if len(env.cleanings.sessions) != 2 {
		t.Fatalf("Expected 2 cleaning sessions, got: %d", len(env.cleanings.sessions))
	}
	if env.cleanings.sessions[0].ScheduledDate != "2026-03-05" {
		t.Errorf("Expected cleaning on checkout date, got: %s", env.cleanings.sessions[0].ScheduledDate)
	}
	if env.cleanings.sessions[0].Status != database.CleaningPending {
		t.Errorf("Expected pending session, got: %s", env.cleanings.sessions[0].Status)
	}
}

func TestSyncIsIdempotent(t *testing.T) {
	body := calendarBody([3]string{"uid-1", "20260301", "20260305"})
	server := serveCalendar(t, &body)
	env := newTestEnv(server.URL)

	env.service.SyncApartment(context.Background(), &env.apartment)
	result := env.service.SyncApartment(context.Background(), &env.apartment)

	if len(result.Added) != 0 {
		t.Errorf("Expected 0 added on second run, got: %d", len(result.Added))
	}
	if result.SkippedDuplicate != 1 {
		t.Errorf("Expected 1 duplicate skipped, got: %d", result.SkippedDuplicate)
	}
	if len(env.reservations.reservations) != 1 {
		t.Errorf("Expected 1 reservation after two runs, got: %d", len(env.reservations.reservations))
	}
}

func TestSyncUpdatesChangedEvent(t *testing.T) {
	body := calendarBody([3]string{"uid-1", "20260301", "20260305"})
	server := serveCalendar(t, &body)
	env := newTestEnv(server.URL)

	env.service.SyncApartment(context.Background(), &env.apartment)

	// The guest extends the stay upstream.
	body = calendarBody([3]string{"uid-1", "20260301", "20260307"})
	result := env.service.SyncApartment(context.Background(), &env.apartment)

	if result.Updated != 1 {
		t.Fatalf("Expected 1 updated, got: %d", result.Updated)
	}
	if len(result.Added) != 0 {
		t.Errorf("Expected 0 added, got: %d", len(result.Added))
	}

	stored := env.reservations.reservations[0]
	if stored.CheckOut != "2026-03-07" {
		t.Errorf("Expected checkout moved to 2026-03-07, got: %s", stored.CheckOut)
	}
	if env.cleanings.sessions[0].ScheduledDate != "2026-03-07" {
		t.Errorf("Expected cleaning rescheduled to 2026-03-07, got: %s", env.cleanings.sessions[0].ScheduledDate)
	}
}

func TestSyncCancelsVanishedEvent(t *testing.T) {
	body := calendarBody(
		[3]string{"uid-1", "20260301", "20260305"},
		[3]string{"uid-2", "20260310", "20260312"},
	)
	server := serveCalendar(t, &body)
	env := newTestEnv(server.URL)

	env.service.SyncApartment(context.Background(), &env.apartment)

	// uid-2 disappears from the feed.
	body = calendarBody([3]string{"uid-1", "20260301", "20260305"})
	result := env.service.SyncApartment(context.Background(), &env.apartment)

	if result.Cancelled != 1 {
		t.Fatalf("Expected 1 cancelled, got: %d", result.Cancelled)
	}

	for _, r := range env.reservations.reservations {
		if *r.ExternalID == "uid-2" && r.Status != database.ReservationCancelled {
			t.Errorf("Expected uid-2 cancelled, got status: %s", r.Status)
		}
		if *r.ExternalID == "uid-1" && r.Status != database.ReservationActive {
			t.Errorf("Expected uid-1 still active, got status: %s", r.Status)
		}
	}
}

func TestSyncKeepsPastReservationsOnCancellationPass(t *testing.T) {
	body := calendarBody([3]string{"uid-current", "20260301", "20260305"})
	server := serveCalendar(t, &body)
	env := newTestEnv(server.URL)

	// A stay that already ended, imported long ago. Providers drop
	// past events from their exports; it must not be cancelled.
	pastUID := "uid-past"
	env.reservations.reservations = append(env.reservations.reservations, &database.Reservation{
		ID:          "res-past",
		ApartmentID: "apt-1",
		Source:      database.SourceAirbnb,
		ExternalID:  &pastUID,
		CheckIn:     "2025-12-01",
		CheckOut:    "2025-12-05",
		Status:      database.ReservationActive,
	})

	result := env.service.SyncApartment(context.Background(), &env.apartment)

	if result.Cancelled != 0 {
		t.Errorf("Expected 0 cancelled, got: %d", result.Cancelled)
	}
	if env.reservations.reservations[0].Status != database.ReservationActive {
		t.Errorf("Expected past reservation untouched, got: %s", env.reservations.reservations[0].Status)
	}
}

func TestSyncImportBypassesOverlapGate(t *testing.T) {
	body := calendarBody([3]string{"uid-feed", "20260302", "20260306"})
	server := serveCalendar(t, &body)
	env := newTestEnv(server.URL)

	// Manual reservation already occupying the window. The import
	// still lands; the clash is only logged.
	env.reservations.reservations = append(env.reservations.reservations, &database.Reservation{
		ID:          "res-manual",
		ApartmentID: "apt-1",
		Source:      database.SourceManual,
		CheckIn:     "2026-03-01",
		CheckOut:    "2026-03-04",
		Status:      database.ReservationActive,
	})

	result := env.service.SyncApartment(context.Background(), &env.apartment)

	if len(result.Added) != 1 {
		t.Fatalf("Expected the import to land despite the clash, got added: %d", len(result.Added))
	}

	foundConflictLog := false
	for _, entry := range env.logs.entries {
		if entry.EventType == logEventConflict {
			foundConflictLog = true
		}
	}
	if !foundConflictLog {
		t.Error("Expected a conflict log entry")
	}
}

func TestSyncIsolatesFeedFailures(t *testing.T) {
	body := calendarBody([3]string{"uid-ok", "20260401", "20260403"})
	goodServer := serveCalendar(t, &body)
	badServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(badServer.Close)

	env := newTestEnv(goodServer.URL)
	env.apartments.feeds["apt-1"] = []database.ApartmentFeed{
		{ID: "feed-bad", ApartmentID: "apt-1", Source: database.SourceBooking, URL: badServer.URL, Enabled: true},
		{ID: "feed-good", ApartmentID: "apt-1", Source: database.SourceAirbnb, URL: goodServer.URL, Enabled: true},
	}

	result := env.service.SyncApartment(context.Background(), &env.apartment)

	if len(result.Errors) != 1 {
		t.Fatalf("Expected 1 feed error, got: %d (%v)", len(result.Errors), result.Errors)
	}
	if len(result.Added) != 1 {
		t.Errorf("Expected healthy feed to still import, got added: %d", len(result.Added))
	}
	if env.apartments.syncStates["feed-bad"] == "" {
		t.Error("Expected failing feed to record its last error")
	}
	if env.apartments.syncStates["feed-good"] != "" {
		t.Errorf("Expected healthy feed to clear its last error, got: %s", env.apartments.syncStates["feed-good"])
	}
}

func TestSyncSkipsDisabledFeeds(t *testing.T) {
	body := calendarBody([3]string{"uid-1", "20260301", "20260305"})
	server := serveCalendar(t, &body)
	env := newTestEnv(server.URL)
	env.apartments.feeds["apt-1"][0].Enabled = false

	result := env.service.SyncApartment(context.Background(), &env.apartment)

	if len(result.Added) != 0 || len(result.Errors) != 0 {
		t.Errorf("Expected disabled feed untouched, got added=%d errors=%v", len(result.Added), result.Errors)
	}
}

func TestRunIsolatesPropertyFailures(t *testing.T) {
	body := calendarBody([3]string{"uid-y", "20260501", "20260503"})
	goodServer := serveCalendar(t, &body)
	badServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(badServer.Close)

	env := newTestEnv(goodServer.URL)
	env.apartments.apartments = []database.Apartment{
		{ID: "apt-x", Name: "Broken Feed Flat", Active: true},
		{ID: "apt-y", Name: "Working Flat", Active: true},
	}
	env.apartments.feeds = map[string][]database.ApartmentFeed{
		"apt-x": {{ID: "feed-x", ApartmentID: "apt-x", Source: database.SourceAirbnb, URL: badServer.URL, Enabled: true}},
		"apt-y": {{ID: "feed-y", ApartmentID: "apt-y", Source: database.SourceAirbnb, URL: goodServer.URL, Enabled: true}},
	}

	report, err := env.service.Run(context.Background())
	if err != nil {
		t.Fatalf("Expected the run to complete, got: %v", err)
	}
	if len(report.Results) != 2 {
		t.Fatalf("Expected both properties in the report, got: %d", len(report.Results))
	}

	var x, y *PropertyResult
	for i := range report.Results {
		switch report.Results[i].ApartmentID {
		case "apt-x":
			x = &report.Results[i]
		case "apt-y":
			y = &report.Results[i]
		}
	}

	if x == nil || len(x.Errors) != 1 {
		t.Errorf("Expected the unreachable property to report its feed error, got: %+v", x)
	}
	if y == nil || len(y.Added) != 1 {
		t.Errorf("Expected the healthy property to import its event, got: %+v", y)
	}
}

func TestRunAggregatesResults(t *testing.T) {
	body := calendarBody([3]string{"uid-1", "20260301", "20260305"})
	server := serveCalendar(t, &body)
	env := newTestEnv(server.URL)

	report, err := env.service.Run(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(report.Results) != 1 {
		t.Fatalf("Expected 1 property result, got: %d", len(report.Results))
	}

	added, _, _, _, _ := report.Totals()
	if added != 1 {
		t.Errorf("Expected 1 added in totals, got: %d", added)
	}
	if report.Results[0].PropertyName != "Sea View" {
		t.Errorf("Expected property name in result, got: %s", report.Results[0].PropertyName)
	}
}
