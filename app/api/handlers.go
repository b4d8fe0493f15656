package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/okhomenko/staysync/app/booking"
	"github.com/okhomenko/staysync/app/database"
	"github.com/okhomenko/staysync/app/ical"
	"github.com/okhomenko/staysync/app/property"
	"github.com/okhomenko/staysync/app/sync"
	"github.com/okhomenko/staysync/app/tasks"
)

func NewHandler(configCache *property.ConfigCache, apartmentRepo database.ApartmentRepository,
	reservationRepo database.ReservationRepository, cleaningRepo database.CleaningRepository,
	syncLogRepo database.SyncLogRepository, syncService *sync.Service,
	validator *booking.Validator, parser *ical.Parser,
	scheduler tasks.TaskSchedulerInterface) *Handler {
	return &Handler{
		configCache:     configCache,
		apartmentRepo:   apartmentRepo,
		reservationRepo: reservationRepo,
		cleaningRepo:    cleaningRepo,
		syncLogRepo:     syncLogRepo,
		syncService:     syncService,
		validator:       validator,
		parser:          parser,
		scheduler:       scheduler,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if apartmentCount, err := h.apartmentRepo.GetApartmentCount(c.Request.Context()); err == nil {
		health["apartments"] = apartmentCount
	}

	health["loaded_configurations"] = h.configCache.GetConfigCount()

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	ctx := c.Request.Context()
	stats := map[string]interface{}{}

	if count, err := h.apartmentRepo.GetApartmentCount(ctx); err == nil {
		stats["apartments"] = count
	}

	if total, active, cancelled, err := h.reservationRepo.GetReservationStats(ctx); err == nil {
		stats["reservations"] = map[string]int{
			"total":     total,
			"active":    active,
			"cancelled": cancelled,
		}
	}

	if pending, inProgress, completed, err := h.cleaningRepo.GetSessionStats(ctx); err == nil {
		stats["cleaning_sessions"] = map[string]int{
			"pending":     pending,
			"in_progress": inProgress,
			"completed":   completed,
		}
	}

	c.JSON(http.StatusOK, stats)
}

func (h *Handler) ListApartments(c *gin.Context) {
	apartments, err := h.apartmentRepo.ListApartments(c.Request.Context())
	if err != nil {
		slog.Error("Database error", "operation", "list_apartments", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	out := make([]map[string]interface{}, 0, len(apartments))
	for i := range apartments {
		out = append(out, apartmentJSON(&apartments[i]))
	}

	c.JSON(http.StatusOK, gin.H{"apartments": out, "total": len(out)})
}

func (h *Handler) GetApartment(c *gin.Context) {
	apartment, ok := h.loadApartment(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, apartmentJSON(apartment))
}

func (h *Handler) CreateApartment(c *gin.Context) {
	var req apartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	apartment := &database.Apartment{
		Name:         req.Name,
		Address:      req.Address,
		Beds:         req.Beds,
		MaxGuests:    req.MaxGuests,
		Description:  req.Description,
		CheckInTime:  req.CheckInTime,
		CheckOutTime: req.CheckOutTime,
		CleaningFee:  req.CleaningFee,
		DailyRental:  req.DailyRental,
		Active:       true,
	}
	if req.Active != nil {
		apartment.Active = *req.Active
	}
	applyApartmentDefaults(apartment)

	if err := h.apartmentRepo.CreateApartment(c.Request.Context(), apartment); err != nil {
		slog.Error("Database error", "operation", "create_apartment", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusCreated, apartmentJSON(apartment))
}

func (h *Handler) UpdateApartment(c *gin.Context) {
	apartment, ok := h.loadApartment(c)
	if !ok {
		return
	}

	var req apartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	apartment.Name = req.Name
	apartment.Address = req.Address
	apartment.Beds = req.Beds
	apartment.MaxGuests = req.MaxGuests
	apartment.Description = req.Description
	apartment.CheckInTime = req.CheckInTime
	apartment.CheckOutTime = req.CheckOutTime
	apartment.CleaningFee = req.CleaningFee
	apartment.DailyRental = req.DailyRental
	if req.Active != nil {
		apartment.Active = *req.Active
	}
	applyApartmentDefaults(apartment)

	if err := h.apartmentRepo.UpdateApartment(c.Request.Context(), apartment); err != nil {
		slog.Error("Database error", "operation", "update_apartment", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, apartmentJSON(apartment))
}

func (h *Handler) DeleteApartment(c *gin.Context) {
	apartment, ok := h.loadApartment(c)
	if !ok {
		return
	}

	if err := h.apartmentRepo.DeleteApartment(c.Request.Context(), apartment.ID); err != nil {
		slog.Error("Database error", "operation", "delete_apartment", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) ListFeeds(c *gin.Context) {
	apartment, ok := h.loadApartment(c)
	if !ok {
		return
	}

	feeds, err := h.apartmentRepo.GetFeeds(c.Request.Context(), apartment.ID)
	if err != nil {
		slog.Error("Database error", "operation", "list_feeds", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	out := make([]map[string]interface{}, 0, len(feeds))
	for i := range feeds {
		out = append(out, feedJSON(&feeds[i]))
	}

	c.JSON(http.StatusOK, gin.H{"feeds": out, "total": len(out)})
}

// UpsertFeed attaches a calendar feed to an apartment. The URL is
// probed before it is stored; the source tag defaults to a guess from
// the URL host and is fixed at configuration time.
func (h *Handler) UpsertFeed(c *gin.Context) {
	apartment, ok := h.loadApartment(c)
	if !ok {
		return
	}

	var req feedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	probe := h.parser.Probe(c.Request.Context(), req.URL)
	if !probe.OK {
		c.JSON(http.StatusBadRequest, gin.H{"error": probe.Message, "field": "url"})
		return
	}

	source := req.Source
	if source == "" {
		source = ical.SourceFromURL(req.URL)
	}
	if source != database.SourceManual && source != database.SourceAirbnb && source != database.SourceBooking {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown feed source", "field": "source"})
		return
	}

	feed := &database.ApartmentFeed{
		ApartmentID: apartment.ID,
		Source:      source,
		URL:         req.URL,
		Enabled:     true,
	}
	if req.Enabled != nil {
		feed.Enabled = *req.Enabled
	}

	if err := h.apartmentRepo.UpsertFeed(c.Request.Context(), feed); err != nil {
		slog.Error("Database error", "operation", "upsert_feed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, feedJSON(feed))
}

func (h *Handler) DeleteFeed(c *gin.Context) {
	apartment, ok := h.loadApartment(c)
	if !ok {
		return
	}

	source := c.Param("source")
	if err := h.apartmentRepo.DeleteFeed(c.Request.Context(), apartment.ID, source); err != nil {
		slog.Error("Database error", "operation", "delete_feed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) ValidateCalendarURL(c *gin.Context) {
	var req validateURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result := h.parser.Probe(c.Request.Context(), req.URL)
	c.JSON(http.StatusOK, result)
}

func (h *Handler) RunSync(c *gin.Context) {
	report, err := h.syncService.Run(c.Request.Context())
	if err != nil {
		slog.Error("Sync run failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, report)
}

func (h *Handler) SyncApartment(c *gin.Context) {
	apartment, ok := h.loadApartment(c)
	if !ok {
		return
	}

	result := h.syncService.SyncApartment(c.Request.Context(), apartment)
	c.JSON(http.StatusOK, result)
}

func (h *Handler) ListSyncLogs(c *gin.Context) {
	limit := 100
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	logs, err := h.syncLogRepo.ListRecent(c.Request.Context(), limit)
	if err != nil {
		slog.Error("Database error", "operation", "list_sync_logs", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	out := make([]map[string]interface{}, 0, len(logs))
	for _, entry := range logs {
		out = append(out, map[string]interface{}{
			"id":           entry.ID,
			"apartment_id": entry.ApartmentID,
			"event_type":   entry.EventType,
			"description":  entry.Description,
			"created_at":   entry.CreatedAt.Format(time.RFC3339),
		})
	}

	c.JSON(http.StatusOK, gin.H{"logs": out, "total": len(out)})
}

func (h *Handler) ListReservations(c *gin.Context) {
	reservations, err := h.reservationRepo.ListReservations(c.Request.Context(), c.Query("apartment_id"))
	if err != nil {
		slog.Error("Database error", "operation", "list_reservations", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	out := make([]map[string]interface{}, 0, len(reservations))
	for i := range reservations {
		out = append(out, reservationJSON(&reservations[i]))
	}

	c.JSON(http.StatusOK, gin.H{"reservations": out, "total": len(out)})
}

func (h *Handler) GetReservation(c *gin.Context) {
	reservation, ok := h.loadReservation(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, reservationJSON(reservation))
}

// CreateReservation handles manual bookings. Unlike feed imports these
// go through the overlap gate: a clashing date range is rejected with
// 409 before anything is written.
func (h *Handler) CreateReservation(c *gin.Context) {
	var req reservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()

	apartment, err := h.apartmentRepo.GetApartment(ctx, req.ApartmentID)
	if err != nil {
		slog.Error("Database error", "operation", "get_apartment", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if apartment == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Apartment not found"})
		return
	}

	if err := h.validator.CheckOverlap(ctx, apartment, req.CheckIn, req.CheckOut, ""); err != nil {
		writeBookingError(c, err)
		return
	}

	guestsCount := req.GuestsCount
	if guestsCount <= 0 {
		guestsCount = 1
	}

	reservation := &database.Reservation{
		ApartmentID: apartment.ID,
		GuestName:   req.GuestName,
		GuestEmail:  req.GuestEmail,
		GuestPhone:  req.GuestPhone,
		GuestsCount: guestsCount,
		CheckIn:     req.CheckIn,
		CheckOut:    req.CheckOut,
		Source:      database.SourceManual,
		Status:      database.ReservationActive,
		Notes:       req.Notes,
	}

	if err := h.reservationRepo.CreateReservation(ctx, reservation); err != nil {
		slog.Error("Database error", "operation", "create_reservation", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	session := &database.CleaningSession{
		ApartmentID:   apartment.ID,
		ReservationID: &reservation.ID,
		Status:        database.CleaningPending,
		ScheduledDate: reservation.CheckOut,
	}
	if err := h.cleaningRepo.CreateSession(ctx, session); err != nil {
		slog.Error("Database error", "operation", "create_cleaning_session", "error", err)
	}

	c.JSON(http.StatusCreated, reservationJSON(reservation))
}

func (h *Handler) UpdateReservation(c *gin.Context) {
	reservation, ok := h.loadReservation(c)
	if !ok {
		return
	}

	var req reservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()

	apartment, err := h.apartmentRepo.GetApartment(ctx, reservation.ApartmentID)
	if err != nil || apartment == nil {
		slog.Error("Database error", "operation", "get_apartment", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	// The reservation's own window must not count as a conflict.
	if err := h.validator.CheckOverlap(ctx, apartment, req.CheckIn, req.CheckOut, reservation.ID); err != nil {
		writeBookingError(c, err)
		return
	}

	reservation.GuestName = req.GuestName
	reservation.GuestEmail = req.GuestEmail
	reservation.GuestPhone = req.GuestPhone
	if req.GuestsCount > 0 {
		reservation.GuestsCount = req.GuestsCount
	}
	reservation.CheckIn = req.CheckIn
	reservation.CheckOut = req.CheckOut
	reservation.Notes = req.Notes

	if err := h.reservationRepo.UpdateReservation(ctx, reservation); err != nil {
		slog.Error("Database error", "operation", "update_reservation", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if err := h.cleaningRepo.RescheduleForReservation(ctx, reservation.ID, reservation.CheckOut); err != nil {
		slog.Error("Database error", "operation", "reschedule_cleaning", "error", err)
	}

	c.JSON(http.StatusOK, reservationJSON(reservation))
}

// CancelReservation soft-cancels: the row is kept for history and the
// pending cleaning session, if any, is removed.
func (h *Handler) CancelReservation(c *gin.Context) {
	reservation, ok := h.loadReservation(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()

	if err := h.reservationRepo.UpdateReservationStatus(ctx, reservation.ID, database.ReservationCancelled); err != nil {
		slog.Error("Database error", "operation", "cancel_reservation", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if session, err := h.cleaningRepo.GetByReservation(ctx, reservation.ID); err == nil && session != nil && session.Status == database.CleaningPending {
		if err := h.cleaningRepo.DeleteSession(ctx, session.ID); err != nil {
			slog.Error("Database error", "operation", "delete_cleaning_session", "error", err)
		}
	}

	reservation.Status = database.ReservationCancelled
	c.JSON(http.StatusOK, reservationJSON(reservation))
}

func (h *Handler) DeleteReservation(c *gin.Context) {
	reservation, ok := h.loadReservation(c)
	if !ok {
		return
	}

	if err := h.reservationRepo.DeleteReservation(c.Request.Context(), reservation.ID); err != nil {
		slog.Error("Database error", "operation", "delete_reservation", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) ListCleaningSessions(c *gin.Context) {
	sessions, err := h.cleaningRepo.ListSessions(c.Request.Context(), c.Query("apartment_id"), c.Query("status"))
	if err != nil {
		slog.Error("Database error", "operation", "list_cleaning_sessions", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	out := make([]map[string]interface{}, 0, len(sessions))
	for i := range sessions {
		out = append(out, sessionJSON(&sessions[i]))
	}

	c.JSON(http.StatusOK, gin.H{"cleaning_sessions": out, "total": len(out)})
}

func (h *Handler) CreateCleaningSession(c *gin.Context) {
	var req cleaningSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := time.Parse(ical.DateFormat, req.ScheduledDate); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "scheduled_date must be YYYY-MM-DD", "field": "scheduled_date"})
		return
	}

	session := &database.CleaningSession{
		ApartmentID:   req.ApartmentID,
		ReservationID: req.ReservationID,
		CleanerID:     req.CleanerID,
		Status:        database.CleaningPending,
		ScheduledDate: req.ScheduledDate,
		Notes:         req.Notes,
	}

	if err := h.cleaningRepo.CreateSession(c.Request.Context(), session); err != nil {
		slog.Error("Database error", "operation", "create_cleaning_session", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusCreated, sessionJSON(session))
}

// UpdateCleaningSession applies partial updates. Status moves forward
// only: pending to in_progress stamps StartedAt, in_progress to
// completed stamps CompletedAt.
func (h *Handler) UpdateCleaningSession(c *gin.Context) {
	session, err := h.cleaningRepo.GetSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		slog.Error("Database error", "operation", "get_cleaning_session", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if session == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Cleaning session not found"})
		return
	}

	var req cleaningSessionUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Status != nil && *req.Status != session.Status {
		now := time.Now().UTC()
		switch {
		case session.Status == database.CleaningPending && *req.Status == database.CleaningInProgress:
			session.Status = database.CleaningInProgress
			session.StartedAt = &now
		case session.Status == database.CleaningInProgress && *req.Status == database.CleaningCompleted:
			session.Status = database.CleaningCompleted
			session.CompletedAt = &now
		default:
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid status transition",
				"from":  session.Status,
				"to":    *req.Status,
			})
			return
		}
	}

	if req.CleanerID != nil {
		session.CleanerID = req.CleanerID
	}
	if req.ScheduledDate != nil {
		if _, err := time.Parse(ical.DateFormat, *req.ScheduledDate); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "scheduled_date must be YYYY-MM-DD", "field": "scheduled_date"})
			return
		}
		session.ScheduledDate = *req.ScheduledDate
	}
	if req.Notes != nil {
		session.Notes = *req.Notes
	}

	if err := h.cleaningRepo.UpdateSession(c.Request.Context(), session); err != nil {
		slog.Error("Database error", "operation", "update_cleaning_session", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, sessionJSON(session))
}

func (h *Handler) DeleteCleaningSession(c *gin.Context) {
	if err := h.cleaningRepo.DeleteSession(c.Request.Context(), c.Param("id")); err != nil {
		slog.Error("Database error", "operation", "delete_cleaning_session", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) loadApartment(c *gin.Context) (*database.Apartment, bool) {
	apartment, err := h.apartmentRepo.GetApartment(c.Request.Context(), c.Param("id"))
	if err != nil {
		slog.Error("Database error", "operation", "get_apartment", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return nil, false
	}
	if apartment == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Apartment not found"})
		return nil, false
	}
	return apartment, true
}

func (h *Handler) loadReservation(c *gin.Context) (*database.Reservation, bool) {
	reservation, err := h.reservationRepo.GetReservation(c.Request.Context(), c.Param("id"))
	if err != nil {
		slog.Error("Database error", "operation", "get_reservation", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return nil, false
	}
	if reservation == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Reservation not found"})
		return nil, false
	}
	return reservation, true
}

// writeBookingError maps validation failures to HTTP responses tied to
// the offending field.
func writeBookingError(c *gin.Context, err error) {
	var invalidRange *booking.InvalidRangeError
	var pastDate *booking.PastDateError
	var conflict *booking.ConflictError

	switch {
	case errors.As(err, &invalidRange):
		c.JSON(http.StatusBadRequest, gin.H{"error": invalidRange.Error(), "field": "check_out"})
	case errors.As(err, &pastDate):
		c.JSON(http.StatusBadRequest, gin.H{"error": pastDate.Error(), "field": "check_in"})
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, gin.H{
			"error":          conflict.Error(),
			"reservation_id": conflict.ReservationID,
		})
	default:
		slog.Error("Booking validation failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
	}
}

func applyApartmentDefaults(a *database.Apartment) {
	if a.Beds <= 0 {
		a.Beds = 1
	}
	if a.MaxGuests <= 0 {
		a.MaxGuests = 2
	}
	if a.CheckInTime == "" {
		a.CheckInTime = "15:00"
	}
	if a.CheckOutTime == "" {
		a.CheckOutTime = "11:00"
	}
}

func apartmentJSON(a *database.Apartment) map[string]interface{} {
	out := map[string]interface{}{
		"id":             a.ID,
		"name":           a.Name,
		"address":        a.Address,
		"beds":           a.Beds,
		"max_guests":     a.MaxGuests,
		"description":    a.Description,
		"check_in_time":  a.CheckInTime,
		"check_out_time": a.CheckOutTime,
		"daily_rental":   a.DailyRental,
		"active":         a.Active,
		"created_at":     a.CreatedAt.Format(time.RFC3339),
		"updated_at":     a.UpdatedAt.Format(time.RFC3339),
	}
	if a.CleaningFee != nil {
		out["cleaning_fee"] = *a.CleaningFee
	}
	if a.ConfigName != nil {
		out["config_name"] = *a.ConfigName
	}
	return out
}

func feedJSON(f *database.ApartmentFeed) map[string]interface{} {
	out := map[string]interface{}{
		"id":           f.ID,
		"apartment_id": f.ApartmentID,
		"source":       f.Source,
		"url":          f.URL,
		"enabled":      f.Enabled,
	}
	if f.LastSyncedAt != nil {
		out["last_synced_at"] = f.LastSyncedAt.Format(time.RFC3339)
	}
	if f.LastError != "" {
		out["last_error"] = f.LastError
	}
	return out
}

func reservationJSON(r *database.Reservation) map[string]interface{} {
	out := map[string]interface{}{
		"id":           r.ID,
		"apartment_id": r.ApartmentID,
		"guest_name":   r.GuestName,
		"guest_email":  r.GuestEmail,
		"guest_phone":  r.GuestPhone,
		"guests_count": r.GuestsCount,
		"check_in":     r.CheckIn,
		"check_out":    r.CheckOut,
		"source":       r.Source,
		"status":       r.Status,
		"notes":        r.Notes,
		"created_at":   r.CreatedAt.Format(time.RFC3339),
		"updated_at":   r.UpdatedAt.Format(time.RFC3339),
	}
	if r.ExternalID != nil {
		out["external_id"] = *r.ExternalID
	}
	return out
}

func sessionJSON(s *database.CleaningSession) map[string]interface{} {
	out := map[string]interface{}{
		"id":             s.ID,
		"apartment_id":   s.ApartmentID,
		"status":         s.Status,
		"scheduled_date": s.ScheduledDate,
		"notes":          s.Notes,
		"created_at":     s.CreatedAt.Format(time.RFC3339),
		"updated_at":     s.UpdatedAt.Format(time.RFC3339),
	}
	if s.ReservationID != nil {
		out["reservation_id"] = *s.ReservationID
	}
	if s.CleanerID != nil {
		out["cleaner_id"] = *s.CleanerID
	}
	if s.StartedAt != nil {
		out["started_at"] = s.StartedAt.Format(time.RFC3339)
	}
	if s.CompletedAt != nil {
		out["completed_at"] = s.CompletedAt.Format(time.RFC3339)
	}
	return out
}
