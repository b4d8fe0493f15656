package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var _ ReservationRepository = (*ReservationRepositoryImpl)(nil)

// ReservationRepositoryImpl handles database operations for reservations.
type ReservationRepositoryImpl struct {
	db *DB
}

func NewReservationRepository(db *DB) *ReservationRepositoryImpl {
	return &ReservationRepositoryImpl{db: db}
}

const reservationColumns = `id, apartment_id, guest_name, guest_email,
	guest_phone, guests_count, check_in, check_out, source, external_id,
	status, notes, created_at, updated_at`

func scanReservation(row interface{ Scan(...any) error }) (*Reservation, error) {
	var res Reservation
	err := row.Scan(&res.ID, &res.ApartmentID, &res.GuestName, &res.GuestEmail,
		&res.GuestPhone, &res.GuestsCount, &res.CheckIn, &res.CheckOut,
		&res.Source, &res.ExternalID, &res.Status, &res.Notes,
		&res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *ReservationRepositoryImpl) GetReservation(ctx context.Context, id string) (*Reservation, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+reservationColumns+` FROM reservations WHERE id = ?`, id)

	res, err := scanReservation(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}
	return res, nil
}

func (r *ReservationRepositoryImpl) ListReservations(ctx context.Context, apartmentID string) ([]Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations`
	args := []any{}
	if apartmentID != "" {
		query += ` WHERE apartment_id = ?`
		args = append(args, apartmentID)
	}
	query += ` ORDER BY check_in DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	defer rows.Close()

	return collectReservations(rows)
}

func (r *ReservationRepositoryImpl) GetReservationStats(ctx context.Context) (total, active, cancelled int, err error) {
	err = r.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*) AS total,
			COALESCE(SUM(CASE WHEN status = 'active' THEN 1 ELSE 0 END), 0) AS active,
			COALESCE(SUM(CASE WHEN status = 'cancelled' THEN 1 ELSE 0 END), 0) AS cancelled
		FROM reservations
	`).Scan(&total, &active, &cancelled)

	if err != nil {
		return 0, 0, 0, fmt.Errorf("failed to get reservation stats: %w", err)
	}
	return total, active, cancelled, nil
}

func (r *ReservationRepositoryImpl) CreateReservation(ctx context.Context, res *Reservation) error {
	if res.ID == "" {
		res.ID = uuid.NewString()
	}
	if res.Status == "" {
		res.Status = ReservationActive
	}
	now := time.Now().UTC()
	res.CreatedAt = now
	res.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO reservations (
			id, apartment_id, guest_name, guest_email, guest_phone,
			guests_count, check_in, check_out, source, external_id,
			status, notes, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, res.ID, res.ApartmentID, res.GuestName, res.GuestEmail, res.GuestPhone,
		res.GuestsCount, res.CheckIn, res.CheckOut, res.Source, res.ExternalID,
		res.Status, res.Notes, res.CreatedAt, res.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create reservation: %w", err)
	}
	return nil
}

func (r *ReservationRepositoryImpl) UpdateReservation(ctx context.Context, res *Reservation) error {
	res.UpdatedAt = time.Now().UTC()

	result, err := r.db.ExecContext(ctx, `
		UPDATE reservations SET
			guest_name = ?, guest_email = ?, guest_phone = ?, guests_count = ?,
			check_in = ?, check_out = ?, status = ?, notes = ?, updated_at = ?
		WHERE id = ?
	`, res.GuestName, res.GuestEmail, res.GuestPhone, res.GuestsCount,
		res.CheckIn, res.CheckOut, res.Status, res.Notes, res.UpdatedAt, res.ID)

	if err != nil {
		return fmt.Errorf("failed to update reservation: %w", err)
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("reservation not found: %s", res.ID)
	}
	return nil
}

func (r *ReservationRepositoryImpl) UpdateReservationStatus(ctx context.Context, id, status string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE reservations SET status = ?, updated_at = ? WHERE id = ?
	`, status, time.Now().UTC(), id)

	if err != nil {
		return fmt.Errorf("failed to update reservation status: %w", err)
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("reservation not found: %s", id)
	}
	return nil
}

func (r *ReservationRepositoryImpl) DeleteReservation(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM reservations WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete reservation: %w", err)
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("reservation not found: %s", id)
	}
	return nil
}

func (r *ReservationRepositoryImpl) GetByExternalID(ctx context.Context, apartmentID, source, externalID string) (*Reservation, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+reservationColumns+`
		FROM reservations
		WHERE apartment_id = ? AND source = ? AND external_id = ?
	`, apartmentID, source, externalID)

	res, err := scanReservation(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up reservation by external id: %w", err)
	}
	return res, nil
}

func (r *ReservationRepositoryImpl) ListImported(ctx context.Context, apartmentID, source string) ([]Reservation, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+reservationColumns+`
		FROM reservations
		WHERE apartment_id = ? AND source = ?
		  AND external_id IS NOT NULL AND status = 'active'
		ORDER BY check_in
	`, apartmentID, source)
	if err != nil {
		return nil, fmt.Errorf("failed to list imported reservations: %w", err)
	}
	defer rows.Close()

	return collectReservations(rows)
}

// FindOverlapping applies the half-open interval rule: two windows
// conflict when existing.check_in < new.check_out AND
// existing.check_out > new.check_in. ISO date strings compare
// lexicographically in chronological order, so the comparison happens
// directly in SQL. A checkout and a check-in on the same date never
// conflict (turnover).
func (r *ReservationRepositoryImpl) FindOverlapping(ctx context.Context, apartmentID, checkIn, checkOut, excludeID string) ([]Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE apartment_id = ? AND status = 'active'
		  AND check_in < ? AND check_out > ?`
	args := []any{apartmentID, checkOut, checkIn}

	if excludeID != "" {
		query += ` AND id != ?`
		args = append(args, excludeID)
	}
	query += ` ORDER BY check_in`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to find overlapping reservations: %w", err)
	}
	defer rows.Close()

	return collectReservations(rows)
}

func collectReservations(rows *sql.Rows) ([]Reservation, error) {
	var reservations []Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reservation row: %w", err)
		}
		reservations = append(reservations, *res)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reservation rows: %w", err)
	}
	return reservations, nil
}
