package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var _ CleaningRepository = (*CleaningRepositoryImpl)(nil)

// CleaningRepositoryImpl handles database operations for cleaning sessions.
type CleaningRepositoryImpl struct {
	db *DB
}

func NewCleaningRepository(db *DB) *CleaningRepositoryImpl {
	return &CleaningRepositoryImpl{db: db}
}

const cleaningColumns = `id, apartment_id, reservation_id, cleaner_id,
	status, scheduled_date, started_at, completed_at, notes,
	created_at, updated_at`

func scanSession(row interface{ Scan(...any) error }) (*CleaningSession, error) {
	var s CleaningSession
	err := row.Scan(&s.ID, &s.ApartmentID, &s.ReservationID, &s.CleanerID,
		&s.Status, &s.ScheduledDate, &s.StartedAt, &s.CompletedAt, &s.Notes,
		&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *CleaningRepositoryImpl) GetSession(ctx context.Context, id string) (*CleaningSession, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+cleaningColumns+` FROM cleaning_sessions WHERE id = ?`, id)

	s, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cleaning session: %w", err)
	}
	return s, nil
}

func (r *CleaningRepositoryImpl) ListSessions(ctx context.Context, apartmentID, status string) ([]CleaningSession, error) {
	query := `SELECT ` + cleaningColumns + ` FROM cleaning_sessions WHERE 1=1`
	args := []any{}
	if apartmentID != "" {
		query += ` AND apartment_id = ?`
		args = append(args, apartmentID)
	}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY scheduled_date`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list cleaning sessions: %w", err)
	}
	defer rows.Close()

	var sessions []CleaningSession
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cleaning session row: %w", err)
		}
		sessions = append(sessions, *s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cleaning session rows: %w", err)
	}
	return sessions, nil
}

func (r *CleaningRepositoryImpl) GetSessionStats(ctx context.Context) (pending, inProgress, completed int, err error) {
	err = r.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN status = 'pending' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'in_progress' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'completed' THEN 1 ELSE 0 END), 0)
		FROM cleaning_sessions
	`).Scan(&pending, &inProgress, &completed)

	if err != nil {
		return 0, 0, 0, fmt.Errorf("failed to get cleaning session stats: %w", err)
	}
	return pending, inProgress, completed, nil
}

func (r *CleaningRepositoryImpl) CreateSession(ctx context.Context, s *CleaningSession) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.Status == "" {
		s.Status = CleaningPending
	}
	now := time.Now().UTC()
	s.CreatedAt = now
	s.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO cleaning_sessions (
			id, apartment_id, reservation_id, cleaner_id, status,
			scheduled_date, started_at, completed_at, notes,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, s.ID, s.ApartmentID, s.ReservationID, s.CleanerID, s.Status,
		s.ScheduledDate, s.StartedAt, s.CompletedAt, s.Notes,
		s.CreatedAt, s.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create cleaning session: %w", err)
	}
	return nil
}

func (r *CleaningRepositoryImpl) UpdateSession(ctx context.Context, s *CleaningSession) error {
	s.UpdatedAt = time.Now().UTC()

	result, err := r.db.ExecContext(ctx, `
		UPDATE cleaning_sessions SET
			cleaner_id = ?, status = ?, scheduled_date = ?,
			started_at = ?, completed_at = ?, notes = ?, updated_at = ?
		WHERE id = ?
	`, s.CleanerID, s.Status, s.ScheduledDate,
		s.StartedAt, s.CompletedAt, s.Notes, s.UpdatedAt, s.ID)

	if err != nil {
		return fmt.Errorf("failed to update cleaning session: %w", err)
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("cleaning session not found: %s", s.ID)
	}
	return nil
}

func (r *CleaningRepositoryImpl) DeleteSession(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM cleaning_sessions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete cleaning session: %w", err)
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("cleaning session not found: %s", id)
	}
	return nil
}

func (r *CleaningRepositoryImpl) GetByReservation(ctx context.Context, reservationID string) (*CleaningSession, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+cleaningColumns+`
		FROM cleaning_sessions
		WHERE reservation_id = ?
	`, reservationID)

	s, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cleaning session by reservation: %w", err)
	}
	return s, nil
}

func (r *CleaningRepositoryImpl) RescheduleForReservation(ctx context.Context, reservationID, scheduledDate string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE cleaning_sessions
		SET scheduled_date = ?, updated_at = ?
		WHERE reservation_id = ? AND status != 'completed'
	`, scheduledDate, time.Now().UTC(), reservationID)

	if err != nil {
		return fmt.Errorf("failed to reschedule cleaning session: %w", err)
	}
	return nil
}
