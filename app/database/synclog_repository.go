package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var _ SyncLogRepository = (*SyncLogRepositoryImpl)(nil)

// SyncLogRepositoryImpl records per-apartment sync events for auditing.
type SyncLogRepositoryImpl struct {
	db *DB
}

func NewSyncLogRepository(db *DB) *SyncLogRepositoryImpl {
	return &SyncLogRepositoryImpl{db: db}
}

func (r *SyncLogRepositoryImpl) Append(ctx context.Context, apartmentID, eventType, description string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sync_logs (id, apartment_id, event_type, description, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, uuid.NewString(), apartmentID, eventType, description, time.Now().UTC())

	if err != nil {
		return fmt.Errorf("failed to append sync log: %w", err)
	}
	return nil
}

func (r *SyncLogRepositoryImpl) ListRecent(ctx context.Context, limit int) ([]SyncLog, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, apartment_id, event_type, description, created_at
		FROM sync_logs
		ORDER BY created_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list sync logs: %w", err)
	}
	defer rows.Close()

	var logs []SyncLog
	for rows.Next() {
		var l SyncLog
		if err := rows.Scan(&l.ID, &l.ApartmentID, &l.EventType, &l.Description, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan sync log row: %w", err)
		}
		logs = append(logs, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sync log rows: %w", err)
	}
	return logs, nil
}
