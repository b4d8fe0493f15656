package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var _ ApartmentRepository = (*ApartmentRepositoryImpl)(nil)

// ApartmentRepositoryImpl handles database operations for apartments
// and their configured calendar feeds.
type ApartmentRepositoryImpl struct {
	db *DB
}

func NewApartmentRepository(db *DB) *ApartmentRepositoryImpl {
	return &ApartmentRepositoryImpl{db: db}
}

const apartmentColumns = `id, config_name, name, address, beds, max_guests,
	description, check_in_time, check_out_time, cleaning_fee, daily_rental,
	active, created_at, updated_at`

func scanApartment(row interface{ Scan(...any) error }) (*Apartment, error) {
	var a Apartment
	err := row.Scan(&a.ID, &a.ConfigName, &a.Name, &a.Address, &a.Beds,
		&a.MaxGuests, &a.Description, &a.CheckInTime, &a.CheckOutTime,
		&a.CleaningFee, &a.DailyRental, &a.Active, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *ApartmentRepositoryImpl) GetApartment(ctx context.Context, id string) (*Apartment, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+apartmentColumns+` FROM apartments WHERE id = ?`, id)

	a, err := scanApartment(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get apartment: %w", err)
	}
	return a, nil
}

func (r *ApartmentRepositoryImpl) ListApartments(ctx context.Context) ([]Apartment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+apartmentColumns+` FROM apartments ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list apartments: %w", err)
	}
	defer rows.Close()

	var apartments []Apartment
	for rows.Next() {
		a, err := scanApartment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan apartment row: %w", err)
		}
		apartments = append(apartments, *a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating apartment rows: %w", err)
	}
	return apartments, nil
}

func (r *ApartmentRepositoryImpl) GetApartmentCount(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM apartments").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get apartment count: %w", err)
	}
	return count, nil
}

func (r *ApartmentRepositoryImpl) CreateApartment(ctx context.Context, a *Apartment) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO apartments (
			id, config_name, name, address, beds, max_guests, description,
			check_in_time, check_out_time, cleaning_fee, daily_rental,
			active, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, a.ID, a.ConfigName, a.Name, a.Address, a.Beds, a.MaxGuests,
		a.Description, a.CheckInTime, a.CheckOutTime, a.CleaningFee,
		a.DailyRental, a.Active, a.CreatedAt, a.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create apartment: %w", err)
	}
	return nil
}

func (r *ApartmentRepositoryImpl) UpdateApartment(ctx context.Context, a *Apartment) error {
	a.UpdatedAt = time.Now().UTC()

	result, err := r.db.ExecContext(ctx, `
		UPDATE apartments SET
			name = ?, address = ?, beds = ?, max_guests = ?, description = ?,
			check_in_time = ?, check_out_time = ?, cleaning_fee = ?,
			daily_rental = ?, active = ?, updated_at = ?
		WHERE id = ?
	`, a.Name, a.Address, a.Beds, a.MaxGuests, a.Description,
		a.CheckInTime, a.CheckOutTime, a.CleaningFee, a.DailyRental,
		a.Active, a.UpdatedAt, a.ID)

	if err != nil {
		return fmt.Errorf("failed to update apartment: %w", err)
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("apartment not found: %s", a.ID)
	}
	return nil
}

func (r *ApartmentRepositoryImpl) GetByConfigName(ctx context.Context, configName string) (*Apartment, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+apartmentColumns+` FROM apartments WHERE config_name = ?`, configName)

	a, err := scanApartment(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get apartment by config name: %w", err)
	}
	return a, nil
}

func (r *ApartmentRepositoryImpl) DeleteApartment(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM apartments WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete apartment: %w", err)
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("apartment not found: %s", id)
	}
	return nil
}

func (r *ApartmentRepositoryImpl) ListSyncable(ctx context.Context) ([]Apartment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT DISTINCT `+apartmentColumns+`
		FROM apartments
		WHERE active = 1
		  AND id IN (SELECT apartment_id FROM apartment_feeds WHERE enabled = 1)
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list syncable apartments: %w", err)
	}
	defer rows.Close()

	var apartments []Apartment
	for rows.Next() {
		a, err := scanApartment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan apartment row: %w", err)
		}
		apartments = append(apartments, *a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating apartment rows: %w", err)
	}
	return apartments, nil
}

func (r *ApartmentRepositoryImpl) GetFeeds(ctx context.Context, apartmentID string) ([]ApartmentFeed, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, apartment_id, source, url, enabled, last_synced_at,
		       last_error, created_at, updated_at
		FROM apartment_feeds
		WHERE apartment_id = ?
		ORDER BY source
	`, apartmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get feeds: %w", err)
	}
	defer rows.Close()

	var feeds []ApartmentFeed
	for rows.Next() {
		var f ApartmentFeed
		err := rows.Scan(&f.ID, &f.ApartmentID, &f.Source, &f.URL, &f.Enabled,
			&f.LastSyncedAt, &f.LastError, &f.CreatedAt, &f.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan feed row: %w", err)
		}
		feeds = append(feeds, f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating feed rows: %w", err)
	}
	return feeds, nil
}

func (r *ApartmentRepositoryImpl) UpsertFeed(ctx context.Context, f *ApartmentFeed) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	now := time.Now().UTC()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO apartment_feeds (
			id, apartment_id, source, url, enabled, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (apartment_id, source) DO UPDATE SET
			url = excluded.url,
			enabled = excluded.enabled,
			updated_at = excluded.updated_at
	`, f.ID, f.ApartmentID, f.Source, f.URL, f.Enabled, now, now)

	if err != nil {
		return fmt.Errorf("failed to upsert feed: %w", err)
	}
	return nil
}

func (r *ApartmentRepositoryImpl) DeleteFeed(ctx context.Context, apartmentID, source string) error {
	_, err := r.db.ExecContext(ctx,
		"DELETE FROM apartment_feeds WHERE apartment_id = ? AND source = ?",
		apartmentID, source)
	if err != nil {
		return fmt.Errorf("failed to delete feed: %w", err)
	}
	return nil
}

func (r *ApartmentRepositoryImpl) UpdateFeedSyncState(ctx context.Context, feedID string, syncedAt time.Time, lastError string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE apartment_feeds
		SET last_synced_at = ?, last_error = ?, updated_at = ?
		WHERE id = ?
	`, syncedAt, lastError, time.Now().UTC(), feedID)

	if err != nil {
		return fmt.Errorf("failed to update feed sync state: %w", err)
	}
	return nil
}
