package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/8bitbanana/music-converter/internal/models"
)

// BindingRepository stores resolved cross-service bindings.
//
// Duplicate inserts are deduplicated via the (service, service_id,
// counterpart) UNIQUE constraint and silently ignored.
type BindingRepository struct {
	db *sql.DB
}

// NewBindingRepository wraps an open database handle.
func NewBindingRepository(db *sql.DB) *BindingRepository {
	return &BindingRepository{db: db}
}

// Init creates the bindings table if it does not exist.
func (r *BindingRepository) Init(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS bindings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		service TEXT NOT NULL,
		service_id TEXT NOT NULL,
		counterpart TEXT NOT NULL,
		counterpart_id TEXT NOT NULL,
		title TEXT NOT NULL,
		artist TEXT NOT NULL,
		album TEXT NOT NULL DEFAULT '',
		duration REAL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(service, service_id, counterpart)
	)`
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create bindings table: %w", err)
	}
	return nil
}

// Store persists the track's resolved binding pair. The track must be
// bound on both services.
func (r *BindingRepository) Store(ctx context.Context, track *models.Track, service, counterpart models.Service) error {
	serviceID := track.BindingFor(service).ID
	counterpartID := track.BindingFor(counterpart).ID
	if serviceID == "" || counterpartID == "" {
		return fmt.Errorf("track %q is not bound on both %s and %s", track.Title, service, counterpart)
	}

	var duration sql.NullFloat64
	if d := track.BindingFor(counterpart).Duration; d != nil {
		duration = sql.NullFloat64{Float64: *d, Valid: true}
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO bindings (service, service_id, counterpart, counterpart_id, title, artist, album, duration)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		service.String(), serviceID, counterpart.String(), counterpartID,
		track.Title, track.Artist, track.Album, duration,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return nil
		}
		return fmt.Errorf("failed to store binding: %w", err)
	}
	return nil
}

// Lookup returns the cached counterpart track for (service, serviceID), or
// nil on a cache miss.
func (r *BindingRepository) Lookup(ctx context.Context, service models.Service, serviceID string, counterpart models.Service) (*models.Track, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT counterpart_id, title, artist, album, duration
		 FROM bindings
		 WHERE service = ? AND service_id = ? AND counterpart = ?
		 ORDER BY id DESC LIMIT 1`,
		service.String(), serviceID, counterpart.String(),
	)

	var counterpartID, title, artist, album string
	var duration sql.NullFloat64
	if err := row.Scan(&counterpartID, &title, &artist, &album, &duration); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up binding: %w", err)
	}

	track := models.NewTrack(title, artist, album)
	track.Bind(counterpart, counterpartID)
	if duration.Valid {
		track.RecordDuration(counterpart, &duration.Float64, false)
	}
	return track, nil
}

// Purge removes every cached binding involving the given service id, used
// when a link is detached as bad.
func (r *BindingRepository) Purge(ctx context.Context, service models.Service, serviceID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM bindings WHERE (service = ? AND service_id = ?) OR (counterpart = ? AND counterpart_id = ?)`,
		service.String(), serviceID, service.String(), serviceID,
	)
	if err != nil {
		return fmt.Errorf("failed to purge bindings: %w", err)
	}
	return nil
}
