package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"certikid/internal/domain"
	"certikid/internal/port"
)

// checkpointKey is the settings row holding the last confirmed-existing
// invoice identifier.
const checkpointKey = "discovery.checkpoint"

type checkpointRepo struct {
	db *sqlx.DB
}

// NewCheckpointRepo creates a settings-table-backed CheckpointStore.
func NewCheckpointRepo(db *sqlx.DB) port.CheckpointStore {
	return &checkpointRepo{db: db}
}

func (r *checkpointRepo) Get(ctx context.Context) (string, error) {
	var value string
	err := r.db.GetContext(ctx, &value,
		"SELECT value FROM settings WHERE key = $1", checkpointKey)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", domain.ErrNotFound
		}
		return "", fmt.Errorf("checkpointRepo.Get: %w", err)
	}
	return value, nil
}

func (r *checkpointRepo) Set(ctx context.Context, identifier string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO settings (key, value, updated_at) VALUES ($1, $2, $3)
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
		checkpointKey, identifier, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("checkpointRepo.Set: %w", err)
	}
	return nil
}
