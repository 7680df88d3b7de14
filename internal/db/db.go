// Package db persists per-tick snapshot history to Postgres. Persistence
// is optional; when no DSN is configured the simulator runs in-memory only.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/FabianUB/minibarcelona3d-sub003/internal/store"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)
	return db, nil
}

func Ping(ctx context.Context, db *sql.DB) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return db.PingContext(ctx)
}

// Writer stores snapshot history rows.
type Writer struct {
	db *sql.DB
}

func NewWriter(db *sql.DB) *Writer {
	return &Writer{db: db}
}

// EnsureSchema creates the history tables if they do not exist.
func (w *Writer) EnsureSchema(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS vehicle_snapshots (
    snapshot_id  UUID PRIMARY KEY,
    source       TEXT NOT NULL,
    generated_at TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS vehicle_positions (
    snapshot_id         UUID NOT NULL REFERENCES vehicle_snapshots(snapshot_id) ON DELETE CASCADE,
    vehicle_key         TEXT NOT NULL,
    line_code           TEXT NOT NULL,
    direction           SMALLINT NOT NULL,
    distance_along_line DOUBLE PRECISION NOT NULL,
    latitude            DOUBLE PRECISION NOT NULL,
    longitude           DOUBLE PRECISION NOT NULL,
    bearing             DOUBLE PRECISION NOT NULL,
    status              TEXT NOT NULL,
    source              TEXT NOT NULL,
    observed_at         TIMESTAMPTZ NOT NULL,
    PRIMARY KEY (snapshot_id, vehicle_key)
);
CREATE INDEX IF NOT EXISTS idx_vehicle_positions_line ON vehicle_positions (line_code, observed_at);
`
	if _, err := w.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// InsertSnapshot writes one tick's snapshot in a single transaction.
func (w *Writer) InsertSnapshot(ctx context.Context, snap *store.Snapshot) error {
	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO vehicle_snapshots (snapshot_id, source, generated_at) VALUES ($1, $2, $3)`,
		snap.ID, string(snap.Source), snap.GeneratedAt,
	); err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}

	const insertPos = `
INSERT INTO vehicle_positions
    (snapshot_id, vehicle_key, line_code, direction, distance_along_line,
     latitude, longitude, bearing, status, source, observed_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	for _, v := range snap.Vehicles {
		if _, err := tx.ExecContext(ctx, insertPos,
			snap.ID, v.VehicleKey, v.LineCode, v.Direction, v.DistanceAlongLine,
			v.Latitude, v.Longitude, v.Bearing, string(v.Status), string(v.Source), v.Timestamp,
		); err != nil {
			return fmt.Errorf("insert position %s: %w", v.VehicleKey, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// PruneBefore deletes history older than the cutoff.
func (w *Writer) PruneBefore(ctx context.Context, cutoff time.Time) error {
	_, err := w.db.ExecContext(ctx,
		`DELETE FROM vehicle_snapshots WHERE generated_at < $1`, cutoff)
	return err
}
