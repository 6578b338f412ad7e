package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

// migrations are applied in order, once each, at startup. New columns are
// added by appending a migration, never by inspecting the live schema at
// request time.
var migrations = []string{
	// 001: core relations.
	`
	CREATE TABLE IF NOT EXISTS accounts (
		id         BIGINT PRIMARY KEY,
		username   TEXT NOT NULL DEFAULT '',
		role       INT NOT NULL DEFAULT 2,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);

	CREATE TABLE IF NOT EXISTS vehicles (
		id             BIGSERIAL PRIMARY KEY,
		truck_number   TEXT NOT NULL,
		trailer_number TEXT NOT NULL,
		notes          TEXT NOT NULL DEFAULT '',
		created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
	);

	CREATE TABLE IF NOT EXISTS drivers (
		id                    BIGSERIAL PRIMARY KEY,
		name                  TEXT NOT NULL,
		km_rate               NUMERIC NOT NULL,
		side_loading_rate     NUMERIC NOT NULL,
		roof_loading_rate     NUMERIC NOT NULL,
		regular_downtime_rate NUMERIC NOT NULL,
		forced_downtime_rate  NUMERIC NOT NULL,
		vehicle_id            BIGINT REFERENCES vehicles (id),
		notes                 TEXT NOT NULL DEFAULT '',
		created_at            TIMESTAMPTZ NOT NULL DEFAULT now()
	);

	CREATE TABLE IF NOT EXISTS trips (
		id                       BIGSERIAL PRIMARY KEY,
		driver_id                BIGINT NOT NULL REFERENCES drivers (id),
		vehicle_id               BIGINT NOT NULL REFERENCES vehicles (id),
		loading_city             TEXT NOT NULL,
		unloading_city           TEXT NOT NULL,
		distance_km              NUMERIC NOT NULL,
		side_loading_count       BIGINT NOT NULL DEFAULT 0,
		roof_loading_count       BIGINT NOT NULL DEFAULT 0,
		km_payment               NUMERIC NOT NULL DEFAULT 0,
		side_loading_payment     NUMERIC NOT NULL DEFAULT 0,
		roof_loading_payment     NUMERIC NOT NULL DEFAULT 0,
		regular_downtime_payment NUMERIC NOT NULL DEFAULT 0,
		forced_downtime_payment  NUMERIC NOT NULL DEFAULT 0,
		total_due                NUMERIC NOT NULL,
		created_at               TIMESTAMPTZ NOT NULL DEFAULT now()
	);

	CREATE TABLE IF NOT EXISTS downtimes (
		id         BIGSERIAL PRIMARY KEY,
		trip_id    BIGINT NOT NULL REFERENCES trips (id),
		kind       TEXT NOT NULL,
		hours      NUMERIC NOT NULL,
		payment    NUMERIC NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	`,

	// 002: per-trip settlement tracking.
	`
	ALTER TABLE trips ADD COLUMN IF NOT EXISTS paid_amount NUMERIC NOT NULL DEFAULT 0;
	ALTER TABLE trips ADD COLUMN IF NOT EXISTS paid BOOLEAN NOT NULL DEFAULT FALSE;
	CREATE INDEX IF NOT EXISTS trips_unpaid_idx ON trips (driver_id) WHERE NOT paid;
	`,

	// 003: append-only action log.
	`
	CREATE TABLE IF NOT EXISTS audit_log (
		id         BIGSERIAL PRIMARY KEY,
		account_id BIGINT NOT NULL,
		action     TEXT NOT NULL,
		details    TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	CREATE INDEX IF NOT EXISTS audit_log_account_idx ON audit_log (account_id, created_at);
	`,
}

// Migrate applies all pending migrations. Each migration runs in its own
// transaction and is recorded in schema_migrations, so re-running at every
// startup is safe.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    INT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	var current int
	err := db.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&current)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	for i := current; i < len(migrations); i++ {
		version := i + 1

		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, migrations[i]); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply migration %d: %w", version, err)
		}

		if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, version); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %d: %w", version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", version, err)
		}
	}

	return nil
}
