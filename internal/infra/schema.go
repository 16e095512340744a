package infra

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/e-ration/eration/internal/directory"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS identity_directory (
        national_id    TEXT PRIMARY KEY,
        display_name   TEXT NOT NULL,
        postal_address TEXT NOT NULL,
        phone          TEXT NOT NULL,
        tier           TEXT NOT NULL CHECK (tier IN ('basic', 'premium'))
    )`,
	`CREATE INDEX IF NOT EXISTS identity_directory_phone_idx ON identity_directory (phone)`,
	`CREATE TABLE IF NOT EXISTS kv_store (
        key        TEXT PRIMARY KEY,
        value      JSONB NOT NULL,
        updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
    )`,
}

// EnsureSchema creates the tables used by the Postgres directory and
// document store.
func EnsureSchema(ctx context.Context, db *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

// SeedDemoDirectory loads the demo enrolments into identity_directory.
func SeedDemoDirectory(ctx context.Context, db *pgxpool.Pool) error {
	dir := directory.NewPostgresDirectory(db)
	for _, rec := range directory.DemoRecords() {
		if err := dir.Upsert(ctx, rec); err != nil {
			return fmt.Errorf("seed directory: %w", err)
		}
	}
	return nil
}
