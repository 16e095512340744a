package storage

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresBlobs struct {
	db *pgxpool.Pool
}

// NewPostgres stores documents in the kv_store table (key text primary key,
// value jsonb, updated_at timestamptz).
func NewPostgres(db *pgxpool.Pool) Adapter {
	return jsonAdapter{blobs: postgresBlobs{db: db}}
}

func (p postgresBlobs) get(ctx context.Context, key string) ([]byte, bool, error) {
	var data []byte
	err := p.db.QueryRow(ctx, `SELECT value::text FROM kv_store WHERE key = $1`, key).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (p postgresBlobs) put(ctx context.Context, key string, data []byte) error {
	_, err := p.db.Exec(ctx, `INSERT INTO kv_store (key, value, updated_at) VALUES ($1, $2::jsonb, now())
        ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`, key, string(data))
	return err
}

func (p postgresBlobs) del(ctx context.Context, key string) error {
	_, err := p.db.Exec(ctx, `DELETE FROM kv_store WHERE key = $1`, key)
	return err
}
