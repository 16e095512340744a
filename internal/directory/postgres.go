package directory

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresDirectory resolves records from the identity_directory table. Phones
// are stored as national numbers without the country code.
type PostgresDirectory struct {
	db *pgxpool.Pool
}

// NewPostgresDirectory builds a Postgres-backed directory.
func NewPostgresDirectory(db *pgxpool.Pool) *PostgresDirectory {
	return &PostgresDirectory{db: db}
}

const selectRecord = `SELECT national_id, display_name, postal_address, phone, tier FROM identity_directory`

// LookupByPhone fetches a record by phone, trying both stored notations.
func (d *PostgresDirectory) LookupByPhone(ctx context.Context, phone string) (Record, error) {
	candidates := lookupCandidates(phone)
	if len(candidates) == 0 {
		return Record{}, ErrNotFound
	}
	row := d.db.QueryRow(ctx, selectRecord+` WHERE phone = ANY($1) LIMIT 1`, candidates)
	return scanRecord(row)
}

// LookupByNationalID fetches a record by national identity number.
func (d *PostgresDirectory) LookupByNationalID(ctx context.Context, nationalID string) (Record, error) {
	row := d.db.QueryRow(ctx, selectRecord+` WHERE national_id = $1`, nationalID)
	return scanRecord(row)
}

// Upsert inserts or refreshes a directory record. Used by seeding jobs.
func (d *PostgresDirectory) Upsert(ctx context.Context, r Record) error {
	_, err := d.db.Exec(ctx, `INSERT INTO identity_directory (national_id, display_name, postal_address, phone, tier)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (national_id) DO UPDATE SET display_name = EXCLUDED.display_name,
            postal_address = EXCLUDED.postal_address, phone = EXCLUDED.phone, tier = EXCLUDED.tier`,
		r.NationalID, r.DisplayName, r.PostalAddress, NationalNumber(r.Phone), string(r.Tier))
	return err
}

func scanRecord(row pgx.Row) (Record, error) {
	var (
		r    Record
		tier string
	)
	if err := row.Scan(&r.NationalID, &r.DisplayName, &r.PostalAddress, &r.Phone, &tier); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, err
	}
	r.Tier = Tier(tier)
	r.Phone = "+" + CountryCode + " " + r.Phone
	return r, nil
}
