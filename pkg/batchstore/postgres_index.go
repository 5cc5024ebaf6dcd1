package batchstore

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

// PostgresIndex implements Index over Postgres, for multi-replica issuer
// deployments that need a shared certificate-offset index rather than a
// per-replica SQLite file.
type PostgresIndex struct {
	db *sql.DB
}

// NewPostgresIndex wraps db (opened by the caller with driver "postgres")
// and ensures the index table exists.
func NewPostgresIndex(db *sql.DB) (*PostgresIndex, error) {
	idx := &PostgresIndex{db: db}
	if err := idx.migrate(context.Background()); err != nil {
		return nil, err
	}
	return idx, nil
}

func (idx *PostgresIndex) migrate(ctx context.Context) error {
	const query = `
	CREATE TABLE IF NOT EXISTS certificate_offsets (
		batch_number BIGINT NOT NULL,
		cert_index   BIGINT NOT NULL,
		byte_offset  BIGINT NOT NULL,
		byte_length  BIGINT NOT NULL,
		PRIMARY KEY (batch_number, cert_index)
	);`
	_, err := idx.db.ExecContext(ctx, query)
	return err
}

func (idx *PostgresIndex) RecordOffset(ctx context.Context, batchNumber uint32, certIndex uint64, byteOffset, byteLength int64) error {
	const query = `
	INSERT INTO certificate_offsets (batch_number, cert_index, byte_offset, byte_length)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (batch_number, cert_index) DO UPDATE SET byte_offset = excluded.byte_offset, byte_length = excluded.byte_length`
	if _, err := idx.db.ExecContext(ctx, query, batchNumber, certIndex, byteOffset, byteLength); err != nil {
		return fmt.Errorf("batchstore: postgres record offset: %w", err)
	}
	return nil
}

func (idx *PostgresIndex) LookupOffset(ctx context.Context, batchNumber uint32, certIndex uint64) (int64, int64, bool, error) {
	const query = `SELECT byte_offset, byte_length FROM certificate_offsets WHERE batch_number = $1 AND cert_index = $2`
	var offset, length int64
	err := idx.db.QueryRowContext(ctx, query, batchNumber, certIndex).Scan(&offset, &length)
	if err == sql.ErrNoRows {
		return 0, 0, false, nil
	}
	if err != nil {
		return 0, 0, false, fmt.Errorf("batchstore: postgres lookup offset: %w", err)
	}
	return offset, length, true, nil
}
