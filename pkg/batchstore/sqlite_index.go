package batchstore

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteIndex implements Index over a local SQLite database, for
// single-writer issuer deployments that want fast certificate lookup
// without running a separate database server.
type SQLiteIndex struct {
	db *sql.DB
}

// NewSQLiteIndex wraps db (opened by the caller with driver "sqlite") and
// ensures the index table exists.
func NewSQLiteIndex(db *sql.DB) (*SQLiteIndex, error) {
	idx := &SQLiteIndex{db: db}
	if err := idx.migrate(context.Background()); err != nil {
		return nil, err
	}
	return idx, nil
}

func (idx *SQLiteIndex) migrate(ctx context.Context) error {
	const query = `
	CREATE TABLE IF NOT EXISTS certificate_offsets (
		batch_number INTEGER NOT NULL,
		cert_index   INTEGER NOT NULL,
		byte_offset  INTEGER NOT NULL,
		byte_length  INTEGER NOT NULL,
		PRIMARY KEY (batch_number, cert_index)
	);`
	_, err := idx.db.ExecContext(ctx, query)
	return err
}

func (idx *SQLiteIndex) RecordOffset(ctx context.Context, batchNumber uint32, certIndex uint64, byteOffset, byteLength int64) error {
	const query = `
	INSERT INTO certificate_offsets (batch_number, cert_index, byte_offset, byte_length)
	VALUES (?, ?, ?, ?)
	ON CONFLICT (batch_number, cert_index) DO UPDATE SET byte_offset = excluded.byte_offset, byte_length = excluded.byte_length`
	if _, err := idx.db.ExecContext(ctx, query, batchNumber, certIndex, byteOffset, byteLength); err != nil {
		return fmt.Errorf("batchstore: sqlite record offset: %w", err)
	}
	return nil
}

func (idx *SQLiteIndex) LookupOffset(ctx context.Context, batchNumber uint32, certIndex uint64) (int64, int64, bool, error) {
	const query = `SELECT byte_offset, byte_length FROM certificate_offsets WHERE batch_number = ? AND cert_index = ?`
	var offset, length int64
	err := idx.db.QueryRowContext(ctx, query, batchNumber, certIndex).Scan(&offset, &length)
	if err == sql.ErrNoRows {
		return 0, 0, false, nil
	}
	if err != nil {
		return 0, 0, false, fmt.Errorf("batchstore: sqlite lookup offset: %w", err)
	}
	return offset, length, true, nil
}
