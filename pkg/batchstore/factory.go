package batchstore

import (
	"context"
	"database/sql"
	"fmt"
)

// StoreConfig carries the subset of pkg/mtcconfig.Config a Store and its
// optional LatestPointer/Index need, kept here (rather than importing
// mtcconfig directly) so this package has no dependency on the CLI's config
// shape.
type StoreConfig struct {
	Backend string // "file" | "s3" | "gcs"
	Bucket  string
	Prefix  string
	Region  string
	Dir     string // file backend only

	IndexBackend string // "none" | "sqlite" | "postgres"
	IndexDSN     string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// NewStore builds the Store named by cfg.Backend.
func NewStore(ctx context.Context, cfg StoreConfig) (Store, error) {
	switch cfg.Backend {
	case "", "file":
		dir := cfg.Dir
		if dir == "" {
			dir = "data/mtc"
		}
		return NewFileStore(dir)
	case "s3":
		if cfg.Bucket == "" {
			return nil, fmt.Errorf("batchstore: storage_bucket is required for the s3 backend")
		}
		return NewS3Store(ctx, S3StoreConfig{Bucket: cfg.Bucket, Region: cfg.Region, Prefix: cfg.Prefix})
	case "gcs":
		if cfg.Bucket == "" {
			return nil, fmt.Errorf("batchstore: storage_bucket is required for the gcs backend")
		}
		return newGCSStoreFromConfig(ctx, cfg)
	default:
		return nil, fmt.Errorf("batchstore: unknown storage backend %q", cfg.Backend)
	}
}

// NewLatestPointer returns a RedisPointer when cfg.RedisAddr is set, or nil
// (meaning: let the Store's own SetLatest/Latest serve as the pointer) when
// it is empty.
func NewLatestPointer(cfg StoreConfig) LatestPointer {
	if cfg.RedisAddr == "" {
		return nil
	}
	return NewRedisPointer(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, "mtc:latest-batch")
}

// NewIndex builds the Index named by cfg.IndexBackend, opening cfg.IndexDSN
// as a *sql.DB with the matching driver. Returns (nil, nil) for "none".
func NewIndex(cfg StoreConfig) (Index, error) {
	switch cfg.IndexBackend {
	case "", "none":
		return nil, nil
	case "sqlite":
		db, err := sql.Open("sqlite", cfg.IndexDSN)
		if err != nil {
			return nil, fmt.Errorf("batchstore: open sqlite index: %w", err)
		}
		return NewSQLiteIndex(db)
	case "postgres":
		db, err := sql.Open("postgres", cfg.IndexDSN)
		if err != nil {
			return nil, fmt.Errorf("batchstore: open postgres index: %w", err)
		}
		return NewPostgresIndex(db)
	default:
		return nil, fmt.Errorf("batchstore: unknown index backend %q", cfg.IndexBackend)
	}
}
