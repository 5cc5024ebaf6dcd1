//go:build gcp

package batchstore

import "context"

func newGCSStoreFromConfig(ctx context.Context, cfg StoreConfig) (Store, error) {
	return NewGCSStore(ctx, GCSStoreConfig{Bucket: cfg.Bucket, Prefix: cfg.Prefix})
}
