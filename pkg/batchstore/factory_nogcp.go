//go:build !gcp

package batchstore

import (
	"context"
	"fmt"
)

func newGCSStoreFromConfig(ctx context.Context, cfg StoreConfig) (Store, error) {
	return nil, fmt.Errorf("batchstore: GCS storage is not enabled in this build (use -tags gcp)")
}
