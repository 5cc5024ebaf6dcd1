package batchstore

import "context"

// Index is an optional certificate-offset accelerator: given a batch number
// and leaf index, it returns the byte offset and length of that
// certificate within the batch's certificate blob, so pkg/batch.Reader can
// seek directly instead of skip-decoding from the start of the stream. The
// skip-based path is always correct and authoritative; Index only shortens
// it, and is safe to omit or to rebuild from scratch if it goes stale.
type Index interface {
	RecordOffset(ctx context.Context, batchNumber uint32, certIndex uint64, byteOffset, byteLength int64) error
	LookupOffset(ctx context.Context, batchNumber uint32, certIndex uint64) (byteOffset, byteLength int64, ok bool, err error)
}
