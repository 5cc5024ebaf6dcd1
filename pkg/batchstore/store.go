// Package batchstore persists the three blobs an issued batch produces
// (signed validity window, assertions, certificates) and the "latest
// batch" pointer, behind a pluggable Store so an issuer can run against the
// local filesystem or a remote object store without pkg/batch knowing the
// difference.
package batchstore

import (
	"context"
	"io"
)

// Store is the persistence contract pkg/batch.Producer and pkg/batch.Reader
// depend on. Implementations lay batches out exactly as
// "<root>/batches/<N>/signed-validity-window", ".../assertions",
// ".../certificates", plus a "latest" pointer — local or remote.
type Store interface {
	WriteWindow(ctx context.Context, batchNumber uint32, data []byte) error
	ReadWindow(ctx context.Context, batchNumber uint32) ([]byte, error)

	WriteAssertions(ctx context.Context, batchNumber uint32, data []byte) error
	ReadAssertions(ctx context.Context, batchNumber uint32) ([]byte, error)

	WriteCertificates(ctx context.Context, batchNumber uint32, data []byte) error

	// OpenCertificateStream opens the certificate blob for sequential
	// decode (Reader.Certificate skips/decodes through it); the caller
	// must Close it.
	OpenCertificateStream(ctx context.Context, batchNumber uint32) (io.ReadCloser, error)

	// Latest returns the most recently published batch number. ok is false
	// if no batch has ever been published.
	Latest(ctx context.Context) (batchNumber uint32, ok bool, err error)
	SetLatest(ctx context.Context, batchNumber uint32) error
}

// LatestPointer is a narrower interface some Stores delegate to a separate
// backend for (e.g. Redis) instead of implementing it themselves, so that
// multiple issuer replicas sharing one object store backend can still
// agree on a single linearizable "latest" value.
type LatestPointer interface {
	Latest(ctx context.Context) (batchNumber uint32, ok bool, err error)
	SetLatest(ctx context.Context, batchNumber uint32) error
}
