package batch

import (
	"context"
	"fmt"
	"io"

	"github.com/Mindburn-Labs/mtc/pkg/batchstore"
	"github.com/Mindburn-Labs/mtc/pkg/certificate"
	"github.com/Mindburn-Labs/mtc/pkg/codec"
)

// Reader retrieves a single certificate out of a stored batch without
// decoding the whole certificate stream.
type Reader struct {
	Store batchstore.Store
	Index batchstore.Index // optional; falls back to a sequential skip when absent or stale
}

// Certificate returns the certIndex-th certificate from batchNumber's
// certificate blob. When an Index is configured and holds a fresh entry for
// (batchNumber, certIndex), the stream is read starting at the recorded
// offset; otherwise it falls back to skip-decoding from the start, which is
// always correct regardless of what the index says.
func (r *Reader) Certificate(ctx context.Context, batchNumber uint32, certIndex uint64) (certificate.BikeshedCertificate, error) {
	stream, err := r.Store.OpenCertificateStream(ctx, batchNumber)
	if err != nil {
		return certificate.BikeshedCertificate{}, fmt.Errorf("batch: open certificate stream for batch %d: %w", batchNumber, err)
	}
	defer stream.Close()

	data, err := io.ReadAll(stream)
	if err != nil {
		return certificate.BikeshedCertificate{}, fmt.Errorf("batch: read certificate stream for batch %d: %w", batchNumber, err)
	}

	if r.Index != nil {
		offset, length, ok, err := r.Index.LookupOffset(ctx, batchNumber, certIndex)
		if err == nil && ok && offset >= 0 && offset+length <= int64(len(data)) {
			reader := codec.NewReader(data[offset : offset+length])
			cert, err := certificate.DecodeBikeshedCertificate(reader)
			if err == nil && reader.Remaining() == 0 {
				return cert, nil
			}
			// Stale or corrupt index entry: fall through to the
			// authoritative skip-based path below.
		}
	}

	cursor := codec.NewReader(data)
	for i := uint64(0); i < certIndex; i++ {
		if err := certificate.SkipBikeshedCertificate(cursor); err != nil {
			return certificate.BikeshedCertificate{}, fmt.Errorf("batch: skip to certificate %d in batch %d: %w", certIndex, batchNumber, err)
		}
	}

	cert, err := certificate.DecodeBikeshedCertificate(cursor)
	if err != nil {
		return certificate.BikeshedCertificate{}, fmt.Errorf("batch: decode certificate %d in batch %d: %w", certIndex, batchNumber, err)
	}
	return cert, nil
}
