package batch

import (
	"context"
	"testing"

	"github.com/Mindburn-Labs/mtc/pkg/batchstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIndex struct {
	offset, length int64
	ok             bool
}

func (f *fakeIndex) RecordOffset(context.Context, uint32, uint64, int64, int64) error { return nil }

func (f *fakeIndex) LookupOffset(context.Context, uint32, uint64) (int64, int64, bool, error) {
	return f.offset, f.length, f.ok, nil
}

func TestReaderFallsBackWhenIndexStale(t *testing.T) {
	p, _ := newTestProducer(t)
	ctx := context.Background()
	assertions := testAssertions(t, 3)

	result, err := p.Issue(ctx, assertions, nil)
	require.NoError(t, err)

	// An index entry pointing at garbage offsets must not corrupt the
	// result: the skip-based decode is always authoritative.
	reader := &Reader{Store: p.Store, Index: &fakeIndex{offset: 999999, length: 1, ok: true}}
	cert, err := reader.Certificate(ctx, result.BatchNumber, 1)
	require.NoError(t, err)
	assert.Equal(t, assertions[1], cert.Assertion)
}

func TestReaderErrorsOnUnknownBatch(t *testing.T) {
	p, _ := newTestProducer(t)
	reader := &Reader{Store: p.Store}
	_, err := reader.Certificate(context.Background(), 999, 0)
	require.Error(t, err)
}

var _ batchstore.Index = (*fakeIndex)(nil)
