// Package batch implements the issuance and certificate-retrieval
// operations a batch goes through: building the Merkle tree, signing the
// validity window, materializing certificates, persisting the three
// per-batch blobs, and reading a certificate back out of a stored batch.
package batch

import (
	"context"
	"crypto/ed25519"
	"fmt"
	"time"

	"github.com/Mindburn-Labs/mtc/pkg/assertion"
	"github.com/Mindburn-Labs/mtc/pkg/batchstore"
	"github.com/Mindburn-Labs/mtc/pkg/certificate"
	"github.com/Mindburn-Labs/mtc/pkg/codec"
	"github.com/Mindburn-Labs/mtc/pkg/merkletree"
	"github.com/Mindburn-Labs/mtc/pkg/policy"
	"github.com/Mindburn-Labs/mtc/pkg/telemetry"
	"github.com/Mindburn-Labs/mtc/pkg/validitywindow"
)

// Producer issues batches: it builds the tree, signs the rolled-forward
// validity window, materializes one certificate per assertion, and
// persists all of it through a batchstore.Store.
type Producer struct {
	Store     batchstore.Store
	IssuerID  merkletree.IssuerID
	Signer    ed25519.PrivateKey
	Policy    *policy.Evaluator       // optional; nil accepts everything
	Telemetry *telemetry.Provider     // optional; nil is a no-op
	Index     batchstore.Index        // optional certificate-offset accelerator
	Pointer   batchstore.LatestPointer // optional; overrides Store's own latest pointer
}

// Result describes a successfully issued batch.
type Result struct {
	BatchNumber    uint32
	Root           codec.SHA256Hash
	AssertionCount int
}

// Issue admits assertions into a new batch. If batchNumber is nil, the
// next batch number is one past whatever the configured latest pointer
// reports (0 if none has ever been published). Issuance refuses to
// proceed if the previous window's signature does not verify, per the
// "issuance refuses to proceed" requirement.
func (p *Producer) Issue(ctx context.Context, assertions assertion.Assertions, batchNumber *uint32) (Result, error) {
	if p.Policy != nil {
		for i, a := range assertions {
			if err := p.Policy.Check(a); err != nil {
				return Result{}, fmt.Errorf("batch: assertion %d: %w", i, err)
			}
		}
	}

	bn, previous, err := p.resolveBatchNumber(ctx, batchNumber)
	if err != nil {
		return Result{}, err
	}

	spanCtx, done := p.Telemetry.StartBatchSpan(ctx, bn)
	start := time.Now()

	tree, err := merkletree.Build(assertions, p.IssuerID, bn)
	if err != nil {
		return Result{}, fmt.Errorf("batch: build tree: %w", err)
	}
	buildDuration := time.Since(start)
	done(len(assertions), buildDuration)

	signedWindow, err := validitywindow.Sign(p.Signer, p.IssuerID, bn, tree.Root(), previous)
	if err != nil {
		return Result{}, fmt.Errorf("batch: sign validity window: %w", err)
	}

	certStream := make([]byte, 0, len(assertions)*128)
	for i, a := range assertions {
		cert := certificate.CreateCertificate(a, tree, p.IssuerID, bn, uint64(i))
		offset := len(certStream)
		encoded := cert.Encode()
		certStream = append(certStream, encoded...)
		if p.Index != nil {
			if err := p.Index.RecordOffset(spanCtx, bn, uint64(i), int64(offset), int64(len(encoded))); err != nil {
				return Result{}, fmt.Errorf("batch: record certificate offset: %w", err)
			}
		}
	}

	if err := p.Store.WriteWindow(spanCtx, bn, signedWindow.Encode()); err != nil {
		return Result{}, fmt.Errorf("batch: write window: %w", err)
	}
	if err := p.Store.WriteAssertions(spanCtx, bn, assertions.Encode()); err != nil {
		return Result{}, fmt.Errorf("batch: write assertions: %w", err)
	}
	if err := p.Store.WriteCertificates(spanCtx, bn, certStream); err != nil {
		return Result{}, fmt.Errorf("batch: write certificates: %w", err)
	}

	if p.Pointer != nil {
		if err := p.Pointer.SetLatest(spanCtx, bn); err != nil {
			return Result{}, fmt.Errorf("batch: set latest pointer: %w", err)
		}
	} else if err := p.Store.SetLatest(spanCtx, bn); err != nil {
		return Result{}, fmt.Errorf("batch: set latest pointer: %w", err)
	}

	return Result{BatchNumber: bn, Root: tree.Root(), AssertionCount: len(assertions)}, nil
}

func (p *Producer) resolveBatchNumber(ctx context.Context, requested *uint32) (uint32, *validitywindow.SignedValidityWindow, error) {
	latestFn := p.Store.Latest
	if p.Pointer != nil {
		latestFn = p.Pointer.Latest
	}

	latest, ok, err := latestFn(ctx)
	if err != nil {
		return 0, nil, fmt.Errorf("batch: read latest pointer: %w", err)
	}

	var bn uint32
	switch {
	case requested != nil:
		bn = *requested
	case ok:
		bn = latest + 1
	default:
		bn = 0
	}

	if bn == 0 {
		if ok {
			return 0, nil, fmt.Errorf("batch: batch 0 requested but a batch has already been published")
		}
		return 0, nil, nil
	}

	windowBytes, err := p.Store.ReadWindow(ctx, bn-1)
	if err != nil {
		return 0, nil, fmt.Errorf("batch: read previous window (batch %d): %w", bn-1, err)
	}
	prevWindow, err := validitywindow.DecodeSignedValidityWindow(codec.NewReader(windowBytes))
	if err != nil {
		return 0, nil, fmt.Errorf("batch: decode previous window: %w", err)
	}

	// validitywindow.Sign itself verifies previous's signature before
	// extending it, so issuance refuses to proceed over a tampered or
	// corrupt predecessor without a second check here.
	return bn, &prevWindow, nil
}
