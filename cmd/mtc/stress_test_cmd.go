package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/Mindburn-Labs/mtc/pkg/assertion"
	"github.com/Mindburn-Labs/mtc/pkg/batch"
	"github.com/Mindburn-Labs/mtc/pkg/batchstore"
	"github.com/Mindburn-Labs/mtc/pkg/merkletree"
	"github.com/Mindburn-Labs/mtc/pkg/mtckey"
	"github.com/Mindburn-Labs/mtc/pkg/telemetry"
)

const stressTestAssertionCount = 1_000_000

// runStressTestCmd implements `mtc stress-test`: issues one batch of
// 1,000,000 copies of a fixed assertion and reports how long the whole
// issuance took (tree build, signing, certificates and writes), exercising pkg/merkletree's parallel leaf/level hashing at scale.
func runStressTestCmd(args []string, stdout, stderr io.Writer) int {
	cmd := flag.NewFlagSet("stress-test", flag.ContinueOnError)
	cmd.SetOutput(stderr)

	var (
		keyPath      string
		passphrase   string
		issuerID     string
		store        string
		otlpEndpoint string
	)

	cmd.StringVar(&keyPath, "key", "", "Path to the issuer's Ed25519 private key PEM (REQUIRED)")
	cmd.StringVar(&passphrase, "passphrase", "", "Passphrase for an encrypted private key")
	cmd.StringVar(&issuerID, "issuer-id", "stress-test-issuer", "Issuer identifier")
	cmd.StringVar(&store, "store", "data/mtc-stress", "Batch store directory")
	cmd.StringVar(&otlpEndpoint, "otlp-endpoint", "", "OTLP collector endpoint for telemetry export")

	if err := cmd.Parse(args); err != nil {
		return 2
	}
	if keyPath == "" {
		fmt.Fprintln(stderr, "Error: --key is required")
		return 2
	}

	ctx := context.Background()

	priv, err := mtckey.ReadPrivate(keyPath, passphrase)
	if err != nil {
		fmt.Fprintf(stderr, "Error: load private key: %v\n", err)
		return 2
	}

	fileStore, err := batchstore.NewFileStore(store)
	if err != nil {
		fmt.Fprintf(stderr, "Error: open store: %v\n", err)
		return 2
	}

	provider, err := telemetry.New(ctx, telemetry.Config{ServiceName: "mtc-stress-test", IssuerID: issuerID, OTLPEndpoint: otlpEndpoint})
	if err != nil {
		fmt.Fprintf(stderr, "Error: init telemetry: %v\n", err)
		return 2
	}
	defer provider.Shutdown(ctx)

	fixed, err := assertion.CreateAssertion([]byte("stress-test-subject-info"), assertion.CreateAssertionOptions{
		DNSNames: []string{"stress-test.example.com"},
	})
	if err != nil {
		fmt.Fprintf(stderr, "Error: build fixed assertion: %v\n", err)
		return 2
	}
	assertions := make(assertion.Assertions, stressTestAssertionCount)
	for i := range assertions {
		assertions[i] = fixed
	}

	producer := &batch.Producer{
		Store:     fileStore,
		IssuerID:  merkletree.IssuerID(issuerID),
		Signer:    priv,
		Telemetry: provider,
	}

	start := time.Now()
	result, err := producer.Issue(ctx, assertions, nil)
	elapsed := time.Since(start)
	if err != nil {
		fmt.Fprintf(stderr, "Error: issue stress batch: %v\n", err)
		return 1
	}

	fmt.Fprintf(stdout, "issued batch %d: %d assertions in %s, root %x\n",
		result.BatchNumber, result.AssertionCount, elapsed, result.Root)
	return 0
}
