package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/Mindburn-Labs/mtc/pkg/batch"
	"github.com/Mindburn-Labs/mtc/pkg/batchstore"
)

// runGenerateCertificateCmd implements `mtc generate-certificate`: pulls
// one certificate out of an already-issued batch and writes its wire
// encoding to --out.
func runGenerateCertificateCmd(args []string, stdout, stderr io.Writer) int {
	cmd := flag.NewFlagSet("generate-certificate", flag.ContinueOnError)
	cmd.SetOutput(stderr)

	var (
		batchNumber uint
		index       uint
		issuerID    string
		store       string
		out         string
	)

	cmd.UintVar(&batchNumber, "batch", 0, "Batch number (REQUIRED)")
	cmd.UintVar(&index, "index", 0, "Certificate leaf index within the batch (REQUIRED)")
	cmd.StringVar(&issuerID, "issuer-id", "", "Expected issuer identifier (REQUIRED)")
	cmd.StringVar(&store, "store", "data/mtc", "Batch store directory")
	cmd.StringVar(&out, "out", "", "Output path for the certificate's wire encoding (REQUIRED)")

	if err := cmd.Parse(args); err != nil {
		return 2
	}
	if out == "" || issuerID == "" {
		fmt.Fprintln(stderr, "Error: --issuer-id and --out are required")
		return 2
	}

	fileStore, err := batchstore.NewFileStore(store)
	if err != nil {
		fmt.Fprintf(stderr, "Error: open store: %v\n", err)
		return 2
	}

	reader := &batch.Reader{Store: fileStore}
	cert, err := reader.Certificate(context.Background(), uint32(batchNumber), uint64(index))
	if err != nil {
		fmt.Fprintf(stderr, "Error: read certificate: %v\n", err)
		return 1
	}
	if got := string(cert.Proof.TrustAnchor.MerkleTreeData.IssuerID); got != issuerID {
		fmt.Fprintf(stderr, "Error: certificate was issued by %q, not %q\n", got, issuerID)
		return 1
	}

	if err := os.WriteFile(out, cert.Encode(), 0o644); err != nil {
		fmt.Fprintf(stderr, "Error: write certificate: %v\n", err)
		return 2
	}

	fmt.Fprintf(stdout, "wrote certificate batch=%d index=%d to %s\n", batchNumber, index, out)
	return 0
}
