package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/Mindburn-Labs/mtc/pkg/certificate"
	"github.com/Mindburn-Labs/mtc/pkg/codec"
	"github.com/Mindburn-Labs/mtc/pkg/merkletree"
	"github.com/Mindburn-Labs/mtc/pkg/mtckey"
	"github.com/Mindburn-Labs/mtc/pkg/validitywindow"
)

// runVerifyCmd implements `mtc verify`: checks a certificate's inclusion
// proof against a signed validity window, per spec.md §4.4 verify_certificate.
//
// Exit codes:
//
//	0 = verification passed
//	1 = verification failed
//	2 = runtime error (bad flags, unreadable files, malformed wire data)
func runVerifyCmd(args []string, stdout, stderr io.Writer) int {
	cmd := flag.NewFlagSet("verify", flag.ContinueOnError)
	cmd.SetOutput(stderr)

	var (
		certPath   string
		windowPath string
		pubKeyPath string
		issuerID   string
	)

	cmd.StringVar(&certPath, "cert", "", "Path to a certificate's wire encoding (REQUIRED)")
	cmd.StringVar(&windowPath, "window", "", "Path to a signed validity window's wire encoding (REQUIRED)")
	cmd.StringVar(&pubKeyPath, "pubkey", "", "Path to the issuer's Ed25519 public key PEM (REQUIRED)")
	cmd.StringVar(&issuerID, "issuer-id", "", "Issuer identifier (REQUIRED)")

	if err := cmd.Parse(args); err != nil {
		return 2
	}
	if certPath == "" || windowPath == "" || pubKeyPath == "" || issuerID == "" {
		fmt.Fprintln(stderr, "Error: --cert, --window, --pubkey, and --issuer-id are required")
		return 2
	}

	certBytes, err := os.ReadFile(certPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error: read certificate: %v\n", err)
		return 2
	}
	cert, err := certificate.DecodeBikeshedCertificate(codec.NewReader(certBytes))
	if err != nil {
		fmt.Fprintf(stderr, "Error: decode certificate: %v\n", err)
		return 2
	}

	windowBytes, err := os.ReadFile(windowPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error: read validity window: %v\n", err)
		return 2
	}
	window, err := validitywindow.DecodeSignedValidityWindow(codec.NewReader(windowBytes))
	if err != nil {
		fmt.Fprintf(stderr, "Error: decode validity window: %v\n", err)
		return 2
	}

	pub, err := mtckey.ReadPublic(pubKeyPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error: load public key: %v\n", err)
		return 2
	}

	if err := certificate.Verify(cert, window, merkletree.IssuerID(issuerID), pub); err != nil {
		fmt.Fprintf(stdout, "FAIL: %v\n", err)
		return 1
	}

	fmt.Fprintln(stdout, "PASS")
	return 0
}
