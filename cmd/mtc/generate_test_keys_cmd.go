package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Mindburn-Labs/mtc/pkg/mtckey"
)

// runGenerateTestKeysCmd implements `mtc generate-test-keys`: emits
// test_priv.pem/test_pub.pem under --out. With --passphrase, the private
// key is wrapped with AES-256-GCM under a PBKDF2-derived key instead of
// being written as plain PKCS#8.
func runGenerateTestKeysCmd(args []string, stdout, stderr io.Writer) int {
	cmd := flag.NewFlagSet("generate-test-keys", flag.ContinueOnError)
	cmd.SetOutput(stderr)

	var (
		out        string
		passphrase string
	)

	cmd.StringVar(&out, "out", ".", "Output directory for test_priv.pem/test_pub.pem")
	cmd.StringVar(&passphrase, "passphrase", "", "Optional passphrase to wrap the private key at rest")

	if err := cmd.Parse(args); err != nil {
		return 2
	}

	if err := os.MkdirAll(out, 0o755); err != nil {
		fmt.Fprintf(stderr, "Error: create output directory: %v\n", err)
		return 2
	}

	pub, priv, err := mtckey.Generate()
	if err != nil {
		fmt.Fprintf(stderr, "Error: generate key: %v\n", err)
		return 2
	}

	privPath := filepath.Join(out, "test_priv.pem")
	pubPath := filepath.Join(out, "test_pub.pem")

	if err := mtckey.WritePrivate(privPath, priv, passphrase); err != nil {
		fmt.Fprintf(stderr, "Error: write private key: %v\n", err)
		return 2
	}
	if err := mtckey.WritePublic(pubPath, pub); err != nil {
		fmt.Fprintf(stderr, "Error: write public key: %v\n", err)
		return 2
	}

	fmt.Fprintf(stdout, "wrote %s and %s\n", privPath, pubPath)
	if passphrase != "" {
		fmt.Fprintln(stdout, "private key is passphrase-protected")
	}
	return 0
}
