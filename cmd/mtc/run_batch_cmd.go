package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/Mindburn-Labs/mtc/pkg/batch"
	"github.com/Mindburn-Labs/mtc/pkg/batchstore"
	"github.com/Mindburn-Labs/mtc/pkg/ingest"
	"github.com/Mindburn-Labs/mtc/pkg/merkletree"
	"github.com/Mindburn-Labs/mtc/pkg/mtckey"
	"github.com/Mindburn-Labs/mtc/pkg/mtcconfig"
	"github.com/Mindburn-Labs/mtc/pkg/policy"
	"github.com/Mindburn-Labs/mtc/pkg/telemetry"
)

// runRunBatchCmd implements `mtc run-batch`: parses a JSON assertions file
// (C9), optionally checks each assertion against a policy file (C8), and
// issues a batch (C5) into the configured store (C10). --config names a
// pkg/mtcconfig YAML file (C6); any of --issuer-id/--key/--store/--policy
// explicitly passed on the command line overrides the matching config
// field, mirroring the teacher's layered config-then-flags precedence.
func runRunBatchCmd(args []string, stdout, stderr io.Writer) int {
	cmd := flag.NewFlagSet("run-batch", flag.ContinueOnError)
	cmd.SetOutput(stderr)

	var (
		configPath     string
		assertionsPath string
		issuerID       string
		keyPath        string
		passphrase     string
		store          string
		policyPath     string
		otlpEndpoint   string
		batchNumber    int64
	)

	cmd.StringVar(&configPath, "config", "", "Path to a pkg/mtcconfig YAML file")
	cmd.StringVar(&assertionsPath, "assertions", "", "Path to a JSON assertions file (REQUIRED)")
	cmd.StringVar(&issuerID, "issuer-id", "", "Issuer identifier")
	cmd.StringVar(&keyPath, "key", "", "Path to the issuer's Ed25519 private key PEM")
	cmd.StringVar(&passphrase, "passphrase", "", "Passphrase for an encrypted private key")
	cmd.StringVar(&store, "store", "", "Batch store directory (file backend)")
	cmd.StringVar(&policyPath, "policy", "", "Path to a newline-separated CEL policy file")
	cmd.StringVar(&otlpEndpoint, "otlp-endpoint", "", "OTLP collector endpoint for telemetry export")
	cmd.Int64Var(&batchNumber, "batch", -1, "Explicit batch number (default: one past the store's latest)")

	if err := cmd.Parse(args); err != nil {
		return 2
	}
	if assertionsPath == "" {
		fmt.Fprintln(stderr, "Error: --assertions is required")
		return 2
	}

	seen := make(map[string]bool)
	cmd.Visit(func(f *flag.Flag) { seen[f.Name] = true })

	// mtcconfig.Load validates issuer_id/key_path unconditionally, so it is
	// only consulted when --config is actually given; a bare CLI invocation
	// (the common case) builds its config straight from flags below.
	var cfg *mtcconfig.Config
	if configPath != "" {
		var err error
		cfg, err = mtcconfig.Load(configPath)
		if err != nil {
			fmt.Fprintf(stderr, "Error: load config: %v\n", err)
			return 2
		}
	} else {
		cfg = &mtcconfig.Config{StorageBackend: "file", StorageDir: "data/mtc", IndexBackend: "none"}
	}
	if seen["issuer-id"] {
		cfg.IssuerID = issuerID
	}
	if seen["key"] {
		cfg.KeyPath = keyPath
	}
	if seen["store"] {
		cfg.StorageBackend = "file"
		cfg.StorageDir = store
	}
	if seen["policy"] {
		cfg.PolicyFile = policyPath
	}
	if seen["otlp-endpoint"] {
		cfg.OTLPEndpoint = otlpEndpoint
	}
	if cfg.IssuerID == "" || cfg.KeyPath == "" {
		fmt.Fprintln(stderr, "Error: issuer id and key path are required (via --config, or --issuer-id/--key)")
		return 2
	}

	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(stderr, nil))

	f, err := os.Open(assertionsPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error: open assertions file: %v\n", err)
		return 2
	}
	defer f.Close()

	assertions, err := ingest.ParseAssertions(f, logger)
	if err != nil {
		fmt.Fprintf(stderr, "Error: parse assertions: %v\n", err)
		return 2
	}

	priv, err := mtckey.ReadPrivate(cfg.KeyPath, passphrase)
	if err != nil {
		fmt.Fprintf(stderr, "Error: load private key: %v\n", err)
		return 2
	}

	storeCfg := batchstore.StoreConfig{
		Backend: cfg.StorageBackend, Bucket: cfg.StorageBucket, Prefix: cfg.StoragePrefix,
		Region: cfg.StorageRegion, Dir: cfg.StorageDir,
		IndexBackend: cfg.IndexBackend, IndexDSN: cfg.IndexDSN,
		RedisAddr: cfg.RedisAddr, RedisPassword: cfg.RedisPassword, RedisDB: cfg.RedisDB,
	}
	backingStore, err := batchstore.NewStore(ctx, storeCfg)
	if err != nil {
		fmt.Fprintf(stderr, "Error: open store: %v\n", err)
		return 2
	}
	index, err := batchstore.NewIndex(storeCfg)
	if err != nil {
		fmt.Fprintf(stderr, "Error: open index: %v\n", err)
		return 2
	}

	var evaluator *policy.Evaluator
	if cfg.PolicyFile != "" {
		rules, err := readPolicyRules(cfg.PolicyFile)
		if err != nil {
			fmt.Fprintf(stderr, "Error: read policy file: %v\n", err)
			return 2
		}
		evaluator, err = policy.New(rules)
		if err != nil {
			fmt.Fprintf(stderr, "Error: compile policy: %v\n", err)
			return 2
		}
	}

	provider, err := telemetry.New(ctx, telemetry.Config{ServiceName: "mtc-issuer", IssuerID: cfg.IssuerID, OTLPEndpoint: cfg.OTLPEndpoint})
	if err != nil {
		fmt.Fprintf(stderr, "Error: init telemetry: %v\n", err)
		return 2
	}
	defer provider.Shutdown(ctx)

	producer := &batch.Producer{
		Store:     backingStore,
		IssuerID:  merkletree.IssuerID(cfg.IssuerID),
		Signer:    priv,
		Policy:    evaluator,
		Telemetry: provider,
		Index:     index,
		Pointer:   batchstore.NewLatestPointer(storeCfg),
	}

	var requestedBatch *uint32
	if batchNumber >= 0 {
		b := uint32(batchNumber)
		requestedBatch = &b
	}

	result, err := producer.Issue(ctx, assertions, requestedBatch)
	if err != nil {
		fmt.Fprintf(stderr, "Error: issue batch: %v\n", err)
		return 1
	}

	fmt.Fprintf(stdout, "issued batch %d: %d assertions, root %x\n", result.BatchNumber, result.AssertionCount, result.Root)
	return 0
}

func readPolicyRules(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var rules []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		rules = append(rules, line)
	}
	return rules, nil
}
