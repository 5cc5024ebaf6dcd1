// Package ingest parses the CLI's JSON assertion input format (spec.md
// §6): a list of subjectType/subjectInfo/claim objects, schema-validated
// and turned into pkg/assertion.Assertion values via CreateAssertion so
// construction invariants (claim ordering, DNS sorting) are enforced
// identically regardless of entry point.
package ingest

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"

	"github.com/Mindburn-Labs/mtc/pkg/assertion"
	"github.com/gowebpki/jcs"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

var assertionSchema = mustCompileSchema()

func mustCompileSchema() *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("assertion.json", strings.NewReader(assertionSchemaJSON)); err != nil {
		panic(fmt.Sprintf("ingest: embedded schema is invalid: %v", err))
	}
	schema, err := compiler.Compile("assertion.json")
	if err != nil {
		panic(fmt.Sprintf("ingest: embedded schema failed to compile: %v", err))
	}
	return schema
}

type assertionInput struct {
	SubjectType string   `json:"subjectType"`
	SubjectInfo string   `json:"subjectInfo"`
	DNS         []string `json:"dns,omitempty"`
	DNSWildcard []string `json:"dnsWildcard,omitempty"`
	IPv4Addr    []string `json:"ipv4Addr,omitempty"`
	IPv6Addr    []string `json:"ipv6Addr,omitempty"`
}

// ParseAssertions reads a JSON array of assertion input objects from r,
// validates it against the embedded schema, and builds one
// assertion.Assertion per entry. logger receives a debug-level message for
// every pair of entries that canonicalize (RFC 8785) to the same hash —
// informational only, duplicate assertions are not rejected.
func ParseAssertions(r io.Reader, logger *slog.Logger) ([]assertion.Assertion, error) {
	if logger == nil {
		logger = slog.Default()
	}

	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("ingest: read input: %w", err)
	}

	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("ingest: invalid JSON: %w", err)
	}
	if err := assertionSchema.Validate(generic); err != nil {
		return nil, fmt.Errorf("ingest: schema validation: %w", err)
	}

	var inputs []assertionInput
	if err := json.Unmarshal(raw, &inputs); err != nil {
		return nil, fmt.Errorf("ingest: decode input: %w", err)
	}

	seenHashes := make(map[string]int, len(inputs))
	assertions := make([]assertion.Assertion, 0, len(inputs))

	for i, in := range inputs {
		entryJSON, err := json.Marshal(in)
		if err == nil {
			if canonical, err := jcs.Transform(entryJSON); err == nil {
				hash := sha256.Sum256(canonical)
				hexHash := hex.EncodeToString(hash[:])
				if first, dup := seenHashes[hexHash]; dup {
					logger.Debug("duplicate assertion in ingestion batch", "first_index", first, "index", i)
				} else {
					seenHashes[hexHash] = i
				}
			}
		}

		a, err := buildAssertion(in)
		if err != nil {
			return nil, fmt.Errorf("ingest: entry %d: %w", i, err)
		}
		assertions = append(assertions, a)
	}

	return assertions, nil
}

func buildAssertion(in assertionInput) (assertion.Assertion, error) {
	subjectInfo, err := base64.StdEncoding.DecodeString(in.SubjectInfo)
	if err != nil {
		return assertion.Assertion{}, fmt.Errorf("subjectInfo is not valid base64: %w", err)
	}

	opts := assertion.CreateAssertionOptions{
		DNSNames:     in.DNS,
		DNSWildcards: in.DNSWildcard,
	}

	for _, s := range in.IPv4Addr {
		addr, err := parseIPv4(s)
		if err != nil {
			return assertion.Assertion{}, err
		}
		opts.IPv4Addresses = append(opts.IPv4Addresses, addr)
	}
	for _, s := range in.IPv6Addr {
		addr, err := parseIPv6(s)
		if err != nil {
			return assertion.Assertion{}, err
		}
		opts.IPv6Addresses = append(opts.IPv6Addresses, addr)
	}

	return assertion.CreateAssertion(subjectInfo, opts)
}

func parseIPv4(s string) (assertion.IPv4Address, error) {
	ip := net.ParseIP(s)
	v4 := ip.To4()
	if v4 == nil {
		return assertion.IPv4Address{}, fmt.Errorf("ipv4Addr %q is not a valid IPv4 address", s)
	}
	var out assertion.IPv4Address
	copy(out[:], v4)
	return out, nil
}

func parseIPv6(s string) (assertion.IPv6Address, error) {
	ip := net.ParseIP(s)
	v6 := ip.To16()
	if v6 == nil || ip.To4() != nil {
		return assertion.IPv6Address{}, fmt.Errorf("ipv6Addr %q is not a valid IPv6 address", s)
	}
	var out assertion.IPv6Address
	copy(out[:], v6)
	return out, nil
}
