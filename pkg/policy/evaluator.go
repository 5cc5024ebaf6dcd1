// Package policy evaluates CEL expressions against an assertion's claims
// before it is admitted to a batch. Rules are optional: an Evaluator with
// no rules accepts every assertion, leaving the wire format itself
// unchanged.
package policy

import (
	"fmt"
	"sync"

	"github.com/Mindburn-Labs/mtc/pkg/assertion"
	"github.com/Mindburn-Labs/mtc/pkg/codec"
	"github.com/google/cel-go/cel"
)

// Evaluator compiles and caches CEL programs keyed by rule text, and
// evaluates all of them against an assertion's claims.
type Evaluator struct {
	env   *cel.Env
	rules []string

	mu       sync.RWMutex
	prgCache map[string]cel.Program
}

// New builds an Evaluator over rules, CEL boolean expressions referencing
// the variable `claims`, a map with keys "dns", "dnsWildcard", "ipv4",
// "ipv6" (each a list of strings) populated from the assertion being
// checked. A nil or empty rules slice produces an Evaluator that accepts
// everything.
func New(rules []string) (*Evaluator, error) {
	env, err := cel.NewEnv(cel.Variable("claims", cel.DynType))
	if err != nil {
		return nil, fmt.Errorf("policy: create CEL environment: %w", err)
	}
	return &Evaluator{
		env:      env,
		rules:    rules,
		prgCache: make(map[string]cel.Program),
	}, nil
}

// Check evaluates every configured rule against a. The first rule that
// evaluates to false (or fails to compile/evaluate) is reported as a
// codec.ValidationError naming the offending rule — a policy rejection is
// caller fault, the same family of error a malformed Assertion would raise,
// and it never reaches the wire codec.
func (e *Evaluator) Check(a assertion.Assertion) error {
	if e == nil || len(e.rules) == 0 {
		return nil
	}

	input := map[string]any{"claims": claimsToCEL(a)}

	for _, rule := range e.rules {
		allowed, err := e.evaluate(rule, input)
		if err != nil {
			return codec.NewValidationError("policy rule %q: %v", rule, err)
		}
		if !allowed {
			return codec.NewValidationError("assertion rejected by policy rule %q", rule)
		}
	}
	return nil
}

func (e *Evaluator) evaluate(rule string, input map[string]any) (bool, error) {
	e.mu.RLock()
	prg, hit := e.prgCache[rule]
	e.mu.RUnlock()

	if !hit {
		e.mu.Lock()
		if prg, hit = e.prgCache[rule]; !hit {
			ast, issues := e.env.Compile(rule)
			if issues != nil && issues.Err() != nil {
				e.mu.Unlock()
				return false, fmt.Errorf("compile: %w", issues.Err())
			}
			p, err := e.env.Program(ast,
				cel.InterruptCheckFrequency(100),
				cel.CostLimit(10000),
			)
			if err != nil {
				e.mu.Unlock()
				return false, fmt.Errorf("program: %w", err)
			}
			e.prgCache[rule] = p
			prg = p
		}
		e.mu.Unlock()
	}

	out, _, err := prg.Eval(input)
	if err != nil {
		return false, fmt.Errorf("eval: %w", err)
	}
	val, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("rule did not evaluate to a bool")
	}
	return val, nil
}

// claimsToCEL flattens an Assertion's typed claims into the plain
// map[string][]string shape CEL rules are written against.
func claimsToCEL(a assertion.Assertion) map[string]any {
	out := map[string]any{
		"dns":         []string{},
		"dnsWildcard": []string{},
		"ipv4":        []string{},
		"ipv6":        []string{},
	}
	for _, c := range a.Claims {
		switch c.Type {
		case assertion.ClaimTypeDNS:
			out["dns"] = dnsStrings(c.DNS)
		case assertion.ClaimTypeDNSWildcard:
			out["dnsWildcard"] = dnsStrings(c.DNS)
		case assertion.ClaimTypeIPv4:
			out["ipv4"] = ipv4Strings(c.IPv4)
		case assertion.ClaimTypeIPv6:
			out["ipv6"] = ipv6Strings(c.IPv6)
		}
	}
	return out
}

func dnsStrings(names assertion.DNSNameList) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = string(n)
	}
	return out
}

func ipv4Strings(addrs assertion.IPv4AddressList) []string {
	out := make([]string, len(addrs))
	for i, a := range addrs {
		out[i] = fmt.Sprintf("%d.%d.%d.%d", a[0], a[1], a[2], a[3])
	}
	return out
}

func ipv6Strings(addrs assertion.IPv6AddressList) []string {
	out := make([]string, len(addrs))
	for i, a := range addrs {
		out[i] = fmt.Sprintf("%x", [16]byte(a))
	}
	return out
}
