package policy

import (
	"testing"

	"github.com/Mindburn-Labs/mtc/pkg/assertion"
	"github.com/Mindburn-Labs/mtc/pkg/codec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustAssertion(t *testing.T, dnsNames []string) assertion.Assertion {
	t.Helper()
	a, err := assertion.CreateAssertion([]byte{1}, assertion.CreateAssertionOptions{DNSNames: dnsNames})
	require.NoError(t, err)
	return a
}

func TestNoRulesAcceptsEverything(t *testing.T) {
	e, err := New(nil)
	require.NoError(t, err)
	require.NoError(t, e.Check(mustAssertion(t, []string{"evil.invalid"})))
}

func TestRuleRejectsInvalidTLD(t *testing.T) {
	e, err := New([]string{`claims.dns.all(d, !d.endsWith(".invalid"))`})
	require.NoError(t, err)

	require.NoError(t, e.Check(mustAssertion(t, []string{"example.com"})))

	err = e.Check(mustAssertion(t, []string{"example.invalid"}))
	require.Error(t, err)
}

func TestRuleLimitsClaimSize(t *testing.T) {
	e, err := New([]string{`size(claims.dns) <= 1`})
	require.NoError(t, err)

	err = e.Check(mustAssertion(t, []string{"a.example.com", "b.example.com"}))
	require.Error(t, err)
}

func TestCompiledProgramsAreCached(t *testing.T) {
	e, err := New([]string{`size(claims.dns) <= 5`})
	require.NoError(t, err)

	require.NoError(t, e.Check(mustAssertion(t, []string{"a.example.com"})))
	require.NoError(t, e.Check(mustAssertion(t, []string{"b.example.com"})))
	assert.Len(t, e.prgCache, 1)
}

func TestBadRuleSurfacesAsValidationError(t *testing.T) {
	e, err := New([]string{`not valid cel (((`})
	require.NoError(t, err)

	err = e.Check(mustAssertion(t, nil))
	require.Error(t, err)
	var verr *codec.ValidationError
	require.ErrorAs(t, err, &verr)
}
