package assertion

import "github.com/Mindburn-Labs/mtc/pkg/codec"

// Assertion binds a SubjectInfo to a set of typed claims under a
// SubjectType. Field order is fixed by the wire schema: subject_type,
// subject_info, claims.
type Assertion struct {
	SubjectType SubjectType
	SubjectInfo SubjectInfo
	Claims      ClaimList
}

func (a Assertion) Encode() []byte {
	out := a.SubjectType.Encode()
	out = append(out, a.SubjectInfo.Encode()...)
	out = append(out, a.Claims.Encode()...)
	return out
}

func DecodeAssertion(r *codec.Reader) (Assertion, error) {
	var a Assertion
	st, err := DecodeSubjectType(r)
	if err != nil {
		return a, err
	}
	si, err := DecodeSubjectInfo(r)
	if err != nil {
		return a, err
	}
	claims, err := DecodeClaimList(r)
	if err != nil {
		return a, err
	}
	a.SubjectType = st
	a.SubjectInfo = si
	a.Claims = claims
	return a, nil
}

func SkipAssertion(r *codec.Reader) error {
	if err := SkipSubjectType(r); err != nil {
		return err
	}
	if err := SkipSubjectInfo(r); err != nil {
		return err
	}
	return SkipClaimList(r)
}

// assertionsMarker is 8 bytes wide: Assertions' max length is 2^64-1.
const assertionsMarker = 8

// Assertions is Vector(Assertion, 0, 2^64-1), the batch's leaf payload.
type Assertions []Assertion

func (a Assertions) Encode() []byte { return codec.EncodeVector([]Assertion(a), assertionsMarker) }

func DecodeAssertions(r *codec.Reader) (Assertions, error) {
	items, err := codec.DecodeVector(r, assertionsMarker, 0, 1<<63-1, DecodeAssertion)
	if err != nil {
		return nil, err
	}
	return Assertions(items), nil
}

func SkipAssertions(r *codec.Reader) error { return codec.SkipVector(r, assertionsMarker) }

// CreateAssertionOptions carries the optional claim inputs for
// CreateAssertion. Omitted (nil) fields are simply not represented in the
// resulting claim list.
type CreateAssertionOptions struct {
	DNSNames      []string
	DNSWildcards  []string
	IPv4Addresses []IPv4Address
	IPv6Addresses []IPv6Address
}

// CreateAssertion builds an Assertion from a raw subject info blob and an
// optional set of claims, sorting and ordering them the way an issuer must:
// dns_names, then dns_wildcards, then ipv4_addrs, then ipv6_addrs, each
// included only when non-empty.
func CreateAssertion(subjectInfo []byte, opts CreateAssertionOptions) (Assertion, error) {
	si, err := NewSubjectInfo(subjectInfo)
	if err != nil {
		return Assertion{}, err
	}

	var claims ClaimList

	if len(opts.DNSNames) > 0 {
		names, err := dnsNameList(opts.DNSNames)
		if err != nil {
			return Assertion{}, err
		}
		claims = append(claims, Claim{Type: ClaimTypeDNS, DNS: names})
	}
	if len(opts.DNSWildcards) > 0 {
		names, err := dnsNameList(opts.DNSWildcards)
		if err != nil {
			return Assertion{}, err
		}
		claims = append(claims, Claim{Type: ClaimTypeDNSWildcard, DNS: names})
	}
	if len(opts.IPv4Addresses) > 0 {
		claims = append(claims, Claim{Type: ClaimTypeIPv4, IPv4: sortIPv4(opts.IPv4Addresses)})
	}
	if len(opts.IPv6Addresses) > 0 {
		claims = append(claims, Claim{Type: ClaimTypeIPv6, IPv6: sortIPv6(opts.IPv6Addresses)})
	}

	a := Assertion{SubjectType: SubjectTypeTLS, SubjectInfo: si, Claims: claims}
	if err := codec.CheckValid(dnsValidatable(a)); err != nil {
		return Assertion{}, err
	}
	return a, nil
}

func dnsNameList(names []string) (DNSNameList, error) {
	sorted := SortDNSNames(names)
	out := make(DNSNameList, len(sorted))
	for i, n := range sorted {
		d, err := NewDNSName(n)
		if err != nil {
			return nil, err
		}
		out[i] = d
	}
	return out, nil
}

// dnsValidatable validates the DNS and IP address claim lists of an
// already-assembled Assertion; CreateAssertion builds lists in sorted order itself, so this is
// a defense against a future caller route that skips that construction.
type dnsValidatable Assertion

func (a dnsValidatable) Validate() error {
	for _, c := range a.Claims {
		if c.Type == ClaimTypeDNS || c.Type == ClaimTypeDNSWildcard {
			if err := c.DNS.Validate(); err != nil {
				return err
			}
		}
		if c.Type == ClaimTypeIPv4 {
			if err := c.IPv4.Validate(); err != nil {
				return err
			}
		}
		if c.Type == ClaimTypeIPv6 {
			if err := c.IPv6.Validate(); err != nil {
				return err
			}
		}
	}
	return nil
}
