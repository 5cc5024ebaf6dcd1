package assertion

import "github.com/Mindburn-Labs/mtc/pkg/codec"

// Claim is a tagged union over ClaimType: exactly one of DNS, IPv4, IPv6 is
// populated, selected by Type. dns and dns_wildcard share the DNSNameList
// body shape and are distinguished only by the tag.
type Claim struct {
	Type ClaimType
	DNS  DNSNameList
	IPv4 IPv4AddressList
	IPv6 IPv6AddressList
}

func (c Claim) Encode() []byte {
	out := c.Type.Encode()
	switch c.Type {
	case ClaimTypeDNS, ClaimTypeDNSWildcard:
		out = append(out, c.DNS.Encode()...)
	case ClaimTypeIPv4:
		out = append(out, c.IPv4.Encode()...)
	case ClaimTypeIPv6:
		out = append(out, c.IPv6.Encode()...)
	}
	return out
}

func DecodeClaim(r *codec.Reader) (Claim, error) {
	var c Claim
	t, err := DecodeClaimType(r)
	if err != nil {
		return c, err
	}
	c.Type = t
	switch t {
	case ClaimTypeDNS, ClaimTypeDNSWildcard:
		names, err := DecodeDNSNameList(r)
		if err != nil {
			return c, err
		}
		c.DNS = names
	case ClaimTypeIPv4:
		addrs, err := DecodeIPv4AddressList(r)
		if err != nil {
			return c, err
		}
		c.IPv4 = addrs
	case ClaimTypeIPv6:
		addrs, err := DecodeIPv6AddressList(r)
		if err != nil {
			return c, err
		}
		c.IPv6 = addrs
	}
	return c, nil
}

// SkipClaim skips a Claim without materializing its body. Every arm of the
// union frames its body as a Vector with the same 2-byte marker, so the tag
// need not be branched on beyond reading past it.
func SkipClaim(r *codec.Reader) error {
	if err := SkipClaimType(r); err != nil {
		return err
	}
	return codec.SkipVector(r, ipListMarker)
}

const (
	claimListMin = 0
	claimListMax = 65535
)

var claimListMarker = codec.BytesNeeded(claimListMax)

// ClaimList is Vector(Claim, 0, 65535).
type ClaimList []Claim

func (l ClaimList) Encode() []byte { return codec.EncodeVector([]Claim(l), claimListMarker) }

func DecodeClaimList(r *codec.Reader) (ClaimList, error) {
	items, err := codec.DecodeVector(r, claimListMarker, claimListMin, claimListMax, DecodeClaim)
	if err != nil {
		return nil, err
	}
	return ClaimList(items), nil
}

func SkipClaimList(r *codec.Reader) error { return codec.SkipVector(r, claimListMarker) }
