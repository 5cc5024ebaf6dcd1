// Package assertion implements the MTC subject-binding schema: subject
// type/info, DNS and IP claims, and the Assertion/Assertions containers,
// built on top of pkg/codec.
package assertion

import "github.com/Mindburn-Labs/mtc/pkg/codec"

// SubjectType is a 2-byte enum; {tls=0} is the only admissible value.
type SubjectType uint16

const SubjectTypeTLS SubjectType = 0

func (s SubjectType) Encode() []byte { return codec.EncodeUint16(uint16(s)) }

func DecodeSubjectType(r *codec.Reader) (SubjectType, error) {
	v, err := codec.DecodeEnum16(r, func(v uint16) bool { return v == uint16(SubjectTypeTLS) })
	return SubjectType(v), err
}

func SkipSubjectType(r *codec.Reader) error { return codec.SkipUint16(r) }

// ClaimType is a 2-byte enum selecting the concrete Claim body.
type ClaimType uint16

const (
	ClaimTypeDNS         ClaimType = 0
	ClaimTypeDNSWildcard ClaimType = 1
	ClaimTypeIPv4        ClaimType = 2
	ClaimTypeIPv6        ClaimType = 3
)

func (c ClaimType) Encode() []byte { return codec.EncodeUint16(uint16(c)) }

func claimTypeValid(v uint16) bool {
	switch ClaimType(v) {
	case ClaimTypeDNS, ClaimTypeDNSWildcard, ClaimTypeIPv4, ClaimTypeIPv6:
		return true
	default:
		return false
	}
}

func DecodeClaimType(r *codec.Reader) (ClaimType, error) {
	v, err := codec.DecodeEnum16(r, claimTypeValid)
	return ClaimType(v), err
}

func SkipClaimType(r *codec.Reader) error { return codec.SkipUint16(r) }

// SubjectInfo is OpaqueVector(1, 65535). The schema's min-length Open
// Question (spec §9) is resolved as 1, not 0.
type SubjectInfo []byte

const (
	subjectInfoMin = 1
	subjectInfoMax = 65535
)

var subjectInfoMarker = codec.BytesNeeded(subjectInfoMax)

func NewSubjectInfo(b []byte) (SubjectInfo, error) {
	s := SubjectInfo(append([]byte(nil), b...))
	if err := codec.CheckValid(s); err != nil {
		return nil, err
	}
	return s, nil
}

func (s SubjectInfo) Validate() error {
	if len(s) < subjectInfoMin || len(s) > subjectInfoMax {
		return codec.NewValidationError("subject info length %d outside [%d,%d]", len(s), subjectInfoMin, subjectInfoMax)
	}
	return nil
}

func (s SubjectInfo) Encode() []byte {
	return codec.EncodeOpaqueVector(s, subjectInfoMarker)
}

func DecodeSubjectInfo(r *codec.Reader) (SubjectInfo, error) {
	b, err := codec.DecodeOpaqueVector(r, subjectInfoMarker, subjectInfoMin, subjectInfoMax)
	if err != nil {
		return nil, err
	}
	return SubjectInfo(b), nil
}

func SkipSubjectInfo(r *codec.Reader) error {
	return codec.SkipOpaqueVector(r, subjectInfoMarker)
}
