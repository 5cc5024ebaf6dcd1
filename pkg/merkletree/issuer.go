// Package merkletree builds the distinguisher-tagged SHA-256 Merkle trees
// batches are issued from, and extracts inclusion paths for certificates.
package merkletree

import "github.com/Mindburn-Labs/mtc/pkg/codec"

const (
	issuerIDMin = 0
	issuerIDMax = 32
)

var issuerIDMarker = codec.BytesNeeded(issuerIDMax)

// IssuerID is OpaqueVector(0, 32): the bytes identifying a log/issuer,
// embedded in every hash computation so batches from different issuers can
// never collide.
type IssuerID []byte

func NewIssuerID(b []byte) (IssuerID, error) {
	id := IssuerID(append([]byte(nil), b...))
	if err := codec.CheckValid(id); err != nil {
		return nil, err
	}
	return id, nil
}

func (id IssuerID) Validate() error {
	if len(id) < issuerIDMin || len(id) > issuerIDMax {
		return codec.NewValidationError("issuer id length %d outside [%d,%d]", len(id), issuerIDMin, issuerIDMax)
	}
	return nil
}

func (id IssuerID) Encode() []byte {
	return codec.EncodeOpaqueVector(id, issuerIDMarker)
}

func DecodeIssuerID(r *codec.Reader) (IssuerID, error) {
	b, err := codec.DecodeOpaqueVector(r, issuerIDMarker, issuerIDMin, issuerIDMax)
	if err != nil {
		return nil, err
	}
	return IssuerID(b), nil
}

func SkipIssuerID(r *codec.Reader) error {
	return codec.SkipOpaqueVector(r, issuerIDMarker)
}
