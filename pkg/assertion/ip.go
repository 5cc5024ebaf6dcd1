package assertion

import (
	"bytes"
	"sort"

	"github.com/Mindburn-Labs/mtc/pkg/codec"
)

// IPv4Address is Array(4): a fixed-width value with no length prefix.
type IPv4Address [4]byte

func (a IPv4Address) Encode() []byte {
	out := make([]byte, 4)
	copy(out, a[:])
	return out
}

func DecodeIPv4Address(r *codec.Reader) (IPv4Address, error) {
	var a IPv4Address
	b, err := r.ReadBytes(4)
	if err != nil {
		return a, err
	}
	copy(a[:], b)
	return a, nil
}

func SkipIPv4Address(r *codec.Reader) error { return r.Seek(4) }

// IPv6Address is Array(16).
type IPv6Address [16]byte

func (a IPv6Address) Encode() []byte {
	out := make([]byte, 16)
	copy(out, a[:])
	return out
}

func DecodeIPv6Address(r *codec.Reader) (IPv6Address, error) {
	var a IPv6Address
	b, err := r.ReadBytes(16)
	if err != nil {
		return a, err
	}
	copy(a[:], b)
	return a, nil
}

func SkipIPv6Address(r *codec.Reader) error { return r.Seek(16) }

const (
	ipv4ListMin = 4
	ipv4ListMax = 65535
	ipv6ListMin = 16
	ipv6ListMax = 65535
)

var ipListMarker = codec.BytesNeeded(65535)

// IPv4AddressList is Vector(IPv4Address, 4, 65535), required to be in
// numeric (== big-endian byte-lexicographic) order.
type IPv4AddressList []IPv4Address

func (l IPv4AddressList) Validate() error {
	if !sort.SliceIsSorted(l, func(i, j int) bool { return bytes.Compare(l[i][:], l[j][:]) < 0 }) {
		return codec.NewValidationError("IPv4 addresses must be in lexical order")
	}
	return nil
}

func (l IPv4AddressList) Encode() []byte { return codec.EncodeVector([]IPv4Address(l), ipListMarker) }

func DecodeIPv4AddressList(r *codec.Reader) (IPv4AddressList, error) {
	items, err := codec.DecodeVector(r, ipListMarker, ipv4ListMin, ipv4ListMax, DecodeIPv4Address)
	if err != nil {
		return nil, err
	}
	l := IPv4AddressList(items)
	if err := codec.CheckValid(l); err != nil {
		return nil, err
	}
	return l, nil
}

func SkipIPv4AddressList(r *codec.Reader) error { return codec.SkipVector(r, ipListMarker) }

// IPv6AddressList is Vector(IPv6Address, 16, 65535), same ordering rule.
type IPv6AddressList []IPv6Address

func (l IPv6AddressList) Validate() error {
	if !sort.SliceIsSorted(l, func(i, j int) bool { return bytes.Compare(l[i][:], l[j][:]) < 0 }) {
		return codec.NewValidationError("IPv6 addresses must be in lexical order")
	}
	return nil
}

func (l IPv6AddressList) Encode() []byte { return codec.EncodeVector([]IPv6Address(l), ipListMarker) }

func DecodeIPv6AddressList(r *codec.Reader) (IPv6AddressList, error) {
	items, err := codec.DecodeVector(r, ipListMarker, ipv6ListMin, ipv6ListMax, DecodeIPv6Address)
	if err != nil {
		return nil, err
	}
	l := IPv6AddressList(items)
	if err := codec.CheckValid(l); err != nil {
		return nil, err
	}
	return l, nil
}

func SkipIPv6AddressList(r *codec.Reader) error { return codec.SkipVector(r, ipListMarker) }

func sortIPv4(addrs []IPv4Address) []IPv4Address {
	out := make([]IPv4Address, len(addrs))
	copy(out, addrs)
	sort.Slice(out, func(i, j int) bool { return bytes.Compare(out[i][:], out[j][:]) < 0 })
	return out
}

func sortIPv6(addrs []IPv6Address) []IPv6Address {
	out := make([]IPv6Address, len(addrs))
	copy(out, addrs)
	sort.Slice(out, func(i, j int) bool { return bytes.Compare(out[i][:], out[j][:]) < 0 })
	return out
}
