package assertion

import (
	"regexp"
	"sort"
	"strings"

	"github.com/Mindburn-Labs/mtc/pkg/codec"
	"golang.org/x/text/cases"
)

var dnsNamePattern = regexp.MustCompile(`(?i)^[a-z0-9-.]+$`)

var dnsFold = cases.Fold()

const (
	dnsNameMin = 1
	dnsNameMax = 255
)

var dnsNameMarker = codec.BytesNeeded(dnsNameMax)

// DNSName is OpaqueVector(1, 255) restricted to the label charset
// [a-zA-Z0-9-.], matched case-insensitively. The stored bytes preserve the
// caller's original casing.
type DNSName string

func NewDNSName(name string) (DNSName, error) {
	d := DNSName(name)
	if err := codec.CheckValid(d); err != nil {
		return "", err
	}
	return d, nil
}

func (d DNSName) Validate() error {
	if len(d) < dnsNameMin || len(d) > dnsNameMax {
		return codec.NewValidationError("dns name length %d outside [%d,%d]", len(d), dnsNameMin, dnsNameMax)
	}
	if !dnsNamePattern.MatchString(string(d)) {
		return codec.NewValidationError("dns name %q contains characters outside [a-zA-Z0-9-.]", string(d))
	}
	return nil
}

func (d DNSName) Encode() []byte {
	return codec.EncodeOpaqueVector([]byte(d), dnsNameMarker)
}

func DecodeDNSName(r *codec.Reader) (DNSName, error) {
	b, err := codec.DecodeOpaqueVector(r, dnsNameMarker, dnsNameMin, dnsNameMax)
	if err != nil {
		return "", err
	}
	return DNSName(b), nil
}

func SkipDNSName(r *codec.Reader) error {
	return codec.SkipOpaqueVector(r, dnsNameMarker)
}

// SortDNSNames orders names the way the issuer must before embedding them in
// a DNSNameList: split on ".", reverse the component order, then compare
// component-by-component case-folded (a name that is a case-folded prefix
// of another sorts first), and finally reverse-join back into dotted form.
func SortDNSNames(names []string) []string {
	out := make([]string, len(names))
	copy(out, names)

	components := make([][]string, len(out))
	for i, n := range out {
		parts := strings.Split(n, ".")
		reversed := make([]string, len(parts))
		for j, p := range parts {
			reversed[len(parts)-1-j] = dnsFold.String(p)
		}
		components[i] = reversed
	}

	idx := make([]int, len(out))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return lessComponents(components[idx[a]], components[idx[b]])
	})

	sorted := make([]string, len(out))
	for i, j := range idx {
		sorted[i] = out[j]
	}
	return sorted
}

// lessComponents implements Python-tuple-style lexicographic comparison: the
// first differing element decides, and a shorter list that is a prefix of a
// longer one sorts first.
func lessComponents(a, b []string) bool {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}

const (
	dnsNameListMin = 1
	dnsNameListMax = 65535
)

var dnsNameListMarker = codec.BytesNeeded(dnsNameListMax)

// DNSNameList is Vector(DNSName, 1, 65535), required to already be in
// SortDNSNames order.
type DNSNameList []DNSName

func (l DNSNameList) Validate() error {
	names := make([]string, len(l))
	for i, d := range l {
		names[i] = string(d)
	}
	sorted := SortDNSNames(names)
	for i := range names {
		if names[i] != sorted[i] {
			return codec.NewValidationError("DNS names must be in sorted order")
		}
	}
	return nil
}

func (l DNSNameList) Encode() []byte {
	return codec.EncodeVector([]DNSName(l), dnsNameListMarker)
}

func DecodeDNSNameList(r *codec.Reader) (DNSNameList, error) {
	items, err := codec.DecodeVector(r, dnsNameListMarker, dnsNameListMin, dnsNameListMax, DecodeDNSName)
	if err != nil {
		return nil, err
	}
	l := DNSNameList(items)
	if err := codec.CheckValid(l); err != nil {
		return nil, err
	}
	return l, nil
}

func SkipDNSNameList(r *codec.Reader) error {
	return codec.SkipVector(r, dnsNameListMarker)
}
