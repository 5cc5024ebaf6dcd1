package assertion

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestIPv4SortIsIdempotentAndValid(t *testing.T) {
	params := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(params)

	properties.Property("sortIPv4 output always validates and is stable under resort", prop.ForAll(
		func(raw []uint32) bool {
			addrs := make([]IPv4Address, len(raw))
			for i, v := range raw {
				addrs[i] = IPv4Address{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)}
			}
			sorted := sortIPv4(addrs)
			if IPv4AddressList(sorted).Validate() != nil {
				return false
			}
			resorted := sortIPv4(sorted)
			for i := range sorted {
				if sorted[i] != resorted[i] {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.UInt32()),
	))

	properties.TestingRun(t)
}

func TestSortDNSNamesIsIdempotent(t *testing.T) {
	params := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(params)

	labels := gen.OneConstOf("a", "b", "sub1", "sub2", "example", "com", "net")
	names := gen.SliceOfN(3, labels).Map(func(parts []string) string {
		out := parts[0]
		for _, p := range parts[1:] {
			out += "." + p
		}
		return out
	})

	properties.Property("SortDNSNames is idempotent once applied", prop.ForAll(
		func(ns []string) bool {
			once := SortDNSNames(ns)
			twice := SortDNSNames(once)
			for i := range once {
				if once[i] != twice[i] {
					return false
				}
			}
			return true
		},
		gen.SliceOf(names),
	))

	properties.TestingRun(t)
}
