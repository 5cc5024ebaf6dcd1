package codec

// Encodable is any codec value that can serialize itself. EncodeVector is
// generic over it so the same byte-budget framing serves every typed
// element vector in the schema (DNSNameList, IPv4AddressList, ClaimList, ...).
type Encodable interface {
	Encode() []byte
}

// EncodeVector concatenates each item's encoding and length-prefixes the
// result with the concatenation's *byte size* (not element count), using a
// marker markerSize bytes wide.
func EncodeVector[T Encodable](items []T, markerSize int) []byte {
	var body []byte
	for _, it := range items {
		body = append(body, it.Encode()...)
	}
	out := make([]byte, 0, markerSize+len(body))
	out = append(out, encodeUintN(uint64(len(body)), markerSize)...)
	out = append(out, body...)
	return out
}

// DecodeVector reads the byte-size prefix, then decodes elements with
// decodeOne until exactly that many bytes have been consumed. Overrunning
// the budget (an element that reads past it) or underrunning it (decoding
// stops short) are both parse errors — this is the byte-budget-not-element-
// count semantics spec §3/§4.1 requires for variable-length elements.
func DecodeVector[T any](r *Reader, markerSize, min, max int, decodeOne func(*Reader) (T, error)) ([]T, error) {
	start := r.Pos()
	n, err := decodeUintN(r, markerSize)
	if err != nil {
		return nil, err
	}
	if int(n) < min || int(n) > max {
		return nil, NewParsingError(start, r.Pos(), "invalid vector size %d outside [%d,%d]", n, min, max)
	}

	budgetStart := r.Pos()
	budget := int(n)
	var items []T
	for r.Pos()-budgetStart < budget {
		item, err := decodeOne(r)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if r.Pos()-budgetStart != budget {
		return nil, NewParsingError(budgetStart, r.Pos(), "overran vector byte budget of %d", budget)
	}
	return items, nil
}

// SkipVector reads the byte-size prefix and seeks past it; it never parses
// elements, matching the opaque-vector skip shape since the prefix is
// always a byte count.
func SkipVector(r *Reader, markerSize int) error {
	return SkipOpaqueVector(r, markerSize)
}
