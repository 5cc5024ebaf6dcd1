// Package codec implements the MTC binary wire format: fixed-width integers,
// fixed arrays, length-prefixed opaque byte vectors, byte-budget-prefixed
// typed vectors, and the struct/variant composition rules used to build the
// higher-level assertion and certificate schemas on top of it.
package codec

import "fmt"

// ValidationError is raised by a constructor when a value violates one of
// its schema invariants (out-of-range length, unsorted list, malformed DNS
// name, integer too large, ...). It is caller fault. The sorted-list
// decoders (DNS names, IPv4/IPv6 addresses) also return it, through
// CheckValid, when decoded elements are out of order.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return "validation error: " + e.Msg
}

func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// ParsingError is raised by a decoder when wire bytes do not conform to the
// expected shape. Start/End carry the byte range consumed by the failing
// field, for diagnostics.
type ParsingError struct {
	Start, End int
	Reason     string
}

func (e *ParsingError) Error() string {
	return fmt.Sprintf("parsing error [%d:%d]: %s", e.Start, e.End, e.Reason)
}

func NewParsingError(start, end int, format string, args ...any) *ParsingError {
	return &ParsingError{Start: start, End: end, Reason: fmt.Sprintf(format, args...)}
}
