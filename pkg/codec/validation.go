package codec

import "sync/atomic"

// Validatable is implemented by every constructed codec value; Validate
// reports the first invariant violation, if any.
type Validatable interface {
	Validate() error
}

// validationEnabled is the process-wide "skip validation" switch described
// in spec §4.1: a performance knob for bulk batch generation, set once at
// startup. Flipping it off after any value has been decoded from untrusted
// input is a caller error, not something this package can detect.
var validationEnabled atomic.Bool

func init() {
	validationEnabled.Store(true)
}

// SetValidationEnabled toggles construction-time invariant checking
// globally. MUST only be called at process start, before any untrusted
// bytes are decoded.
func SetValidationEnabled(enabled bool) {
	validationEnabled.Store(enabled)
}

// ValidationEnabled reports the current state of the global switch.
func ValidationEnabled() bool {
	return validationEnabled.Load()
}

// CheckValid runs v.Validate() unless the global switch has disabled
// validation. Every exported constructor in this module and in the packages
// built on top of it calls CheckValid before returning the new value, so
// that an invalid value is never observable (spec §3 "Lifecycle").
func CheckValid(v Validatable) error {
	if !ValidationEnabled() {
		return nil
	}
	return v.Validate()
}
