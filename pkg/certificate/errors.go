package certificate

// InvalidSignature reports that a signature (over a validity window) failed
// Ed25519 verification.
type InvalidSignature struct {
	Reason string
}

func (e *InvalidSignature) Error() string { return "certificate: invalid signature: " + e.Reason }

// VerificationError reports why a certificate failed to verify, naming the
// step of the procedure that rejected it so callers (and tests) can assert
// on the specific failure mode rather than just "some error occurred".
type VerificationError struct {
	Reason string
}

func (e *VerificationError) Error() string { return "certificate: " + e.Reason }
