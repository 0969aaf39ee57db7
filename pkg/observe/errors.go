package observe

import "errors"

// Error kinds surfaced by this package. Callers can test for them with
// errors.Is; every error is returned synchronously from the call that
// received the bad input, never recovered internally.
var (
	// ErrShape marks wrong array rank or mismatched lengths, e.g. samples
	// vs timestamps, or marks vs event times.
	ErrShape = errors.New("shape mismatch")

	// ErrValidation marks domain invariant violations, e.g. interval bounds
	// out of order or a selection exceeding observed support.
	ErrValidation = errors.New("validation failed")

	// ErrCapability marks an unsupported combination, e.g. cubic
	// interpolation of vector-valued samples.
	ErrCapability = errors.New("unsupported capability")
)
