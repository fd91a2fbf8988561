package carbon

// constError is an immutable error type for sentinel errors.
type constError string

func (e constError) Error() string { return string(e) }

// Faults detected inside a calculation. They never leave Estimate; they
// select the fallback path and are logged.
var (
	// ErrInvalidWeight indicates a non-positive or non-finite product weight
	ErrInvalidWeight = constError("invalid product weight")

	// ErrInvalidFactor indicates a negative or non-finite custom factor
	ErrInvalidFactor = constError("invalid custom factor")

	// ErrNonFinite indicates a phase that evaluated to NaN or infinity
	ErrNonFinite = constError("non-finite emission value")
)
