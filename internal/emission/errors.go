package emission

// constError is an immutable error type for sentinel errors.
type constError string

func (e constError) Error() string { return string(e) }

var (
	// ErrUnknownActivity indicates no emission factor exists for the
	// requested (category, activity) pair. Callers surface this to the user
	// as "couldn't calculate emissions for that activity".
	ErrUnknownActivity = constError("unknown activity")

	// ErrInvalidAmount indicates a negative, infinite or NaN amount.
	ErrInvalidAmount = constError("invalid amount")

	// ErrUnitMismatch indicates an amount expressed in a unit other than the
	// factor's canonical unit.
	ErrUnitMismatch = constError("unit mismatch")
)
