package factors

// constError is an immutable error type for sentinel errors.
type constError string

func (e constError) Error() string { return string(e) }

// Sentinel errors for factor table loading.
var (
	// ErrInvalidTable indicates the factor table failed validation.
	ErrInvalidTable = constError("invalid emission factor table")

	// ErrUnsupportedVersion indicates the table declares a schema version this
	// build cannot read.
	ErrUnsupportedVersion = constError("unsupported emission factor table version")
)
