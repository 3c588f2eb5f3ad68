package achievement

// constError is an immutable error type for sentinel errors.
type constError string

func (e constError) Error() string { return string(e) }

var (
	// ErrInvalidCriteria indicates a badge definition that can never be
	// evaluated, such as a non-positive target. It is a configuration defect
	// reported when the catalogue is loaded.
	ErrInvalidCriteria = constError("invalid badge criteria")

	// ErrInvalidCatalogue indicates a malformed badge catalogue document.
	ErrInvalidCatalogue = constError("invalid badge catalogue")

	// ErrUnsupportedVersion indicates a catalogue whose version is outside
	// SupportedVersions.
	ErrUnsupportedVersion = constError("unsupported catalogue version")
)
