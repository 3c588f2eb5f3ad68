package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/rshade/footprint/internal/emission"
	"github.com/rshade/footprint/internal/parser"
	"github.com/rshade/footprint/internal/tracker"
)

// Exit codes beyond the generic failure code 1.
const (
	ExitNoMatch         = 2
	ExitUnknownActivity = 3
)

// ExitError carries the process exit code main should use for Err.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string { return e.Err.Error() }

func (e *ExitError) Unwrap() error { return e.Err }

// ExitCode returns the exit code for err: the ExitError code when one is
// in the chain, otherwise 1.
func ExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return 1
}

// pipelineError turns the recoverable parse failures into user-facing
// messages with their own exit codes. Suggestions for unreadable text are
// written to w.
func pipelineError(w io.Writer, text string, err error) error {
	switch {
	case errors.Is(err, tracker.ErrNoMatch):
		printSuggestions(w, parser.Suggest(text))
		return &ExitError{Code: ExitNoMatch, Err: err}
	case errors.Is(err, emission.ErrUnknownActivity):
		return &ExitError{Code: ExitUnknownActivity, Err: fmt.Errorf("could not calculate emissions for that activity: %w", err)}
	default:
		return err
	}
}
