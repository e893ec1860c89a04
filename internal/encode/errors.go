package encode

import (
	"errors"
	"fmt"
)

// Sentinel errors for the failure classes a conversion can hit before the
// encoder produces an exit status. None of them are retried.
var (
	ErrInputNotFound = errors.New("input file not found")
	ErrProbeFailed   = errors.New("could not probe input")
	ErrSpawnFailed   = errors.New("could not start encoder")
)

// ExitError reports an encoder process that ran but exited non-zero. Code
// is the child's exact exit code; StderrTail carries the last lines of its
// diagnostic output when available.
type ExitError struct {
	Code       int
	StderrTail string
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("encoder exited with code %d", e.Code)
}
