package view

import (
	"errors"
	"fmt"
)

// ErrPartialFailure signals that at least one repository outcome failed.
// Commands map it to a distinct exit code so scripts can tell repo-level
// failures from usage errors.
var ErrPartialFailure = errors.New("one or more repositories failed")

// PreconditionError is a refused operation: bad view name, missing
// manifest, unclean repositories blocking a delete. These are user
// errors, not repository failures.
type PreconditionError struct {
	Msg string
}

func (e *PreconditionError) Error() string {
	return e.Msg
}

// Preconditionf builds a PreconditionError.
func Preconditionf(format string, args ...any) error {
	return &PreconditionError{Msg: fmt.Sprintf(format, args...)}
}
