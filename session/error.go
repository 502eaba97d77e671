package session

import (
	"errors"
	"strings"
)

// ShutdownError is returned if teardown failed. ErrRun holds the error
// that ended the session, if any.
type ShutdownError struct {
	ErrRun     error
	ErrStop    error
	ErrRestore error
}

func (e *ShutdownError) Error() string {
	var s []string
	if e.ErrRun != nil {
		s = append(s, "run error: "+e.ErrRun.Error())
	}
	if e.ErrStop != nil {
		s = append(s, "stop error: "+e.ErrStop.Error())
	}
	if e.ErrRestore != nil {
		s = append(s, "restore error: "+e.ErrRestore.Error())
	}
	return strings.Join(s, ", ")
}

// Is checks if any of errors match provided sentinel error.
func (e *ShutdownError) Is(err error) bool {
	for _, cause := range []error{e.ErrRun, e.ErrStop, e.ErrRestore} {
		if cause != nil && errors.Is(cause, err) {
			return true
		}
	}
	return false
}

// ret returns untyped nil if there are no errors and the run error alone
// if teardown succeeded.
func (e *ShutdownError) ret() error {
	if e.ErrStop == nil && e.ErrRestore == nil {
		return e.ErrRun
	}
	return e
}
