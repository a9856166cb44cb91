package runner

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrEncodeInput  = errors.New("could not encode command input to JSON")
	ErrStartProcess = errors.New("could not create new process for command")
	ErrWriteStdin   = errors.New("could not write to command stdin")
	ErrWait         = errors.New("could not wait for command process")
	ErrReadStdout   = errors.New("could not read command stdout")
	ErrReadStderr   = errors.New("could not read command stderr")
)

// Error reports a failure to execute a command, as opposed to a command
// exiting with a non-zero code.
type Error struct {
	Kind error
	Path string
	Err  error
}

func newError(kind error, path string, err error) *Error {
	return &Error{Kind: kind, Path: path, Err: err}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%v %q: %v", e.Kind, e.Path, e.Err)
}

func (e *Error) Is(target error) bool { return target == e.Kind }

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Code() int { return 1004 }

func (e *Error) HTTPStatus() int { return http.StatusInternalServerError }
