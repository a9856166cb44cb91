package command

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound          = errors.New("could not find command")
	ErrNotDirectory      = errors.New("command part is not a directory")
	ErrIsDirectory       = errors.New("command is a directory and is not runnable")
	ErrInvalidDescriptor = errors.New("command information is invalid")
	ErrNoState           = errors.New("command does not support state")
	ErrNoDescriptor      = errors.New("command has no information")
)

// LookupError reports a failed path resolution against the command tree.
type LookupError struct {
	Path string
	Kind error
	Err  error
}

func (e *LookupError) Error() string {
	msg := fmt.Sprintf("%v %q", e.Kind, e.Path)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *LookupError) Is(target error) bool { return target == e.Kind }

func (e *LookupError) Unwrap() error { return e.Err }

// Code returns the stable numeric API code.
func (e *LookupError) Code() int {
	switch e.Kind {
	case ErrInvalidDescriptor:
		return 1004
	case ErrNoState, ErrNoDescriptor:
		return 1009
	}
	return 1002
}

func (e *LookupError) HTTPStatus() int {
	if e.Kind == ErrInvalidDescriptor {
		return http.StatusInternalServerError
	}
	return http.StatusNotFound
}

// ValidationError reports an option that failed schema validation.
type ValidationError struct {
	Option  string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Code() int { return 1003 }

func (e *ValidationError) HTTPStatus() int { return http.StatusBadRequest }

func invalid(option, format string, args ...interface{}) error {
	return &ValidationError{Option: option, Message: fmt.Sprintf(format, args...)}
}
