package service

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrEmptyPassword  = errors.New("password should not be empty")
	ErrNoPasswordFile = errors.New("server configuration does not allow client to change the password")
)

// ReloadError reports a failed command tree rebuild.
type ReloadError struct {
	Err error
}

func (e *ReloadError) Error() string   { return fmt.Sprintf("could not reload commands: %v", e.Err) }
func (e *ReloadError) Unwrap() error   { return e.Err }
func (e *ReloadError) Code() int       { return 1005 }
func (e *ReloadError) HTTPStatus() int { return http.StatusInternalServerError }

// PasswordError reports a rejected password change.
type PasswordError struct {
	Err error
}

func (e *PasswordError) Error() string { return e.Err.Error() }
func (e *PasswordError) Unwrap() error { return e.Err }

func (e *PasswordError) Code() int {
	switch {
	case errors.Is(e.Err, ErrEmptyPassword):
		return 1007
	case errors.Is(e.Err, ErrNoPasswordFile):
		return 1008
	}
	return 1010
}

func (e *PasswordError) HTTPStatus() int {
	switch {
	case errors.Is(e.Err, ErrEmptyPassword):
		return http.StatusBadRequest
	case errors.Is(e.Err, ErrNoPasswordFile):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
