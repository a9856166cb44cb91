package rest

import (
	"errors"
	"net/http"
)

const (
	codeCommand = 1001
	codeRequest = 2000
)

// Error is a request failure produced by the HTTP layer itself.
type Error struct {
	code    int
	status  int
	message string
}

func (e *Error) Error() string   { return e.message }
func (e *Error) Code() int       { return e.code }
func (e *Error) HTTPStatus() int { return e.status }

var (
	ErrCaptchaDisabled = &Error{code: 1011, status: http.StatusServiceUnavailable, message: "captcha is not enabled"}
	ErrReportsDisabled = &Error{code: 1012, status: http.StatusServiceUnavailable, message: "reports are not kept in a file"}
)

func requestError(err error) error {
	return &Error{code: codeRequest, status: http.StatusBadRequest, message: err.Error()}
}

func executionError(err error) error {
	var target coded
	if errors.As(err, &target) {
		return err
	}
	return &Error{code: 1004, status: http.StatusInternalServerError, message: err.Error()}
}

type coded interface {
	Code() int
	HTTPStatus() int
}
