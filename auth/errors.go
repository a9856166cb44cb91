package auth

import (
	"net/http"
)

// Error is an authentication failure with a stable code and HTTP status.
type Error struct {
	code    int
	status  int
	message string
}

func newError(code, status int, message string) *Error {
	return &Error{code: code, status: status, message: message}
}

func (e *Error) Error() string   { return e.message }
func (e *Error) Code() int       { return e.code }
func (e *Error) HTTPStatus() int { return e.status }

// Is matches errors by code so wrapped copies compare equal.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.code == e.code
}

var (
	ErrAuthenticationRequired = newError(2001, http.StatusUnauthorized, "authentication required")
	ErrBase64Decode           = newError(2002, http.StatusBadRequest, "could not decode base64 credentials")
	ErrCredentialsNotFound    = newError(2003, http.StatusUnauthorized, "username or password is not found")
	ErrNotConfigured          = newError(2004, http.StatusConflict, "server username or password is not set")
	ErrUnknownMethod          = newError(2005, http.StatusBadRequest, "unknown authentication method")
	ErrInvalidBasic           = newError(2006, http.StatusBadRequest, "invalid basic authentication")
	ErrInvalidCredentials     = newError(2007, http.StatusUnauthorized, "invalid username or password")
	ErrInvalidCaptcha         = newError(2008, http.StatusUnauthorized, "invalid captcha")
	ErrInvalidCaptchaForm     = newError(2009, http.StatusBadRequest, "invalid captcha form")
	ErrTokenNotFound          = newError(2010, http.StatusUnauthorized, "token not found")
	ErrTokenExpired           = newError(2011, http.StatusUnauthorized, "token expired")
	ErrInvalidToken           = newError(2012, http.StatusUnauthorized, "invalid token")
	ErrIPNotAllowed           = newError(2013, http.StatusForbidden, "client IP address is not allowed")
)
