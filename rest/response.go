package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pouriya/restcommander-sub000/command/runner"
)

const contentTypeJSON = "application/json; charset=utf-8"

const challenge = `Basic realm="Restricted", charset="UTF-8"`

type envelope struct {
	OK         bool          `json:"ok"`
	Result     interface{}   `json:"result,omitempty"`
	Reason     interface{}   `json:"reason,omitempty"`
	Code       int           `json:"code,omitempty"`
	Statistics *runner.Stats `json:"statistics,omitempty"`
}

// ExitStatus maps a command exit code to an HTTP status.
func ExitStatus(exitCode int) int {
	switch exitCode {
	case 0:
		return http.StatusOK
	case 2:
		return http.StatusBadRequest
	case 3:
		return http.StatusForbidden
	case 4:
		return http.StatusNotFound
	case 5:
		return http.StatusServiceUnavailable
	case 6:
		return http.StatusNotAcceptable
	case 7:
		return http.StatusNotImplemented
	case 8:
		return http.StatusConflict
	case 9:
		return http.StatusRequestTimeout
	}
	return http.StatusInternalServerError
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body *envelope) {
	body.OK = status == http.StatusOK
	if !body.OK && body.Result != nil {
		body.Reason, body.Result = body.Result, nil
	}
	data, err := json.Marshal(body)
	if err != nil {
		s.logger.Error("could not encode response", "error", err)
		status = http.StatusInternalServerError
		data = []byte(`{"ok":false}`)
	}
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func (s *Server) writeOK(w http.ResponseWriter, result interface{}) {
	s.writeJSON(w, http.StatusOK, &envelope{Result: result})
}

func (s *Server) writeOutput(w http.ResponseWriter, output *runner.Output, statistics bool) {
	status := ExitStatus(output.ExitCode)
	body := &envelope{}
	if output.Stdout != "" {
		body.Result = output.Result()
	}
	if status != http.StatusOK {
		body.Code = codeCommand
	}
	if statistics {
		stats := output.Stats
		body.Statistics = &stats
	}
	s.writeJSON(w, status, body)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := http.StatusInternalServerError, 0
	var target coded
	if errors.As(err, &target) {
		status, code = target.HTTPStatus(), target.Code()
	}
	if status == http.StatusUnauthorized && r.Header.Get("X-Requested-With") == "" {
		w.Header().Set("WWW-Authenticate", challenge)
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
	} else {
		s.logger.Debug("request rejected", "path", r.URL.Path, "error", err)
	}
	s.writeJSON(w, status, &envelope{Reason: err.Error(), Code: code})
}
