package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/pouriya/restcommander-sub000/auth"
	"github.com/pouriya/restcommander-sub000/report"
	"github.com/pouriya/restcommander-sub000/service"
)

const unavailablePage = "<html><body>Service Unavailable</body></html>"

type setPasswordBody struct {
	Password string `json:"password"`
}

type searcher interface {
	Search(filter report.Filter) ([]*report.Record, error)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	cfg := s.service.Config()
	if !cfg.WWW.Enabled {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(unavailablePage))
		return
	}
	http.Redirect(w, r, cfg.Server.HTTPBasePath+"static/index.html", http.StatusMovedPermanently)
}

func (s *Server) handleCaptcha(w http.ResponseWriter, r *http.Request) {
	store := s.service.Gate().Captcha()
	if store == nil {
		s.writeError(w, r, ErrCaptchaDisabled)
		return
	}
	challenge, err := store.Issue(auth.Medium)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeOK(w, challenge)
}

func (s *Server) handleConfiguration(w http.ResponseWriter, r *http.Request) {
	configuration := s.service.Config().WWW.Configuration
	if configuration == nil {
		configuration = map[string]string{}
	}
	s.writeOK(w, configuration)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	form := map[string]string{}
	if err := r.ParseForm(); err == nil {
		for name, values := range r.PostForm {
			if len(values) > 0 {
				form[name] = values[0]
			}
		}
	}
	gate := s.service.Gate()
	token, err := gate.Login(r.Header.Get("Authorization"), form)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		MaxAge:   int(gate.TokenTTL() / time.Second),
	})
	s.writeOK(w, map[string]string{"token": token})
}

func (s *Server) handleTestAuth(w http.ResponseWriter, _ *http.Request) {
	s.writeOK(w, nil)
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	extraction, err := ExtractInput(r, s.service.Constants())
	if err != nil {
		s.writeError(w, r, requestError(err))
		return
	}
	ip, _ := clientAddress(r)
	result, err := s.service.Run(r.Context(), &service.Request{
		Path:   chi.URLParam(r, "*"),
		Input:  extraction.Input,
		Source: ip,
	})
	if err != nil {
		s.writeError(w, r, executionError(err))
		return
	}
	s.writeOutput(w, result.Output, extraction.Statistics)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	statistics := false
	if value := r.Header.Get(headerStatistics); value != "" {
		enabled, err := strconv.ParseBool(value)
		if err != nil {
			s.writeError(w, r, requestError(fmt.Errorf("invalid %s header %q: %w", headerStatistics, value, err)))
			return
		}
		statistics = enabled
	}
	ip, _ := clientAddress(r)
	result, err := s.service.State(r.Context(), chi.URLParam(r, "*"), ip, s.service.Constants())
	if err != nil {
		s.writeError(w, r, executionError(err))
		return
	}
	s.writeOutput(w, result.Output, statistics)
}

func (s *Server) handleCommands(w http.ResponseWriter, _ *http.Request) {
	s.writeOK(w, s.service.Tree().Root())
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if err := s.service.Reload(); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeOK(w, nil)
}

func (s *Server) handleSetPassword(w http.ResponseWriter, r *http.Request) {
	body := &setPasswordBody{}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodySize)).Decode(body); err != nil {
		s.writeError(w, r, requestError(fmt.Errorf("request body deserialize error: %w", err)))
		return
	}
	if err := s.service.SetPassword(body.Password); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeOK(w, nil)
}

func (s *Server) handleReports(w http.ResponseWriter, r *http.Request) {
	reports, ok := s.service.Reporter().(searcher)
	if !ok {
		s.writeError(w, r, ErrReportsDisabled)
		return
	}
	filter, err := filterOf(r)
	if err != nil {
		s.writeError(w, r, requestError(err))
		return
	}
	records, err := reports.Search(*filter)
	if err != nil {
		if errors.Is(err, report.ErrNotAvailable) {
			err = ErrReportsDisabled
		}
		s.writeError(w, r, err)
		return
	}
	if records == nil {
		records = []*report.Record{}
	}
	s.writeOK(w, records)
}

func filterOf(r *http.Request) (*report.Filter, error) {
	query := r.URL.Query()
	filter := &report.Filter{
		From:    query.Get("from"),
		Context: report.Context(query.Get("context")),
	}
	switch filter.Context {
	case "", report.ContextRun, report.ContextState:
	default:
		return nil, fmt.Errorf("unknown report context %q", filter.Context)
	}
	var err error
	if filter.Before, err = timeParam(query.Get("before")); err != nil {
		return nil, err
	}
	if filter.After, err = timeParam(query.Get("after")); err != nil {
		return nil, err
	}
	if value := query.Get("limit"); value != "" {
		if filter.Limit, err = strconv.Atoi(value); err != nil || filter.Limit < 0 || filter.Limit > report.MaxSearchLimit {
			return nil, fmt.Errorf("invalid limit %q", value)
		}
	}
	return filter, nil
}

func timeParam(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	ret, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: %w", value, err)
	}
	return ret, nil
}
