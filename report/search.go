package report

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/pouriya/restcommander-sub000/internal/matcher"
)

const (
	DefaultSearchLimit = 10
	MaxSearchLimit     = 1000
)

// Filter narrows a search; zero fields match everything.
type Filter struct {
	From    string
	Context Context
	Before  time.Time
	After   time.Time
	Limit   int
}

func (f *Filter) matches(record *Record, at time.Time) bool {
	if f.Context != "" && f.Context != record.Context {
		return false
	}
	if f.From != "" && !matcher.Match(f.From, record.From) {
		return false
	}
	if !f.Before.IsZero() && at.After(f.Before) {
		return false
	}
	if !f.After.IsZero() && at.Before(f.After) {
		return false
	}
	return true
}

// Search returns the most recent records matching filter, oldest first.
func (s *Service) Search(filter Filter) ([]*Record, error) {
	if s == nil || s.filename == "" {
		return nil, ErrNotAvailable
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	if limit > MaxSearchLimit {
		return nil, fmt.Errorf("invalid limit %d: maximum is %d", limit, MaxSearchLimit)
	}
	file, err := os.Open(s.filename)
	if err != nil {
		return nil, fmt.Errorf("could not open report file %q: %w", s.filename, err)
	}
	defer file.Close()

	var ret []*Record
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		record := &Record{}
		if err := json.Unmarshal(scanner.Bytes(), record); err != nil {
			s.logger.Error("could not decode report line", "file", s.filename, "line", line, "error", err)
			continue
		}
		at, err := time.Parse(time.RFC3339, record.Timestamp)
		if err != nil {
			s.logger.Error("could not decode report timestamp", "file", s.filename, "line", line, "error", err)
			continue
		}
		if !filter.matches(record, at) {
			continue
		}
		ret = append(ret, record)
		if len(ret) > limit {
			ret = ret[1:]
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("could not read report file %q: %w", s.filename, err)
	}
	return ret, nil
}
