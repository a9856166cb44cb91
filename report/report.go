package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"
)

// Context names the pipeline that produced a record.
type Context string

const (
	ContextRun   Context = "run"
	ContextState Context = "state"
)

const (
	ModeOff    = "off"
	ModeStdout = "stdout"
	ModeStderr = "stderr"

	queueSize = 1024
)

// ErrNotAvailable is returned by Search when reports are not kept in a file.
var ErrNotAvailable = errors.New("reports are forwarded to stdout/stderr or turned off")

// Reporter accepts audit records without blocking the caller.
type Reporter interface {
	Report(from string, context Context, info string, at time.Time)
}

// Record is one audit line.
type Record struct {
	From      string  `json:"from"`
	Timestamp string  `json:"timestamp"`
	Context   Context `json:"context"`
	Info      string  `json:"info"`
}

// Service writes records as JSON lines to stdout, stderr or an append-only file.
type Service struct {
	mode     string
	filename string
	writer   io.Writer
	queue    chan []byte
	done     chan struct{}
	logger   *slog.Logger
	mux      sync.RWMutex
	closed   bool
}

// New creates a report service. location is "off", "stdout", "stderr" or a
// file path; an empty location turns reports off.
func New(location string, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{logger: logger}
	switch location {
	case "", ModeOff:
		s.mode = ModeOff
	case ModeStdout:
		s.mode, s.writer = ModeStdout, os.Stdout
	case ModeStderr:
		s.mode, s.writer = ModeStderr, os.Stderr
	default:
		s.mode, s.filename = "file", location
		file, err := openFile(location)
		if err != nil {
			return nil, err
		}
		s.queue = make(chan []byte, queueSize)
		s.done = make(chan struct{})
		go s.run(file)
	}
	return s, nil
}

// Filename returns the report file, empty unless reports go to a file.
func (s *Service) Filename() string { return s.filename }

// Report formats the record and hands it to the writer. A zero at means now.
func (s *Service) Report(from string, context Context, info string, at time.Time) {
	if s == nil || s.mode == ModeOff {
		return
	}
	if at.IsZero() {
		at = time.Now()
	}
	line, err := json.Marshal(&Record{From: from, Timestamp: at.UTC().Format("2006-01-02T15:04:05.000Z07:00"), Context: context, Info: info})
	if err != nil {
		s.logger.Error("could not encode report", "error", err)
		return
	}
	line = append(line, '\n')
	if s.queue == nil {
		_, _ = s.writer.Write(line)
		return
	}
	s.mux.RLock()
	defer s.mux.RUnlock()
	if s.closed {
		s.logger.Warn("report service is closed, record dropped", "from", from, "context", context)
		return
	}
	select {
	case s.queue <- line:
	default:
		s.logger.Warn("report queue is full, record dropped", "from", from, "context", context)
	}
}

// Close flushes queued records and stops the writer.
func (s *Service) Close() error {
	if s == nil || s.queue == nil {
		return nil
	}
	s.mux.Lock()
	if s.closed {
		s.mux.Unlock()
		return nil
	}
	s.closed = true
	close(s.queue)
	s.mux.Unlock()
	<-s.done
	return nil
}

func (s *Service) run(file *os.File) {
	defer close(s.done)
	for line := range s.queue {
		if file == nil {
			var err error
			if file, err = openFile(s.filename); err != nil {
				s.logger.Error("could not reopen report file", "file", s.filename, "error", err)
				continue
			}
		}
		if _, err := file.Write(line); err != nil {
			s.logger.Error("could not write report, reopening", "file", s.filename, "error", err)
			_ = file.Close()
			file = nil
			if file, err = openFile(s.filename); err == nil {
				_, err = file.Write(line)
			}
			if err != nil {
				s.logger.Error("report dropped", "file", s.filename, "error", err)
			}
		}
	}
	if file != nil {
		_ = file.Close()
	}
}

func openFile(location string) (*os.File, error) {
	file, err := os.OpenFile(location, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("could not open report file %q: %w", location, err)
	}
	return file, nil
}
