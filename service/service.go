package service

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"

	"github.com/pouriya/restcommander-sub000/auth"
	"github.com/pouriya/restcommander-sub000/command/runner"
	"github.com/pouriya/restcommander-sub000/config"
	"github.com/pouriya/restcommander-sub000/report"
)

// Service bundles configuration, the command tree, the runner, the audit
// reporter and the authentication gate. Protocol adapters share one instance.
type Service struct {
	started  int32
	config   *config.Config
	logger   *slog.Logger
	tree     *Tree
	runner   *runner.Runner
	reporter report.Reporter
	gate     *auth.Gate
	renderer auth.Renderer
}

// Config returns the effective configuration. Callers must treat it as read-only.
func (s *Service) Config() *config.Config { return s.config }

// Logger returns the service logger.
func (s *Service) Logger() *slog.Logger { return s.logger }

// Tree returns the command tree holder.
func (s *Service) Tree() *Tree { return s.tree }

// Gate returns the authentication gate.
func (s *Service) Gate() *auth.Gate { return s.gate }

// Reporter returns the audit reporter.
func (s *Service) Reporter() report.Reporter { return s.reporter }

// Option modifies a service instance before it is initialised.
type Option func(*Service)

// WithConfig sets the configuration. When omitted config.Default is used.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		s.config = cfg
	}
}

// WithLogger sets the logger used by every component.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithReporter overrides the reporter created from logging.report.
func WithReporter(reporter report.Reporter) Option {
	return func(s *Service) {
		s.reporter = reporter
	}
}

// WithRunner overrides the default runner.
func WithRunner(r *runner.Runner) Option {
	return func(s *Service) {
		s.runner = r
	}
}

// WithGate overrides the gate created from server settings.
func WithGate(gate *auth.Gate) Option {
	return func(s *Service) {
		s.gate = gate
	}
}

// WithCaptchaRenderer replaces the built-in CAPTCHA renderer.
func WithCaptchaRenderer(renderer auth.Renderer) Option {
	return func(s *Service) {
		s.renderer = renderer
	}
}

// New constructs a service. The bootstrap sequence lives in bootstrap.go.
func New(ctx context.Context, opts ...Option) (*Service, error) {
	svc := &Service{}
	for _, opt := range opts {
		opt(svc)
	}
	if err := svc.init(ctx); err != nil {
		return nil, err
	}
	atomic.StoreInt32(&svc.started, 1)
	return svc, nil
}

// Shutdown flushes the reporter. Additional invocations have no effect.
func (s *Service) Shutdown(_ context.Context) error {
	if !atomic.CompareAndSwapInt32(&s.started, 1, 2) {
		return nil
	}
	if closer, ok := s.reporter.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
