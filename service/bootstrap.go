package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pouriya/restcommander-sub000/auth"
	"github.com/pouriya/restcommander-sub000/command/runner"
	"github.com/pouriya/restcommander-sub000/config"
	"github.com/pouriya/restcommander-sub000/report"
)

func (s *Service) init(ctx context.Context) error {
	s.initDefaults()
	if err := s.config.Validate(ctx, s.logger); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if s.reporter == nil {
		reporter, err := report.New(s.config.Logging.Report, s.logger)
		if err != nil {
			return err
		}
		s.reporter = reporter
	}
	if s.gate == nil {
		gate, err := s.newGate()
		if err != nil {
			return err
		}
		s.gate = gate
	}
	tree, err := NewTree(s.config.Commands.RootDirectory, s.config.Server.HTTPBasePath, s.logger)
	if err != nil {
		return err
	}
	s.tree = tree
	return nil
}

func (s *Service) initDefaults() {
	if s.config == nil {
		s.config = config.Default()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.runner == nil {
		s.runner = runner.New(s.logger)
	}
}

func (s *Service) newGate() (*auth.Gate, error) {
	server := s.config.Server
	var opts []auth.Option
	if server.CaptchaFile != "" {
		captchaOpts := []auth.CaptchaOption{
			auth.WithFile(server.CaptchaFile),
			auth.WithCaseSensitive(server.CaptchaCaseSensitive),
			auth.WithCaptchaLogger(s.logger),
		}
		if s.renderer != nil {
			captchaOpts = append(captchaOpts, auth.WithRenderer(s.renderer))
		}
		store, err := auth.NewCaptchaStore(captchaOpts...)
		if err != nil {
			return nil, err
		}
		opts = append(opts, auth.WithCaptcha(store))
	}
	return auth.New(auth.Config{
		Username:     server.Username,
		PasswordHash: server.PasswordSHA512,
		APIToken:     server.APIToken,
		TokenTTL:     server.TokenTTL(),
		IPAllowList:  server.IPWhitelist,
	}, opts...), nil
}
