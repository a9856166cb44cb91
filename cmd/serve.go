package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pouriya/restcommander-sub000/mcp"
	"github.com/pouriya/restcommander-sub000/rest"
)

// ServeCmd starts the HTTP server, or the MCP stdio transport with --stdio.
// Flags and environment variables override the configuration file.
type ServeCmd struct {
	Stdio         bool   `long:"stdio" description:"serve MCP over stdin/stdout instead of HTTP"`
	Host          string `long:"host" env:"RESTCOMMANDER_SERVER_HOST" description:"listen address"`
	Port          int    `long:"port" env:"RESTCOMMANDER_SERVER_PORT" description:"listen port"`
	RootDirectory string `short:"r" long:"root" env:"RESTCOMMANDER_COMMANDS_ROOT_DIRECTORY" description:"commands root directory"`
	LogLevel      string `long:"log-level" env:"RESTCOMMANDER_LOGGING_LEVEL_NAME" description:"trace, debug, info, warning, error or off"`
	Report        string `long:"report" env:"RESTCOMMANDER_LOGGING_REPORT" description:"off, stdout, stderr or a report file path"`
}

func (c *ServeCmd) Execute(_ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	if c.Host != "" {
		cfg.Server.Host = c.Host
	}
	if c.Port != 0 {
		cfg.Server.Port = c.Port
	}
	if c.RootDirectory != "" {
		cfg.Commands.RootDirectory = c.RootDirectory
	}
	if c.LogLevel != "" {
		cfg.Logging.LevelName = c.LogLevel
	}
	if c.Report != "" {
		cfg.Logging.Report = c.Report
	}
	svc, err := newService(ctx, cfg)
	if err != nil {
		return err
	}
	defer svc.Shutdown(context.Background())

	handler := mcp.New(svc, mcp.WithVersion(Version))
	if c.Stdio {
		svc.Logger().Info("serving MCP over stdio", "root", cfg.Commands.RootDirectory)
		return handler.ServeStdio(ctx, os.Stdin, os.Stdout)
	}
	server := rest.New(svc, rest.WithMCP(handler))
	if err := server.ListenAndServe(ctx); err != nil {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}
