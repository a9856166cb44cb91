package cmd

import (
	"context"
	"os"
	"sync"

	"github.com/pouriya/restcommander-sub000/config"
	"github.com/pouriya/restcommander-sub000/service"
)

var (
	cfgPath string

	svcOnce sync.Once
	svcInst *service.Service
	svcErr  error
)

// setConfigPath remembers the CLI-level -f/--config parameter so that the
// service singleton can be created lazily by whichever sub-command is executed
// first.
func setConfigPath(p string) { cfgPath = p }

// loadConfig reads the configured file, or returns the defaults rooted at the
// working directory when no file was given.
func loadConfig(ctx context.Context) (*config.Config, error) {
	if cfgPath == "" {
		return config.Default(), nil
	}
	return config.Load(ctx, cfgPath)
}

func newService(ctx context.Context, cfg *config.Config) (*service.Service, error) {
	return service.New(ctx,
		service.WithConfig(cfg),
		service.WithLogger(cfg.Logging.NewLogger(os.Stderr)),
	)
}

// serviceSingleton initialises a service only once and reuses the instance
// across sub-commands within the same CLI invocation.
func serviceSingleton() (*service.Service, error) {
	svcOnce.Do(func() {
		ctx := context.Background()
		var cfg *config.Config
		if cfg, svcErr = loadConfig(ctx); svcErr != nil {
			return
		}
		svcInst, svcErr = newService(ctx, cfg)
	})
	return svcInst, svcErr
}
