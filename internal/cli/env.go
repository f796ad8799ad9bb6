package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/matzehuels/aurorus/pkg/cache"
	"github.com/matzehuels/aurorus/pkg/command"
	"github.com/matzehuels/aurorus/pkg/config"
	"github.com/matzehuels/aurorus/pkg/deps"
	"github.com/matzehuels/aurorus/pkg/install"
	"github.com/matzehuels/aurorus/pkg/integrations/aur"
	"github.com/matzehuels/aurorus/pkg/integrations/pacman"
	"github.com/matzehuels/aurorus/pkg/registry"
	"github.com/matzehuels/aurorus/pkg/removal"
	"github.com/matzehuels/aurorus/pkg/source"
)

// env is the set of collaborators a command runs against.
type env struct {
	cfg      *config.Config
	cache    cache.Cache
	aur      *aur.Client
	pacman   *pacman.Client
	source   *source.Client
	registry *registry.Registry
}

// open loads the config and connects everything. The caller must call
// close.
func (c *CLI) open(ctx context.Context) (*env, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	if cfg.Path != "" {
		c.Logger.Debug("config loaded", "path", cfg.Path)
	}

	backend, err := c.newCache(ctx, cfg)
	if err != nil {
		return nil, err
	}

	reg, err := registry.Open(cfg.DBPath)
	if err != nil {
		backend.Close()
		return nil, err
	}
	c.Logger.Debug("registry opened", "path", reg.Path())

	queries := command.NewExecRunner(nil, c.Logger)
	aurClient := aur.NewClient(backend, cfg.Cache.TTL.Duration, cfg.AURURL, cfg.Arch)
	pacmanClient := pacman.NewClient(queries, cfg.Pacman)

	return &env{
		cfg:      cfg,
		cache:    backend,
		aur:      aurClient,
		pacman:   pacmanClient,
		source:   source.NewClient(c.Logger, source.NewAUR(aurClient, c.refresh), source.NewRepo(pacmanClient)),
		registry: reg,
	}, nil
}

func (e *env) close() error {
	return errors.Join(e.registry.Close(), e.cache.Close())
}

func (e *env) resolver() *deps.Resolver {
	return deps.NewResolver(e.source, e.registry)
}

func (c *CLI) resolveOptions(e *env) deps.Options {
	return deps.Options{Prefer: e.cfg.PreferredOrigin(), Logger: c.Logger}
}

func (c *CLI) planner(e *env) *removal.Planner {
	return removal.NewPlanner(e.registry, c.Logger)
}

// orchestrator drives makepkg, git and pacman, streaming their output to
// stderr.
func (c *CLI) orchestrator(e *env) *install.Orchestrator {
	runner := command.NewExecRunner(os.Stderr, c.Logger)
	builder := install.NewMakepkgBuilder(runner, e.aur.CloneURL)
	builder.Git, builder.Makepkg = e.cfg.Git, e.cfg.Makepkg
	return install.NewOrchestrator(e.registry, builder, c.installer(e, runner),
		install.WithBuildDir(e.cfg.BuildDir),
		install.WithLogger(c.Logger),
	)
}

// installer returns the configured pacman driver running through runner.
func (c *CLI) installer(e *env, runner command.Runner) *install.PacmanInstaller {
	installer := install.NewPacmanInstaller(runner, e.cfg.Sudo)
	installer.Pacman = e.cfg.Pacman
	return installer
}

// newCache creates the configured metadata cache backend.
func (c *CLI) newCache(ctx context.Context, cfg *config.Config) (cache.Cache, error) {
	if c.noCache {
		return cache.NewNullCache(), nil
	}
	switch cfg.Cache.Backend {
	case config.BackendNone:
		return cache.NewNullCache(), nil
	case config.BackendRedis:
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		})
		if err != nil {
			return nil, fmt.Errorf("open redis cache: %w", err)
		}
		return rc, nil
	default:
		fc, err := cache.NewFileCache(cfg.Cache.Dir)
		if err != nil {
			c.Logger.Warn("file cache unavailable, continuing without cache", "err", err)
			return cache.NewNullCache(), nil
		}
		return fc, nil
	}
}
