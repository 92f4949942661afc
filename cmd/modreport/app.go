// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/invowk/modreport/internal/config"
	"github.com/invowk/modreport/internal/issue"
	"github.com/invowk/modreport/internal/loader"
	"github.com/invowk/modreport/internal/repository"
)

type (
	// App wires CLI services and shared dependencies. Every command handler
	// receives an App and reaches configuration, output and loading through it.
	App struct {
		Config ConfigProvider
		stdout io.Writer
		stderr io.Writer

		flags  rootFlags
		cfg    *config.Config
		logger *log.Logger
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config ConfigProvider
		Stdout io.Writer
		Stderr io.Writer
	}

	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, error)
	}

	// rootFlags holds the persistent flag values.
	rootFlags struct {
		configPath string
		repository string
		verbose    bool
	}
)

// NewApp creates an App, filling unset dependencies with defaults.
func NewApp(deps Dependencies) *App {
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	return &App{
		Config: deps.Config,
		stdout: deps.Stdout,
		stderr: deps.Stderr,
		logger: log.NewWithOptions(deps.Stderr, log.Options{Prefix: "modreport"}),
	}
}

// Verbose reports whether verbose output was requested by flag or config.
func (a *App) Verbose() bool {
	if a.flags.verbose {
		return true
	}
	return a.cfg != nil && a.cfg.UI.Verbose
}

// loadConfig loads the configuration once and applies its UI settings.
func (a *App) loadConfig(ctx context.Context) (*config.Config, error) {
	if a.cfg != nil {
		return a.cfg, nil
	}

	cfg, err := a.Config.Load(ctx, config.LoadOptions{ConfigFilePath: a.flags.configPath})
	if err != nil {
		return nil, err
	}
	a.cfg = cfg

	switch cfg.UI.ColorScheme {
	case config.ColorSchemeDark:
		lipgloss.SetHasDarkBackground(true)
	case config.ColorSchemeLight:
		lipgloss.SetHasDarkBackground(false)
	case config.ColorSchemeAuto:
	}

	if a.Verbose() {
		a.logger.SetLevel(log.DebugLevel)
	}
	if src := cfg.Source(); src != "" {
		a.logger.Debug("configuration loaded", "file", src)
	}
	return cfg, nil
}

// glamourStyle maps the configured color scheme to a glamour style name.
func (a *App) glamourStyle() string {
	if a.cfg == nil {
		return "auto"
	}
	switch a.cfg.UI.ColorScheme {
	case config.ColorSchemeDark:
		return "dark"
	case config.ColorSchemeLight:
		return "light"
	default:
		return "auto"
	}
}

// openRepository opens the repository index named by --repository or the
// config. A missing index at the default location is not an error: modules
// without imports load fine without one.
//
//nolint:nilnil // no repository is a valid outcome
func (a *App) openRepository(cfg *config.Config) (*repository.Repository, error) {
	path := a.flags.repository
	explicit := path != ""
	if !explicit {
		path = cfg.Repository.String()
		explicit = cfg.Repository != config.DefaultRepositoryPath
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) && !explicit {
		a.logger.Debug("no repository index", "path", path)
		return nil, nil
	}

	repo, err := repository.Open(path, repository.WithLogger(a.logger.WithPrefix("repository")))
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("open repository index").
			WithResource(path).
			WithIssue(issue.RepositoryIndexInvalidId).
			WithSuggestion("Pass the index with --repository or set `repository` in the config").
			Wrap(err).
			BuildError()
	}
	a.logger.Debug("repository index opened", "path", repo.Path(), "modules", len(repo.Entries()))
	return repo, nil
}

// load loads the module at path together with its imports.
func (a *App) load(ctx context.Context, path string) (*loader.Result, error) {
	cfg, err := a.loadConfig(ctx)
	if err != nil {
		return nil, err
	}
	repo, err := a.openRepository(cfg)
	if err != nil {
		return nil, err
	}

	opts := []loader.Option{loader.WithLogger(a.logger.WithPrefix("loader"))}
	if repo != nil {
		opts = append(opts, loader.WithResolver(repo))
	}

	return loader.New(opts...).Load(ctx, path)
}
