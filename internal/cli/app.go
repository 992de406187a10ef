package cli

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/radaiko/gourmet-cache/internal/cache"
	"github.com/radaiko/gourmet-cache/internal/config"
	"github.com/radaiko/gourmet-cache/internal/fetch"
	"github.com/radaiko/gourmet-cache/internal/store"
	"github.com/radaiko/gourmet-cache/internal/upstream"
	"github.com/radaiko/gourmet-cache/internal/vault"
)

// App bundles the wired application components for the CLI commands.
type App struct {
	Config *config.Config
	Log    *logrus.Logger
	Store  *store.Store
	Vault  *vault.Vault
	Cache  *cache.Cache
}

// newApp loads configuration and wires the store, vault, fetchers and
// cache. The billing and menu sources are the built-in demo feed; real
// transports are injected by embedding applications.
func newApp(opts *RootOptions) (*App, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}

	log := newLogger(cfg, opts.Verbose)

	st := store.New(cfg.DBPath)
	if err := st.EnsureInitialized(); err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open cache database", err)
	}

	keys := vault.NewDeviceKeySource(cfg.StateDir)
	vlt := vault.New(cfg.StateDir, keys, log)

	fresh := fetch.RefetchCurrent
	if cfg.RefreshPolicy == config.PolicyPreferCached {
		fresh = fetch.PreferPersisted
	}
	billing := fetch.NewBillingFetcher(st, upstream.DemoBilling(time.Now),
		fetch.WithFreshness(fresh))
	menus := fetch.NewMenuFetcher(st, upstream.DemoMenus())

	return &App{
		Config: cfg,
		Log:    log,
		Store:  st,
		Vault:  vlt,
		Cache:  cache.New(st, billing, menus, log),
	}, nil
}

// Close releases the store connection.
func (a *App) Close() {
	if err := a.Store.Close(); err != nil {
		a.Log.WithError(err).Warn("error closing cache database")
	}
}

func newLogger(cfg *config.Config, verbose bool) *logrus.Logger {
	log := logrus.New()
	if cfg.LogJSON {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	if verbose {
		level = logrus.DebugLevel
	}
	log.SetLevel(level)
	return log
}
