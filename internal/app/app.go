package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/five82/technician/internal/config"
	"github.com/five82/technician/internal/espm"
	"github.com/five82/technician/internal/offline"
	"github.com/five82/technician/internal/prefs"
	"github.com/five82/technician/internal/state"
	"github.com/five82/technician/internal/ui"
)

// Options configure the technician application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/technician/prefs.toml
	PollEvery  int    // KPI interval in seconds; zero uses the config value
	Offline    bool   // never contact the service
	Debug      bool
}

// Run boots the technician TUI until the user quits or ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.Offline {
		cfg.Offline = true
	}
	if opts.PollEvery > 0 {
		cfg.KPIInterval = time.Duration(opts.PollEvery) * time.Second
	}

	log, closer, err := openLogger(cfg.LogFile, opts.Debug)
	if err != nil {
		return err
	}
	defer closer.Close()

	userPrefs, err := prefs.Load(opts.PrefsPath)
	if err != nil {
		log.Warn().Err(err).Msg("could not resolve preferences path")
	}

	client, err := espm.NewClient(espm.Options{
		ServiceURL: cfg.ServiceURL,
		Username:   cfg.Username,
		Password:   cfg.Password,
		Logger:     log,
	})
	if err != nil {
		return fmt.Errorf("init espm client: %w", err)
	}

	cache, err := offline.OpenCache(cfg.CacheDir)
	if err != nil {
		return fmt.Errorf("open offline cache: %w", err)
	}
	provider, err := offline.NewProvider(client, cache, offline.Options{
		ForceOffline: cfg.Offline,
		Logger:       log,
	})
	if err != nil {
		return fmt.Errorf("init provider: %w", err)
	}

	log.Info().
		Str("service_url", cfg.ServiceURL).
		Str("entity_set", string(cfg.EntitySet)).
		Str("cache", cache.Path()).
		Bool("offline", cfg.Offline).
		Msg("technician starting")

	done := startSync(ctx, provider, cfg.LoadTimeout, log)

	store := &state.Store{}
	StartPoller(ctx, store, provider, cfg.KPIInterval, log)

	err = ui.Run(ui.Options{
		Context:   ctx,
		Container: provider,
		Store:     store,
		Config:    &cfg,
		Logger:    log,
		ThemeName: userPrefs.Theme,
		ShowHelp:  userPrefs.ShowHelp,
		PrefsPath: opts.PrefsPath,
	})
	if err != nil && errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	select {
	case <-done:
	default:
		log.Debug().Msg("initial sync still running at exit")
	}
	if pending := provider.PendingCount(); pending > 0 {
		log.Info().Int("pending", pending).Msg("unsent edits remain queued")
	}
	return err
}

// Syncer replays queued edits and warms the offline cache.
type Syncer interface {
	Sync(ctx context.Context) error
}

// startSync runs one Sync in the background so the first screen, and its
// loading indicator, come up without waiting on the service. The returned
// channel is closed when the sync finishes.
func startSync(ctx context.Context, syncer Syncer, timeout time.Duration, log zerolog.Logger) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		if err := syncer.Sync(ctx); err != nil {
			log.Warn().Err(err).Msg("initial sync failed")
			return
		}
		log.Debug().Msg("initial sync finished")
	}()
	return done
}
