package app

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/meteodash/internal/navigator"
	"github.com/five82/meteodash/internal/prefs"
	"github.com/five82/meteodash/internal/station"
	"github.com/five82/meteodash/internal/ui"
	"github.com/five82/meteodash/internal/watch"
)

// Run boots the dashboard until the user quits or the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	// The alternate screen owns the terminal.
	opts.Console = nil

	svc, err := newServices(opts)
	if err != nil {
		return err
	}
	defer svc.close()

	userPrefs, err := prefs.Load(opts.PrefsPath)
	if err != nil {
		svc.log.Warn().Err(err).Msg("preferences ignored")
	}

	nav := navigator.New(svc.catalog)
	if userPrefs.Station != "" {
		if err := nav.SetCurrentID(userPrefs.Station); err != nil {
			svc.log.Info().Str("station", userPrefs.Station).Msg("saved station no longer in catalog")
		}
	}
	metric, err := station.ParseMetric(userPrefs.Metric)
	if err != nil {
		metric = station.Temperature
	}

	// Quitting waits for the in-flight refresh; stop runs before the
	// deferred close.
	stop := svc.startWorker(ctx)
	defer stop()

	program := ui.NewProgram(ui.Options{
		Context:     ctx,
		Navigator:   nav,
		Queue:       svc.queue,
		Status:      svc.queue.Status(),
		Reports:     svc.store,
		Outcomes:    svc.outcomes,
		Refresh:     svc.refresher.Refresh,
		Logger:      svc.logger.Logger,
		LogPath:     svc.logger.Path(),
		CatalogPath: svc.cfg.StationsCSV,
		PollTick:    svc.cfg.PollInterval,
		ThemeName:   userPrefs.Theme,
		Metric:      metric,
		PrefsPath:   opts.PrefsPath,
	})

	// Files written by another process (refresh --every) reach the view
	// through the watcher.
	watcher, err := watch.New(svc.store.Dir(), func(keys []string) {
		program.Send(ui.DataChangedMsg{Keys: keys})
	}, watch.WithErrorHandler(func(err error) {
		svc.log.Warn().Err(err).Msg("data directory watch error")
	}))
	if err != nil {
		svc.log.Warn().Err(err).Str("dir", svc.store.Dir()).Msg("data directory not watched")
	} else {
		defer func() { _ = watcher.Close() }()
	}

	svc.log.Info().Int("stations", nav.Len()).Msg("dashboard starting")
	if _, err := program.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("run dashboard: %w", err)
	}
	return nil
}
