package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/five82/meteodash/internal/config"
	"github.com/five82/meteodash/internal/logging"
	"github.com/five82/meteodash/internal/opendata"
	"github.com/five82/meteodash/internal/pipeline"
	"github.com/five82/meteodash/internal/state"
	"github.com/five82/meteodash/internal/station"
	"github.com/five82/meteodash/internal/storage"
	"github.com/five82/meteodash/internal/taskqueue"
)

// Options configure the application.
type Options struct {
	ConfigPath string
	PrefsPath  string    // empty uses default ~/.config/meteodash/prefs.toml
	PollMS     int       // dashboard tick in milliseconds; zero uses config
	Console    io.Writer // optional human-readable log mirror (headless only)
}

// services holds the collaborators shared by every command.
type services struct {
	cfg       config.Config
	logger    *logging.Logger
	log       zerolog.Logger
	catalog   []station.Station
	store     *storage.Store
	outcomes  *state.Store
	queue     *taskqueue.Queue
	refresher *pipeline.Refresher
}

func newServices(opts Options) (*services, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if opts.PollMS > 0 {
		cfg.PollInterval = config.ClampPoll(time.Duration(opts.PollMS) * time.Millisecond)
	}

	logger, err := logging.New(logging.Options{Dir: cfg.LogDir, Level: cfg.LogLevel, Console: opts.Console})
	if err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}

	catalog, err := station.LoadCatalog(cfg.StationsCSV)
	if err != nil {
		_ = logger.Close()
		return nil, fmt.Errorf("load stations: %w", err)
	}

	client, err := opendata.NewClient(cfg.APIURL, cfg.APITimeout)
	if err != nil {
		_ = logger.Close()
		return nil, fmt.Errorf("init api client: %w", err)
	}

	status := &taskqueue.Status{}
	outcomes := &state.Store{}
	store := storage.New(cfg.DataDir, logger.Logger)

	// A full-catalog refresh must fit in the buffer.
	capacity := max(cfg.QueueCapacity, len(catalog))

	s := &services{
		cfg:      cfg,
		logger:   logger,
		log:      logger.With().Str("component", "app").Logger(),
		catalog:  catalog,
		store:    store,
		outcomes: outcomes,
		queue: taskqueue.New(taskqueue.Options{
			Capacity: capacity,
			Status:   status,
			Logger:   logger.Logger,
		}),
		refresher: &pipeline.Refresher{
			Fetcher:  client,
			Saver:    store,
			Rules:    cfg.Rules,
			Layout:   cfg.DateFormat,
			Recorder: outcomes,
			Logger:   logger.With().Str("component", "pipeline").Logger(),
		},
	}
	s.log.Info().
		Str("catalog", cfg.StationsCSV).
		Int("stations", len(catalog)).
		Str("data_dir", cfg.DataDir).
		Msg("services ready")
	return s, nil
}

// refreshTask wraps a station refresh for the task queue.
func (s *services) refreshTask(st station.Station, onComplete func()) taskqueue.Task {
	return taskqueue.Task{
		Name: "refresh " + st.ID,
		Run: func(ctx context.Context) error {
			return s.refresher.Refresh(ctx, st)
		},
		OnComplete: onComplete,
	}
}

// startWorker starts the queue on a child of ctx. The returned stop function
// lets the in-flight task finish before the child context is cancelled.
func (s *services) startWorker(ctx context.Context) (stop func()) {
	workerCtx, cancel := context.WithCancel(ctx)
	s.queue.Start(workerCtx)
	return func() {
		s.queue.Stop()
		cancel()
	}
}

func (s *services) close() {
	s.queue.Stop()
	if err := s.logger.Close(); err != nil {
		s.log.Debug().Err(err).Msg("close log file")
	}
}
