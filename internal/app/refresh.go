package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"text/tabwriter"
	"time"

	"github.com/five82/meteodash/internal/navigator"
	"github.com/five82/meteodash/internal/station"
)

// ErrRefreshFailed is returned when at least one station could not be
// refreshed.
var ErrRefreshFailed = errors.New("refresh failed")

// RefreshOptions configure a headless refresh.
type RefreshOptions struct {
	Options
	StationIDs []string      // empty refreshes the whole catalog
	Every      time.Duration // zero runs a single round
	Out        io.Writer     // summary table
}

// Refresh downloads the selected stations through the task queue, without the
// dashboard, and prints one summary row per station.
func Refresh(ctx context.Context, opts RefreshOptions) error {
	svc, err := newServices(opts.Options)
	if err != nil {
		return err
	}
	defer svc.close()

	targets, err := selectStations(svc.catalog, opts.StationIDs)
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		return errors.New("no stations to refresh")
	}
	out := opts.Out
	if out == nil {
		out = io.Discard
	}

	stop := svc.startWorker(ctx)
	defer stop()
	round := func(ctx context.Context) error {
		return svc.refreshRound(ctx, targets, out)
	}
	if opts.Every <= 0 {
		return round(ctx)
	}
	svc.log.Info().Dur("every", opts.Every).Int("stations", len(targets)).Msg("periodic refresh started")
	return repeat(ctx, opts.Every, round, svc.log)
}

func selectStations(catalog []station.Station, ids []string) ([]station.Station, error) {
	if len(ids) == 0 {
		return catalog, nil
	}
	nav := navigator.New(catalog)
	selected := make([]station.Station, 0, len(ids))
	for _, id := range ids {
		if err := nav.SetCurrentID(id); err != nil {
			return nil, err
		}
		st, _ := nav.Current()
		selected = append(selected, st)
	}
	return selected, nil
}

func (s *services) refreshRound(ctx context.Context, targets []station.Station, out io.Writer) error {
	total := len(targets)
	var finished atomic.Int32
	queued := make(map[string]bool, total)

	for _, st := range targets {
		task := s.refreshTask(st, func() {
			n := finished.Add(1)
			s.log.Info().Str("station", st.ID).Msgf("refreshed %d/%d", n, total)
		})
		if err := s.queue.Add(task); err != nil {
			s.log.Error().Err(err).Str("station", st.ID).Msg("refresh not queued")
			continue
		}
		queued[st.ID] = true
	}

	if err := s.queue.Wait(ctx); err != nil {
		return fmt.Errorf("wait for refresh: %w", err)
	}

	failed := 0
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STATION\tSTATUS\tREPORTS\tLATEST")
	for _, st := range targets {
		status := "ok"
		outcome, ok := s.outcomes.Outcome(st.ID)
		switch {
		case !queued[st.ID]:
			status = "not queued"
			failed++
		case !ok:
			status = "no result"
			failed++
		case outcome.Failed():
			status = "error: " + outcome.ErrorLine()
			failed++
		}
		count, latest := s.storedSummary(st)
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", st.ID, status, count, latest)
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}

	if failed > 0 {
		for _, o := range s.outcomes.Failures() {
			s.log.Warn().
				Str("station", o.StationID).
				Int("consecutive_failures", o.ConsecutiveFailures).
				Int("attempts", o.Attempts).
				Time("last_success", o.LastSuccess).
				Str("error", o.ErrorLine()).
				Msg("station refresh failing")
		}
		return fmt.Errorf("%w: %d of %d stations", ErrRefreshFailed, failed, total)
	}
	return nil
}

// storedSummary reports how many reports are on disk for st and the display
// date of the newest one.
func (s *services) storedSummary(st station.Station) (int, string) {
	if !s.store.Exists(st) {
		return 0, "-"
	}
	reports, err := s.store.Load(st)
	if err != nil {
		return 0, "unreadable"
	}
	latest, ok := station.Latest(reports)
	if !ok {
		return 0, "-"
	}
	return len(reports), latest.DisplayDate
}
