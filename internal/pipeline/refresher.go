package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/five82/meteodash/internal/opendata"
	"github.com/five82/meteodash/internal/station"
)

// Saver persists a batch of reports for a station.
type Saver interface {
	Save(st station.Station, reports []station.Report) (int, error)
}

// Recorder receives the outcome of each refresh.
type Recorder interface {
	Record(stationID string, err error)
}

// Refresher runs the extract, transform, validate and load steps for one
// station.
type Refresher struct {
	Fetcher  opendata.RecordFetcher
	Saver    Saver
	Rules    Rules
	Layout   string
	Recorder Recorder
	Logger   zerolog.Logger
}

// Refresh downloads and stores the latest reports of st. Nothing is saved
// unless every step succeeds.
func (r *Refresher) Refresh(ctx context.Context, st station.Station) (err error) {
	start := time.Now()
	log := r.Logger.With().Str("station", st.ID).Logger()
	defer func() {
		if r.Recorder != nil {
			r.Recorder.Record(st.ID, err)
		}
		if err != nil {
			log.Warn().Err(err).Dur("elapsed", time.Since(start)).Msg("refresh failed")
		}
	}()

	if r.Fetcher == nil || r.Saver == nil {
		return fmt.Errorf("refresher not configured")
	}

	records, err := r.Fetcher.FetchRecords(ctx, st.ID)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", st.ID, err)
	}
	reports, err := Transform(records, r.Layout)
	if err != nil {
		return fmt.Errorf("transform %s: %w", st.ID, err)
	}
	rules := r.Rules
	if rules == nil {
		rules = DefaultRules()
	}
	if err := Validate(reports, rules); err != nil {
		return fmt.Errorf("validate %s: %w", st.ID, err)
	}
	stored, err := r.Saver.Save(st, reports)
	if err != nil {
		return fmt.Errorf("save %s: %w", st.ID, err)
	}

	log.Info().Int("fetched", len(records)).Int("stored", stored).Dur("elapsed", time.Since(start)).Msg("station refreshed")
	return nil
}
