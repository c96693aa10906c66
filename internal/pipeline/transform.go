package pipeline

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/five82/meteodash/internal/opendata"
	"github.com/five82/meteodash/internal/station"
)

// DefaultDisplayLayout formats Report.DisplayDate.
const DefaultDisplayLayout = "2006-01-02 15:04"

// ErrInvalidFormat marks a record that cannot become a Report.
var ErrInvalidFormat = errors.New("invalid record format")

// Transform converts API records into reports. Any record with a missing
// measurement or an unparsable timestamp fails the whole batch.
func Transform(records []opendata.Record, layout string) ([]station.Report, error) {
	if strings.TrimSpace(layout) == "" {
		layout = DefaultDisplayLayout
	}
	reports := make([]station.Report, 0, len(records))
	for i, rec := range records {
		ts, err := time.Parse(time.RFC3339, strings.TrimSpace(rec.HeureDeParis))
		if err != nil {
			return nil, fmt.Errorf("%w: record %d: timestamp %q", ErrInvalidFormat, i, rec.HeureDeParis)
		}
		if rec.Temperature == nil || rec.Humidity == nil || rec.Pressure == nil {
			return nil, fmt.Errorf("%w: record %d at %s: missing measurement", ErrInvalidFormat, i, rec.HeureDeParis)
		}
		reports = append(reports, station.Report{
			Time:        ts,
			Temperature: *rec.Temperature,
			Humidity:    int(math.Round(*rec.Humidity)),
			Pressure:    int(math.Round(*rec.Pressure)),
			DisplayDate: ts.Format(layout),
		})
	}
	return reports, nil
}
