package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/five82/meteodash/internal/opendata"
	"github.com/five82/meteodash/internal/station"
)

func ptr(v float64) *float64 { return &v }

func record(ts string, temp, hum, pres float64) opendata.Record {
	return opendata.Record{HeureDeParis: ts, Temperature: ptr(temp), Humidity: ptr(hum), Pressure: ptr(pres)}
}

func TestTransform(t *testing.T) {
	reports, err := Transform([]opendata.Record{
		record("2025-03-01T10:00:00+01:00", 12.3, 80.6, 101325.4),
	}, "")
	if err != nil {
		t.Fatalf("Transform returned error: %v", err)
	}
	r := reports[0]
	if r.DisplayDate != "2025-03-01 10:00" {
		t.Fatalf("DisplayDate = %q, want %q", r.DisplayDate, "2025-03-01 10:00")
	}
	if r.Humidity != 81 || r.Pressure != 101325 || r.Temperature != 12.3 {
		t.Fatalf("report = %+v, want rounded integer humidity and pressure", r)
	}

	reports, err = Transform([]opendata.Record{record("2025-03-01T10:00:00Z", 1, 2, 3)}, "02/01 15h")
	if err != nil {
		t.Fatalf("Transform returned error: %v", err)
	}
	if reports[0].DisplayDate != "01/03 10h" {
		t.Fatalf("custom DisplayDate = %q", reports[0].DisplayDate)
	}
}

func TestTransform_InvalidRecords(t *testing.T) {
	tests := []struct {
		name string
		rec  opendata.Record
	}{
		{"bad timestamp", record("yesterday", 1, 2, 3)},
		{"missing temperature", opendata.Record{HeureDeParis: "2025-03-01T10:00:00Z", Humidity: ptr(1), Pressure: ptr(1)}},
		{"missing pressure", opendata.Record{HeureDeParis: "2025-03-01T10:00:00Z", Temperature: ptr(1), Humidity: ptr(1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Transform([]opendata.Record{tt.rec}, ""); !errors.Is(err, ErrInvalidFormat) {
				t.Fatalf("Transform error = %v, want ErrInvalidFormat", err)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	ok := station.Report{Temperature: 20, Humidity: 50, Pressure: 101000}
	if err := Validate([]station.Report{ok}, DefaultRules()); err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}

	hot := ok
	hot.Temperature = 75
	if err := Validate([]station.Report{ok, hot}, DefaultRules()); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("Validate error = %v, want ErrOutOfRange", err)
	}

	onlyHumidity := Rules{station.Humidity: {Min: 0, Max: 100}}
	if err := Validate([]station.Report{hot}, onlyHumidity); err != nil {
		t.Fatalf("Validate with partial rules returned error: %v", err)
	}
}

type fakeFetcher struct {
	records []opendata.Record
	err     error
}

func (f fakeFetcher) FetchRecords(context.Context, string) ([]opendata.Record, error) {
	return f.records, f.err
}

type fakeSaver struct {
	saved []station.Report
	calls int
}

func (s *fakeSaver) Save(_ station.Station, reports []station.Report) (int, error) {
	s.calls++
	s.saved = append(s.saved, reports...)
	return len(s.saved), nil
}

type fakeRecorder struct {
	ids  []string
	errs []error
}

func (r *fakeRecorder) Record(id string, err error) {
	r.ids = append(r.ids, id)
	r.errs = append(r.errs, err)
}

func TestRefresher_Refresh(t *testing.T) {
	st := station.Station{ID: "s1"}
	good := []opendata.Record{record("2025-03-01T10:00:00Z", 10, 60, 100000)}
	fetchErr := errors.New("network down")

	tests := []struct {
		name      string
		fetcher   fakeFetcher
		wantErr   error
		wantSaves int
	}{
		{"success", fakeFetcher{records: good}, nil, 1},
		{"fetch error", fakeFetcher{err: fetchErr}, fetchErr, 0},
		{"no results", fakeFetcher{err: opendata.ErrNoResults}, opendata.ErrNoResults, 0},
		{"invalid", fakeFetcher{records: []opendata.Record{record("bad", 1, 1, 1)}}, ErrInvalidFormat, 0},
		{"out of range", fakeFetcher{records: []opendata.Record{record("2025-03-01T10:00:00Z", 99, 60, 100000)}}, ErrOutOfRange, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			saver := &fakeSaver{}
			rec := &fakeRecorder{}
			r := &Refresher{Fetcher: tt.fetcher, Saver: saver, Recorder: rec, Logger: zerolog.Nop()}

			err := r.Refresh(context.Background(), st)
			if tt.wantErr == nil && err != nil {
				t.Fatalf("Refresh returned error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("Refresh error = %v, want %v", err, tt.wantErr)
			}
			if saver.calls != tt.wantSaves {
				t.Fatalf("Save calls = %d, want %d", saver.calls, tt.wantSaves)
			}
			if len(rec.ids) != 1 || rec.ids[0] != "s1" {
				t.Fatalf("recorded ids = %v, want [s1]", rec.ids)
			}
			if (rec.errs[0] == nil) != (tt.wantErr == nil) {
				t.Fatalf("recorded err = %v, want error=%v", rec.errs[0], tt.wantErr != nil)
			}
		})
	}
}

func TestRefresher_NotConfigured(t *testing.T) {
	r := &Refresher{Logger: zerolog.Nop()}
	if err := r.Refresh(context.Background(), station.Station{ID: "x"}); err == nil {
		t.Fatal("Refresh without collaborators returned nil error")
	}
}
