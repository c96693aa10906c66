package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/five82/meteodash/internal/station"
)

const (
	filePrefix = "station_"
	fileExt    = ".json"
)

// Store persists reports as one JSON document per station inside dir.
type Store struct {
	dir string
	log zerolog.Logger
}

// document is the on-disk layout of a station file.
type document struct {
	Station station.Station  `json:"station"`
	Updated time.Time        `json:"updated"`
	Reports []station.Report `json:"reports"`
}

// New returns a Store rooted at dir. The directory is created on first Save.
func New(dir string, logger zerolog.Logger) *Store {
	return &Store{
		dir: dir,
		log: logger.With().Str("component", "storage").Logger(),
	}
}

// Dir returns the data directory.
func (s *Store) Dir() string {
	return s.dir
}

// Key maps a station ID to the file-safe token used in file names.
func Key(stationID string) string {
	r := strings.NewReplacer("/", "_", "\\", "_", string(os.PathSeparator), "_")
	return r.Replace(strings.TrimSpace(stationID))
}

// KeyFromPath extracts the station key from a data file path. ok is false for
// files that are not station files.
func KeyFromPath(path string) (string, bool) {
	base := filepath.Base(path)
	if !strings.HasPrefix(base, filePrefix) || !strings.HasSuffix(base, fileExt) {
		return "", false
	}
	key := strings.TrimSuffix(strings.TrimPrefix(base, filePrefix), fileExt)
	return key, key != ""
}

// Path returns the file that holds the reports of st.
func (s *Store) Path(st station.Station) string {
	return filepath.Join(s.dir, filePrefix+Key(st.ID)+fileExt)
}

// Exists reports whether a data file is present for st.
func (s *Store) Exists(st station.Station) bool {
	info, err := os.Stat(s.Path(st))
	return err == nil && info.Mode().IsRegular()
}

// Load returns the stored reports of st in ascending time order. A station
// that was never saved yields no reports and no error.
func (s *Store) Load(st station.Station) ([]station.Report, error) {
	doc, err := s.read(s.Path(st))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	return doc.Reports, nil
}

// Save merges reports into the station file and returns the number of reports
// stored afterwards. Readings sharing a timestamp keep the newest value.
func (s *Store) Save(st station.Station, reports []station.Report) (int, error) {
	if strings.TrimSpace(st.ID) == "" {
		return 0, fmt.Errorf("save: station id required")
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return 0, fmt.Errorf("create data dir: %w", err)
	}

	path := s.Path(st)
	var existing []station.Report
	doc, err := s.read(path)
	switch {
	case err == nil:
		existing = doc.Reports
	case errors.Is(err, os.ErrNotExist):
	default:
		s.log.Warn().Err(err).Str("station", st.ID).Str("path", path).Msg("existing data unreadable, overwriting")
	}

	merged := Merge(existing, reports)
	out := document{Station: st, Updated: time.Now().UTC(), Reports: merged}
	if err := writeAtomic(path, out); err != nil {
		return 0, err
	}
	s.log.Debug().Str("station", st.ID).Int("received", len(reports)).Int("stored", len(merged)).Msg("reports saved")
	return len(merged), nil
}

// Merge combines old and new reports, dropping duplicate timestamps in favour
// of the later slice, and sorts the result by time.
func Merge(old, fresh []station.Report) []station.Report {
	byTime := make(map[int64]station.Report, len(old)+len(fresh))
	for _, r := range old {
		byTime[r.Time.UnixNano()] = r
	}
	for _, r := range fresh {
		byTime[r.Time.UnixNano()] = r
	}
	merged := make([]station.Report, 0, len(byTime))
	for _, r := range byTime {
		merged = append(merged, r)
	}
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].Time.Before(merged[j].Time)
	})
	return merged
}

func (s *Store) read(path string) (document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return document{}, err
	}
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return document{}, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return doc, nil
}

func writeAtomic(path string, doc document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode reports: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".station-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", filepath.Base(path), err)
	}
	return nil
}
