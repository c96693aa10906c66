package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/five82/meteodash/internal/opendata"
	"github.com/five82/meteodash/internal/pipeline"
	"github.com/five82/meteodash/internal/station"
	"github.com/five82/meteodash/internal/taskqueue"
)

// Config captures the dashboard settings.
type Config struct {
	APIURL        string
	APITimeout    time.Duration
	DataDir       string
	StationsCSV   string
	LogDir        string
	LogLevel      string
	PollInterval  time.Duration
	QueueCapacity int
	DateFormat    string
	Rules         pipeline.Rules
}

const (
	defaultConfigPath  = "~/.config/meteodash/config.toml"
	defaultDataDir     = "~/.local/share/meteodash/data"
	defaultStationsCSV = "~/.config/meteodash/stations.csv"
	defaultLogDir      = "~/.local/share/meteodash/logs"
	defaultLogLevel    = "info"
	defaultPoll        = 500 * time.Millisecond
	minPoll            = 50 * time.Millisecond
)

// Bounds is an optional [validation.<metric>] table.
type Bounds struct {
	Min *float64 `toml:"min"`
	Max *float64 `toml:"max"`
}

type rawConfig struct {
	APIURL        string            `toml:"api_url"`
	APITimeout    int               `toml:"api_timeout"`
	DataDir       string            `toml:"data_dir"`
	StationsCSV   string            `toml:"stations_csv"`
	LogDir        string            `toml:"log_dir"`
	LogLevel      string            `toml:"log_level"`
	PollMS        int               `toml:"poll_ms"`
	QueueCapacity int               `toml:"queue_capacity"`
	DateFormat    string            `toml:"date_format"`
	Validation    map[string]Bounds `toml:"validation"`
}

// DefaultPath returns the default config file path.
func DefaultPath() string {
	return defaultConfigPath
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		APIURL:        opendata.DefaultBaseURL,
		APITimeout:    opendata.DefaultTimeout,
		DataDir:       mustExpand(defaultDataDir),
		StationsCSV:   mustExpand(defaultStationsCSV),
		LogDir:        mustExpand(defaultLogDir),
		LogLevel:      defaultLogLevel,
		PollInterval:  defaultPoll,
		QueueCapacity: taskqueue.DefaultCapacity,
		DateFormat:    pipeline.DefaultDisplayLayout,
		Rules:         pipeline.DefaultRules(),
	}
}

// Load locates and parses the config, falling back to defaults when missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw rawConfig
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.APIURL); v != "" {
		cfg.APIURL = v
	}
	if raw.APITimeout > 0 {
		cfg.APITimeout = time.Duration(raw.APITimeout) * time.Second
	}
	if v := strings.TrimSpace(raw.DataDir); v != "" {
		cfg.DataDir = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.StationsCSV); v != "" {
		cfg.StationsCSV = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.LogDir); v != "" {
		cfg.LogDir = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.LogLevel); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	if raw.PollMS > 0 {
		cfg.PollInterval = ClampPoll(time.Duration(raw.PollMS) * time.Millisecond)
	}
	if raw.QueueCapacity > 0 {
		cfg.QueueCapacity = raw.QueueCapacity
	}
	if v := strings.TrimSpace(raw.DateFormat); v != "" {
		cfg.DateFormat = v
	}

	for name, b := range raw.Validation {
		m, err := station.ParseMetric(name)
		if err != nil {
			return Config{}, fmt.Errorf("parse config: validation: %w", err)
		}
		r := cfg.Rules[m]
		if b.Min != nil {
			r.Min = *b.Min
		}
		if b.Max != nil {
			r.Max = *b.Max
		}
		if r.Min > r.Max {
			return Config{}, fmt.Errorf("parse config: validation.%s: min %g greater than max %g", m, r.Min, r.Max)
		}
		cfg.Rules[m] = r
	}

	return cfg, nil
}

// ClampPoll keeps the dashboard tick within a usable range.
func ClampPoll(d time.Duration) time.Duration {
	if d <= 0 {
		return defaultPoll
	}
	if d < minPoll {
		return minPoll
	}
	return d
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
