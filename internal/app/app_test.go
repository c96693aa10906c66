package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/five82/meteodash/internal/navigator"
	"github.com/five82/meteodash/internal/taskqueue"
)

const testRecords = `{"total_count":2,"results":[
{"heure_de_paris":"2025-03-01T11:00:00+00:00","temperature_en_degre_c":13.1,"humidite":80,"pression":101200},
{"heure_de_paris":"2025-03-01T10:00:00+00:00","temperature_en_degre_c":12.5,"humidite":81,"pression":101325}
]}`

// setupEnv writes a catalog and a config pointing at an httptest server and
// returns the config path.
func setupEnv(t *testing.T) string {
	t.Helper()

	home := t.TempDir()
	t.Setenv("HOME", home)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/datasets/good/records":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(testRecords))
		default:
			http.Error(w, "unavailable", http.StatusInternalServerError)
		}
	}))
	t.Cleanup(server.Close)

	dir := t.TempDir()
	catalog := filepath.Join(dir, "stations.csv")
	if err := os.WriteFile(catalog, []byte("id_nom;nom;longitude;latitude\ngood;Good Station;1,44;43,60\nbad;Bad Station;1,45;43,61\n"), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}

	cfg := fmt.Sprintf(`
api_url = %q
api_timeout = 2
data_dir = %q
stations_csv = %q
log_dir = %q
log_level = "debug"
`, server.URL+"/datasets", filepath.Join(dir, "data"), catalog, filepath.Join(dir, "logs"))
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(cfg), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestRefresh_StoresSelectedStation(t *testing.T) {
	configPath := setupEnv(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var out bytes.Buffer
	err := Refresh(ctx, RefreshOptions{
		Options:    Options{ConfigPath: configPath},
		StationIDs: []string{"good"},
		Out:        &out,
	})
	if err != nil {
		t.Fatalf("Refresh returned error: %v\n%s", err, out.String())
	}
	summary := out.String()
	if !strings.Contains(summary, "good") || !strings.Contains(summary, "ok") {
		t.Fatalf("summary = %q, want an ok row for good", summary)
	}
	if strings.Contains(summary, "bad") {
		t.Fatalf("summary = %q, want only the selected station", summary)
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(configPath), "data", "station_good.json")); err != nil {
		t.Fatalf("station file not written: %v", err)
	}

	var list bytes.Buffer
	if err := ListStations(Options{ConfigPath: configPath}, &list); err != nil {
		t.Fatalf("ListStations returned error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(list.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("ListStations printed %d lines, want header plus 2:\n%s", len(lines), list.String())
	}
	if !strings.Contains(lines[1], "Good Station") || !strings.Contains(lines[1], "2025-03") {
		t.Fatalf("good row = %q, want name and latest report date", lines[1])
	}
	if !strings.Contains(lines[2], "Bad Station") || !strings.Contains(lines[2], " 0 ") {
		t.Fatalf("bad row = %q, want zero stored reports", lines[2])
	}
}

func TestRefresh_ReportsFailedStations(t *testing.T) {
	configPath := setupEnv(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var out bytes.Buffer
	err := Refresh(ctx, RefreshOptions{
		Options: Options{ConfigPath: configPath},
		Out:     &out,
	})
	if !errors.Is(err, ErrRefreshFailed) {
		t.Fatalf("Refresh error = %v, want ErrRefreshFailed", err)
	}
	if !strings.Contains(err.Error(), "1 of 2") {
		t.Fatalf("Refresh error = %q, want failure count", err.Error())
	}
	if !strings.Contains(out.String(), "error:") {
		t.Fatalf("summary = %q, want an error row", out.String())
	}

	logData, err := os.ReadFile(filepath.Join(filepath.Dir(configPath), "logs", "meteodash.log"))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(logData), "station refresh failing") || !strings.Contains(string(logData), `"station":"bad"`) {
		t.Fatalf("log does not list the failing station:\n%s", logData)
	}
}

func TestRefresh_UnknownStation(t *testing.T) {
	configPath := setupEnv(t)

	err := Refresh(context.Background(), RefreshOptions{
		Options:    Options{ConfigPath: configPath},
		StationIDs: []string{"nowhere"},
	})
	if !errors.Is(err, navigator.ErrStationNotFound) {
		t.Fatalf("Refresh error = %v, want ErrStationNotFound", err)
	}
}

func TestRefresh_EveryStopsOnCancel(t *testing.T) {
	configPath := setupEnv(t)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	err := Refresh(ctx, RefreshOptions{
		Options:    Options{ConfigPath: configPath},
		StationIDs: []string{"good"},
		Every:      50 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("Refresh with Every returned %v, want nil on cancel", err)
	}
}

func TestSelectStations(t *testing.T) {
	configPath := setupEnv(t)
	svc, err := newServices(Options{ConfigPath: configPath})
	if err != nil {
		t.Fatalf("newServices returned error: %v", err)
	}
	defer svc.close()

	all, err := selectStations(svc.catalog, nil)
	if err != nil || len(all) != 2 {
		t.Fatalf("selectStations(nil) = %d stations, %v; want 2", len(all), err)
	}
	picked, err := selectStations(svc.catalog, []string{"bad", "good"})
	if err != nil {
		t.Fatalf("selectStations returned error: %v", err)
	}
	if picked[0].ID != "bad" || picked[1].ID != "good" {
		t.Fatalf("selectStations order = %v, want bad then good", picked)
	}
}

func TestNewServices_MissingCatalog(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	cfg := fmt.Sprintf("stations_csv = %q\nlog_dir = %q\n", filepath.Join(dir, "missing.csv"), filepath.Join(dir, "logs"))
	if err := os.WriteFile(path, []byte(cfg), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	_, err := newServices(Options{ConfigPath: path})
	if err == nil || !strings.Contains(err.Error(), "load stations") {
		t.Fatalf("newServices error = %v, want load stations failure", err)
	}
}

func TestStartWorker_StopLetsRunningTaskFinish(t *testing.T) {
	configPath := setupEnv(t)
	svc, err := newServices(Options{ConfigPath: configPath})
	if err != nil {
		t.Fatalf("newServices returned error: %v", err)
	}
	defer svc.close()

	stop := svc.startWorker(context.Background())

	started := make(chan struct{})
	taskErr := make(chan error, 1)
	if err := svc.queue.Add(taskqueue.Task{Name: "slow", Run: func(ctx context.Context) error {
		close(started)
		time.Sleep(50 * time.Millisecond)
		taskErr <- ctx.Err()
		return nil
	}}); err != nil {
		t.Fatalf("Add returned error: %v", err)
	}
	<-started
	stop()

	select {
	case err := <-taskErr:
		if err != nil {
			t.Fatalf("task context was cancelled before it finished: %v", err)
		}
	default:
		t.Fatal("stop returned before the running task finished")
	}
	if svc.queue.Running() {
		t.Fatal("worker still running after stop")
	}
}

func TestStoredSummary_MissingFile(t *testing.T) {
	configPath := setupEnv(t)
	svc, err := newServices(Options{ConfigPath: configPath})
	if err != nil {
		t.Fatalf("newServices returned error: %v", err)
	}
	defer svc.close()

	count, latest := svc.storedSummary(svc.catalog[0])
	if count != 0 || latest != "-" {
		t.Fatalf("storedSummary = %d, %q; want 0, \"-\"", count, latest)
	}
}
