package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/five82/meteodash/internal/logtail"
	"github.com/five82/meteodash/internal/navigator"
	"github.com/five82/meteodash/internal/prefs"
	"github.com/five82/meteodash/internal/state"
	"github.com/five82/meteodash/internal/station"
	"github.com/five82/meteodash/internal/storage"
	"github.com/five82/meteodash/internal/taskqueue"
)

// View represents the current active view.
type View int

const (
	ViewDashboard View = iota
	ViewLogs
)

const (
	defaultPollTick = 500 * time.Millisecond
	logTailLines    = 400
)

// Queue accepts refresh tasks. *taskqueue.Queue satisfies it.
type Queue interface {
	Add(task taskqueue.Task) error
	IsWorking() bool
	State() taskqueue.State
}

// ReportLoader reads stored reports. *storage.Store satisfies it.
type ReportLoader interface {
	Load(st station.Station) ([]station.Report, error)
}

// OutcomeReader exposes refresh outcomes. *state.Store satisfies it.
type OutcomeReader interface {
	Outcome(stationID string) (state.Outcome, bool)
}

// RefreshFunc downloads and stores one station's reports.
type RefreshFunc func(ctx context.Context, st station.Station) error

// Options configures the UI.
type Options struct {
	Context     context.Context
	Navigator   *navigator.Navigator
	Queue       Queue
	Status      *taskqueue.Status
	Reports     ReportLoader
	Outcomes    OutcomeReader
	Refresh     RefreshFunc
	Logger      zerolog.Logger
	LogPath     string
	CatalogPath string
	PollTick    time.Duration
	ThemeName   string
	Metric      station.Metric
	PrefsPath   string
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Collaborators
	ctx         context.Context
	nav         *navigator.Navigator
	queue       Queue
	status      *taskqueue.Status
	reports     ReportLoader
	outcomes    OutcomeReader
	refresh     RefreshFunc
	log         zerolog.Logger
	logPath     string
	catalogPath string
	prefsPath   string
	pollTick    time.Duration

	// UI state
	keys        keyMap
	theme       Theme
	currentView View
	width       int
	height      int
	ready       bool
	showHelp    bool
	spinner     spinner.Model
	flash       string

	// Station data
	metric      station.Metric
	data        []station.Report
	dataStation string
	loadErr     error
	busy        bool
	queueState  taskqueue.State

	// Picker
	picker     list.Model
	pickerOpen bool

	// Logs
	logViewport viewport.Model
	logEntries  []logtail.Entry
	logErr      error
	logFollow   bool
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	nav := opts.Navigator
	if nav == nil {
		nav = navigator.New(nil)
	}
	pollTick := opts.PollTick
	if pollTick <= 0 {
		pollTick = defaultPollTick
	}
	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))

	return Model{
		ctx:         ctx,
		nav:         nav,
		queue:       opts.Queue,
		status:      opts.Status,
		reports:     opts.Reports,
		outcomes:    opts.Outcomes,
		refresh:     opts.Refresh,
		log:         opts.Logger.With().Str("component", "ui").Logger(),
		logPath:     opts.LogPath,
		catalogPath: opts.CatalogPath,
		prefsPath:   prefsPath,
		pollTick:    pollTick,
		keys:        DefaultKeyMap(),
		theme:       GetTheme(opts.ThemeName),
		currentView: ViewDashboard,
		spinner:     sp,
		metric:      opts.Metric,
		picker:      newPicker(nav.All()),
		logFollow:   true,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tickCmd(m.pollTick),
		m.spinner.Tick,
	}
	if st, ok := m.nav.Current(); ok {
		// Init cannot change the model, so a rejected task comes back as a
		// message.
		if err := m.addRefresh(st); err != nil {
			cmds = append(cmds, func() tea.Msg { return refreshRejectedMsg{err: err} })
		}
		cmds = append(cmds, m.loadReportsCmd(st))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.logViewport = viewport.New(msg.Width, m.bodyHeight())
		}
		m.ready = true
		m.logViewport.Width = msg.Width
		m.logViewport.Height = m.bodyHeight()
		m.picker.SetSize(msg.Width, msg.Height-1)
		m.updateLogViewport()
		return m, nil

	case tickMsg:
		return m.handleTick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case reportsMsg:
		st, ok := m.nav.Current()
		if !ok || st.ID != msg.stationID {
			return m, nil // stale load for a station we moved away from
		}
		m.data = msg.reports
		m.dataStation = msg.stationID
		m.loadErr = msg.err
		return m, nil

	case DataChangedMsg:
		st, ok := m.nav.Current()
		if ok && msg.Has(storage.Key(st.ID)) {
			return m, m.loadReportsCmd(st)
		}
		return m, nil

	case refreshRejectedMsg:
		m.flash = fmt.Sprintf("refresh not queued: %v", msg.err)
		return m, nil

	case logsMsg:
		m.logEntries = msg.entries
		m.logErr = msg.err
		m.updateLogViewport()
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	if m.pickerOpen {
		return m.renderHeader() + "\n" + m.picker.View()
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	switch m.currentView {
	case ViewLogs:
		b.WriteString(m.renderLogs())
	default:
		b.WriteString(m.renderDashboard())
	}
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}
	if m.pickerOpen {
		return m.handlePickerKey(msg)
	}

	m.flash = ""
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.savePrefs()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.savePrefs()
		m.updateLogViewport()
		return m, nil

	case key.Matches(msg, m.keys.Escape):
		m.currentView = ViewDashboard
		return m, nil

	case key.Matches(msg, m.keys.ViewLogs):
		if m.currentView == ViewLogs {
			m.currentView = ViewDashboard
			return m, nil
		}
		m.currentView = ViewLogs
		return m, m.loadLogsCmd()

	case key.Matches(msg, m.keys.Next):
		st, ok := m.nav.Next()
		if !ok {
			return m, nil
		}
		return m, m.selectStation(st)

	case key.Matches(msg, m.keys.Previous):
		st, ok := m.nav.Previous()
		if !ok {
			return m, nil
		}
		return m, m.selectStation(st)

	case key.Matches(msg, m.keys.Refresh):
		if st, ok := m.nav.Current(); ok {
			m.enqueueRefresh(st)
		}
		return m, nil

	case key.Matches(msg, m.keys.Picker):
		if m.nav.Len() == 0 {
			return m, nil
		}
		return m.openPicker(msg)

	case key.Matches(msg, m.keys.CycleMetric):
		m.metric = m.metric.Next()
		m.savePrefs()
		return m, nil
	}

	if m.currentView == ViewLogs {
		return m.handleLogsKey(msg)
	}
	return m, nil
}

// selectStation shows st and queues a refresh for it.
func (m *Model) selectStation(st station.Station) tea.Cmd {
	m.enqueueRefresh(st)
	return m.loadReportsCmd(st)
}

// enqueueRefresh adds a refresh task for st. Add never blocks.
func (m *Model) enqueueRefresh(st station.Station) {
	if err := m.addRefresh(st); err != nil {
		m.flash = fmt.Sprintf("refresh not queued: %v", err)
		return
	}
	if m.queue != nil && m.refresh != nil {
		m.busy = true
	}
}

// addRefresh queues a refresh task for st without touching the model.
func (m Model) addRefresh(st station.Station) error {
	if m.queue == nil || m.refresh == nil {
		return nil
	}
	refresh := m.refresh
	task := taskqueue.Task{
		Name: "refresh " + st.ID,
		Run: func(ctx context.Context) error {
			return refresh(ctx, st)
		},
	}
	if err := m.queue.Add(task); err != nil {
		m.log.Warn().Err(err).Str("station", st.ID).Msg("refresh not queued")
		return err
	}
	return nil
}

// handleTick processes the polling tick.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{tickCmd(m.pollTick)}

	m.busy = m.queue != nil && m.queue.IsWorking()
	if m.queue != nil {
		m.queueState = m.queue.State()
	}
	if m.status.Consume() {
		if st, ok := m.nav.Current(); ok {
			cmds = append(cmds, m.loadReportsCmd(st))
		}
	}
	if m.currentView == ViewLogs && m.logFollow {
		cmds = append(cmds, m.loadLogsCmd())
	}
	return m, tea.Batch(cmds...)
}

func (m Model) savePrefs() {
	p := prefs.Prefs{Theme: m.theme.Name, Metric: m.metric.String()}
	if st, ok := m.nav.Current(); ok {
		p.Station = st.ID
	}
	if err := prefs.Save(m.prefsPath, p); err != nil {
		m.log.Warn().Err(err).Str("path", m.prefsPath).Msg("save preferences")
	}
}

func (m Model) bodyHeight() int {
	// header + footer
	return max(m.height-2, 1)
}

// Messages

type tickMsg time.Time

type refreshRejectedMsg struct {
	err error
}

type reportsMsg struct {
	stationID string
	reports   []station.Report
	err       error
}

type logsMsg struct {
	entries []logtail.Entry
	err     error
}

// DataChangedMsg reports station files rewritten on disk, identified by
// their storage keys.
type DataChangedMsg struct {
	Keys []string
}

// Has reports whether key is among the changed keys.
func (d DataChangedMsg) Has(key string) bool {
	for _, k := range d.Keys {
		if k == key {
			return true
		}
	}
	return false
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) loadReportsCmd(st station.Station) tea.Cmd {
	loader := m.reports
	return func() tea.Msg {
		if loader == nil {
			return reportsMsg{stationID: st.ID}
		}
		reports, err := loader.Load(st)
		return reportsMsg{stationID: st.ID, reports: reports, err: err}
	}
}

func (m Model) loadLogsCmd() tea.Cmd {
	path := m.logPath
	return func() tea.Msg {
		if path == "" {
			return logsMsg{}
		}
		entries, err := logtail.Read(path, logTailLines)
		return logsMsg{entries: entries, err: err}
	}
}

// NewProgram wraps a new Model in a Bubble Tea program using the alternate
// screen.
func NewProgram(opts Options) *tea.Program {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	return tea.NewProgram(New(opts), tea.WithAltScreen(), tea.WithContext(ctx))
}
