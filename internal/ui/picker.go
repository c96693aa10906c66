package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/meteodash/internal/station"
)

// stationItem adapts a station to list.DefaultItem.
type stationItem struct {
	st station.Station
}

func (i stationItem) Title() string       { return i.st.Label() }
func (i stationItem) Description() string { return fmt.Sprintf("%s  %.4f, %.4f", i.st.ID, i.st.Latitude, i.st.Longitude) }
func (i stationItem) FilterValue() string { return i.st.Label() + " " + i.st.ID }

func newPicker(stations []station.Station) list.Model {
	items := make([]list.Item, len(stations))
	for i, st := range stations {
		items[i] = stationItem{st: st}
	}
	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Stations"
	l.SetShowHelp(true)
	l.SetFilteringEnabled(true)
	l.DisableQuitKeybindings()
	return l
}

// openPicker shows the station list with the current station selected. A
// "/" press goes straight into filtering.
func (m Model) openPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.pickerOpen = true
	m.picker.ResetFilter()
	if idx := m.nav.Index(); idx >= 0 {
		m.picker.Select(idx)
	}
	if msg.String() == "/" {
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)
		return m, cmd
	}
	return m, nil
}

// handlePickerKey routes keys while the picker is open.
func (m Model) handlePickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.picker.FilterState() != list.Filtering {
		switch {
		case msg.String() == "ctrl+c":
			m.savePrefs()
			return m, tea.Quit
		case key.Matches(msg, m.keys.Escape) && m.picker.FilterState() == list.Unfiltered,
			msg.String() == "q":
			m.pickerOpen = false
			return m, nil
		case key.Matches(msg, m.keys.Confirm):
			item, ok := m.picker.SelectedItem().(stationItem)
			m.pickerOpen = false
			if !ok {
				return m, nil
			}
			if err := m.nav.SetCurrent(item.st); err != nil {
				m.flash = err.Error()
				return m, nil
			}
			return m, m.selectStation(item.st)
		}
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	return m, cmd
}
