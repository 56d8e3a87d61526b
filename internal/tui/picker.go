package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/flickread/flick/internal/assets"
	"github.com/flickread/flick/internal/source"
)

type pickerCoverMsg struct{}

type readItem struct {
	desc source.Descriptor
}

func (i readItem) Title() string { return i.desc.Name }

func (i readItem) Description() string {
	return fmt.Sprintf("%s  %3.0f%%  %s", i.desc.Kind, i.desc.Completion*100, i.desc.Locator)
}

func (i readItem) FilterValue() string { return i.desc.Name }

// PickerModel lets the user choose one registered read. Each entry has an
// arena slot for its cover; covers resolve lazily, on first selection, and a
// late result is dropped by the slot's generation check rather than painted
// over another entry.
type PickerModel struct {
	list   list.Model
	arena  *assets.Arena
	cache  *assets.Cache
	events chan tea.Msg

	chosen   bool
	choice   source.Descriptor
	quitting bool
}

// NewPicker builds a picker over the registered reads, most recent first.
func NewPicker(reads []source.Descriptor, cache *assets.Cache) *PickerModel {
	items := make([]list.Item, len(reads))
	for i, d := range reads {
		items[i] = readItem{desc: d}
	}
	l := list.New(items, list.NewDefaultDelegate(), 40, 20)
	l.Title = "flick reads"
	l.SetShowHelp(true)

	m := &PickerModel{
		list:   l,
		arena:  assets.NewArena(len(reads)),
		cache:  cache,
		events: make(chan tea.Msg, 16),
	}
	m.requestCover(0)
	return m
}

// requestCover resolves the cover for entry i into its arena slot, once.
func (m *PickerModel) requestCover(i int) {
	if m.cache == nil || i < 0 || i >= m.arena.Len() {
		return
	}
	slot := m.arena.Slot(i)
	if slot.Image() != nil {
		return
	}
	item := m.list.Items()[i].(readItem)
	events := m.events
	m.cache.Request(context.Background(), item.desc.Locator, slot, func(err error) {
		if err == nil {
			select {
			case events <- pickerCoverMsg{}:
			default:
			}
		}
	})
}

func (m *PickerModel) wait() tea.Cmd {
	return func() tea.Msg { return <-m.events }
}

func (m *PickerModel) Init() tea.Cmd {
	return m.wait()
}

func (m *PickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		w := msg.Width - coverWidth - 4
		if w < 20 {
			w = msg.Width
		}
		m.list.SetSize(w, msg.Height-2)
		return m, nil

	case pickerCoverMsg:
		return m, m.wait()

	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "enter":
			if item, ok := m.list.SelectedItem().(readItem); ok {
				m.chosen = true
				m.choice = item.desc
			}
			m.quitting = true
			return m, tea.Quit
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	m.requestCover(m.list.Index())
	return m, cmd
}

func (m *PickerModel) View() string {
	if m.quitting {
		return ""
	}
	pane := ""
	if i := m.list.Index(); i >= 0 && i < m.arena.Len() {
		pane = renderCover(m.arena.Slot(i).Image())
	}
	if pane == "" {
		return m.list.View()
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, m.list.View(), "  ", strings.TrimRight(pane, "\n"))
}

// Choice returns the selected read, if any.
func (m *PickerModel) Choice() (source.Descriptor, bool) {
	return m.choice, m.chosen
}
