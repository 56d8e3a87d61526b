// Package tui is the terminal display surface for the read playback engine.
// It renders the current word with its recognition point highlighted, shows
// load progress, and routes navigation keys into the scheduler.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/flickread/flick/internal/assets"
	"github.com/flickread/flick/internal/config"
	"github.com/flickread/flick/internal/loader"
	"github.com/flickread/flick/internal/nav"
	"github.com/flickread/flick/internal/playback"
	"github.com/flickread/flick/internal/source"
)

type phase int

const (
	phaseLoading phase = iota
	phaseFailed
	phaseReading
)

// Messages handed back from the background domains. All shared-state
// mutation happens inside Update; workers only post these.
type (
	loadStartedMsg   struct{}
	loadProgressMsg  float64
	loadSucceededMsg struct{}
	loadFailedMsg    struct{ err error }
	advancedMsg      int
	restedMsg        struct{}
	coverBoundMsg    struct{}
)

// programSink forwards load pipeline callbacks into the model's channels.
// Progress sends never block: if the UI is behind, events are dropped
// rather than wedging a worker. The terminal outcome goes to a dedicated
// channel with room for the one message a ticket can produce, so it can
// never be lost behind a flood of progress events.
type programSink struct {
	events   chan<- tea.Msg
	terminal chan<- tea.Msg
}

func (s programSink) post(msg tea.Msg) {
	select {
	case s.events <- msg:
	default:
	}
}

func (s programSink) OnStarted()           { s.post(loadStartedMsg{}) }
func (s programSink) OnProgress(r float64) { s.post(loadProgressMsg(r)) }
func (s programSink) OnSucceeded()         { s.terminal <- loadSucceededMsg{} }
func (s programSink) OnFailed(err error)   { s.terminal <- loadFailedMsg{err} }

type keyMap struct {
	PlayPause key.Binding
	Rest      key.Binding
	Rewind    key.Binding
	Prev      key.Binding
	Next      key.Binding
	Retry     key.Binding
	Quit      key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		PlayPause: key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "play/pause")),
		Rest:      key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "rest after this word")),
		Rewind:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "rewind")),
		Prev:      key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "prev section")),
		Next:      key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "next section")),
		Retry:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "retry")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// Model drives one read session from load to final rest.
type Model struct {
	desc     source.Descriptor
	settings config.Settings
	pipe     *loader.Pipeline
	cache    *assets.Cache
	slot     *assets.Slot

	parser  *source.Parser
	session *playback.Session
	ticket  *loader.Ticket

	events   chan tea.Msg
	terminal chan tea.Msg
	keys     keyMap
	styles   styles
	bar      progress.Model

	phase     phase
	loadRatio float64
	loadErr   error
	width     int
	height    int
	quitting  bool
}

// New creates a model for the descriptor and kicks off its load. cache may
// be nil when cover art is not wanted.
func New(desc source.Descriptor, settings config.Settings, pipe *loader.Pipeline, cache *assets.Cache) *Model {
	m := &Model{
		desc:     desc,
		settings: settings,
		pipe:     pipe,
		cache:    cache,
		slot:     &assets.Slot{},
		events:   make(chan tea.Msg, 256),
		terminal: make(chan tea.Msg, 1),
		keys:     defaultKeyMap(),
		styles:   newStyles(settings),
		bar:      progress.New(progress.WithDefaultGradient()),
		width:    80,
		height:   24,
	}
	m.startLoad()
	return m
}

// startLoad submits a fresh parser; a parser loads at most once, so each
// retry gets its own instance.
func (m *Model) startLoad() {
	m.phase = phaseLoading
	m.loadRatio = 0
	m.loadErr = nil
	m.session = nil
	m.parser = source.NewParser(m.desc)
	m.ticket = m.pipe.Submit(context.Background(), m.parser, programSink{
		events:   m.events,
		terminal: m.terminal,
	})

	if m.cache != nil {
		// Recycling the slot invalidates any cover fetch still in flight
		// from a previous attempt.
		m.slot.Recycle()
		events := m.events
		m.cache.Request(context.Background(), m.desc.Locator, m.slot, func(err error) {
			if err == nil {
				select {
				case events <- coverBoundMsg{}:
				default:
				}
			}
		})
	}
}

func (m *Model) post(msg tea.Msg) {
	select {
	case m.events <- msg:
	default:
	}
}

// wait returns a command that delivers the next background event, favoring
// neither channel; an unread terminal outcome stays queued until taken.
func (m *Model) wait() tea.Cmd {
	events, terminal := m.events, m.terminal
	return func() tea.Msg {
		select {
		case msg := <-terminal:
			return msg
		case msg := <-events:
			return msg
		}
	}
}

func (m *Model) Init() tea.Cmd {
	return m.wait()
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.bar.Width = msg.Width - 8
		if m.bar.Width > 48 {
			m.bar.Width = 48
		}
		return m, nil

	case loadStartedMsg:
		return m, m.wait()

	case loadProgressMsg:
		m.loadRatio = float64(msg)
		return m, m.wait()

	case loadSucceededMsg:
		m.beginReading()
		return m, m.wait()

	case loadFailedMsg:
		m.phase = phaseFailed
		m.loadErr = msg.err
		return m, m.wait()

	case advancedMsg, restedMsg, coverBoundMsg:
		// Position or state changed; the view recomputes everything.
		return m, m.wait()
	}
	return m, nil
}

// beginReading arms the scheduler over the freshly loaded parser, resuming
// from the descriptor's stored completion when the read was left midway.
func (m *Model) beginReading() {
	m.phase = phaseReading
	if c := m.desc.Completion; c > 0 && c < 1 {
		_ = m.parser.SeekRatio(c)
	}
	m.session = playback.NewSession(m.parser, playback.Config{
		FlipInterval: m.settings.FlipInterval,
		BurstLength:  m.settings.BurstLength,
	})
	m.session.OnAdvance = func(pos int) { m.post(advancedMsg(pos)) }
	m.session.OnRest = func() { m.post(restedMsg{}) }
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		m.quitting = true
		m.teardown()
		return m, tea.Quit
	}

	switch m.phase {
	case phaseFailed:
		if key.Matches(msg, m.keys.Retry) {
			m.startLoad()
		}
	case phaseReading:
		m.handleReadingKey(msg)
	}
	return m, nil
}

// handleReadingKey routes navigation keys. The session owns the cursor, so
// all reads and jumps go through it rather than the parser.
func (m *Model) handleReadingKey(msg tea.KeyMsg) {
	snap := m.session.Snapshot()
	controls := nav.Compute(nav.PositionOfSnapshot(snap), m.session.State())

	switch {
	case key.Matches(msg, m.keys.PlayPause):
		if controls.Pause {
			m.session.Stop()
		} else if controls.Play {
			_ = m.session.Start()
		}
	case key.Matches(msg, m.keys.Rest):
		if controls.Pause {
			m.session.RequestRest()
		}
	case key.Matches(msg, m.keys.Rewind):
		if controls.Rewind {
			m.session.Stop()
			_ = m.session.RewindToStart()
		}
	case key.Matches(msg, m.keys.Prev):
		if controls.PrevBoundary {
			m.session.Stop()
			_ = m.session.JumpToPrevBoundary()
		}
	case key.Matches(msg, m.keys.Next):
		if controls.NextBoundary {
			m.session.Stop()
			_ = m.session.JumpToNextBoundary()
		}
	}
}

// teardown stops playback and detaches from any in-flight load so no
// callback fires against a dismissed display.
func (m *Model) teardown() {
	if m.session != nil {
		m.session.Stop()
	}
	if m.ticket != nil {
		m.ticket.Detach()
	}
}

// Result reports the final completion ratio for persisting into the
// registry; ok is false when the read never finished loading.
func (m *Model) Result() (ratio float64, ok bool) {
	if m.session == nil {
		return 0, false
	}
	return m.session.Snapshot().Completion, true
}

// Finished reports whether the read was completed to the end.
func (m *Model) Finished() bool {
	return m.session != nil && m.session.Snapshot().AtEnd
}

func (m *Model) View() string {
	if m.quitting {
		if m.Finished() {
			return m.styles.complete.Render("\n  Reading complete!\n")
		}
		return ""
	}

	switch m.phase {
	case phaseLoading:
		return m.viewLoading()
	case phaseFailed:
		return m.viewFailed()
	default:
		return m.viewReading()
	}
}

func (m *Model) viewLoading() string {
	var sb strings.Builder
	sb.WriteString("\n  ")
	sb.WriteString(m.styles.status.Render(fmt.Sprintf("Loading %s (%s)", m.desc.Name, m.desc.Kind)))
	sb.WriteString("\n\n  ")
	sb.WriteString(m.bar.ViewAs(m.loadRatio))
	sb.WriteString("\n\n")
	if cover := m.slot.Image(); cover != nil {
		for _, line := range strings.Split(strings.TrimRight(renderCover(cover), "\n"), "\n") {
			sb.WriteString("  ")
			sb.WriteString(line)
			sb.WriteString("\n")
		}
	}
	sb.WriteString("\n")
	sb.WriteString(m.styles.controls.Render("  Q: quit"))
	return sb.String()
}

func (m *Model) viewFailed() string {
	var sb strings.Builder
	sb.WriteString("\n  ")
	sb.WriteString(m.styles.errText.Render(fmt.Sprintf("Could not open %s: %v", m.desc.Name, m.loadErr)))
	sb.WriteString("\n\n")
	sb.WriteString(m.styles.controls.Render("  R: retry  Q: quit"))
	return sb.String()
}

func (m *Model) viewReading() string {
	snap := m.session.Snapshot()
	if snap.Length == 0 {
		return "No text to read."
	}

	state := m.session.State()
	controls := nav.Compute(nav.PositionOfSnapshot(snap), state)

	pause := ""
	if state == playback.Stopped {
		pause = m.styles.paused.Render(" [PAUSED]")
	}
	section := ""
	if snap.SectionTitle != "" {
		section = " | " + snap.SectionTitle
	}
	status := m.styles.status.Render(fmt.Sprintf("Word %d/%d%s%s",
		snap.Position, snap.Length, section, pause))

	word := snap.Token
	line := ""
	if word == "" {
		line = centerText(m.styles.complete.Render("· end ·"), m.width)
	} else {
		line = anchorORPText(m.formatWord(word), word, m.width)
	}

	// Reserve a status line at the top and a controls line at the bottom.
	avail := m.height - 2
	if avail < 1 {
		avail = 1
	}
	vPad := avail / 2

	var sb strings.Builder
	sb.WriteString(status)
	sb.WriteString("\n")
	for i := 0; i < vPad; i++ {
		sb.WriteString("\n")
	}
	sb.WriteString(line)
	for i := 0; i < avail-vPad; i++ {
		sb.WriteString("\n")
	}
	sb.WriteString(m.styles.controls.Render(controlsHint(controls, m.keys)))
	return sb.String()
}

// controlsHint lists only the actions the navigation table currently allows.
func controlsHint(c nav.Controls, keys keyMap) string {
	var hints []string
	if c.Play {
		hints = append(hints, "SPACE: play")
	}
	if c.Pause {
		hints = append(hints, "SPACE: pause", "B: rest")
	}
	if c.PrevBoundary {
		hints = append(hints, "←: prev section")
	}
	if c.NextBoundary {
		hints = append(hints, "→: next section")
	}
	if c.Rewind {
		hints = append(hints, "R: rewind")
	}
	hints = append(hints, "Q: quit")
	return strings.Join(hints, "  ")
}

func (m *Model) formatWord(word string) string {
	before, focus, after := splitAtORP(word)
	return m.styles.word.Render(before) +
		m.styles.focus.Render(focus) +
		m.styles.word.Render(after)
}

// anchorORPText pads the rendered word so its recognition point sits at the
// horizontal center of the screen.
func anchorORPText(rendered, word string, width int) string {
	anchor := width / 2
	pad := anchor - orpPosition(word)
	if pad < 0 {
		pad = 0
	}
	return strings.Repeat(" ", pad) + rendered
}

func centerText(rendered string, width int) string {
	pad := width/2 - 4
	if pad < 0 {
		pad = 0
	}
	return strings.Repeat(" ", pad) + rendered
}
