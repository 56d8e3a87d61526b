// Package playback advances a ready parser at a fixed cadence, batching
// words into bursts and resting at section boundaries.
package playback

import (
	"errors"
	"sync"
	"time"

	"github.com/flickread/flick/internal/source"
)

// State is the scheduler's run state.
type State int

const (
	Stopped State = iota
	Running
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "stopped"
}

var (
	// ErrBadInterval reports a non-positive flip interval.
	ErrBadInterval = errors.New("playback: flip interval must be positive")

	// ErrBadBurst reports a non-positive burst length.
	ErrBadBurst = errors.New("playback: burst length must be positive")
)

// Config holds the pacing parameters for one session, read from the
// preferences store at session start and immutable afterwards.
type Config struct {
	// FlipInterval is the delay between advances.
	FlipInterval time.Duration

	// BurstLength is the number of advances performed before a forced
	// rest, independent of section boundaries.
	BurstLength int
}

// IntervalForWPM converts a words-per-minute pace to a flip interval.
func IntervalForWPM(wpm int) time.Duration {
	if wpm <= 0 {
		return 0
	}
	return time.Duration(60.0/float64(wpm)*1000) * time.Millisecond
}

// Session drives one parser through its token stream on a timer.
//
// The rest protocol is two-phase: a tick that lands on a rest point (a
// section boundary, the stream end, or an exhausted burst) arms
// stopRequested and keeps the timer going; the next tick observes the armed
// flag and comes to rest without advancing, so the rest-point word is shown
// for a full interval. Start clears the flag and resets the burst counter,
// which is why a session restarted exactly on a boundary still makes a full
// burst of progress before resting again.
//
// Once a session is created it owns the parser's cursor: ticks advance it
// under mu, and hosts on other goroutines read it through Snapshot or
// reposition it through the session's jump methods, under the same mu. The
// lock is never held across listener callbacks, so a notification from a
// tick already in flight can arrive just after Stop returns.
type Session struct {
	// OnAdvance is called after each advance with the new position.
	// Optional; runs on the timer goroutine.
	OnAdvance func(position int)

	// OnRest is called when the session transitions to Stopped at a rest
	// point. Optional; runs on the timer goroutine. A hard Stop does not
	// notify.
	OnRest func()

	parser *source.Parser
	cfg    Config

	mu            sync.Mutex
	state         State
	stopRequested bool
	burstCounter  int
	timer         *time.Timer
}

// NewSession creates a stopped session over the parser.
func NewSession(parser *source.Parser, cfg Config) *Session {
	return &Session{parser: parser, cfg: cfg}
}

// State returns the current run state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Start begins (or resumes) playback. The pending rest flag is cleared and
// the burst counter reset, so the session always performs a full burst
// before its next rest. Starting a running session is a no-op.
func (s *Session) Start() error {
	if s.cfg.FlipInterval <= 0 {
		return ErrBadInterval
	}
	if s.cfg.BurstLength <= 0 {
		return ErrBadBurst
	}
	if s.parser == nil || !s.parser.Ready() {
		return source.ErrNotReady
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Running {
		return nil
	}
	s.stopRequested = false
	s.burstCounter = 0
	s.state = Running
	s.timer = time.AfterFunc(s.cfg.FlipInterval, s.tick)
	return nil
}

// Stop cancels the pending tick outright: a hard pause with no boundary
// semantics and no OnRest notification. A tick already in flight completes.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
	}
	s.state = Stopped
}

// RequestRest asks the session to rest after the word currently showing:
// the next tick stops without advancing. Safe to call from any goroutine;
// a no-op when already stopped.
func (s *Session) RequestRest() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Running {
		s.stopRequested = true
	}
}

// Snapshot is a consistent view of the cursor taken under the session lock,
// for hosts rendering from another goroutine.
type Snapshot struct {
	Position     int
	Length       int
	Token        string
	SectionTitle string
	AtStart      bool
	AtEnd        bool
	AtBoundary   bool
	Completion   float64
}

// Snapshot captures the cursor state without racing a concurrent tick.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Position:     s.parser.Position(),
		Length:       s.parser.Length(),
		Token:        s.parser.CurrentToken(),
		SectionTitle: s.parser.SectionTitle(),
		AtStart:      s.parser.AtStart(),
		AtEnd:        s.parser.AtEnd(),
		AtBoundary:   s.parser.AtBoundary(),
		Completion:   s.parser.Completion(),
	}
}

// RewindToStart repositions the cursor at zero. Callers stop the session
// first; the lock only covers a tick already in flight.
func (s *Session) RewindToStart() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.parser.RewindToStart()
}

// JumpToPrevBoundary moves the cursor to the previous section boundary.
func (s *Session) JumpToPrevBoundary() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.parser.JumpToPrevBoundary()
}

// JumpToNextBoundary moves the cursor to the next section boundary.
func (s *Session) JumpToNextBoundary() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.parser.JumpToNextBoundary()
}

// tick runs once per FlipInterval on the timer goroutine while Running.
func (s *Session) tick() {
	s.mu.Lock()
	if s.state != Running {
		// A hard stop raced this tick; stand down.
		s.mu.Unlock()
		return
	}
	if s.stopRequested {
		s.stopRequested = false
		s.state = Stopped
		s.mu.Unlock()
		if s.OnRest != nil {
			s.OnRest()
		}
		return
	}
	if !s.parser.Ready() {
		// Teardown raced a pending tick; go quiet rather than error.
		s.state = Stopped
		s.mu.Unlock()
		return
	}

	_ = s.parser.Advance()
	position := s.parser.Position()
	s.burstCounter++
	if s.parser.AtBoundary() || s.burstCounter >= s.cfg.BurstLength {
		s.stopRequested = true
	}
	s.timer = time.AfterFunc(s.cfg.FlipInterval, s.tick)
	s.mu.Unlock()

	if s.OnAdvance != nil {
		s.OnAdvance(position)
	}
}
