package loader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/flickread/flick/internal/source"
)

// recordingSink captures the callback sequence for assertions.
type recordingSink struct {
	mu     sync.Mutex
	events []string
	err    error
	done   chan struct{}
}

func newRecordingSink() *recordingSink {
	return &recordingSink{done: make(chan struct{})}
}

func (s *recordingSink) record(ev string) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	s.mu.Unlock()
}

func (s *recordingSink) OnStarted()         { s.record("started") }
func (s *recordingSink) OnProgress(float64) { s.record("progress") }
func (s *recordingSink) OnSucceeded()       { s.record("succeeded"); close(s.done) }

func (s *recordingSink) OnFailed(err error) {
	s.err = err
	s.record("failed")
	close(s.done)
}

func (s *recordingSink) snapshot() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.events...)
}

func tempParser(t *testing.T, text string) *source.Parser {
	t.Helper()
	path := filepath.Join(t.TempDir(), "read.txt")
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	return source.NewParser(source.Descriptor{Kind: source.LocalFile, Locator: path})
}

func TestSubmitSuccess(t *testing.T) {
	p := New(1)
	defer p.Close()

	parser := tempParser(t, "hello background world")
	sink := newRecordingSink()
	p.Submit(context.Background(), parser, sink)
	<-sink.done

	events := sink.snapshot()
	if events[0] != "started" {
		t.Fatalf("first event = %q, want started", events[0])
	}
	if events[len(events)-1] != "succeeded" {
		t.Fatalf("last event = %q, want succeeded", events[len(events)-1])
	}
	for _, ev := range events[1 : len(events)-1] {
		if ev != "progress" {
			t.Fatalf("unexpected event %q between started and terminal: %v", ev, events)
		}
	}
	if !parser.Ready() {
		t.Error("parser not ready after OnSucceeded")
	}
}

func TestSubmitFailure(t *testing.T) {
	p := New(1)
	defer p.Close()

	parser := source.NewParser(source.Descriptor{Kind: source.LocalFile, Locator: "/nonexistent/read.txt"})
	sink := newRecordingSink()
	p.Submit(context.Background(), parser, sink)
	<-sink.done

	events := sink.snapshot()
	if events[len(events)-1] != "failed" {
		t.Fatalf("last event = %q, want failed", events[len(events)-1])
	}
	if !errors.Is(sink.err, source.ErrSourceUnavailable) {
		t.Errorf("failure reason = %v, want ErrSourceUnavailable", sink.err)
	}
	terminal := 0
	for _, ev := range events {
		if ev == "failed" || ev == "succeeded" {
			terminal++
		}
	}
	if terminal != 1 {
		t.Errorf("terminal callbacks = %d, want exactly 1", terminal)
	}
}

func TestDetachSuppressesCallbacks(t *testing.T) {
	p := New(1)

	// Park the single worker so we can detach before the job runs.
	blocker := make(chan struct{})
	p.Submit(context.Background(), tempParser(t, "blocker"), waitSink{blocker})

	parser := tempParser(t, "never observed")
	sink := newRecordingSink()
	ticket := p.Submit(context.Background(), parser, sink)
	ticket.Detach()
	close(blocker)

	// Close waits for the detached job to run to completion.
	p.Close()

	if events := sink.snapshot(); len(events) != 0 {
		t.Errorf("callbacks after Detach: %v", events)
	}
	if !parser.Ready() {
		t.Error("detached load should still complete in the background")
	}
}

// waitSink blocks the worker inside OnStarted until released.
type waitSink struct{ release chan struct{} }

func (s waitSink) OnStarted()         { <-s.release }
func (s waitSink) OnProgress(float64) {}
func (s waitSink) OnSucceeded()       {}
func (s waitSink) OnFailed(error)     {}
