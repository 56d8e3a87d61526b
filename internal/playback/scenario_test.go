package playback_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/flickread/flick/internal/loader"
	"github.com/flickread/flick/internal/nav"
	"github.com/flickread/flick/internal/playback"
	"github.com/flickread/flick/internal/source"
)

type loadDone struct {
	done chan error
}

func (s loadDone) OnStarted()         {}
func (s loadDone) OnProgress(float64) {}
func (s loadDone) OnSucceeded()       { s.done <- nil }
func (s loadDone) OnFailed(err error) { s.done <- err }

// TestLocalFileReadThrough exercises the full engine: load through the
// pipeline, play in bursts across a boundary, and check control
// availability at each rest.
func TestLocalFileReadThrough(t *testing.T) {
	// 12 tokens with a paragraph break before token 6.
	path := filepath.Join(t.TempDir(), "read.txt")
	text := "w1 w2 w3 w4 w5 w6\n\nw7 w8 w9 w10 w11 w12"
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	desc := source.Descriptor{Name: "scenario", Kind: source.LocalFile, Locator: path}
	parser := source.NewParser(desc)

	pipe := loader.New(2)
	defer pipe.Close()
	sink := loadDone{done: make(chan error, 1)}
	pipe.Submit(context.Background(), parser, sink)
	select {
	case err := <-sink.done:
		if err != nil {
			t.Fatalf("load failed: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for load")
	}

	if parser.Length() != 12 {
		t.Fatalf("Length = %d, want 12", parser.Length())
	}

	advances := make(chan int, 64)
	rests := make(chan struct{}, 4)
	session := playback.NewSession(parser, playback.Config{
		FlipInterval: 2 * time.Millisecond,
		BurstLength:  10,
	})
	session.OnAdvance = func(pos int) { advances <- pos }
	session.OnRest = func() { rests <- struct{}{} }

	if !nav.Compute(nav.PositionOf(parser), session.State()).Play {
		t.Fatal("play should be available at the start of a loaded read")
	}

	// First session: six ticks to the boundary, then a rest.
	if err := session.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	select {
	case <-rests:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for boundary rest")
	}
	if got := len(advances); got != 6 {
		t.Errorf("first session advances = %d, want 6", got)
	}
	if parser.Position() != 6 || !parser.AtBoundary() {
		t.Errorf("rested at %d (boundary=%v), want boundary at 6", parser.Position(), parser.AtBoundary())
	}
	for len(advances) > 0 {
		<-advances
	}

	// Second session: a fresh burst carries through to the end.
	if err := session.Start(); err != nil {
		t.Fatalf("restart failed: %v", err)
	}
	select {
	case <-rests:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for end rest")
	}
	if got := len(advances); got != 6 {
		t.Errorf("second session advances = %d, want 6", got)
	}
	if !parser.AtEnd() {
		t.Errorf("Position = %d, want end (12)", parser.Position())
	}

	controls := nav.Compute(nav.PositionOf(parser), session.State())
	if controls.Play {
		t.Error("play should be unavailable at the end")
	}
	if !controls.Rewind || !controls.PrevBoundary || controls.NextBoundary {
		t.Errorf("end controls = %+v", controls)
	}

	if got := parser.Completion(); got != 1.0 {
		t.Errorf("Completion = %v, want 1.0", got)
	}
}
