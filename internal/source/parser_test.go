package source

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// loadFromText writes text to a temp file and loads a parser over it.
func loadFromText(t *testing.T, text string) *Parser {
	t.Helper()
	path := filepath.Join(t.TempDir(), "read.txt")
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	p := NewParser(Descriptor{Name: "test", Kind: LocalFile, Locator: path})
	if err := p.Load(context.Background(), nil); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return p
}

func TestParserAdvanceSaturates(t *testing.T) {
	p := loadFromText(t, "one two three four five")

	if got := p.Length(); got != 5 {
		t.Fatalf("Length = %d, want 5", got)
	}
	for i := 0; i < p.Length(); i++ {
		if err := p.Advance(); err != nil {
			t.Fatalf("Advance %d failed: %v", i, err)
		}
	}
	if p.Position() != p.Length() {
		t.Errorf("Position = %d, want %d", p.Position(), p.Length())
	}
	if !p.AtEnd() {
		t.Error("AtEnd = false after advancing Length times")
	}
	if p.CurrentToken() != "" {
		t.Errorf("CurrentToken at end = %q, want sentinel", p.CurrentToken())
	}

	// One more advance is a no-op, not an error.
	if err := p.Advance(); err != nil {
		t.Errorf("Advance past end returned error: %v", err)
	}
	if p.Position() != p.Length() {
		t.Errorf("Position moved past end: %d", p.Position())
	}
}

func TestParserCompletionMonotonic(t *testing.T) {
	p := loadFromText(t, "a b c d e f g h")

	prev := p.Completion()
	if prev != 0 {
		t.Fatalf("initial Completion = %v, want 0", prev)
	}
	for i := 0; i < p.Length()+3; i++ {
		p.Advance()
		c := p.Completion()
		if c < prev {
			t.Fatalf("Completion decreased: %v -> %v", prev, c)
		}
		if c > 1.0 {
			t.Fatalf("Completion exceeded 1.0: %v", c)
		}
		prev = c
	}
	if prev != 1.0 {
		t.Errorf("final Completion = %v, want 1.0", prev)
	}
}

func TestParserBoundaryJumps(t *testing.T) {
	// Paragraph breaks after tokens 3 and 6.
	p := loadFromText(t, "a b c\n\nd e f\n\ng h i")
	wantBoundaries := []int{3, 6}
	got := p.Boundaries()
	if len(got) != len(wantBoundaries) {
		t.Fatalf("Boundaries = %v, want %v", got, wantBoundaries)
	}
	for i := range got {
		if got[i] != wantBoundaries[i] {
			t.Fatalf("Boundaries = %v, want %v", got, wantBoundaries)
		}
	}

	tests := []struct {
		name     string
		from     int
		next     bool
		wantPos  int
	}{
		{"next from start", 0, true, 3},
		{"next from mid paragraph", 4, true, 6},
		{"next from boundary", 3, true, 6},
		{"next clamps to end", 7, true, 9},
		{"prev from end", 9, false, 6},
		{"prev from boundary", 6, false, 3},
		{"prev from mid paragraph", 4, false, 3},
		{"prev clamps to start", 2, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p.RewindToStart()
			for i := 0; i < tt.from; i++ {
				p.Advance()
			}
			var err error
			if tt.next {
				err = p.JumpToNextBoundary()
			} else {
				err = p.JumpToPrevBoundary()
			}
			if err != nil {
				t.Fatalf("jump failed: %v", err)
			}
			if p.Position() != tt.wantPos {
				t.Errorf("Position = %d, want %d", p.Position(), tt.wantPos)
			}
		})
	}
}

func TestParserAtBoundary(t *testing.T) {
	p := loadFromText(t, "a b c\n\nd e f")

	if p.AtBoundary() {
		t.Error("AtBoundary at start without a boundary there")
	}
	for i := 0; i < 3; i++ {
		p.Advance()
	}
	if !p.AtBoundary() {
		t.Error("AtBoundary = false at a paragraph break")
	}
	p.JumpToNextBoundary()
	if !p.AtEnd() || !p.AtBoundary() {
		t.Error("stream end should be a rest point")
	}
}

func TestParserNotReady(t *testing.T) {
	p := NewParser(Descriptor{Kind: LocalFile, Locator: "/nonexistent/read.txt"})

	if err := p.Advance(); !errors.Is(err, ErrNotReady) {
		t.Errorf("Advance before load = %v, want ErrNotReady", err)
	}

	err := p.Load(context.Background(), nil)
	if !errors.Is(err, ErrSourceUnavailable) {
		t.Fatalf("Load = %v, want ErrSourceUnavailable", err)
	}
	if p.Ready() {
		t.Error("Ready = true after failed load")
	}
	if err := p.JumpToNextBoundary(); !errors.Is(err, ErrNotReady) {
		t.Errorf("JumpToNextBoundary after failed load = %v, want ErrNotReady", err)
	}
	if p.AtStart() || p.AtEnd() || p.AtBoundary() {
		t.Error("position predicates should be false when not ready")
	}
}

func TestParserLoadOnce(t *testing.T) {
	p := loadFromText(t, "once only")
	if err := p.Load(context.Background(), nil); !errors.Is(err, ErrAlreadyLoaded) {
		t.Errorf("second Load = %v, want ErrAlreadyLoaded", err)
	}
}

func TestParserProgress(t *testing.T) {
	path := filepath.Join(t.TempDir(), "read.txt")
	os.WriteFile(path, []byte("some words here"), 0644)

	var values []float64
	p := NewParser(Descriptor{Kind: LocalFile, Locator: path})
	if err := p.Load(context.Background(), func(v float64) { values = append(values, v) }); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(values) == 0 {
		t.Fatal("no progress reported")
	}
	prev := 0.0
	for _, v := range values {
		if v < prev || v > 1.0 {
			t.Fatalf("progress not monotonic in [0,1]: %v", values)
		}
		prev = v
	}
	if values[len(values)-1] != 1.0 {
		t.Errorf("final progress = %v, want 1.0", values[len(values)-1])
	}
}

func TestParserSeekRatio(t *testing.T) {
	p := loadFromText(t, "a b c d e f g h i j")

	tests := []struct {
		ratio float64
		want  int
	}{
		{0, 0},
		{0.5, 5},
		{1, 10},
		{-1, 0},
		{2, 10},
	}
	for _, tt := range tests {
		if err := p.SeekRatio(tt.ratio); err != nil {
			t.Fatalf("SeekRatio(%v) failed: %v", tt.ratio, err)
		}
		if p.Position() != tt.want {
			t.Errorf("SeekRatio(%v): Position = %d, want %d", tt.ratio, p.Position(), tt.want)
		}
	}
}

func TestNormalizeBoundaries(t *testing.T) {
	tests := []struct {
		name   string
		in     []int
		length int
		want   []int
	}{
		{"unsorted with dupes", []int{6, 3, 6, 3}, 10, []int{3, 6}},
		{"drops zero and length", []int{0, 4, 10}, 10, []int{4}},
		{"drops out of range", []int{-2, 15}, 10, nil},
		{"empty", nil, 10, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeBoundaries(tt.in, tt.length)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("got %v, want %v", got, tt.want)
				}
			}
		})
	}
}
