package source

import (
	"context"
	"fmt"
	"sort"
)

// Parser is a mutable cursor over one source's decoded token stream.
// Position ranges over [0, Length]; Length itself is the "end" position,
// where CurrentToken returns the empty sentinel.
//
// A parser is bound to one descriptor, loaded at most once, and advanced or
// rewound many times during a session. It is not safe for concurrent use;
// callers confine it to a single goroutine at a time (the playback scheduler
// owns it while running).
type Parser struct {
	desc       Descriptor
	tokens     []string
	boundaries []int
	sections   []Section
	pos        int
	ready      bool
	loaded     bool
}

// NewParser creates an unloaded parser bound to the descriptor.
func NewParser(desc Descriptor) *Parser {
	return &Parser{desc: desc}
}

// Descriptor returns the descriptor this parser was created for.
func (p *Parser) Descriptor() Descriptor { return p.desc }

// Load fetches and decodes the source, populating the token stream and
// section boundaries. It may be called at most once per parser; progress is
// reported monotonically in [0,1] with a final 1.0 on success. On failure
// the parser stays not-ready and every other operation returns ErrNotReady.
func (p *Parser) Load(ctx context.Context, progress ProgressFunc) error {
	if p.loaded {
		return ErrAlreadyLoaded
	}
	p.loaded = true

	f, ok := fetcherFor(p.desc.Kind)
	if !ok {
		return fmt.Errorf("%w: no fetcher for kind %s", ErrDecodeFailed, p.desc.Kind)
	}

	// Clamp fetcher progress to a monotonically non-decreasing sequence,
	// reserving the final 1.0 for successful completion.
	last := 0.0
	emit := func(v float64) {
		if v < last {
			v = last
		}
		if v > 1 {
			v = 1
		}
		last = v
		if progress != nil {
			progress(v)
		}
	}

	content, err := f.Fetch(ctx, p.desc.Locator, emit)
	if err != nil {
		return err
	}

	p.tokens = content.Tokens
	p.boundaries = normalizeBoundaries(content.Boundaries, len(content.Tokens))
	p.sections = content.Sections
	p.pos = 0
	p.ready = true
	if progress != nil && last < 1 {
		progress(1)
	}
	return nil
}

// normalizeBoundaries sorts, dedupes, and keeps only positions strictly
// inside (0, length); the stream end is a rest point already.
func normalizeBoundaries(in []int, length int) []int {
	out := make([]int, 0, len(in))
	for _, b := range in {
		if b > 0 && b < length {
			out = append(out, b)
		}
	}
	sort.Ints(out)
	n := 0
	for i, b := range out {
		if i == 0 || b != out[n-1] {
			out[n] = b
			n++
		}
	}
	return out[:n]
}

// Ready reports whether a load has completed successfully.
func (p *Parser) Ready() bool { return p.ready }

// Length returns the total token count; zero until ready.
func (p *Parser) Length() int { return len(p.tokens) }

// Position returns the current token index.
func (p *Parser) Position() int { return p.pos }

// Boundaries returns the section boundary positions, ascending.
func (p *Parser) Boundaries() []int { return p.boundaries }

// Sections returns the named sections of the stream, if the source had any.
func (p *Parser) Sections() []Section { return p.sections }

// Advance moves the position forward by one, saturating at the end.
// Advancing past the end is a no-op, not an error.
func (p *Parser) Advance() error {
	if !p.ready {
		return ErrNotReady
	}
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return nil
}

// RewindToStart resets the position to zero.
func (p *Parser) RewindToStart() error {
	if !p.ready {
		return ErrNotReady
	}
	p.pos = 0
	return nil
}

// JumpToPrevBoundary moves to the nearest boundary strictly before the
// current position, or to the start when none exists.
func (p *Parser) JumpToPrevBoundary() error {
	if !p.ready {
		return ErrNotReady
	}
	target := 0
	for _, b := range p.boundaries {
		if b >= p.pos {
			break
		}
		target = b
	}
	p.pos = target
	return nil
}

// JumpToNextBoundary moves to the nearest boundary strictly after the
// current position, or to the end when none exists.
func (p *Parser) JumpToNextBoundary() error {
	if !p.ready {
		return ErrNotReady
	}
	for _, b := range p.boundaries {
		if b > p.pos {
			p.pos = b
			return nil
		}
	}
	p.pos = len(p.tokens)
	return nil
}

// SeekRatio positions the cursor at ratio*Length, clamped to [0, Length].
// Used to resume a read from a descriptor's stored completion.
func (p *Parser) SeekRatio(ratio float64) error {
	if !p.ready {
		return ErrNotReady
	}
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	p.pos = int(ratio * float64(len(p.tokens)))
	return nil
}

// CurrentToken returns the token at the current position, or the empty
// sentinel at the end of the stream (or before the parser is ready).
func (p *Parser) CurrentToken() string {
	if p.ready && p.pos < len(p.tokens) {
		return p.tokens[p.pos]
	}
	return ""
}

// SectionTitle returns the title of the section containing the current
// position, or "" when the source has no named sections.
func (p *Parser) SectionTitle() string {
	title := ""
	for _, s := range p.sections {
		if s.Start > p.pos {
			break
		}
		title = s.Title
	}
	return title
}

// AtStart reports whether the position is zero.
func (p *Parser) AtStart() bool { return p.ready && p.pos == 0 }

// AtEnd reports whether the position has reached the stream length.
func (p *Parser) AtEnd() bool { return p.ready && p.pos == len(p.tokens) }

// AtBoundary reports whether the current position is a rest point: a
// section boundary or the end of the stream.
func (p *Parser) AtBoundary() bool {
	if !p.ready {
		return false
	}
	if p.pos == len(p.tokens) {
		return true
	}
	i := sort.SearchInts(p.boundaries, p.pos)
	return i < len(p.boundaries) && p.boundaries[i] == p.pos
}

// Completion returns position/length in [0,1], or 0 for an empty stream.
func (p *Parser) Completion() float64 {
	if len(p.tokens) == 0 {
		return 0
	}
	return float64(p.pos) / float64(len(p.tokens))
}
