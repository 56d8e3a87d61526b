// Package nav derives navigation control availability from the stream
// position and the playback state. It keeps no state of its own: hosts
// recompute the full table on every position or state change.
package nav

import (
	"github.com/flickread/flick/internal/playback"
	"github.com/flickread/flick/internal/source"
)

// StreamPosition classifies where the parser's cursor sits in its stream.
type StreamPosition int

const (
	AtStart StreamPosition = iota
	Mid
	AtEnd
)

// PositionOf classifies a parser's position. A loaded empty stream counts
// as AtEnd (there is nothing left to play); an unloaded parser as AtStart.
func PositionOf(p *source.Parser) StreamPosition {
	switch {
	case p.Ready() && p.AtEnd():
		return AtEnd
	case !p.Ready() || p.AtStart():
		return AtStart
	default:
		return Mid
	}
}

// PositionOfSnapshot classifies a scheduler snapshot, for hosts that read
// the cursor through the session instead of touching the parser directly.
func PositionOfSnapshot(s playback.Snapshot) StreamPosition {
	switch {
	case s.AtEnd:
		return AtEnd
	case s.AtStart:
		return AtStart
	default:
		return Mid
	}
}

// Controls reports which navigation actions are currently permitted.
type Controls struct {
	Rewind       bool
	PrevBoundary bool
	NextBoundary bool
	Play         bool
	Pause        bool
}

// Compute returns control availability for a position/state pair.
func Compute(pos StreamPosition, state playback.State) Controls {
	stopped := state == playback.Stopped
	switch pos {
	case AtStart:
		return Controls{
			NextBoundary: true,
			Play:         stopped,
		}
	case AtEnd:
		return Controls{
			Rewind:       true,
			PrevBoundary: true,
		}
	default:
		return Controls{
			Rewind:       true,
			PrevBoundary: true,
			NextBoundary: true,
			Play:         stopped,
			Pause:        !stopped,
		}
	}
}
