package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/flickread/flick/internal/source"
)

// TestTerminalOutcomeSurvivesProgressFlood floods a tiny event buffer with
// progress and checks the terminal outcome still lands: progress is
// droppable, the one terminal message per load is not.
func TestTerminalOutcomeSurvivesProgressFlood(t *testing.T) {
	events := make(chan tea.Msg, 2)
	terminal := make(chan tea.Msg, 1)
	sink := programSink{events: events, terminal: terminal}

	sink.OnStarted()
	for i := 0; i < 100; i++ {
		sink.OnProgress(float64(i) / 100)
	}
	sink.OnSucceeded()

	select {
	case msg := <-terminal:
		if _, ok := msg.(loadSucceededMsg); !ok {
			t.Fatalf("terminal msg = %T, want loadSucceededMsg", msg)
		}
	default:
		t.Fatal("terminal outcome was dropped")
	}
	if len(events) != 2 {
		t.Errorf("buffered events = %d, want the full buffer of 2", len(events))
	}
}

func TestTerminalFailureCarriesError(t *testing.T) {
	terminal := make(chan tea.Msg, 1)
	sink := programSink{events: make(chan tea.Msg, 1), terminal: terminal}

	sink.OnFailed(source.ErrSourceUnavailable)

	select {
	case msg := <-terminal:
		failed, ok := msg.(loadFailedMsg)
		if !ok {
			t.Fatalf("terminal msg = %T, want loadFailedMsg", msg)
		}
		if failed.err != source.ErrSourceUnavailable {
			t.Errorf("err = %v, want ErrSourceUnavailable", failed.err)
		}
	default:
		t.Fatal("failure outcome was dropped")
	}
}
