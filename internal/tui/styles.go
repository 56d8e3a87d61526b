package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/flickread/flick/internal/assets"
	"github.com/flickread/flick/internal/config"
)

type styles struct {
	focus    lipgloss.Style
	word     lipgloss.Style
	status   lipgloss.Style
	paused   lipgloss.Style
	controls lipgloss.Style
	complete lipgloss.Style
	errText  lipgloss.Style
}

func newStyles(s config.Settings) styles {
	return styles{
		focus:    lipgloss.NewStyle().Foreground(lipgloss.Color(s.FocusColor)).Bold(true),
		word:     lipgloss.NewStyle().Foreground(lipgloss.Color(s.WordColor)),
		status:   lipgloss.NewStyle().Foreground(lipgloss.Color(s.StatusColor)),
		paused:   lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFF00")).Bold(true),
		controls: lipgloss.NewStyle().Foreground(lipgloss.Color(s.StatusColor)).Italic(true),
		complete: lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00")).Bold(true),
		errText:  lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5555")),
	}
}

// coverCacheCapacity bounds how many decoded covers stay resident.
const coverCacheCapacity = 8

// NewCoverCache builds the asset cache used for cover thumbnails.
func NewCoverCache() (*assets.Cache, error) {
	return assets.New(coverResolver{}, coverCacheCapacity)
}
