package tui

import (
	"context"
	"fmt"
	"image"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/flickread/flick/internal/assets"
	"github.com/flickread/flick/internal/source"
)

// coverWidth is the thumbnail width in terminal cells.
const coverWidth = 24

// coverResolver resolves a read's cover art from its locator. Only e-books
// carry one; other kinds report ErrResourceNotFound so their slot keeps the
// placeholder.
type coverResolver struct{}

func (coverResolver) Resolve(_ context.Context, assetID string) (image.Image, error) {
	if kind := source.InferKind(assetID); kind != source.EBook {
		return nil, fmt.Errorf("%w: %s reads have no cover art", assets.ErrResourceNotFound, kind)
	}
	data, err := source.EPUBCover(assetID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", assets.ErrResourceNotFound, err)
	}
	return assets.DecodeThumbnail(data, coverWidth)
}

// renderCover draws an image as half-block cells, two pixel rows per line.
func renderCover(img image.Image) string {
	if img == nil {
		return ""
	}
	bounds := img.Bounds()
	var sb strings.Builder
	for y := bounds.Min.Y; y < bounds.Max.Y; y += 2 {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			top := hexColor(img, x, y)
			bottom := top
			if y+1 < bounds.Max.Y {
				bottom = hexColor(img, x, y+1)
			}
			cell := lipgloss.NewStyle().
				Foreground(lipgloss.Color(top)).
				Background(lipgloss.Color(bottom)).
				Render("▀")
			sb.WriteString(cell)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func hexColor(img image.Image, x, y int) string {
	r, g, b, _ := img.At(x, y).RGBA()
	return fmt.Sprintf("#%02x%02x%02x", uint8(r>>8), uint8(g>>8), uint8(b>>8))
}
