package assets

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"os"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/nfnt/resize"
)

// FileResolver resolves asset locators as image files on disk, scaled down
// to MaxWidth for display.
type FileResolver struct {
	// MaxWidth bounds the decoded image's width; zero keeps full size.
	MaxWidth uint
}

// Resolve opens and decodes the file at assetID. Any open or decode failure
// maps to ErrResourceNotFound.
func (r FileResolver) Resolve(_ context.Context, assetID string) (image.Image, error) {
	data, err := os.ReadFile(assetID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResourceNotFound, err)
	}
	return DecodeThumbnail(data, r.MaxWidth)
}

// DecodeThumbnail decodes image bytes and scales the result down to
// maxWidth (preserving aspect ratio) when it is wider.
func DecodeThumbnail(data []byte, maxWidth uint) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResourceNotFound, err)
	}
	if maxWidth > 0 && uint(img.Bounds().Dx()) > maxWidth {
		img = resize.Resize(maxWidth, 0, img, resize.Lanczos3)
	}
	return img, nil
}
