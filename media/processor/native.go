package processor

import (
	"image"
	"image/png"
	"io"

	"github.com/nfnt/resize"

	"github.com/leeforge/bmpscale/bmp"
	"github.com/leeforge/bmpscale/errors"
)

// DefaultPreviewSize bounds both preview dimensions unless configured otherwise.
const DefaultPreviewSize = 256

// NativeProcessor renders PNG previews of 24-bit bitmaps using pure Go libraries.
type NativeProcessor struct {
	maxSize uint
}

func NewNativeProcessor(maxSize uint) *NativeProcessor {
	if maxSize == 0 {
		maxSize = DefaultPreviewSize
	}
	return &NativeProcessor{maxSize: maxSize}
}

// Preview decodes the bitmap in reader and writes a PNG thumbnail that fits in
// maxSize x maxSize, keeping the aspect ratio. Images that already fit are
// written at their own size. It returns the bounds of the written image.
func (p *NativeProcessor) Preview(reader io.Reader, w io.Writer) (image.Rectangle, error) {
	img, err := bmp.Decode(reader)
	if err != nil {
		return image.Rectangle{}, err
	}

	// Lanczos3 for a smooth downscale of the blocky enlargement
	thumbnail := resize.Thumbnail(p.maxSize, p.maxSize, img, resize.Lanczos3)

	if err := png.Encode(w, thumbnail); err != nil {
		return image.Rectangle{}, errors.WrapWithType(err, errors.ErrorTypeDestinationUnwritable, "writing preview")
	}
	return thumbnail.Bounds(), nil
}

// GetDimensions returns the width and the absolute height of a bitmap
// without reading its pixel data.
func (p *NativeProcessor) GetDimensions(reader io.Reader) (int, int, error) {
	h, err := bmp.ReadHeader(reader)
	if err != nil {
		return 0, 0, err
	}
	return h.Width(), h.Rows(), nil
}
