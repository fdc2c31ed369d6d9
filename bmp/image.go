package bmp

import (
	"image"
	"image/color"
	"io"

	"github.com/leeforge/bmpscale/errors"
)

// Decode reads a complete 24-bit bitmap into an RGBA image, honouring the
// bottom-up or top-down row order given by the sign of the height. Pixel
// memory grows with the rows actually read, never ahead of them.
func Decode(r io.Reader) (*image.RGBA, error) {
	h, err := ReadHeader(r)
	if err != nil {
		return nil, err
	}

	width, rows := h.Width(), h.Rows()
	stride := width * 4
	reader := NewScanlineReader(r, width)

	var (
		pix  []byte
		line Scanline
	)
	for i := 0; i < rows; i++ {
		line, err = reader.Next(line)
		if err != nil {
			return nil, errors.WrapWithType(err, errors.ErrorTypeSourceUnreadable, "reading scanline").
				WithDetail("row", i)
		}
		for _, p := range line {
			pix = append(pix, p.Red, p.Green, p.Blue, 0xff)
		}
	}

	if !h.TopDown() && stride > 0 {
		tmp := make([]byte, stride)
		for top, bottom := 0, rows-1; top < bottom; top, bottom = top+1, bottom-1 {
			a := pix[top*stride : (top+1)*stride]
			b := pix[bottom*stride : (bottom+1)*stride]
			copy(tmp, a)
			copy(a, b)
			copy(b, tmp)
		}
	}

	return &image.RGBA{
		Pix:    pix,
		Stride: stride,
		Rect:   image.Rect(0, 0, width, rows),
	}, nil
}

// Encode writes img as an uncompressed 24-bit bitmap. Alpha is discarded.
// With topDown set the height is stored negative and rows are written top first.
func Encode(w io.Writer, img image.Image, topDown bool) error {
	b := img.Bounds()
	height := int32(b.Dy())
	if topDown {
		height = -height
	}

	h := NewHeader(int32(b.Dx()), height)
	if _, err := h.WriteTo(w); err != nil {
		return err
	}

	row := make([]byte, RowSize(b.Dx()))
	for i := 0; i < b.Dy(); i++ {
		y := b.Max.Y - 1 - i
		if topDown {
			y = b.Min.Y + i
		}
		off := 0
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
			row[off+0] = c.B
			row[off+1] = c.G
			row[off+2] = c.R
			off += BytesPerPixel
		}
		if _, err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}
