package bmp

import (
	"io"
	"slices"
)

// Pixel is one 24-bit sample, stored on disk as blue, green, red.
type Pixel struct {
	Blue  uint8
	Green uint8
	Red   uint8
}

// Scanline is one decoded row of pixels without its alignment padding.
type Scanline []Pixel

// Padding returns the number of zero bytes that align a row of width pixels to 4 bytes.
func Padding(width int) int {
	return (4 - (width*BytesPerPixel)%4) % 4
}

// RowSize returns the stored byte length of a row of width pixels, padding included.
func RowSize(width int) int {
	return width*BytesPerPixel + Padding(width)
}

// readChunk bounds how far the row buffer grows ahead of the bytes actually read.
const readChunk = 64 << 10

// ScanlineReader decodes consecutive stored rows of a fixed width.
// Each call to Next consumes exactly one row including its padding.
// The row buffer grows with the data received, so a header that claims a
// huge width costs no more memory than the source really holds.
type ScanlineReader struct {
	r       io.Reader
	width   int
	rowSize int
	raw     []byte
}

func NewScanlineReader(r io.Reader, width int) *ScanlineReader {
	return &ScanlineReader{
		r:       r,
		width:   width,
		rowSize: RowSize(width),
	}
}

// fill reads one stored row into raw. A row cut short after its first byte
// yields io.ErrUnexpectedEOF.
func (s *ScanlineReader) fill() error {
	s.raw = s.raw[:0]
	for len(s.raw) < s.rowSize {
		chunk := min(s.rowSize-len(s.raw), readChunk)
		s.raw = slices.Grow(s.raw, chunk)
		n, err := io.ReadFull(s.r, s.raw[len(s.raw):len(s.raw)+chunk])
		s.raw = s.raw[:len(s.raw)+n]
		if err != nil {
			if err == io.EOF && len(s.raw) > 0 {
				return io.ErrUnexpectedEOF
			}
			return err
		}
	}
	return nil
}

// Next reads the next row into dst, growing it if needed, and returns it.
func (s *ScanlineReader) Next(dst Scanline) (Scanline, error) {
	if err := s.fill(); err != nil {
		return dst, err
	}

	if cap(dst) < s.width {
		dst = make(Scanline, s.width)
	}
	dst = dst[:s.width]

	for x := range dst {
		off := x * BytesPerPixel
		dst[x] = Pixel{Blue: s.raw[off], Green: s.raw[off+1], Red: s.raw[off+2]}
	}
	return dst, nil
}

// ScanlineWriter encodes rows enlarged horizontally by a fixed factor.
// The row buffer is allocated by the first Encode, once a source row has
// actually been read; padding bytes are never written to and stay zero.
type ScanlineWriter struct {
	w       io.Writer
	factor  int
	rowSize int
	row     []byte
}

// NewScanlineWriter prepares a writer for source rows of width pixels,
// each pixel repeated factor times.
func NewScanlineWriter(w io.Writer, width, factor int) *ScanlineWriter {
	return &ScanlineWriter{
		w:       w,
		factor:  factor,
		rowSize: RowSize(width * factor),
	}
}

// Encode fills the row buffer from line, repeating every pixel factor times.
func (s *ScanlineWriter) Encode(line Scanline) {
	if len(s.row) != s.rowSize {
		s.row = make([]byte, s.rowSize)
	}
	off := 0
	for _, p := range line {
		for m := 0; m < s.factor; m++ {
			s.row[off] = p.Blue
			s.row[off+1] = p.Green
			s.row[off+2] = p.Red
			off += BytesPerPixel
		}
	}
}

// Flush writes the encoded row, padding included, times times.
func (s *ScanlineWriter) Flush(times int) error {
	for r := 0; r < times; r++ {
		if _, err := s.w.Write(s.row); err != nil {
			return err
		}
	}
	return nil
}

// Row returns the encoded row buffer, nil before the first Encode.
func (s *ScanlineWriter) Row() []byte {
	return s.row
}
