// Package bmp reads and writes the fixed-layout headers and scanlines of
// uncompressed 24-bit Windows bitmaps (BITMAPINFOHEADER variant).
//
// Every multi-byte field is decoded and encoded explicitly in little-endian
// order, so the package behaves the same on any host byte order.
package bmp

import (
	"encoding/binary"
	stderrors "errors"
	"io"
	"math"

	"github.com/leeforge/bmpscale/errors"
)

const (
	FileHeaderSize = 14
	InfoHeaderSize = 40
	HeaderSize     = FileHeaderSize + InfoHeaderSize

	// Signature is "BM" read as a little-endian uint16.
	Signature uint16 = 0x4D42

	BitCount24     uint16 = 24
	CompressionRGB uint32 = 0
	BytesPerPixel         = 3
)

// FileHeader is the 14-byte BITMAPFILEHEADER.
type FileHeader struct {
	Type      uint16 `json:"type"`
	Size      uint32 `json:"size"`
	Reserved1 uint16 `json:"reserved1"`
	Reserved2 uint16 `json:"reserved2"`
	OffBits   uint32 `json:"off_bits"`
}

// InfoHeader is the 40-byte BITMAPINFOHEADER.
// A positive Height means rows are stored bottom-up, a negative one top-down.
type InfoHeader struct {
	Size          uint32 `json:"size"`
	Width         int32  `json:"width"`
	Height        int32  `json:"height"`
	Planes        uint16 `json:"planes"`
	BitCount      uint16 `json:"bit_count"`
	Compression   uint32 `json:"compression"`
	SizeImage     uint32 `json:"size_image"`
	XPelsPerMeter int32  `json:"x_pels_per_meter"`
	YPelsPerMeter int32  `json:"y_pels_per_meter"`
	ClrUsed       uint32 `json:"clr_used"`
	ClrImportant  uint32 `json:"clr_important"`
}

// Header groups both fixed headers in file order.
type Header struct {
	File FileHeader `json:"file"`
	Info InfoHeader `json:"info"`
}

func (h *FileHeader) decode(b []byte) {
	h.Type = binary.LittleEndian.Uint16(b[0:2])
	h.Size = binary.LittleEndian.Uint32(b[2:6])
	h.Reserved1 = binary.LittleEndian.Uint16(b[6:8])
	h.Reserved2 = binary.LittleEndian.Uint16(b[8:10])
	h.OffBits = binary.LittleEndian.Uint32(b[10:14])
}

func (h FileHeader) encode(b []byte) {
	binary.LittleEndian.PutUint16(b[0:2], h.Type)
	binary.LittleEndian.PutUint32(b[2:6], h.Size)
	binary.LittleEndian.PutUint16(b[6:8], h.Reserved1)
	binary.LittleEndian.PutUint16(b[8:10], h.Reserved2)
	binary.LittleEndian.PutUint32(b[10:14], h.OffBits)
}

func (h *InfoHeader) decode(b []byte) {
	h.Size = binary.LittleEndian.Uint32(b[0:4])
	h.Width = int32(binary.LittleEndian.Uint32(b[4:8]))
	h.Height = int32(binary.LittleEndian.Uint32(b[8:12]))
	h.Planes = binary.LittleEndian.Uint16(b[12:14])
	h.BitCount = binary.LittleEndian.Uint16(b[14:16])
	h.Compression = binary.LittleEndian.Uint32(b[16:20])
	h.SizeImage = binary.LittleEndian.Uint32(b[20:24])
	h.XPelsPerMeter = int32(binary.LittleEndian.Uint32(b[24:28]))
	h.YPelsPerMeter = int32(binary.LittleEndian.Uint32(b[28:32]))
	h.ClrUsed = binary.LittleEndian.Uint32(b[32:36])
	h.ClrImportant = binary.LittleEndian.Uint32(b[36:40])
}

func (h InfoHeader) encode(b []byte) {
	binary.LittleEndian.PutUint32(b[0:4], h.Size)
	binary.LittleEndian.PutUint32(b[4:8], uint32(h.Width))
	binary.LittleEndian.PutUint32(b[8:12], uint32(h.Height))
	binary.LittleEndian.PutUint16(b[12:14], h.Planes)
	binary.LittleEndian.PutUint16(b[14:16], h.BitCount)
	binary.LittleEndian.PutUint32(b[16:20], h.Compression)
	binary.LittleEndian.PutUint32(b[20:24], h.SizeImage)
	binary.LittleEndian.PutUint32(b[24:28], uint32(h.XPelsPerMeter))
	binary.LittleEndian.PutUint32(b[28:32], uint32(h.YPelsPerMeter))
	binary.LittleEndian.PutUint32(b[32:36], h.ClrUsed)
	binary.LittleEndian.PutUint32(b[36:40], h.ClrImportant)
}

// ReadHeader reads and validates the file and info headers from the start of r.
// A stream too short to hold both headers is reported as an unsupported format;
// any other read failure means the source is unreadable.
func ReadHeader(r io.Reader) (Header, error) {
	var buf [HeaderSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		if stderrors.Is(err, io.EOF) || stderrors.Is(err, io.ErrUnexpectedEOF) {
			return Header{}, errors.NewUnsupportedFormat("length", "truncated", HeaderSize).WithInnerError(err)
		}
		return Header{}, errors.WrapWithType(err, errors.ErrorTypeSourceUnreadable, "reading bitmap header")
	}

	var h Header
	h.File.decode(buf[:FileHeaderSize])
	h.Info.decode(buf[FileHeaderSize:])

	if err := h.Validate(); err != nil {
		return Header{}, err
	}
	return h, nil
}

// Validate checks that the headers describe a 24-bit uncompressed bitmap
// with a 40-byte info header, pixel data at offset 54 and dimensions whose
// pixel data fits the 32-bit size fields. Scale can then only overflow
// because of its factor.
func (h Header) Validate() error {
	switch {
	case h.File.Type != Signature:
		return errors.NewUnsupportedFormat("signature", h.File.Type, Signature)
	case h.File.OffBits != HeaderSize:
		return errors.NewUnsupportedFormat("off_bits", h.File.OffBits, HeaderSize)
	case h.Info.Size != InfoHeaderSize:
		return errors.NewUnsupportedFormat("info_size", h.Info.Size, InfoHeaderSize)
	case h.Info.BitCount != BitCount24:
		return errors.NewUnsupportedFormat("bit_count", h.Info.BitCount, BitCount24)
	case h.Info.Compression != CompressionRGB:
		return errors.NewUnsupportedFormat("compression", h.Info.Compression, CompressionRGB)
	case h.Info.Width < 0:
		return errors.NewUnsupportedFormat("width", h.Info.Width, "non-negative")
	case h.imageSize()+HeaderSize > math.MaxUint32:
		return errors.NewUnsupportedFormat("size_image", h.imageSize(), "at most 4 GiB")
	}
	return nil
}

// imageSize is the pixel data length implied by the width and height.
func (h Header) imageSize() int64 {
	return int64(RowSize(h.Width())) * int64(h.Rows())
}

// WriteTo encodes both headers, file header first.
func (h Header) WriteTo(w io.Writer) (int64, error) {
	var buf [HeaderSize]byte
	h.File.encode(buf[:FileHeaderSize])
	h.Info.encode(buf[FileHeaderSize:])
	n, err := w.Write(buf[:])
	return int64(n), err
}

// Width returns the image width in pixels.
func (h Header) Width() int {
	return int(h.Info.Width)
}

// Rows returns the number of stored scanlines, |Height|.
func (h Header) Rows() int {
	if h.Info.Height < 0 {
		return -int(h.Info.Height)
	}
	return int(h.Info.Height)
}

// TopDown reports whether the first stored scanline is the top of the image.
func (h Header) TopDown() bool {
	return h.Info.Height < 0
}

// Scale returns a copy of h describing the image enlarged n times in both
// dimensions. The sign of the height is preserved, SizeImage and the file
// size are recomputed and every other field is carried over.
func (h Header) Scale(n int) (Header, error) {
	if n < 1 {
		return Header{}, errors.New(errors.ErrorTypeInvalidScaleFactor, "scale factor must be positive").
			WithDetail("value", n)
	}

	width := int64(h.Info.Width) * int64(n)
	height := int64(h.Info.Height) * int64(n)
	rows := height
	if rows < 0 {
		rows = -rows
	}
	if width > math.MaxInt32 || height > math.MaxInt32 || height < math.MinInt32 {
		return Header{}, errors.New(errors.ErrorTypeInvalidScaleFactor, "scaled dimensions exceed bitmap limits").
			WithDetail("value", n).
			WithDetail("width", width).
			WithDetail("height", height)
	}

	sizeImage := int64(RowSize(int(width))) * rows
	if sizeImage+HeaderSize > math.MaxUint32 {
		return Header{}, errors.New(errors.ErrorTypeInvalidScaleFactor, "scaled image exceeds 4 GiB").
			WithDetail("value", n).
			WithDetail("size_image", sizeImage)
	}

	out := h
	out.Info.Width = int32(width)
	out.Info.Height = int32(height)
	out.Info.SizeImage = uint32(sizeImage)
	out.File.Size = uint32(sizeImage) + HeaderSize
	return out, nil
}

// NewHeader builds valid headers for a width x height 24-bit image.
// A negative height produces a top-down bitmap.
func NewHeader(width, height int32) Header {
	rows := int64(height)
	if rows < 0 {
		rows = -rows
	}
	sizeImage := uint32(int64(RowSize(int(width))) * rows)
	return Header{
		File: FileHeader{
			Type:    Signature,
			Size:    sizeImage + HeaderSize,
			OffBits: HeaderSize,
		},
		Info: InfoHeader{
			Size:        InfoHeaderSize,
			Width:       width,
			Height:      height,
			Planes:      1,
			BitCount:    BitCount24,
			Compression: CompressionRGB,
			SizeImage:   sizeImage,
		},
	}
}
