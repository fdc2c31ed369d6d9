package bmp

import (
	"bytes"
	"image"
	"image/color"
	"io"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanlineReaderConsumesPadding(t *testing.T) {
	// two rows of width 1: pixel + 1 padding byte each
	raw := []byte{
		1, 2, 3, 0xEE,
		4, 5, 6, 0xEE,
	}
	r := NewScanlineReader(bytes.NewReader(raw), 1)

	line, err := r.Next(nil)
	require.NoError(t, err)
	assert.Equal(t, Scanline{{Blue: 1, Green: 2, Red: 3}}, line)

	line, err = r.Next(line)
	require.NoError(t, err)
	assert.Equal(t, Scanline{{Blue: 4, Green: 5, Red: 6}}, line)

	_, err = r.Next(line)
	assert.ErrorIs(t, err, io.EOF)
}

func TestScanlineReaderShortRow(t *testing.T) {
	r := NewScanlineReader(bytes.NewReader([]byte{1, 2, 3, 4, 5}), 2)
	_, err := r.Next(nil)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

// allocatedBy reports the bytes allocated on the heap while fn runs.
func allocatedBy(fn func()) uint64 {
	var before, after runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&before)
	fn()
	runtime.ReadMemStats(&after)
	return after.TotalAlloc - before.TotalAlloc
}

const claimedWidth = 200_000_000

func TestScanlineReaderHugeWidthShortSource(t *testing.T) {
	var err error
	alloc := allocatedBy(func() {
		r := NewScanlineReader(bytes.NewReader([]byte{1, 2, 3, 4, 5, 6}), claimedWidth)
		_, err = r.Next(nil)
	})
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.Less(t, alloc, uint64(4<<20))
}

func TestScanlineReaderLongRowAcrossChunks(t *testing.T) {
	width := 3*readChunk/BytesPerPixel + 5
	raw := make([]byte, RowSize(width))
	for i := range raw[:width*BytesPerPixel] {
		raw[i] = byte(i % 251)
	}

	line, err := NewScanlineReader(bytes.NewReader(raw), width).Next(nil)
	require.NoError(t, err)
	require.Len(t, line, width)
	last := (width - 1) * BytesPerPixel
	assert.Equal(t, Pixel{Blue: raw[last], Green: raw[last+1], Red: raw[last+2]}, line[width-1])
}

func TestDecodeHugeWidthShortSource(t *testing.T) {
	var err error
	alloc := allocatedBy(func() {
		_, err = Decode(bytes.NewReader(headerBytes(claimedWidth, 1)))
	})
	assert.ErrorIs(t, err, io.EOF)
	assert.Less(t, alloc, uint64(4<<20))
}

func TestScanlineWriterReplicates(t *testing.T) {
	var buf bytes.Buffer
	w := NewScanlineWriter(&buf, 2, 3)

	w.Encode(Scanline{{Blue: 1, Green: 2, Red: 3}, {Blue: 7, Green: 8, Red: 9}})
	require.NoError(t, w.Flush(2))

	// width 6 -> 18 pixel bytes + 2 padding
	row := []byte{
		1, 2, 3, 1, 2, 3, 1, 2, 3,
		7, 8, 9, 7, 8, 9, 7, 8, 9,
		0, 0,
	}
	assert.Equal(t, append(append([]byte{}, row...), row...), buf.Bytes())
	assert.Equal(t, row, w.Row())
}

func TestScanlineWriterZeroFlush(t *testing.T) {
	var buf bytes.Buffer
	w := NewScanlineWriter(&buf, 1, 1)
	w.Encode(Scanline{{Red: 0xFF}})
	require.NoError(t, w.Flush(0))
	assert.Zero(t, buf.Len())
}

func testImage(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(10*x + 1), G: uint8(10*y + 2), B: uint8(x + y), A: 0xff})
		}
	}
	return img
}

func TestEncodeDecode(t *testing.T) {
	for _, topDown := range []bool{false, true} {
		src := testImage(3, 2)

		var buf bytes.Buffer
		require.NoError(t, Encode(&buf, src, topDown))
		assert.Equal(t, HeaderSize+2*RowSize(3), buf.Len())

		got, err := Decode(bytes.NewReader(buf.Bytes()))
		require.NoError(t, err)
		assert.Equal(t, src.Bounds(), got.Bounds())
		assert.Equal(t, src.Pix, got.Pix, "topDown=%v", topDown)
	}
}

func TestEncodeBottomUpRowOrder(t *testing.T) {
	src := testImage(1, 2)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, src, false))

	data := buf.Bytes()[HeaderSize:]
	// first stored row is the bottom one (y=1): B=1, G=12, R=1
	assert.Equal(t, []byte{1, 12, 1, 0}, data[0:4])
	assert.Equal(t, []byte{0, 2, 1, 0}, data[4:8])
}

// headerBytes encodes valid headers without any pixel data.
func headerBytes(width, height int32) []byte {
	var buf bytes.Buffer
	_, _ = NewHeader(width, height).WriteTo(&buf)
	return buf.Bytes()
}

func TestDecodeTruncatedPixels(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, testImage(2, 2), false))

	_, err := Decode(bytes.NewReader(buf.Bytes()[:buf.Len()-3]))
	assert.Error(t, err)
}
