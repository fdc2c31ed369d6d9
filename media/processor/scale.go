package processor

import (
	"context"
	"io"

	"go.uber.org/zap"

	"github.com/leeforge/bmpscale/bmp"
	"github.com/leeforge/bmpscale/errors"
	"github.com/leeforge/bmpscale/logging"
)

// DefaultMaxScaleFactor is the largest factor accepted unless configured lower.
const DefaultMaxScaleFactor = 100

// Resizer enlarges 24-bit bitmaps by an integer factor, repeating every
// pixel horizontally and every scanline vertically.
type Resizer struct {
	maxScaleFactor int
	logger         logging.Logger
}

type Option func(*Resizer)

// WithMaxScaleFactor lowers the accepted upper bound. Values outside
// [1, DefaultMaxScaleFactor] are ignored.
func WithMaxScaleFactor(n int) Option {
	return func(r *Resizer) {
		if n >= 1 && n <= DefaultMaxScaleFactor {
			r.maxScaleFactor = n
		}
	}
}

// WithLogger sets the logger. By default the logger is taken from the context.
func WithLogger(logger logging.Logger) Option {
	return func(r *Resizer) {
		r.logger = logger
	}
}

func NewResizer(opts ...Option) *Resizer {
	r := &Resizer{maxScaleFactor: DefaultMaxScaleFactor}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// MaxScaleFactor returns the largest accepted factor.
func (r *Resizer) MaxScaleFactor() int {
	return r.maxScaleFactor
}

// CheckScaleFactor rejects factors outside [1, MaxScaleFactor].
func (r *Resizer) CheckScaleFactor(n int) error {
	if n < 1 || n > r.maxScaleFactor {
		return errors.NewInvalidScaleFactor(n, r.maxScaleFactor)
	}
	return nil
}

// Resize reads a bitmap from src and writes it enlarged n times to dst.
//
// The scale factor is checked before src is touched and the headers are
// validated before anything is written to dst. Once the headers are written,
// read and write failures are reported as transcode errors and dst is left
// truncated. src is read strictly forward, one scanline at a time.
func (r *Resizer) Resize(ctx context.Context, n int, src io.Reader, dst io.Writer) (Geometry, error) {
	if err := r.CheckScaleFactor(n); err != nil {
		return Geometry{}, err
	}

	logger := r.logger
	if logger == nil {
		logger = logging.FromContext(ctx)
	}

	in, err := bmp.ReadHeader(src)
	if err != nil {
		return Geometry{}, err
	}

	out, err := in.Scale(n)
	if err != nil {
		return Geometry{}, err
	}
	geo := newGeometry(n, in, out)

	logger.Debug("resizing bitmap",
		zap.Int("scale_factor", n),
		zap.Int("input_width", geo.InputWidth),
		zap.Int("input_height", geo.InputHeight),
		zap.Int("output_width", geo.OutputWidth),
		zap.Int("output_height", geo.OutputHeight),
	)

	if _, err := out.WriteTo(dst); err != nil {
		return geo, errors.WrapWithType(err, errors.ErrorTypeDestinationUnwritable, "writing bitmap header")
	}

	reader := bmp.NewScanlineReader(src, in.Width())
	writer := bmp.NewScanlineWriter(dst, in.Width(), n)

	var line bmp.Scanline
	for row := 0; row < in.Rows(); row++ {
		if err := ctx.Err(); err != nil {
			return geo, errors.NewTranscodeIO("resize", err).WithDetail("row", row)
		}

		line, err = reader.Next(line)
		if err != nil {
			return geo, errors.NewTranscodeIO("read", err).WithDetail("row", row)
		}

		writer.Encode(line)
		if err := writer.Flush(n); err != nil {
			return geo, errors.NewTranscodeIO("write", err).WithDetail("row", row)
		}
	}

	logger.Debug("bitmap resized",
		zap.Uint32("image_size", geo.ImageSize),
		zap.Uint32("file_size", geo.FileSize),
	)
	return geo, nil
}
