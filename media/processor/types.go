package processor

import (
	"github.com/leeforge/bmpscale/bmp"
)

// Geometry describes a completed enlargement.
type Geometry struct {
	ScaleFactor   int    `json:"scale_factor"`
	InputWidth    int    `json:"input_width"`
	InputHeight   int    `json:"input_height"`
	InputPadding  int    `json:"input_padding"`
	OutputWidth   int    `json:"output_width"`
	OutputHeight  int    `json:"output_height"`
	OutputPadding int    `json:"output_padding"`
	ImageSize     uint32 `json:"image_size"`
	FileSize      uint32 `json:"file_size"`
	TopDown       bool   `json:"top_down"`
}

func newGeometry(n int, in, out bmp.Header) Geometry {
	return Geometry{
		ScaleFactor:   n,
		InputWidth:    in.Width(),
		InputHeight:   int(in.Info.Height),
		InputPadding:  bmp.Padding(in.Width()),
		OutputWidth:   out.Width(),
		OutputHeight:  int(out.Info.Height),
		OutputPadding: bmp.Padding(out.Width()),
		ImageSize:     out.Info.SizeImage,
		FileSize:      out.File.Size,
		TopDown:       in.TopDown(),
	}
}

// Report is the summary printed by --report after a successful run.
type Report struct {
	Format      string   `json:"format" default:"bmp24"`
	Source      string   `json:"source"`
	Destination string   `json:"destination"`
	Atomic      bool     `json:"atomic"`
	Preview     string   `json:"preview,omitempty"`
	Geometry    Geometry `json:"geometry"`
}
