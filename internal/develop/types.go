// Package develop implements the render pipeline that runs after raw
// decode and Quattro expansion: black-level estimation, bad-pixel
// interpolation, intermediate-depth linearization (Preprocessor),
// per-pixel spatial gain correction (SpatialGain), and the final
// white-balance/matrix/gamma conversion to an output color space
// (ColorPipeline). Grounded on original_source/src/x3f_process.c,
// x3f_spatial_gain.c, and x3f_matrix.c.
package develop

// PixelArea is a view over a plane of interleaved uint16 samples:
// RowStride is the number of uint16 elements between the start of
// consecutive rows (normally Cols*Channels, but may be larger), matching
// x3f_area16_t's addressing convention.
type PixelArea struct {
	Cols, Rows, Channels, RowStride int
	Data                           []uint16
}

// At returns the index into Data of pixel (row, col)'s first channel.
func (a PixelArea) At(row, col int) int {
	return row*a.RowStride + col*a.Channels
}

// Rect is an inclusive pixel rectangle (x0,y0,x1,y1), the shape CAMF
// rects and KeepImageArea/ActiveImageArea use.
type Rect struct {
	X0, Y0, X1, Y1 int
}

// Cols and Rows report Rect's inclusive extent.
func (r Rect) Cols() int { return r.X1 - r.X0 + 1 }
func (r Rect) Rows() int { return r.Y1 - r.Y0 + 1 }
