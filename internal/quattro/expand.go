// Package quattro implements QuattroExpander: the Foveon Quattro
// layer-merge step that combines a full-resolution top (luminance) plane
// with a half-resolution three-channel plane into a single
// full-resolution three-channel image.
//
// The in-decode nearest-neighbor plane expansion TrueDecoder already
// performs (duplicating a half-resolution TRUE plane's samples into its
// 2x2 tile) is a different step: it runs during entropy decode, before
// channel 2 has been populated from the top layer by 2x2 averaging.
// QuattroExpander runs after, merging the two plane resolutions for real
// rather than merely upsampling one of them.
package quattro

import "github.com/sigmaraw/x3fcore/internal/xerr"

// LowRes is the half-resolution three-channel plane: channels 0 and 1 are
// native chroma samples; channel 2 has already been populated by 2x2
// averaging the full-resolution top layer (the caller's responsibility,
// typically done as TrueDecoder's plane decode completes).
type LowRes struct {
	Cols, Rows int
	Pixels     []uint16 // interleaved RGB, length Cols*Rows*3
}

// TopLayer is the full-resolution single-channel luminance plane: exactly
// double LowRes's column and row count.
type TopLayer struct {
	Cols, Rows int
	Pixels     []uint16 // length Cols*Rows
}

// Expand merges low and top into a full-resolution interleaved RGB image.
// Channels 0 and 1 are nearest-neighbor duplicated from low into each 2x2
// tile; channel 2 is top's own sample plus the per-tile difference
// between low's averaged value and the tile's true average, which
// conserves the tile sum up to integer rounding:
//
//	avg            = (top[2R,2C] + top[2R,2C+1] + top[2R+1,2C] + top[2R+1,2C+1]) / 4   (truncating)
//	diff           = low[R,C,2] - avg
//	expanded[i,j,2] = top[i,j] + diff   for (i,j) in the tile
//
// so the expanded tile sums to 4*low[R,C,2] + (tile sum mod 4): exactly
// 4*low[R,C,2] when the tile's raw sum is a multiple of 4. Each expanded
// value is clamped to [0,65535], which can move the sum further.
func Expand(low LowRes, top TopLayer) ([]uint16, error) {
	if top.Cols != 2*low.Cols || top.Rows != 2*low.Rows {
		return nil, xerr.New(xerr.ShapeMismatch, "quattro top layer %dx%d is not double the low-res plane %dx%d", top.Rows, top.Cols, low.Rows, low.Cols)
	}
	if len(low.Pixels) != low.Cols*low.Rows*3 {
		return nil, xerr.New(xerr.ShapeMismatch, "quattro low-res plane has %d samples, want %d", len(low.Pixels), low.Cols*low.Rows*3)
	}
	if len(top.Pixels) != top.Cols*top.Rows {
		return nil, xerr.New(xerr.ShapeMismatch, "quattro top layer has %d samples, want %d", len(top.Pixels), top.Cols*top.Rows)
	}

	cols, rows := top.Cols, top.Rows
	out := make([]uint16, cols*rows*3)

	for r := 0; r < low.Rows; r++ {
		for c := 0; c < low.Cols; c++ {
			lowIdx := 3 * (r*low.Cols + c)
			ch0, ch1, ch2 := low.Pixels[lowIdx], low.Pixels[lowIdx+1], low.Pixels[lowIdx+2]

			r0, r1 := 2*r, 2*r+1
			c0, c1 := 2*c, 2*c+1
			t00 := int32(top.Pixels[r0*cols+c0])
			t01 := int32(top.Pixels[r0*cols+c1])
			t10 := int32(top.Pixels[r1*cols+c0])
			t11 := int32(top.Pixels[r1*cols+c1])
			avg := (t00 + t01 + t10 + t11) / 4
			diff := int32(ch2) - avg

			setTile(out, cols, r0, r1, c0, c1, ch0, ch1, clampUint16(t00+diff), clampUint16(t01+diff), clampUint16(t10+diff), clampUint16(t11+diff))
		}
	}
	return out, nil
}

func setTile(out []uint16, cols, r0, r1, c0, c1 int, ch0, ch1 uint16, e00, e01, e10, e11 uint16) {
	set := func(r, c int, ch2 uint16) {
		idx := 3 * (r*cols + c)
		out[idx] = ch0
		out[idx+1] = ch1
		out[idx+2] = ch2
	}
	set(r0, c0, e00)
	set(r0, c1, e01)
	set(r1, c0, e10)
	set(r1, c1, e11)
}

func clampUint16(v int32) uint16 {
	if v < 0 {
		return 0
	}
	if v > 0xffff {
		return 0xffff
	}
	return uint16(v)
}
