package develop

import (
	"math"

	"github.com/sigmaraw/x3fcore/internal/camf"
)

// GainGrid is a bilinear spatial-gain correction surface: a cols x rows
// grid of per-channel multipliers sampled across the image, the shape
// both the classic SpatialGain CAMF matrix and the Merrill/Quattro
// quadrant tables reduce to before per-pixel sampling (x3f_spatial_gain.c).
type GainGrid struct {
	Cols, Rows, Channels int
	Gain                 []float64 // cols*rows*channels, row-major
}

func (g GainGrid) at(row, col, ch int) float64 {
	return g.Gain[(row*g.Cols+col)*g.Channels+ch]
}

// ClassicSpatialGain reads the per-white-balance SpatialGainTables entry
// (falling back to the plain SpatialGain matrix shared across white
// balances) as a bilinear correction grid (x3f_get_classic_spatial_gain).
func ClassicSpatialGain(meta *camf.Access, wb string, channels int) (GainGrid, error) {
	var dims []int
	name, err := meta.GetProperty("SpatialGainTables", wb)
	if err == nil {
		dims, _, err = meta.MatrixShape(name)
	}
	if err != nil || len(dims) == 0 {
		dims, _, err = meta.MatrixShape("SpatialGain")
		name = "SpatialGain"
		if err != nil {
			return GainGrid{}, err
		}
	}

	if name == "SpatialGainTables" {
		resolved, perr := meta.GetProperty("SpatialGainTables", wb)
		if perr == nil {
			name = resolved
			dims, _, err = meta.MatrixShape(name)
			if err != nil {
				return GainGrid{}, err
			}
		}
	}

	rows, cols := dims[0], dims[1]
	vals, err := meta.GetFloatMatrix(name, rows, cols, channels)
	if err != nil {
		return GainGrid{}, err
	}
	return GainGrid{Cols: cols, Rows: rows, Channels: channels, Gain: vals}, nil
}

// lensPosition computes 1/(1/focal_length - 1/object_distance), the
// interpolation key the Merrill/Quattro gain tables are indexed by
// (x3f_spatial_gain.c's lens_position). Equal focal length and object
// distance (a zero denominator) yield +Inf.
func lensPosition(focalLength, objectDistance float64) float64 {
	inv := 1/focalLength - 1/objectDistance
	if inv == 0 {
		return math.Inf(1)
	}
	return 1 / inv
}

// GainBlock is one calibrated gain surface tagged with the aperture and
// lens-position it was measured at (x3f_spatial_gain.c's per-quadrant
// table entries).
type GainBlock struct {
	Aperture    float64
	LensPos     float64
	Grid        GainGrid
}

// quadrantSelect picks, among candidate blocks, the two bracketing a
// query value along one axis (aperture or lens position): the nearest
// block on each side, used for the bilinear interpolation weight.
func quadrantSelect(values []float64, query float64) (lo, hi int, hasLo, hasHi bool) {
	loVal, hiVal := math.Inf(-1), math.Inf(1)
	hasLo, hasHi = false, false
	for i, v := range values {
		if v <= query && v > loVal {
			loVal, lo, hasLo = v, i, true
		}
		if v >= query && v < hiVal {
			hiVal, hi, hasHi = v, i, true
		}
	}
	return lo, hi, hasLo, hasHi
}

// quadrantWeight computes the bilinear weight between a bracketing lo/hi
// pair, treating a NaN or degenerate span as full weight on whichever
// side is present (x3f_spatial_gain.c replaces NaN weights with 1.0
// rather than propagating them into the blend).
func quadrantWeight(query, lo, hi float64) float64 {
	if hi == lo {
		return 1
	}
	w := (query - lo) / (hi - lo)
	if math.IsNaN(w) {
		return 1
	}
	if w < 0 {
		w = 0
	}
	if w > 1 {
		w = 1
	}
	return w
}

// MerrillSpatialGain blends calibrated GainBlocks into a single gain grid
// (after x3f_get_merrill_type_spatial_gain /
// x3f_get_interp_merrill_type_spatial_gain). It uses at most two blocks:
// the one with the nearest aperture at or below the query aperture (taken
// only if some block's lens position is at or below the query lens
// position) and the one with the nearest aperture at or above it (taken
// only if some block's lens position is at or above the query lens
// position), blended linearly by aperture. Lens position is not an
// interpolation weight. With neither block taken, the first block is
// returned unblended; two grids of different shape are not blended.
func MerrillSpatialGain(blocks []GainBlock, aperture, objectDistance, focalLength float64) (GainGrid, bool) {
	if len(blocks) == 0 {
		return GainGrid{}, false
	}
	lensPos := lensPosition(focalLength, objectDistance)

	apertures := make([]float64, len(blocks))
	positions := make([]float64, len(blocks))
	for i, b := range blocks {
		apertures[i] = b.Aperture
		positions[i] = b.LensPos
	}

	aLo, aHi, hasALo, hasAHi := quadrantSelect(apertures, aperture)
	pLo, pHi, hasPLo, hasPHi := quadrantSelect(positions, lensPos)

	type weighted struct {
		idx int
		w   float64
	}
	var picks []weighted
	if hasALo && hasPLo {
		picks = append(picks, weighted{aLo, 1})
	}
	if hasAHi && hasPHi && aHi != aLo {
		picks = append(picks, weighted{aHi, 1})
	}
	if len(picks) == 0 {
		picks = append(picks, weighted{0, 1})
	}

	aw := quadrantWeight(aperture, apertures[picks[0].idx], apertures[picks[len(picks)-1].idx])
	_ = pLo
	_ = pHi

	base := blocks[picks[0].idx].Grid
	if len(picks) == 1 {
		return base, true
	}
	other := blocks[picks[len(picks)-1].idx].Grid
	return blendGrids(base, other, aw), true
}

func blendGrids(a, b GainGrid, w float64) GainGrid {
	if a.Cols != b.Cols || a.Rows != b.Rows || a.Channels != b.Channels {
		return a
	}
	out := make([]float64, len(a.Gain))
	for i := range out {
		out[i] = a.Gain[i]*(1-w) + b.Gain[i]*w
	}
	return GainGrid{Cols: a.Cols, Rows: a.Rows, Channels: a.Channels, Gain: out}
}

// CalcSpatialGain samples grid at a fractional (row,col) position with
// bilinear interpolation and edge clamping, the per-pixel correction
// factor x3f_calc_spatial_gain applies during ConvertData. rowPitch and
// colPitch let a caller address one of the Quattro-HP "B0..B3" quarter-
// resolution subsample planes by striding the grid's native resolution.
func CalcSpatialGain(grid GainGrid, row, col float64, channel, rowPitch, colPitch int) float64 {
	r := row / float64(rowPitch)
	c := col / float64(colPitch)

	r0 := int(math.Floor(r))
	c0 := int(math.Floor(c))
	fr := r - float64(r0)
	fc := c - float64(c0)

	r0 = clampInt(r0, 0, grid.Rows-1)
	r1 := clampInt(r0+1, 0, grid.Rows-1)
	c0 = clampInt(c0, 0, grid.Cols-1)
	c1 := clampInt(c0+1, 0, grid.Cols-1)

	v00 := grid.at(r0, c0, channel)
	v01 := grid.at(r0, c1, channel)
	v10 := grid.at(r1, c0, channel)
	v11 := grid.at(r1, c1, channel)

	top := v00*(1-fc) + v01*fc
	bottom := v10*(1-fc) + v11*fc
	return top*(1-fr) + bottom*fr
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
