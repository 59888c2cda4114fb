package rawcodec

import (
	"github.com/sigmaraw/x3fcore/internal/bitio"
	"github.com/sigmaraw/x3fcore/internal/huffcode"
	"github.com/sigmaraw/x3fcore/internal/xerr"
)

// GetDiff reads one TRUE-codec difference value: a Huffman-coded
// difference-class length L, followed (when L>0) by L bits read MSB-first
// as an unsigned value v: if the first of them is 1 the difference is v,
// if it is 0 the difference is v - (2^L - 1).
func GetDiff(r *bitio.Reader, tree *huffcode.Tree) (int32, error) {
	bits, err := tree.Decode(r)
	if err != nil {
		return 0, err
	}
	if bits == 0 {
		return 0, nil
	}
	firstBit := r.GetBit()
	diff := int32(firstBit)
	for i := 1; i < int(bits); i++ {
		diff = (diff << 1) + int32(r.GetBit())
	}
	if firstBit == 0 {
		diff -= (1 << bits) - 1
	}
	return diff, nil
}

// LatticeDecode walks the TRUE codec's 2x2 predictive lattice over a
// rows x cols grid of symbols, uniformly seeded, calling emit(row, col,
// value) for each decoded sample in row-major order. It underlies both
// TrueDecoder's plane decode and the CAMF type-4 packer, which obfuscate
// metadata with the same predictor.
func LatticeDecode(r *bitio.Reader, tree *huffcode.Tree, rows, cols int, seed int32, emit func(row, col int, value int32)) error {
	var rowStartAcc [2][2]int32
	for i := range rowStartAcc {
		for j := range rowStartAcc[i] {
			rowStartAcc[i][j] = seed
		}
	}

	for row := 0; row < rows; row++ {
		oddRow := row & 1
		var acc [2]int32

		for col := 0; col < cols; col++ {
			oddCol := col & 1
			diff, err := GetDiff(r, tree)
			if err != nil {
				return xerr.Wrap(xerr.HuffmanDesync, err, "lattice row %d col %d", row, col)
			}

			var prev int32
			if col < 2 {
				prev = rowStartAcc[oddRow][oddCol]
			} else {
				prev = acc[oddCol]
			}
			value := prev + diff

			acc[oddCol] = value
			if col < 2 {
				rowStartAcc[oddRow][oddCol] = value
			}

			emit(row, col, value)
		}
	}
	return nil
}

// TruePlaneGeometry is one plane's native decode geometry. For Quattro
// raw, the first two (chroma) planes may be stored at half the output
// resolution along each axis; the third (luma) plane always matches the
// output geometry.
type TruePlaneGeometry struct {
	Rows, Cols int
}

// TrueDecoder decodes a TRUE-codec raw image: three
// channel planes, each an independent 2x2-lattice predictive stream,
// stored back-to-back with 16-byte padding between planes.
type TrueDecoder struct {
	Seeds    [3]uint16
	Table    []huffcode.LengthCodeEntry
	OutCols  int
	OutRows  int
	Planes   [3]TruePlaneGeometry // native decode geometry per plane
	PlaneOff [3]int               // byte offset of each plane within data
}

// Decode decodes all three planes into an interleaved RGB buffer of
// length OutCols*OutRows*3, expanding any half-resolution Quattro plane
// in place afterward.
func (d TrueDecoder) Decode(data []byte) ([]uint16, error) {
	tree, err := huffcode.BuildLengthCodeTable(d.Table)
	if err != nil {
		return nil, xerr.Wrap(xerr.MalformedHeader, err, "building TRUE huffman tree")
	}

	out := make([]uint16, d.OutCols*d.OutRows*3)
	for color := 0; color < 3; color++ {
		geom := d.Planes[color]
		if geom.Cols == 0 || geom.Rows == 0 {
			geom = TruePlaneGeometry{Rows: d.OutRows, Cols: d.OutCols}
		}
		if err := d.decodeOneColor(data, tree, color, geom, out); err != nil {
			return nil, err
		}

		reduced := geom.Cols != d.OutCols
		if reduced && color < 2 {
			if geom.Cols*2 != d.OutCols || geom.Rows*2 != d.OutRows {
				return nil, xerr.New(xerr.ShapeMismatch, "quattro plane %d geometry %dx%d does not halve output %dx%d", color, geom.Rows, geom.Cols, d.OutRows, d.OutCols)
			}
			expandQuattroColor(out, color, geom)
		}
	}
	return out, nil
}

// decodeOneColor decodes one plane's lattice stream, writing values
// packed contiguously at the front of out (offset by color) in
// row-major order. For a full-resolution plane this coincides with the
// final (row, col) addressing; for a reduced Quattro plane the values
// are later redistributed in place by expandQuattroColor.
func (d TrueDecoder) decodeOneColor(data []byte, tree *huffcode.Tree, color int, geom TruePlaneGeometry, out []uint16) error {
	if d.PlaneOff[color] > len(data) {
		return xerr.New(xerr.TruncatedStream, "plane %d offset %d past end of data (%d bytes)", color, d.PlaneOff[color], len(data))
	}
	r := bitio.NewReader(data[d.PlaneOff[color]:])

	idx := 0
	err := LatticeDecode(r, tree, geom.Rows, geom.Cols, int32(d.Seeds[color]), func(_, _ int, value int32) {
		out[3*idx+color] = uint16(value)
		idx++
	})
	if err != nil {
		return xerr.Wrap(xerr.HuffmanDesync, err, "TRUE plane %d", color)
	}
	return nil
}

// expandQuattroColor duplicates a half-resolution plane's front-packed
// samples into the full-resolution 2x2 tiles, working from the far
// corner backwards so the same buffer can be reused in place.
func expandQuattroColor(out []uint16, color int, geom TruePlaneGeometry) {
	cols, rows := geom.Cols, geom.Rows
	for row := rows - 1; row >= 0; row-- {
		for col := cols - 1; col >= 0; col-- {
			val := out[3*(cols*row+col)+color]
			out[3*(2*cols*(2*row+1)+2*col+1)+color] = val
			out[3*(2*cols*(2*row+1)+2*col+0)+color] = val
			out[3*(2*cols*(2*row+0)+2*col+1)+color] = val
			out[3*(2*cols*(2*row+0)+2*col+0)+color] = val
		}
	}
}
