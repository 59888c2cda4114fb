// Package rawcodec implements the two X3F raw/thumbnail entropy decoders:
// HuffmanImageDecoder (the legacy row-indexed and non-compressed paths
// shared by THUMB_HUFFMAN and the X530/10-bit raw formats) and TrueDecoder
// (the TRUE lattice predictor used by Merrill/Quattro raw, plus its CAMF
// type-4/5 variants). Both build on internal/bitio and internal/huffcode,
// keeping bitstream plumbing and the decode loop that walks it in
// separate layers.
package rawcodec

import (
	"github.com/sigmaraw/x3fcore/internal/bitio"
	"github.com/sigmaraw/x3fcore/internal/huffcode"
	"github.com/sigmaraw/x3fcore/internal/xerr"
)

// LegacyOffset is the default per-image accumulator seed for the
// row-indexed Huffman path. DecodeCompressed always redoes the decode with
// offset = -minimum if any accumulator went negative; no option turns
// this off.
const LegacyOffset = 0

// bitMask returns the low-bits mask for a channel width (8..12), per
// non-compressed path.
func bitMask(bits int) uint32 {
	switch bits {
	case 8:
		return 0x0ff
	case 9:
		return 0x1ff
	case 10:
		return 0x3ff
	case 11:
		return 0x7ff
	case 12:
		return 0xfff
	default:
		return 0
	}
}

// HuffmanImageDecoder decodes the legacy predictive raw/thumbnail formats
// (THUMB_HUFFMAN, RAW_HUFFMAN_X530, RAW_HUFFMAN_10BIT). Bits is the
// per-channel code width (8 for thumbnails, 10 for raw); Mapping, when
// non-nil, remaps decoded symbols before they are treated as differences.
type HuffmanImageDecoder struct {
	Bits    int
	Cols    int
	Rows    int
	Mapping []uint16 // optional, length 1<<Bits
}

// DecodeCompressed decodes the row-indexed (compressed) path: rowOffsets
// gives, per row, the byte offset into data at which that row's bitstream
// begins; table is the packed Huffman code table (length 1<<Bits).
// Output is interleaved RGB, one sample per channel per pixel, as
// max(accumulator, 0).
func (d HuffmanImageDecoder) DecodeCompressed(data []byte, table []uint32, rowOffsets []uint32) ([]uint16, error) {
	if len(rowOffsets) != d.Rows {
		return nil, xerr.New(xerr.MalformedHeader, "row_offsets length %d, want %d", len(rowOffsets), d.Rows)
	}
	tree, err := huffcode.BuildPackedTable(table, d.Mapping)
	if err != nil {
		return nil, xerr.Wrap(xerr.MalformedHeader, err, "building legacy huffman tree")
	}

	out := make([]uint16, d.Cols*d.Rows*3)
	offset := LegacyOffset
	minimum := 0
	if err := d.decodeCompressedPass(data, tree, rowOffsets, out, offset, &minimum); err != nil {
		return nil, err
	}
	if minimum < 0 {
		offset = -minimum
		if err := d.decodeCompressedPass(data, tree, rowOffsets, out, offset, &minimum); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (d HuffmanImageDecoder) decodeCompressedPass(data []byte, tree *huffcode.Tree, rowOffsets []uint32, out []uint16, offset int, minimum *int) error {
	for row := 0; row < d.Rows; row++ {
		r := bitio.NewReader(data)
		r.Seek(int(rowOffsets[row]))

		c := [3]int16{int16(offset), int16(offset), int16(offset)}
		for col := 0; col < d.Cols; col++ {
			for color := 0; color < 3; color++ {
				diff, err := tree.Decode(r)
				if err != nil {
					return xerr.Wrap(xerr.HuffmanDesync, err, "row %d col %d color %d", row, col, color)
				}
				c[color] += int16(signExtend(diff))

				var fix uint16
				if c[color] < 0 {
					if int(c[color]) < *minimum {
						*minimum = int(c[color])
					}
				} else {
					fix = uint16(c[color])
				}
				out[3*(row*d.Cols+col)+color] = fix
			}
		}
	}
	return nil
}

// signExtend treats the huffman leaf symbol as the int16 difference value
// it represents (a 16-bit signed leaf field).
func signExtend(symbol uint32) int32 {
	return int32(int16(symbol))
}

// DecodeNonCompressed decodes the non-compressed path: data holds rows of
// packed codewords, one uint32 per column, rowStride bytes per row. No
// Huffman tree is used; each column's three channel fields are split by
// bit-width and looked up in the mapping table (or used directly).
func (d HuffmanImageDecoder) DecodeNonCompressed(data []byte, rowStride int) ([]uint16, error) {
	mask := bitMask(d.Bits)
	if mask == 0 {
		return nil, xerr.New(xerr.UnsupportedSection, "unsupported channel width %d", d.Bits)
	}
	need := d.Rows * rowStride
	if len(data) < need {
		return nil, xerr.New(xerr.TruncatedStream, "non-compressed payload too small: have %d, want %d", len(data), need)
	}

	out := make([]uint16, d.Cols*d.Rows*3)
	for row := 0; row < d.Rows; row++ {
		rowData := data[row*rowStride:]
		var c [3]uint16
		for col := 0; col < d.Cols; col++ {
			val := le32(rowData[4*col : 4*col+4])
			for color := 0; color < 3; color++ {
				index := (val >> uint(color*d.Bits)) & mask
				c[color] += uint16(d.diffFor(index))

				var fix uint16
				if int16(c[color]) > 0 {
					fix = c[color]
				}
				out[3*(row*d.Cols+col)+color] = fix
			}
		}
	}
	return out, nil
}

// diffFor returns the signed difference for a non-compressed codeword
// field: the mapped value if a mapping table is present (sign-extended
// from its 16-bit signed element), else the raw index itself (always
// non-negative, used when no mapping table accompanies the format).
func (d HuffmanImageDecoder) diffFor(index uint32) int32 {
	if d.Mapping == nil {
		return int32(index)
	}
	return int32(int16(d.Mapping[index]))
}

func le32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}
