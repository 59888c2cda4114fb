package container

import (
	"github.com/sigmaraw/x3fcore/internal/huffcode"
	"github.com/sigmaraw/x3fcore/internal/rawcodec"
	"github.com/sigmaraw/x3fcore/internal/xerr"
)

// QuattroPlaneGeometry is the per-plane (columns, rows) triplet carried at
// the front of a RAW_QUATTRO body, ahead of the TRUE plane header. One of
// the three planes (the luma/top layer) has strictly higher resolution
// than the other two.
type QuattroPlaneGeometry struct {
	Cols, Rows uint32
}

// TrueHeader is the decoded TRUE plane header: per-plane seeds, the
// Huffman length-code table, the per-plane packed byte size (used to
// derive plane offsets), and, for Quattro raw, the leading per-plane
// geometry triplet.
type TrueHeader struct {
	QuattroGeometry [3]QuattroPlaneGeometry // zero value when not Quattro
	Seeds           [3]uint16
	Unknown         uint16
	Table           []huffcode.LengthCodeEntry
	QuattroUnknown  uint32
	PlaneSize       [3]uint32
	BodyOffset      int // byte offset within body where plane data begins
}

// ParseTrueHeader reads a TRUE plane header from the start of a RAW_TRUE /
// RAW_MERRILL / RAW_QUATTRO SECi body. quattro selects
// whether the leading per-plane geometry triplet and the extra
// post-table uint32 are present.
func ParseTrueHeader(body []byte, quattro bool) (TrueHeader, error) {
	var h TrueHeader
	p := 0

	if quattro {
		for i := 0; i < 3; i++ {
			if p+4 > len(body) {
				return TrueHeader{}, xerr.New(xerr.TruncatedStream, "truncated Quattro plane geometry")
			}
			h.QuattroGeometry[i] = QuattroPlaneGeometry{
				Cols: uint32(le16(body[p : p+2])),
				Rows: uint32(le16(body[p+2 : p+4])),
			}
			p += 4
		}
	}

	if p+8 > len(body) {
		return TrueHeader{}, xerr.New(xerr.TruncatedStream, "truncated TRUE seeds")
	}
	h.Seeds[0] = le16(body[p : p+2])
	h.Seeds[1] = le16(body[p+2 : p+4])
	h.Seeds[2] = le16(body[p+4 : p+6])
	h.Unknown = le16(body[p+6 : p+8])
	p += 8

	table, consumed, err := readTrueLengthTable(body[p:])
	if err != nil {
		return TrueHeader{}, err
	}
	h.Table = table
	p += consumed

	if quattro {
		if p+4 > len(body) {
			return TrueHeader{}, xerr.New(xerr.TruncatedStream, "truncated Quattro unknown field")
		}
		h.QuattroUnknown = le32(body[p : p+4])
		p += 4
	}

	for i := 0; i < 3; i++ {
		if p+4 > len(body) {
			return TrueHeader{}, xerr.New(xerr.TruncatedStream, "truncated plane_size table")
		}
		h.PlaneSize[i] = le32(body[p : p+4])
		p += 4
	}

	h.BodyOffset = p
	return h, nil
}

// readTrueLengthTable reads a (length byte, prefix byte) stream
// terminated by length==0, mirroring GET_TRUE_HUFF_TABLE.
func readTrueLengthTable(b []byte) ([]huffcode.LengthCodeEntry, int, error) {
	var entries []huffcode.LengthCodeEntry
	p := 0
	for {
		if p+2 > len(b) {
			return nil, 0, xerr.New(xerr.TruncatedStream, "truncated TRUE huffman length table")
		}
		length := b[p]
		prefix := b[p+1]
		p += 2
		if length == 0 {
			break
		}
		entries = append(entries, huffcode.LengthCodeEntry{Length: int(length), Prefix: prefix})
	}
	return entries, p, nil
}

// BuildTrueDecoder assembles a rawcodec.TrueDecoder from a parsed
// TrueHeader and the owning ImageHeader's output geometry.
func BuildTrueDecoder(h TrueHeader, outCols, outRows int, quattro bool) rawcodec.TrueDecoder {
	d := rawcodec.TrueDecoder{
		Seeds:   h.Seeds,
		Table:   h.Table,
		OutCols: outCols,
		OutRows: outRows,
	}
	planeOff := 0
	for i := 0; i < 3; i++ {
		d.PlaneOff[i] = planeOff
		planeOff += align16(int(h.PlaneSize[i]))
		if quattro && h.QuattroGeometry[i].Cols != 0 {
			d.Planes[i] = rawcodec.TruePlaneGeometry{
				Cols: int(h.QuattroGeometry[i].Cols),
				Rows: int(h.QuattroGeometry[i].Rows),
			}
		} else {
			d.Planes[i] = rawcodec.TruePlaneGeometry{Cols: outCols, Rows: outRows}
		}
	}
	return d
}

func align16(n int) int { return (n + 15) / 16 * 16 }

// LegacyHuffmanHeader is the small header preceding a legacy (HUFFMAN_X530
// / HUFFMAN_10BIT / THUMB_HUFFMAN) image body: an optional mapping table,
// the packed Huffman code table, and (for the compressed/row-indexed
// path) a trailing row-offset table.
type LegacyHuffmanHeader struct {
	Mapping    []uint16 // nil when the format carries no mapping table
	Table      []uint32 // length 1<<bits
	BodyOffset int      // byte offset within body where mapping/table end
}

// ParseLegacyHuffmanHeader reads the mapping table (if useMapping) and the
// packed code table from the start of body.
func ParseLegacyHuffmanHeader(body []byte, bits int, useMapping bool) (LegacyHuffmanHeader, error) {
	var h LegacyHuffmanHeader
	p := 0
	tableSize := 1 << uint(bits)

	if useMapping {
		need := tableSize * 2
		if p+need > len(body) {
			return LegacyHuffmanHeader{}, xerr.New(xerr.TruncatedStream, "truncated huffman mapping table")
		}
		h.Mapping = make([]uint16, tableSize)
		for i := 0; i < tableSize; i++ {
			h.Mapping[i] = le16(body[p+2*i : p+2*i+2])
		}
		p += need
	}

	need := tableSize * 4
	if p+need > len(body) {
		return LegacyHuffmanHeader{}, xerr.New(xerr.TruncatedStream, "truncated huffman code table")
	}
	h.Table = make([]uint32, tableSize)
	for i := 0; i < tableSize; i++ {
		h.Table[i] = le32(body[p+4*i : p+4*i+4])
	}
	p += need

	h.BodyOffset = p
	return h, nil
}

// RowOffsetTableSize is the byte size of the trailing row-offset table
// for a compressed (row_stride==0) legacy Huffman image.
func RowOffsetTableSize(rows int) int { return rows * 4 }

// ParseRowOffsets reads a trailing u32-per-row offset table from the last
// RowOffsetTableSize(rows) bytes of data.
func ParseRowOffsets(data []byte, rows int) ([]uint32, error) {
	size := RowOffsetTableSize(rows)
	if size > len(data) {
		return nil, xerr.New(xerr.TruncatedStream, "row offset table (%d bytes) exceeds payload (%d)", size, len(data))
	}
	start := len(data) - size
	out := make([]uint32, rows)
	for i := 0; i < rows; i++ {
		out[i] = le32(data[start+4*i : start+4*i+4])
	}
	return out, nil
}

func le16(b []byte) uint16 { return uint16(b[0]) | uint16(b[1])<<8 }
