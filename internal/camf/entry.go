package camf

import (
	"github.com/sigmaraw/x3fcore/internal/xerr"
)

// DimEntry is one dimension of a matrix entry: its size, and the order
// index it claims (expected to equal its position).
type DimEntry struct {
	Size  int
	Name  string
	Order int
}

// MatrixEntry is a decoded CMbM entry: an n-dimensional array of values
// widened to either int32, uint32, or float64.
type MatrixEntry struct {
	Dims     []DimEntry
	Kind     Kind
	Ints     []int32   // populated when Kind == KindInt
	Uints    []uint32  // populated when Kind == KindUint
	Floats   []float64 // populated when Kind == KindFloat
}

// PropertyEntry is a decoded CMbP entry: a name -> value string map.
type PropertyEntry struct {
	Properties map[string]string
}

// TextEntry is a decoded CMbT entry: a single ASCII string.
type TextEntry struct {
	Text string
}

// Entry is one parsed CAMF directory entry. Exactly one of Matrix,
// Property, Text is non-nil, selected by the on-disk magic.
type Entry struct {
	Name     string
	Matrix   *MatrixEntry
	Property *PropertyEntry
	Text     *TextEntry
}

// ParseEntries walks a fully-decoded CAMF byte stream (the output of
// DecryptType2, camf decode type 4/5, or a plain-passthrough CAMF
// section) into a name-indexed set of entries. Unknown magic halts
// parsing of the remainder but preserves entries already collected.
func ParseEntries(data []byte) ([]Entry, error) {
	var entries []Entry
	p := 0

	for p+20 <= len(data) {
		magic := le32(data[p : p+4])
		if magic != MagicCMbP && magic != MagicCMbT && magic != MagicCMbM {
			break
		}

		entrySize := int(le32(data[p+8 : p+12]))
		nameOff := int(le32(data[p+12 : p+16]))
		valueOff := int(le32(data[p+16 : p+20]))
		if entrySize <= 0 || p+entrySize > len(data) {
			return entries, xerr.New(xerr.MalformedHeader, "CAMF entry at %d has invalid size %d", p, entrySize)
		}

		entryBytes := data[p : p+entrySize]
		name := cString(entryBytes[nameOff:])

		e := Entry{Name: name}
		var err error
		switch magic {
		case MagicCMbT:
			e.Text, err = parseText(entryBytes, valueOff)
		case MagicCMbP:
			e.Property, err = parseProperty(entryBytes, valueOff)
		case MagicCMbM:
			e.Matrix, err = parseMatrix(entryBytes, valueOff)
		}
		if err != nil {
			return entries, err
		}
		entries = append(entries, e)

		p += entrySize
	}

	return entries, nil
}

func parseText(entry []byte, valueOff int) (*TextEntry, error) {
	if valueOff+4 > len(entry) {
		return nil, xerr.New(xerr.MalformedHeader, "truncated CMbT value header")
	}
	size := int(le32(entry[valueOff : valueOff+4]))
	start := valueOff + 4
	if start+size > len(entry) {
		return nil, xerr.New(xerr.MalformedHeader, "truncated CMbT text")
	}
	return &TextEntry{Text: string(entry[start : start+size])}, nil
}

func parseProperty(entry []byte, valueOff int) (*PropertyEntry, error) {
	if valueOff+8 > len(entry) {
		return nil, xerr.New(xerr.MalformedHeader, "truncated CMbP value header")
	}
	num := int(le32(entry[valueOff : valueOff+4]))
	heapOff := int(le32(entry[valueOff+4 : valueOff+8]))

	props := make(map[string]string, num)
	pairsStart := valueOff + 8
	for i := 0; i < num; i++ {
		off := pairsStart + 8*i
		if off+8 > len(entry) {
			return nil, xerr.New(xerr.MalformedHeader, "truncated CMbP pair table")
		}
		nameOff := heapOff + int(le32(entry[off:off+4]))
		valOff := heapOff + int(le32(entry[off+4:off+8]))
		if nameOff > len(entry) || valOff > len(entry) {
			return nil, xerr.New(xerr.MalformedHeader, "CMbP pair offset out of range")
		}
		props[cString(entry[nameOff:])] = cString(entry[valOff:])
	}
	return &PropertyEntry{Properties: props}, nil
}

func parseMatrix(entry []byte, valueOff int) (*MatrixEntry, error) {
	if valueOff+12 > len(entry) {
		return nil, xerr.New(xerr.MalformedHeader, "truncated CMbM value header")
	}
	typ := ElementType(le32(entry[valueOff : valueOff+4]))
	dim := int(le32(entry[valueOff+4 : valueOff+8]))
	dataOff := int(le32(entry[valueOff+8 : valueOff+12]))

	size, kind, ok := elementInfo(typ)
	if !ok {
		return nil, xerr.New(xerr.UnsupportedSection, "unknown CAMF matrix element type %d", typ)
	}

	dims := make([]DimEntry, dim)
	total := 1
	dimsStart := valueOff + 12
	for i := 0; i < dim; i++ {
		off := dimsStart + 12*i
		if off+12 > len(entry) {
			return nil, xerr.New(xerr.MalformedHeader, "truncated CMbM dimension table")
		}
		dSize := int(le32(entry[off : off+4]))
		nameOff := int(le32(entry[off+4 : off+8]))
		order := int(le32(entry[off+8 : off+12]))
		dims[i] = DimEntry{Size: dSize, Name: cString(entry[nameOff:]), Order: order}
		total *= dSize
	}

	blobStart := dataOff
	blobEnd := blobStart + total*size
	if blobEnd > len(entry) {
		return nil, xerr.New(xerr.MalformedHeader, "CMbM matrix data exceeds entry bounds")
	}
	blob := entry[blobStart:blobEnd]

	m := &MatrixEntry{Dims: dims, Kind: kind}
	switch kind {
	case KindFloat:
		m.Floats = widenFloats(blob, size, total)
	case KindInt:
		m.Ints = widenInts(blob, size, total)
	case KindUint:
		m.Uints = widenUints(blob, size, total)
	}
	return m, nil
}

func cString(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}
