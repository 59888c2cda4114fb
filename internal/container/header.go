package container

import (
	"math"

	"github.com/sigmaraw/x3fcore/internal/xerr"
)

// Header is the fixed-position file header.
type Header struct {
	Version      Version
	UID          [16]byte
	Mark         uint32
	Cols, Rows   uint32
	Rotation     uint32
	WhiteBalance string    // only set for Version >= 2.1
	ExtTypes     [32]byte  // only set for Version >= 2.1
	ExtData      []float32 // 32 entries for 2.1/2.2, 64 for 3.0+; nil before 2.1
}

// ParseHeader reads and validates the file header from the start of data.
// It returns the header and the number of bytes consumed.
func ParseHeader(data []byte) (Header, int, error) {
	if len(data) < HeaderSizeHeaderV20 {
		return Header{}, 0, xerr.New(xerr.MalformedHeader, "file too small for header (%d bytes)", len(data))
	}
	if le32(data[0:4]) != MagicFOVb {
		return Header{}, 0, xerr.New(xerr.MalformedHeader, "bad magic: got %08x, want %08x", le32(data[0:4]), MagicFOVb)
	}

	var h Header
	h.Version = Version(le32(data[4:8]))
	copy(h.UID[:], data[8:24])
	h.Mark = le32(data[24:28])
	h.Cols = le32(data[28:32])
	h.Rows = le32(data[32:36])
	h.Rotation = le32(data[36:40])

	pos := HeaderSizeHeaderV20
	if h.Version.AtLeast21() {
		extDataCount := 32
		if h.Version.AtLeast30() {
			extDataCount = 64
		}
		need := HeaderSizeWBName + HeaderSizeExtTypes + extDataCount*4
		if len(data) < pos+need {
			return Header{}, 0, xerr.New(xerr.MalformedHeader, "truncated v2.1+ header tail")
		}
		wbName := data[pos : pos+HeaderSizeWBName]
		h.WhiteBalance = cString(wbName)
		pos += HeaderSizeWBName

		copy(h.ExtTypes[:], data[pos:pos+HeaderSizeExtTypes])
		pos += HeaderSizeExtTypes

		h.ExtData = make([]float32, extDataCount)
		for i := 0; i < extDataCount; i++ {
			bits := le32(data[pos+i*4 : pos+i*4+4])
			h.ExtData[i] = math.Float32frombits(bits)
		}
		pos += extDataCount * 4
	}

	return h, pos, nil
}

// cString trims a fixed-size ASCII field at its first NUL byte.
func cString(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}
