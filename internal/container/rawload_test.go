package container

import (
	"encoding/binary"
	"testing"

	"github.com/sigmaraw/x3fcore/internal/xerr"
)

func TestParseTrueHeader_NonQuattro(t *testing.T) {
	var body []byte
	body = append(body, le16Bytes(11)...)
	body = append(body, le16Bytes(22)...)
	body = append(body, le16Bytes(33)...)
	body = append(body, le16Bytes(0)...)
	body = append(body, 0, 0) // length-table terminator (length=0, prefix unused)
	for i := 0; i < 3; i++ {
		sz := make([]byte, 4)
		binary.LittleEndian.PutUint32(sz, uint32(16*(i+1)))
		body = append(body, sz...)
	}

	h, err := ParseTrueHeader(body, false)
	if err != nil {
		t.Fatalf("ParseTrueHeader: %v", err)
	}
	if h.Seeds != [3]uint16{11, 22, 33} {
		t.Errorf("Seeds = %v, want [11 22 33]", h.Seeds)
	}
	if len(h.Table) != 0 {
		t.Errorf("Table length = %d, want 0 (immediate terminator)", len(h.Table))
	}
	if h.BodyOffset != len(body) {
		t.Errorf("BodyOffset = %d, want %d", h.BodyOffset, len(body))
	}
}

func TestParseTrueHeader_Quattro(t *testing.T) {
	var body []byte
	for i := 0; i < 3; i++ {
		body = append(body, le16Bytes(uint16(100+i))...)
		body = append(body, le16Bytes(uint16(200+i))...)
	}
	body = append(body, le16Bytes(1)...)
	body = append(body, le16Bytes(2)...)
	body = append(body, le16Bytes(3)...)
	body = append(body, le16Bytes(0)...)
	body = append(body, 0, 0) // empty length table
	unk := make([]byte, 4)
	binary.LittleEndian.PutUint32(unk, 0xABCD)
	body = append(body, unk...)
	for i := 0; i < 3; i++ {
		sz := make([]byte, 4)
		binary.LittleEndian.PutUint32(sz, 16)
		body = append(body, sz...)
	}

	h, err := ParseTrueHeader(body, true)
	if err != nil {
		t.Fatalf("ParseTrueHeader: %v", err)
	}
	if h.QuattroGeometry[0].Cols != 100 || h.QuattroGeometry[0].Rows != 200 {
		t.Errorf("QuattroGeometry[0] = %+v, want Cols=100 Rows=200", h.QuattroGeometry[0])
	}
	if h.QuattroUnknown != 0xABCD {
		t.Errorf("QuattroUnknown = %x, want abcd", h.QuattroUnknown)
	}
}

func TestParseTrueHeader_TruncatedSeeds(t *testing.T) {
	_, err := ParseTrueHeader([]byte{1, 2, 3}, false)
	if !xerr.Is(err, xerr.TruncatedStream) {
		t.Errorf("error = %v, want TruncatedStream", err)
	}
}

func TestParseLegacyHuffmanHeader_NoMapping(t *testing.T) {
	tableSize := 1 << 10
	body := make([]byte, tableSize*4+8)
	h, err := ParseLegacyHuffmanHeader(body, 10, false)
	if err != nil {
		t.Fatalf("ParseLegacyHuffmanHeader: %v", err)
	}
	if h.Mapping != nil {
		t.Error("Mapping should be nil when useMapping is false")
	}
	if len(h.Table) != tableSize {
		t.Errorf("len(Table) = %d, want %d", len(h.Table), tableSize)
	}
	if h.BodyOffset != tableSize*4 {
		t.Errorf("BodyOffset = %d, want %d", h.BodyOffset, tableSize*4)
	}
}

func TestParseLegacyHuffmanHeader_Truncated(t *testing.T) {
	_, err := ParseLegacyHuffmanHeader(make([]byte, 4), 10, false)
	if !xerr.Is(err, xerr.TruncatedStream) {
		t.Errorf("error = %v, want TruncatedStream", err)
	}
}

func TestParseRowOffsets(t *testing.T) {
	data := make([]byte, 3*4+5)
	binary.LittleEndian.PutUint32(data[5:9], 111)
	binary.LittleEndian.PutUint32(data[9:13], 222)
	binary.LittleEndian.PutUint32(data[13:17], 333)

	offsets, err := ParseRowOffsets(data, 3)
	if err != nil {
		t.Fatalf("ParseRowOffsets: %v", err)
	}
	want := []uint32{111, 222, 333}
	for i, w := range want {
		if offsets[i] != w {
			t.Errorf("offsets[%d] = %d, want %d", i, offsets[i], w)
		}
	}
}

func TestParseRowOffsets_TooShort(t *testing.T) {
	_, err := ParseRowOffsets(make([]byte, 4), 3)
	if !xerr.Is(err, xerr.TruncatedStream) {
		t.Errorf("error = %v, want TruncatedStream", err)
	}
}

func le16Bytes(v uint16) []byte {
	return []byte{byte(v), byte(v >> 8)}
}
