package rawcodec

import "testing"

// packedEntry builds a packed-table u32: bits 27..31 = length, bits 0..26 =
// code bits left-justified within length.
func packedEntry(length int, code uint32) uint32 {
	return (uint32(length) << 27) | (code << uint(27-length))
}

func TestDecodeCompressed_AllZeroDiffs(t *testing.T) {
	// Single-symbol table: code 0b0 (len 1) maps to symbol 0 (diff 0).
	table := []uint32{packedEntry(1, 0b0)}

	d := HuffmanImageDecoder{Bits: 10, Cols: 2, Rows: 2}
	// Each row needs cols*3 diff codes, each one bit (all zero bits).
	// 2 cols * 3 colors = 6 bits per row -> 1 byte covers it.
	data := []byte{0x00, 0x00}
	rowOffsets := []uint32{0, 1}

	out, err := d.DecodeCompressed(data, table, rowOffsets)
	if err != nil {
		t.Fatalf("DecodeCompressed: %v", err)
	}
	for i, v := range out {
		if v != 0 {
			t.Errorf("out[%d] = %d, want 0", i, v)
		}
	}
}

func TestDecodeCompressed_Desync(t *testing.T) {
	// Two-symbol table, both needing 2+ bits; bitstream is all zero so the
	// tree never reaches a leaf requiring a 1 bit, causing a missing child.
	table := []uint32{packedEntry(2, 0b10), packedEntry(2, 0b11)}
	d := HuffmanImageDecoder{Bits: 10, Cols: 1, Rows: 1}
	data := []byte{0x00}
	rowOffsets := []uint32{0}

	_, err := d.DecodeCompressed(data, table, rowOffsets)
	if err == nil {
		t.Fatal("expected desync error, got nil")
	}
}

func TestDecodeCompressed_RowOffsetsLengthMismatch(t *testing.T) {
	d := HuffmanImageDecoder{Bits: 10, Cols: 1, Rows: 2}
	table := []uint32{packedEntry(1, 0)}
	_, err := d.DecodeCompressed([]byte{0}, table, []uint32{0})
	if err == nil {
		t.Fatal("expected length-mismatch error, got nil")
	}
}

func TestDecodeNonCompressed_NoMapping(t *testing.T) {
	// bits=10: each column packs 3 channels at 10 bits each into a u32.
	// Column value of all-zero fields accumulates to zero every pixel.
	d := HuffmanImageDecoder{Bits: 10, Cols: 2, Rows: 1}
	rowStride := d.Cols * 4
	data := make([]byte, rowStride)

	out, err := d.DecodeNonCompressed(data, rowStride)
	if err != nil {
		t.Fatalf("DecodeNonCompressed: %v", err)
	}
	for i, v := range out {
		if v != 0 {
			t.Errorf("out[%d] = %d, want 0", i, v)
		}
	}
}

func TestDecodeNonCompressed_WithMapping(t *testing.T) {
	d := HuffmanImageDecoder{Bits: 8, Cols: 1, Rows: 1, Mapping: make([]uint16, 256)}
	d.Mapping[5] = 42
	rowStride := d.Cols * 4
	data := make([]byte, rowStride)
	data[0] = 5 // column 0, channel 0 field = 5

	out, err := d.DecodeNonCompressed(data, rowStride)
	if err != nil {
		t.Fatalf("DecodeNonCompressed: %v", err)
	}
	if out[0] != 42 {
		t.Errorf("out[0] = %d, want 42", out[0])
	}
}

func TestDecodeNonCompressed_TruncatedStream(t *testing.T) {
	d := HuffmanImageDecoder{Bits: 10, Cols: 4, Rows: 4}
	_, err := d.DecodeNonCompressed(make([]byte, 4), 16)
	if err == nil {
		t.Fatal("expected truncated-stream error, got nil")
	}
}

func TestBitMask(t *testing.T) {
	cases := map[int]uint32{8: 0xff, 9: 0x1ff, 10: 0x3ff, 11: 0x7ff, 12: 0xfff, 7: 0}
	for bits, want := range cases {
		if got := bitMask(bits); got != want {
			t.Errorf("bitMask(%d) = %#x, want %#x", bits, got, want)
		}
	}
}
