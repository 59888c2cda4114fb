package camf

import "testing"

// fixedOffsetPayload builds a CAMF type-4/5 payload whose length-table scan
// ends well before camfT4T5BitstreamOffset: bytes [0:4) are a one-entry
// table (length=1,prefix=0 terminated by length=0), bytes [4:32) are
// non-zero filler that would desync the Huffman tree if the bitstream
// were (wrongly) read starting right after the scan, and the real
// all-zero bitstream starts at the fixed offset.
func fixedOffsetPayload(bitstreamBytes int) []byte {
	b := make([]byte, camfT4T5BitstreamOffset+bitstreamBytes)
	b[0], b[1] = 1, 0 // one table entry: length 1, prefix 0 -> symbol 0 (L=0)
	b[2], b[3] = 0, 0 // terminator
	for i := 4; i < camfT4T5BitstreamOffset; i++ {
		b[i] = 0xff
	}
	// b[camfT4T5BitstreamOffset:] left zero: every GetDiff call decodes
	// length 0 -> diff 0.
	return b
}

func TestDecodeType4_BitstreamStartsAtFixedOffset(t *testing.T) {
	payload := fixedOffsetPayload(1)
	// blockCount*blockSize = 2 symbols, each costing 1 bit -> fits in the
	// single zero byte at the fixed offset. decodedSize=3 matches one
	// pair of 12-bit values packed into 3 bytes.
	out, err := DecodeType4(payload, 3, 0, 2, 1)
	if err != nil {
		t.Fatalf("DecodeType4: %v", err)
	}
	for i, v := range out {
		if v != 0 {
			t.Errorf("out[%d] = %#x, want 0 (decodeBias with all-zero diffs)", i, v)
		}
	}
}

func TestDecodeType4_DecodeBiasAppearsInOutput(t *testing.T) {
	payload := fixedOffsetPayload(1)
	out, err := DecodeType4(payload, 3, 0x0ab, 2, 1)
	if err != nil {
		t.Fatalf("DecodeType4: %v", err)
	}
	// Both lattice values equal decodeBias (0x0ab); nibble-packed into 3
	// bytes: AB A B B... verify the high nibble of byte 0 carries it.
	if out[0] != 0x0a {
		t.Errorf("out[0] = %#x, want high byte of decodeBias 0x0ab", out[0])
	}
}

func TestDecodeType5_BitstreamStartsAtFixedOffset(t *testing.T) {
	payload := fixedOffsetPayload(1)
	out, err := DecodeType5(payload, 4, 0)
	if err != nil {
		t.Fatalf("DecodeType5: %v", err)
	}
	for i, v := range out {
		if v != 0 {
			t.Errorf("out[%d] = %#x, want 0", i, v)
		}
	}
}

func TestDecodeType5_AccumulatesFromDecodeBias(t *testing.T) {
	payload := fixedOffsetPayload(1)
	out, err := DecodeType5(payload, 2, 7)
	if err != nil {
		t.Fatalf("DecodeType5: %v", err)
	}
	for i, v := range out {
		if v != 7 {
			t.Errorf("out[%d] = %d, want 7 (decodeBias, zero diffs)", i, v)
		}
	}
}

func TestDecodeType4_TruncatedPayloadBeforeBitstream(t *testing.T) {
	// Table present, but payload ends before the fixed bitstream offset.
	payload := []byte{1, 0, 0, 0}
	_, err := DecodeType4(payload, 3, 0, 2, 1)
	if err == nil {
		t.Fatal("expected truncated-stream error, got nil")
	}
}
