package camf

import (
	"github.com/sigmaraw/x3fcore/internal/bitio"
	"github.com/sigmaraw/x3fcore/internal/huffcode"
	"github.com/sigmaraw/x3fcore/internal/rawcodec"
	"github.com/sigmaraw/x3fcore/internal/xerr"
)

// DecodeType4 reverses the CAMF type-4 obfuscation: the same 2x2-lattice
// TRUE predictor used for raw image planes (internal/rawcodec), but
// writing a 12-bit packed, nibble-interleaved byte stream instead of
// plane pixels.
//
// payload is the CAMF body past its fixed header: a Huffman length-table
// (terminated by length==0) occupying a fixed 28-byte slot at the start
// of payload, followed by the bitstream, which always begins at the
// fixed offset camfT4T5BitstreamOffset regardless of where the table
// scan itself terminates.
func DecodeType4(payload []byte, decodedSize, decodeBias, blockSize, blockCount uint32) ([]byte, error) {
	table, err := readLengthTable(payload)
	if err != nil {
		return nil, err
	}
	tree, err := huffcode.BuildLengthCodeTable(table)
	if err != nil {
		return nil, xerr.Wrap(xerr.MalformedHeader, err, "building CAMF type-4 huffman tree")
	}
	if camfT4T5BitstreamOffset > len(payload) {
		return nil, xerr.New(xerr.TruncatedStream, "CAMF type-4 bitstream offset past payload end")
	}

	out := make([]byte, decodedSize)
	r := bitio.NewReader(payload[camfT4T5BitstreamOffset:])

	pos := 0
	oddDst := false
	done := false
	err = rawcodec.LatticeDecode(r, tree, int(blockCount), int(blockSize), int32(decodeBias), func(_, _ int, value int32) {
		if done {
			return
		}
		v := uint32(value)
		if !oddDst {
			out[pos] = byte((v >> 4) & 0xff)
			pos++
			if pos >= len(out) {
				done = true
				oddDst = !oddDst
				return
			}
			out[pos] = byte((v << 4) & 0xf0)
		} else {
			out[pos] |= byte((v >> 8) & 0x0f)
			pos++
			if pos >= len(out) {
				done = true
				oddDst = !oddDst
				return
			}
			out[pos] = byte(v & 0xff)
			pos++
			if pos >= len(out) {
				done = true
			}
		}
		oddDst = !oddDst
	})
	if err != nil {
		return nil, xerr.Wrap(xerr.HuffmanDesync, err, "CAMF type-4 decode")
	}
	return out, nil
}

// DecodeType5 reverses the CAMF type-5 obfuscation: a single flat
// accumulator (no 2x2 lattice) seeded with decodeBias, writing one byte
// per symbol as value & 0xff.
func DecodeType5(payload []byte, decodedSize, decodeBias uint32) ([]byte, error) {
	table, err := readLengthTable(payload)
	if err != nil {
		return nil, err
	}
	tree, err := huffcode.BuildLengthCodeTable(table)
	if err != nil {
		return nil, xerr.Wrap(xerr.MalformedHeader, err, "building CAMF type-5 huffman tree")
	}
	if camfT4T5BitstreamOffset > len(payload) {
		return nil, xerr.New(xerr.TruncatedStream, "CAMF type-5 bitstream offset past payload end")
	}

	out := make([]byte, decodedSize)
	r := bitio.NewReader(payload[camfT4T5BitstreamOffset:])

	acc := int32(decodeBias)
	for i := range out {
		diff, err := rawcodec.GetDiff(r, tree)
		if err != nil {
			return nil, xerr.Wrap(xerr.HuffmanDesync, err, "CAMF type-5 decode at byte %d", i)
		}
		acc += diff
		out[i] = byte(acc & 0xff)
	}
	return out, nil
}

// camfT4T5BitstreamOffset is the fixed byte offset, within a CAMF type-4/5
// payload, at which the entropy-coded bitstream begins: the table slot
// preceding it is a fixed 28 bytes regardless of how many entries the
// scan actually finds before its length==0 terminator.
const camfT4T5BitstreamOffset = 32

// readLengthTable reads a (length, prefix-byte) stream terminated by
// length==0 from the start of payload. The table occupies a fixed slot
// ending before camfT4T5BitstreamOffset; the scan's own end position is
// not used to locate the bitstream.
func readLengthTable(payload []byte) ([]huffcode.LengthCodeEntry, error) {
	var entries []huffcode.LengthCodeEntry
	p := 0
	for {
		if p+2 > len(payload) {
			return nil, xerr.New(xerr.TruncatedStream, "truncated huffman length table")
		}
		length := payload[p]
		prefix := payload[p+1]
		p += 2
		if length == 0 {
			break
		}
		entries = append(entries, huffcode.LengthCodeEntry{Length: int(length), Prefix: prefix})
	}
	return entries, nil
}
