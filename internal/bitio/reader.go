// Package bitio implements the MSB-first bit extraction used by every X3F
// entropy decoder (legacy Huffman, TRUE, and the CAMF type-4/5 variants).
//
// Unlike a little-endian bitstream (as used by, say, a VP8L-style lossless
// codec), X3F packs codes starting at the most significant bit of each
// byte: a byte 0b_b7b6b5b4b3b2b1b0 yields b7 first, then b6, and so on.
package bitio

// Reader extracts bits MSB-first from a byte buffer.
//
// State is a cursor into buf plus a 0..8 offset into the current byte's
// bit array; refilling happens exactly when the offset reaches 8, the
// point at which the next byte is split into 8 individual bit flags
// indexed from b0 at position 0 (consumption then starts again at b7,
// i.e. bits[7]).
type Reader struct {
	buf    []byte
	pos    int     // index of the next unread byte in buf
	bits   [8]byte // current byte's bits, bits[0]=b0 .. bits[7]=b7
	offset int     // 0..8, index into bits consumed so far (counting down from 7)
}

// NewReader creates a Reader over buf, positioned at the first bit.
func NewReader(buf []byte) *Reader {
	r := &Reader{buf: buf, offset: 8}
	return r
}

// refill loads the next byte from buf into the bit array when the current
// byte has been fully consumed. It is a no-op otherwise.
func (r *Reader) refill() {
	if r.offset < 8 {
		return
	}
	var b byte
	if r.pos < len(r.buf) {
		b = r.buf[r.pos]
	}
	r.pos++
	for i := 0; i < 8; i++ {
		r.bits[i] = (b >> uint(i)) & 1
	}
	r.offset = 0
}

// GetBit returns the next bit (0 or 1), MSB-first.
//
// Reading past the end of buf is a programmer error: callers
// must bound their own consumption by the known image/plane size. Once
// exhausted, GetBit keeps returning 0 rather than panicking, so a decoder
// that mis-sizes a plane degrades instead of crashing.
func (r *Reader) GetBit() int {
	r.refill()
	bit := r.bits[7-r.offset]
	r.offset++
	return int(bit)
}

// GetBits reads n bits (0..32) and returns them as an unsigned integer,
// MSB-first: GetBits(n) == (GetBit()<<(n-1)) | (GetBit()<<(n-2)) | ... | GetBit().
func (r *Reader) GetBits(n int) uint32 {
	var v uint32
	for i := 0; i < n; i++ {
		v = (v << 1) | uint32(r.GetBit())
	}
	return v
}

// BytePos returns the index of the next byte in buf that has not yet been
// fully consumed (the byte currently loaded, or about to be loaded).
func (r *Reader) BytePos() int {
	if r.offset >= 8 {
		return r.pos
	}
	return r.pos - 1
}

// Exhausted reports whether the reader has consumed every byte in buf.
func (r *Reader) Exhausted() bool {
	return r.pos > len(r.buf) || (r.pos == len(r.buf) && r.offset >= 8)
}

// Seek repositions the reader to begin reading at the given byte offset
// within buf. Used by the row-indexed Huffman image decoder, where a
// trailing row-offset table gives a bit-start per row.
func (r *Reader) Seek(byteOffset int) {
	r.pos = byteOffset
	r.offset = 8
}

// SeekBits repositions the reader to an absolute bit offset from the start
// of buf (bit 0 is the MSB of buf[0]).
func (r *Reader) SeekBits(bitOffset int) {
	r.pos = bitOffset / 8
	r.offset = 8
	r.refill()
	r.offset = bitOffset % 8
}
