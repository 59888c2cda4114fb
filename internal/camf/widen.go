package camf

import "math"

// widenFloats decodes a blob of 4-byte IEEE-754 floats into float64s
// (get_matrix_copy's M_FLOAT / size-4 case; no other element size
// widens to float in practice).
func widenFloats(blob []byte, size, count int) []float64 {
	out := make([]float64, count)
	for i := 0; i < count; i++ {
		bits := le32(blob[i*size : i*size+4])
		out[i] = float64(math.Float32frombits(bits))
	}
	return out
}

// widenInts decodes signed elements (int16 or int32 on disk) into int32.
func widenInts(blob []byte, size, count int) []int32 {
	out := make([]int32, count)
	for i := 0; i < count; i++ {
		switch size {
		case 2:
			out[i] = int32(int16(le16(blob[i*2 : i*2+2])))
		case 4:
			out[i] = int32(le32(blob[i*4 : i*4+4]))
		}
	}
	return out
}

// widenUints decodes unsigned elements (uint8, uint16, or uint32 on
// disk) into uint32.
func widenUints(blob []byte, size, count int) []uint32 {
	out := make([]uint32, count)
	for i := 0; i < count; i++ {
		switch size {
		case 1:
			out[i] = uint32(blob[i])
		case 2:
			out[i] = uint32(le16(blob[i*2 : i*2+2]))
		case 4:
			out[i] = le32(blob[i*4 : i*4+4])
		}
	}
	return out
}

func le16(b []byte) uint16 { return uint16(b[0]) | uint16(b[1])<<8 }
