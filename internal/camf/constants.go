// Package camf implements the CAMF (camera metadata) pipeline: the
// type-2/4/5 obfuscation decoders, CamfEntryParser's walk of the decoded
// entry stream, and MetaAccess's typed lookups over the result. Follows
// internal/container's magic-tag style for its own section header
// constants, extended with the TRUE-codec predictor from internal/rawcodec
// for the type-4/5 variants.
package camf

import "encoding/binary"

// Entry magic identifiers (little-endian 32-bit ASCII tags).
const (
	MagicCMbP uint32 = 0x50624d43 // "CMbP" property list
	MagicCMbT uint32 = 0x54624d43 // "CMbT" text
	MagicCMbM uint32 = 0x4d624d43 // "CMbM" matrix
)

// ElementType is the raw on-disk matrix element type tag.
type ElementType uint32

const (
	ElementInt16  ElementType = 0
	ElementUint32A ElementType = 1
	ElementUint32B ElementType = 2
	ElementFloat32 ElementType = 3
	ElementUint8  ElementType = 5
	ElementUint16 ElementType = 6
)

// Kind is the decoded logical type a matrix widens into.
type Kind int

const (
	KindInt Kind = iota
	KindUint
	KindFloat
)

// elementInfo returns the on-disk element byte width and the logical
// kind values of that type widen into, mirroring set_matrix_element_info.
func elementInfo(t ElementType) (size int, kind Kind, ok bool) {
	switch t {
	case ElementInt16:
		return 2, KindInt, true
	case ElementUint32A, ElementUint32B:
		return 4, KindUint, true
	case ElementFloat32:
		return 4, KindFloat, true
	case ElementUint8:
		return 1, KindUint, true
	case ElementUint16:
		return 2, KindUint, true
	default:
		return 0, 0, false
	}
}

func le32(b []byte) uint32 { return binary.LittleEndian.Uint32(b) }
