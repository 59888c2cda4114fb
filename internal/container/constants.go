// Package container implements the X3F ContainerParser: it validates the
// file header, walks the trailing directory, and eagerly reads each
// directory entry's small type-specific header while deferring the
// (potentially large) payload body to the caller. This is the lazy
// directory-driven loading scheme adapted from a forward chunk scan (as
// a RIFF container walks chunks) to a trailing-directory scan.
package container

import "encoding/binary"

// Magic identifiers (little-endian 32-bit, matching the on-disk ASCII
// tag read as a uint32).
const (
	MagicFOVb uint32 = 0x62564f46 // "FOVb"
	MagicSECd uint32 = 0x64434553 // "SECd"
	MagicSECp uint32 = 0x70434553 // "SECp"
	MagicSECi uint32 = 0x69434553 // "SECi"
	MagicSECc uint32 = 0x63434553 // "SECc"
)

// SectionType is the directory entry's type tag.
type SectionType uint32

const (
	SectionProperty = SectionType(MagicSECp)
	SectionImage    = SectionType(MagicSECi)
	SectionCamf     = SectionType(MagicSECc)
)

// Recognized type_format values (type<<16 | format) for image sections.
const (
	TypeFormatThumbPlain       uint32 = 0x00030001
	TypeFormatThumbHuffman     uint32 = 0x00020002
	TypeFormatThumbJPEG        uint32 = 0x00020012
	TypeFormatRawHuffmanX530   uint32 = 0x00020003
	TypeFormatRawHuffman10Bit  uint32 = 0x0002000B
	TypeFormatRawTRUE          uint32 = 0x0003001E
	TypeFormatRawMerrill       uint32 = 0x00010005
	TypeFormatRawQuattro       uint32 = 0x00010006
)

// CAMF payload variants.
const (
	CamfTypeCrypt SectionType2 = 2 // XOR stream cipher
	CamfType4     SectionType2 = 4 // TRUE-codec, 12-bit nibble-interleaved
	CamfType5     SectionType2 = 5 // TRUE-codec, one byte per symbol
)

// SectionType2 names a CAMF payload variant (named to avoid colliding
// with SectionType, which names directory-entry tags).
type SectionType2 uint32

// Fixed on-disk header sizes (bytes), used by the ContainerParser to
// locate each entry's body without reading it.
const (
	HeaderSizeHeaderV20   = 4 + 4 + 16 + 4 + 4 + 4 + 4 // magic,version,uid,mark,cols,rows,rotation
	HeaderSizeWBName      = 32
	HeaderSizeExtTypes    = 32
	HeaderSizeExtDataV21  = 32 * 4
	HeaderSizeExtDataV30  = 64 * 4

	DirectoryHeaderSize = 4 + 4 + 4      // magic, version, n
	DirectoryEntrySize  = 4 + 4 + 4      // offset, size, type

	PropertyHeaderSize = 4 + 4 + 4 + 4 + 4 + 4 // magic,version,num,char_fmt,reserved,total_length
	PropertyPairSize   = 4 + 4                 // name_off, value_off

	ImageHeaderSize = 4 + 4 + 4 + 4 + 4 + 4 + 4 // magic,version,type,format,cols,rows,row_stride

	CamfHeaderSize = 4 + 4 + 4 + 4*4 // magic,version,camf_type,v0..v3
)

// Version encodes major<<16|minor, as stored in the file header.
type Version uint32

func (v Version) Major() int { return int(v >> 16) }
func (v Version) Minor() int { return int(v & 0xffff) }

// AtLeast21 reports whether the version is 2.1 or newer, the point at
// which the header grows the white-balance/extended-data tail.
func (v Version) AtLeast21() bool {
	return v.Major() > 2 || (v.Major() == 2 && v.Minor() >= 1)
}

// AtLeast30 reports whether the version is 3.0 or newer, which doubles
// the extended-data vector length (32 -> 64).
func (v Version) AtLeast30() bool {
	return v.Major() >= 3
}

func le32(b []byte) uint32 { return binary.LittleEndian.Uint32(b) }
