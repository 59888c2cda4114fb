package container

import (
	"github.com/sigmaraw/x3fcore/internal/xerr"
)

// PropertyHeader is the small fixed header at the start of a SECp body.
type PropertyHeader struct {
	NumProps    uint32
	CharFormat  uint32
	Reserved    uint32
	TotalLength uint32
	HeaderSize  int // bytes from the start of the body to the first (name_off,value_off) pair
}

// ImageHeader is the small fixed header at the start of a SECi body.
type ImageHeader struct {
	Type, Format       uint32
	Cols, Rows         uint32
	RowStride          uint32
	HeaderSize         int // bytes from the start of the body to the codec payload
}

// TypeFormat returns the combined (type<<16 | format) discriminator used
// to select a codec.
func (h ImageHeader) TypeFormat() uint32 { return h.Type<<16 | h.Format }

// CamfHeader is the small fixed header at the start of a SECc body, plus
// its four variant-specific words.
type CamfHeader struct {
	CamfType   SectionType2
	V0, V1, V2, V3 uint32
	HeaderSize int
}

// Crypt returns the type-2 interpretation of the header words:
// (reserved, infotype, infotype_version, crypt_key).
func (h CamfHeader) Crypt() (reserved, infoType, infoTypeVersion, cryptKey uint32) {
	return h.V0, h.V1, h.V2, h.V3
}

// Type4 returns the type-4 interpretation: (decoded_size, decode_bias, block_size, block_count).
func (h CamfHeader) Type4() (decodedSize, decodeBias, blockSize, blockCount uint32) {
	return h.V0, h.V1, h.V2, h.V3
}

// Type5 returns the type-5 interpretation, same layout as Type4.
func (h CamfHeader) Type5() (decodedSize, decodeBias, blockSize, blockCount uint32) {
	return h.V0, h.V1, h.V2, h.V3
}

// Entry is one directory entry: the location/size/type of a section, plus
// its eagerly-read type-specific header. Exactly one of Property, Image,
// Camf is non-nil, selected by Type.
type Entry struct {
	Offset, Size uint32
	Type         SectionType

	Property *PropertyHeader
	Image    *ImageHeader
	Camf     *CamfHeader

	// BodyOffset is the absolute offset of the body (past the
	// type-specific header) within the original file data.
	BodyOffset uint32
}

// Directory holds the parsed trailing directory: all entries, with their
// small headers already read, payload bodies left unread.
type Directory struct {
	Entries []Entry
}

// ParseDirectory reads the trailing directory from data (the whole file
// buffer) and the eagerly-loaded per-entry headers. The directory offset
// is the 32-bit little-endian value at file-length-4.
func ParseDirectory(data []byte) (Directory, error) {
	if len(data) < 4 {
		return Directory{}, xerr.New(xerr.MalformedHeader, "file too small to contain a directory offset")
	}
	dirOffset := le32(data[len(data)-4:])
	if int(dirOffset)+DirectoryHeaderSize > len(data) {
		return Directory{}, xerr.New(xerr.MalformedHeader, "directory offset %d past EOF", dirOffset)
	}

	buf := data[dirOffset:]
	if le32(buf[0:4]) != MagicSECd {
		return Directory{}, xerr.New(xerr.MalformedHeader, "bad directory magic: got %08x, want %08x", le32(buf[0:4]), MagicSECd)
	}
	n := le32(buf[8:12])

	need := DirectoryHeaderSize + int(n)*DirectoryEntrySize
	if need > len(buf) {
		return Directory{}, xerr.New(xerr.MalformedHeader, "directory extends past EOF (n=%d)", n)
	}

	dir := Directory{Entries: make([]Entry, 0, n)}
	pos := DirectoryHeaderSize
	for i := uint32(0); i < n; i++ {
		off := le32(buf[pos : pos+4])
		size := le32(buf[pos+4 : pos+8])
		typ := le32(buf[pos+8 : pos+12])
		pos += DirectoryEntrySize

		if uint64(off)+uint64(size) > uint64(len(data)) {
			return Directory{}, xerr.New(xerr.MalformedHeader, "entry %d offset/size out of bounds (off=%d size=%d)", i, off, size)
		}

		entry, err := parseEntryHeader(data, off, size, SectionType(typ))
		if err != nil {
			return Directory{}, err
		}
		dir.Entries = append(dir.Entries, entry)
	}

	return dir, nil
}

// parseEntryHeader reads the small type-specific header at the start of
// an entry's body (not the body itself).
func parseEntryHeader(data []byte, off, size uint32, typ SectionType) (Entry, error) {
	entry := Entry{Offset: off, Size: size, Type: typ}
	body := data[off : off+size]

	switch typ {
	case SectionProperty:
		if len(body) < PropertyHeaderSize {
			return Entry{}, xerr.New(xerr.MalformedHeader, "truncated property header")
		}
		if le32(body[0:4]) != MagicSECp {
			return Entry{}, xerr.New(xerr.MalformedHeader, "bad SECp magic")
		}
		entry.Property = &PropertyHeader{
			NumProps:    le32(body[8:12]),
			CharFormat:  le32(body[12:16]),
			Reserved:    le32(body[16:20]),
			TotalLength: le32(body[20:24]),
			HeaderSize:  PropertyHeaderSize,
		}
		entry.BodyOffset = off + PropertyHeaderSize

	case SectionImage:
		if len(body) < ImageHeaderSize {
			return Entry{}, xerr.New(xerr.MalformedHeader, "truncated image header")
		}
		if le32(body[0:4]) != MagicSECi {
			return Entry{}, xerr.New(xerr.MalformedHeader, "bad SECi magic")
		}
		entry.Image = &ImageHeader{
			Type:       le32(body[8:12]),
			Format:     le32(body[12:16]),
			Cols:       le32(body[16:20]),
			Rows:       le32(body[20:24]),
			RowStride:  le32(body[24:28]),
			HeaderSize: ImageHeaderSize,
		}
		entry.BodyOffset = off + ImageHeaderSize

	case SectionCamf:
		if len(body) < CamfHeaderSize {
			return Entry{}, xerr.New(xerr.MalformedHeader, "truncated CAMF header")
		}
		if le32(body[0:4]) != MagicSECc {
			return Entry{}, xerr.New(xerr.MalformedHeader, "bad SECc magic")
		}
		entry.Camf = &CamfHeader{
			CamfType:   SectionType2(le32(body[8:12])),
			V0:         le32(body[12:16]),
			V1:         le32(body[16:20]),
			V2:         le32(body[20:24]),
			V3:         le32(body[24:28]),
			HeaderSize: CamfHeaderSize,
		}
		entry.BodyOffset = off + CamfHeaderSize

	default:
		return Entry{}, xerr.New(xerr.UnsupportedSection, "unknown directory entry type %08x", uint32(typ))
	}

	return entry, nil
}

// Body returns the entry's raw payload, i.e. the bytes following its
// type-specific header, from data (the whole file buffer).
func (e Entry) Body(data []byte) []byte {
	end := e.Offset + e.Size
	return data[e.BodyOffset:end]
}
