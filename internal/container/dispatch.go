package container

import (
	"github.com/sigmaraw/x3fcore/internal/camf"
	"github.com/sigmaraw/x3fcore/internal/rawcodec"
	"github.com/sigmaraw/x3fcore/internal/xerr"
)

// ImagePlane is a decoded SECi payload: either an 8-bit verbatim plane
// (THUMB_PLAIN, THUMB_JPEG) or a 16-bit plane (raw, and the decoded
// THUMB_HUFFMAN thumbnail), plus, for Quattro raw, the full-resolution
// top-layer geometry the QuattroExpander needs.
type ImagePlane struct {
	Cols, Rows, Channels int
	Pixels16             []uint16
	Pixels8              []byte // set instead of Pixels16 for the verbatim formats
	JPEG                 bool   // Pixels8 holds an undecoded JPEG stream (THUMB_JPEG)
	Quattro              bool
	QuattroTop           QuattroPlaneGeometry // geometry of plane index 2 (luma/top) when Quattro
}

// LoadImage dispatches a SECi entry's body to the codec selected by its
// type_format.
func LoadImage(e Entry, body []byte) (ImagePlane, error) {
	if e.Image == nil {
		return ImagePlane{}, xerr.New(xerr.MalformedHeader, "LoadImage called on non-image entry")
	}
	ih := *e.Image
	cols, rows := int(ih.Cols), int(ih.Rows)

	switch ih.TypeFormat() {
	case TypeFormatThumbPlain:
		need := cols * rows * 3
		if len(body) < need {
			return ImagePlane{}, xerr.New(xerr.TruncatedStream, "THUMB_PLAIN body too small: have %d, want %d", len(body), need)
		}
		return ImagePlane{Cols: cols, Rows: rows, Channels: 3, Pixels8: body[:need]}, nil

	case TypeFormatThumbJPEG:
		return ImagePlane{Cols: cols, Rows: rows, Channels: 3, Pixels8: body, JPEG: true}, nil

	case TypeFormatThumbHuffman:
		pix, err := loadLegacyHuffman(body, 8, false, cols, rows, int(ih.RowStride))
		if err != nil {
			return ImagePlane{}, err
		}
		return ImagePlane{Cols: cols, Rows: rows, Channels: 3, Pixels16: pix}, nil

	case TypeFormatRawHuffmanX530, TypeFormatRawHuffman10Bit:
		pix, err := loadLegacyHuffman(body, 10, true, cols, rows, int(ih.RowStride))
		if err != nil {
			return ImagePlane{}, err
		}
		return ImagePlane{Cols: cols, Rows: rows, Channels: 3, Pixels16: pix}, nil

	case TypeFormatRawTRUE, TypeFormatRawMerrill, TypeFormatRawQuattro:
		quattro := ih.TypeFormat() == TypeFormatRawQuattro
		th, err := ParseTrueHeader(body, quattro)
		if err != nil {
			return ImagePlane{}, err
		}
		decoder := BuildTrueDecoder(th, cols, rows, quattro)
		pix, err := decoder.Decode(body[th.BodyOffset:])
		if err != nil {
			return ImagePlane{}, err
		}
		plane := ImagePlane{Cols: cols, Rows: rows, Channels: 3, Pixels16: pix, Quattro: quattro}
		if quattro {
			plane.QuattroTop = th.QuattroGeometry[2]
		}
		return plane, nil

	default:
		return ImagePlane{}, xerr.New(xerr.UnsupportedSection, "unrecognized image type_format %08x", ih.TypeFormat())
	}
}

// loadLegacyHuffman runs the HuffmanImageDecoder over a legacy body,
// choosing the row-indexed (compressed) or non-compressed path by
// whether rowStride is zero.
func loadLegacyHuffman(body []byte, bits int, useMapping bool, cols, rows, rowStride int) ([]uint16, error) {
	hdr, err := ParseLegacyHuffmanHeader(body, bits, useMapping)
	if err != nil {
		return nil, err
	}
	dec := rawcodec.HuffmanImageDecoder{Bits: bits, Cols: cols, Rows: rows, Mapping: hdr.Mapping}
	payload := body[hdr.BodyOffset:]

	if rowStride == 0 {
		rowOffsets, err := ParseRowOffsets(payload, rows)
		if err != nil {
			return nil, err
		}
		return dec.DecodeCompressed(payload, hdr.Table, rowOffsets)
	}
	return dec.DecodeNonCompressed(payload, rowStride)
}

// LoadCamf decodes a SECc entry's body (past its CamfHeader) into parsed
// CAMF entries, dispatching on camf_type.
func LoadCamf(e Entry, body []byte) ([]camf.Entry, error) {
	if e.Camf == nil {
		return nil, xerr.New(xerr.MalformedHeader, "LoadCamf called on non-CAMF entry")
	}
	ch := *e.Camf

	var plain []byte
	switch ch.CamfType {
	case CamfTypeCrypt:
		_, _, _, key := ch.Crypt()
		plain = camf.DecryptType2(body, key)

	case CamfType4:
		decodedSize, decodeBias, blockSize, blockCount := ch.Type4()
		decoded, err := camf.DecodeType4(body, decodedSize, decodeBias, blockSize, blockCount)
		if err != nil {
			return nil, err
		}
		plain = decoded

	case CamfType5:
		decodedSize, decodeBias, _, _ := ch.Type5()
		decoded, err := camf.DecodeType5(body, decodedSize, decodeBias)
		if err != nil {
			return nil, err
		}
		plain = decoded

	default:
		return nil, xerr.New(xerr.UnsupportedSection, "unsupported CAMF type %d", ch.CamfType)
	}

	return camf.ParseEntries(plain)
}
