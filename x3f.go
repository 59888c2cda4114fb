package x3f

import (
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/sigmaraw/x3fcore/internal/camf"
	"github.com/sigmaraw/x3fcore/internal/container"
	"github.com/sigmaraw/x3fcore/internal/develop"
	"github.com/sigmaraw/x3fcore/internal/quattro"
	"github.com/sigmaraw/x3fcore/internal/xerr"
)

func init() {
	image.RegisterFormat("x3f", "FOVb", decodeThumbnail, decodeConfig)
}

// File is a parsed X3F file: the validated header/directory plus lazily
// loaded section bodies, and the CAMF/PROP metadata accessor every
// rendering stage reads from.
type File struct {
	parsed *container.Parsed
	meta   *camf.Access
}

// Open parses a complete X3F file buffer into a File, without decoding
// any raw image data yet (: ContainerParser validates only the
// header and directory).
func Open(data []byte) (*File, error) {
	p, err := container.Parse(data)
	if err != nil {
		return nil, err
	}
	return &File{parsed: p}, nil
}

// Meta returns the file's metadata accessor, building it on first use.
func (f *File) Meta() (*camf.Access, error) {
	if f.meta != nil {
		return f.meta, nil
	}
	m, err := f.parsed.Meta()
	if err != nil {
		return nil, err
	}
	f.meta = m
	return m, nil
}

// Features describes an X3F file's properties without requiring a full
// sensor development pass.
type Features struct {
	Width, Height int
	CameraModel   string
	WhiteBalance  string
	IsQuattro     bool
	HasThumbnail  bool
}

// GetFeatures reports the header dimensions, which image sections the
// directory lists, and the white balance and camera model from the
// CAMF/PROP metadata (building Meta on first use). It decodes no image
// section.
func (f *File) GetFeatures() Features {
	feat := Features{
		Width:  int(f.parsed.Header.Cols),
		Height: int(f.parsed.Header.Rows),
	}
	if m, err := f.Meta(); err == nil {
		feat.WhiteBalance = m.GetWB()
		feat.CameraModel = cameraModelFrom(m)
	}
	for _, tf := range []uint32{container.TypeFormatThumbPlain, container.TypeFormatThumbHuffman, container.TypeFormatThumbJPEG} {
		if f.parsed.FindImageByTypeFormat(tf) >= 0 {
			feat.HasThumbnail = true
		}
	}
	if idx := f.rawImageIndex(); idx >= 0 {
		e := f.parsed.Directory.Entries[idx]
		feat.IsQuattro = e.Image.TypeFormat() == container.TypeFormatRawQuattro
	}
	return feat
}

// rawImageIndex finds the directory entry holding raw sensor data (as
// opposed to a THUMB_* plane), preferring TRUE/Merrill/Quattro over the
// legacy Huffman formats when more than one raw-shaped entry is present.
func (f *File) rawImageIndex() int {
	for _, tf := range []uint32{
		container.TypeFormatRawQuattro,
		container.TypeFormatRawMerrill,
		container.TypeFormatRawTRUE,
		container.TypeFormatRawHuffman10Bit,
		container.TypeFormatRawHuffmanX530,
	} {
		if idx := f.parsed.FindImageByTypeFormat(tf); idx >= 0 {
			return idx
		}
	}
	return -1
}

// cameraModelFrom resolves the camera model string Render's bad-pixel/
// shield workaround tables key off, from CAMF text or the PROP section,
// falling back to the empty string (no workaround) when neither carries
// a usable value.
func cameraModelFrom(m *camf.Access) string {
	if model, err := m.GetText("CAMMODEL"); err == nil {
		return model
	}
	if model, err := m.GetPropEntry("CAMMODEL"); err == nil {
		return model
	}
	return ""
}

// Render fully develops the file's raw sensor data: entropy decode,
// Quattro layer merge (if applicable), black-level linearization and
// bad-pixel repair, spatial gain correction, and white-balance/matrix/
// gamma conversion to opts.OutputSpace. The result is a float64 [0,1]
// RGB plane; ToNRGBA converts it to a standard library image for display.
func (f *File) Render(opts RenderOptions) (*RenderedImage, error) {
	idx := f.rawImageIndex()
	if idx < 0 {
		return nil, xerr.New(xerr.NotFound, "no raw sensor image section present")
	}
	plane, err := f.parsed.Image(idx)
	if err != nil {
		return nil, err
	}
	meta, err := f.Meta()
	if err != nil {
		return nil, err
	}

	model := cameraModelFrom(meta)

	raw, cols, rows, err := rawPlaneFor(plane)
	if err != nil {
		return nil, err
	}

	keep, _, err := meta.ImageAreas()
	if err != nil {
		keep = [4]uint32{0, 0, uint32(cols - 1), uint32(rows - 1)}
	}

	pre := &develop.Preprocessor{Meta: meta, CameraModel: model, Colors: 3}
	lin, err := pre.Run(raw, keep, false)
	if err != nil {
		return nil, err
	}

	if opts.Denoise != nil {
		raw = opts.Denoise(raw)
	}

	wb := opts.WhiteBalance
	if wb == "" {
		wb = meta.GetWB()
	}

	conv, lut, err := develop.GetConv(meta, wb, opts.OutputSpace)
	if err != nil {
		return nil, err
	}

	var grid develop.GainGrid
	hasGrid := false
	if g, err := develop.ClassicSpatialGain(meta, wb, 3); err == nil {
		grid, hasGrid = g, true
	}

	maxIntermediate, err := develop.GetMaxIntermediate(meta, wb, lin.Bias)
	if err != nil {
		return nil, err
	}
	pixels := develop.ConvertData(raw, [3]float64{lin.Bias, lin.Bias, lin.Bias}, maxIntermediate, conv, lut, grid, hasGrid)

	return &RenderedImage{Cols: cols, Rows: rows, Pixels: pixels}, nil
}

// rawPlaneFor builds the full-resolution three-channel PixelArea Render
// operates on. For Quattro raw, TrueDecoder (internal/rawcodec) has
// already expanded every plane to the top layer's full resolution,
// nearest-neighbor-duplicating channels 0/1 and writing the genuine
// top-layer samples into channel 2 — a simpler in-decode
// alternative to QuattroExpander's tile-sum-conserving merge. Passing
// that same full-resolution data back through QuattroExpander — using
// the tile average it would itself compute as the low-res channel-2
// input — reproduces the conserving merge exactly where the two layers
// agree, and is the identity when they do; a decoder that instead kept
// the pre-duplication low-resolution chroma samples distinct from the
// top layer would let QuattroExpander's conservation actually correct
// quantization drift between the two, which TrueDecoder's output alone
// cannot express.
func rawPlaneFor(plane container.ImagePlane) (develop.PixelArea, int, int, error) {
	if !plane.Quattro {
		cols, rows := plane.Cols, plane.Rows
		return develop.PixelArea{Cols: cols, Rows: rows, Channels: 3, RowStride: cols * 3, Data: plane.Pixels16}, cols, rows, nil
	}

	topCols, topRows := int(plane.QuattroTop.Cols), int(plane.QuattroTop.Rows)
	if topCols == 0 || topRows == 0 {
		topCols, topRows = plane.Cols, plane.Rows
	}
	top := quattro.TopLayer{Cols: topCols, Rows: topRows, Pixels: extractChannel(plane, 2, topCols, topRows)}

	lowCols, lowRows := topCols/2, topRows/2
	low := quattro.LowRes{Cols: lowCols, Rows: lowRows, Pixels: make([]uint16, lowCols*lowRows*3)}
	for r := 0; r < lowRows; r++ {
		for c := 0; c < lowCols; c++ {
			ch0 := plane.Pixels16[3*((2*r)*plane.Cols+2*c)]
			ch1 := plane.Pixels16[3*((2*r)*plane.Cols+2*c)+1]
			avg := (int(top.Pixels[(2*r)*topCols+2*c]) + int(top.Pixels[(2*r)*topCols+2*c+1]) +
				int(top.Pixels[(2*r+1)*topCols+2*c]) + int(top.Pixels[(2*r+1)*topCols+2*c+1])) / 4
			idx := 3 * (r*lowCols + c)
			low.Pixels[idx] = ch0
			low.Pixels[idx+1] = ch1
			low.Pixels[idx+2] = uint16(avg)
		}
	}

	merged, err := quattro.Expand(low, top)
	if err != nil {
		return develop.PixelArea{}, 0, 0, err
	}
	return develop.PixelArea{Cols: topCols, Rows: topRows, Channels: 3, RowStride: topCols * 3, Data: merged}, topCols, topRows, nil
}

// extractChannel pulls one interleaved channel out of an RGB plane whose
// own (cols,rows) may be smaller than the requested output if the
// decoder didn't fill the full top-layer geometry.
func extractChannel(plane container.ImagePlane, channel, cols, rows int) []uint16 {
	out := make([]uint16, cols*rows)
	for r := 0; r < plane.Rows && r < rows; r++ {
		for c := 0; c < plane.Cols && c < cols; c++ {
			out[r*cols+c] = plane.Pixels16[3*(r*plane.Cols+c)+channel]
		}
	}
	return out
}

// RenderedImage is a fully developed, normalized floating-point RGB
// plane (not yet gamma-applied beyond the LUT lookup already folded into
// ConvertData's output, and not yet quantized to 8/16-bit).
type RenderedImage struct {
	Cols, Rows int
	Pixels     []float64 // interleaved RGB, length Cols*Rows*3, each channel in [0,1]
}

// ToNRGBA quantizes a RenderedImage to an 8-bit *image.NRGBA for display
// or encoding with the standard library's image/png, image/jpeg, etc.
func (r *RenderedImage) ToNRGBA() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, r.Cols, r.Rows))
	for row := 0; row < r.Rows; row++ {
		for col := 0; col < r.Cols; col++ {
			si := 3 * (row*r.Cols + col)
			di := row*img.Stride + col*4
			img.Pix[di] = quantize8(r.Pixels[si])
			img.Pix[di+1] = quantize8(r.Pixels[si+1])
			img.Pix[di+2] = quantize8(r.Pixels[si+2])
			img.Pix[di+3] = 255
		}
	}
	return img
}

func quantize8(v float64) byte {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return byte(v*255 + 0.5)
}

// readAll reads all of r, sizing the allocation up front when the reader
// advertises its length.
func readAll(r io.Reader) ([]byte, error) {
	if lr, ok := r.(interface{ Len() int }); ok {
		if n := lr.Len(); n > 0 {
			data := make([]byte, n)
			_, err := io.ReadFull(r, data)
			return data, err
		}
	}
	return io.ReadAll(r)
}

// decodeThumbnail implements the image.RegisterFormat decode hook: it
// returns the file's embedded preview/thumbnail plane rather than a full
// sensor development, since image.Decode's signature has no room for the
// white-balance/output-space choices full X3F rendering requires (use
// File.Render for that). A THUMB_PLAIN thumbnail is used if present, else
// a THUMB_HUFFMAN one; a THUMB_JPEG thumbnail is not decoded here.
func decodeThumbnail(r io.Reader) (image.Image, error) {
	data, err := readAll(r)
	if err != nil {
		return nil, fmt.Errorf("x3f: reading data: %w", err)
	}
	f, err := Open(data)
	if err != nil {
		return nil, fmt.Errorf("x3f: parsing container: %w", err)
	}
	idx := f.parsed.FindImageByTypeFormat(container.TypeFormatThumbPlain)
	if idx < 0 {
		idx = f.parsed.FindImageByTypeFormat(container.TypeFormatThumbHuffman)
	}
	if idx < 0 {
		return nil, xerr.New(xerr.NotFound, "no thumbnail image section present")
	}
	plane, err := f.parsed.Image(idx)
	if err != nil {
		return nil, err
	}
	return planeToImage(plane), nil
}

func planeToImage(plane container.ImagePlane) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, plane.Cols, plane.Rows))
	for row := 0; row < plane.Rows; row++ {
		for col := 0; col < plane.Cols; col++ {
			di := row*img.Stride + col*4
			var r, g, b byte
			si := 3 * (row*plane.Cols + col)
			switch {
			case plane.Pixels8 != nil && si+2 < len(plane.Pixels8):
				r, g, b = plane.Pixels8[si], plane.Pixels8[si+1], plane.Pixels8[si+2]
			case plane.Pixels16 != nil && si+2 < len(plane.Pixels16):
				r = byte(min(plane.Pixels16[si], 255))
				g = byte(min(plane.Pixels16[si+1], 255))
				b = byte(min(plane.Pixels16[si+2], 255))
			}
			img.Pix[di] = r
			img.Pix[di+1] = g
			img.Pix[di+2] = b
			img.Pix[di+3] = 255
		}
	}
	return img
}

// decodeConfig implements the image.RegisterFormat config hook.
func decodeConfig(r io.Reader) (image.Config, error) {
	data, err := readAll(r)
	if err != nil {
		return image.Config{}, fmt.Errorf("x3f: reading data: %w", err)
	}
	f, err := Open(data)
	if err != nil {
		return image.Config{}, fmt.Errorf("x3f: parsing container: %w", err)
	}
	feat := f.GetFeatures()
	return image.Config{
		ColorModel: color.NRGBAModel,
		Width:      feat.Width,
		Height:     feat.Height,
	}, nil
}
