package x3f

import "github.com/sigmaraw/x3fcore/internal/develop"

// RenderOptions controls Render's development pipeline: which white
// balance and output color space to use, and optional overrides for
// values the file's own metadata would otherwise supply.
type RenderOptions struct {
	// WhiteBalance selects the calibration entry Render applies (e.g.
	// "Sunlight", "Auto"). Empty selects the file's own recorded white
	// balance (MetaAccess.GetWB).
	WhiteBalance string

	// OutputSpace selects the gamma/matrix target. Zero value is sRGB.
	OutputSpace develop.OutputSpace

	// ISO is carried in the options but Render does not read it: no
	// ISO-based exposure scaling is applied, whatever its value.
	ISO float64

	// Denoise, if set, is applied to the preprocessed (intermediate-depth)
	// image before spatial gain and color conversion. This package
	// implements no denoiser itself; Denoise is the seam a caller attaches
	// one to.
	Denoise func(develop.PixelArea) develop.PixelArea
}
