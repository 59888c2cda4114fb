package develop

import (
	"math"

	"github.com/sigmaraw/x3fcore/internal/camf"
	"github.com/sigmaraw/x3fcore/internal/xerr"
)

// Preprocessor carries the state needed to linearize a decoded raw plane
// into the shared 14-bit intermediate depth used by every downstream
// stage, grounded on x3f_process.c's preprocess_data.
type Preprocessor struct {
	Meta        *camf.Access
	CameraModel string
	Colors      int
}

// LinearizeResult carries the values preprocess_data derives alongside
// the rescaled image, needed again by ColorPipeline.
type LinearizeResult struct {
	BlackLevel [3]float64
	MaxRaw     [3]uint32
	Bias       float64
}

// Run repairs bad pixels in place and rescales raw (in its own native
// depth) into the shared 14-bit intermediate space, clamped to
// [0,65535]. keep is the KeepImageArea rect in raw's own
// coordinate system (used only to offset the bad-pixel sources' relative
// coordinates onto raw's plane).
func (p *Preprocessor) Run(raw PixelArea, keep [4]uint32, luma bool) (LinearizeResult, error) {
	level, dev, ok := BlackLevel(p.Meta, raw, p.Colors, p.CameraModel)
	if !ok {
		return LinearizeResult{}, xerr.New(xerr.NotFound, "no usable black-level reference rectangles")
	}

	maxRaw, err := p.Meta.GetMaxRaw()
	if err != nil {
		return LinearizeResult{}, err
	}

	bad := collectBadPixels(p.Meta, raw.Cols, raw.Rows, keep, p.CameraModel, luma)
	bad.Interpolate(raw, p.Colors)

	bias := intermediateBias(level, dev, maxRaw, p.Colors)

	scale := make([]float64, p.Colors)
	for c := 0; c < p.Colors; c++ {
		denom := float64(maxRaw[c%3]) - level[c]
		if denom <= 0 {
			denom = 1
		}
		scale[c] = (IntermediateUnit - bias) / denom
	}

	for row := 0; row < raw.Rows; row++ {
		for col := 0; col < raw.Cols; col++ {
			base := raw.At(row, col)
			for c := 0; c < p.Colors; c++ {
				v := scale[c]*(float64(raw.Data[base+c])-level[c]) + bias
				raw.Data[base+c] = clampIntermediate(v)
			}
		}
	}

	return LinearizeResult{BlackLevel: level, MaxRaw: maxRaw, Bias: bias}, nil
}

// intermediateBias computes the shared black bias get_intermediate_bias
// derives from the per-channel noise estimate: the largest of
// IntermediateBiasFactor * sigma_c * IntermediateUnit / (max_raw_c -
// black_level_c) across channels, clamped to the intermediate unit so a
// pathologically small dynamic range can't push the bias past it.
func intermediateBias(level, dev [3]float64, maxRaw [3]uint32, colors int) float64 {
	bias := 0.0
	for c := 0; c < colors; c++ {
		denom := float64(maxRaw[c%3]) - level[c]
		if denom <= 0 {
			continue
		}
		b := IntermediateBiasFactor * dev[c] * IntermediateUnit / denom
		if b > bias {
			bias = b
		}
	}
	if bias > IntermediateUnit {
		bias = IntermediateUnit
	}
	if bias < 0 {
		bias = 0
	}
	return bias
}

func clampIntermediate(v float64) uint16 {
	r := math.Round(v)
	if r < 0 {
		return 0
	}
	if r > 65535 {
		return 65535
	}
	return uint16(r)
}
