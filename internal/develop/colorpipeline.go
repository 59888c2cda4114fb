package develop

import (
	"math"

	"github.com/sigmaraw/x3fcore/internal/camf"
	"github.com/sigmaraw/x3fcore/internal/xerr"
)

// OutputSpace names a target RGB working space ConvertData's gamma LUT is
// built for (get_conv's COLORSPACE switch).
type OutputSpace int

const (
	SRGB OutputSpace = iota
	AdobeRGB
	ProPhotoRGB
)

// bmtToXYZMatrices are the fixed BMT (Bayer/Merrill/TRUE sensor native)
// to XYZ matrices x3f_get_bmt_to_xyz selects among by camera generation,
// reproduced from x3f_matrix.c's hardcoded arrays.
var bmtToXYZMatrices = map[string][9]float64{
	"TRUE": {
		0.97082, -0.21697, 0.11812,
		0.27939, 0.69999, 0.02062,
		-0.08925, 0.03380, 0.86571,
	},
	"legacy": {
		1.03627, -0.19999, 0.09471,
		0.25151, 0.72327, 0.02522,
		-0.10661, 0.03371, 0.92135,
	},
}

// GetBMTToXYZ returns the sensor-native-to-XYZ matrix for a camera,
// selecting the TRUE-engine variant when IsTrueEngine reports true
// (x3f_get_bmt_to_xyz).
func GetBMTToXYZ(meta *camf.Access) [9]float64 {
	if meta.IsTrueEngine() {
		return bmtToXYZMatrices["TRUE"]
	}
	return bmtToXYZMatrices["legacy"]
}

// GetGain returns the per-channel white-balance gain to apply before the
// BMT-to-XYZ matrix, following x3f_get_gain: a direct WhiteBalanceGains
// (or DP1_WhiteBalanceGains) table entry for wb if present, else derived
// from the illuminant's correction matrix against a D65 neutral target.
func GetGain(meta *camf.Access, wb string) ([3]float64, error) {
	if g, err := meta.GetMatrixForWB("WhiteBalanceGains", wb, 3); err == nil {
		return [3]float64{g[0], g[1], g[2]}, nil
	}
	if g, err := meta.GetMatrixForWB("DP1_WhiteBalanceGains", wb, 3); err == nil {
		return [3]float64{g[0], g[1], g[2]}, nil
	}

	corr, err := correctionMatrixForWB(meta, wb)
	if err != nil {
		return [3]float64{}, err
	}
	return rawNeutralGain(corr), nil
}

func correctionMatrixForWB(meta *camf.Access, wb string) ([9]float64, error) {
	m, err := meta.GetMatrixForWB("WhiteBalanceColorCorrections", wb, 3, 3)
	if err != nil {
		m, err = meta.GetMatrixForWB("DP1_WhiteBalanceColorCorrections", wb, 3, 3)
		if err != nil {
			return [9]float64{}, err
		}
	}
	var out [9]float64
	copy(out[:], m)
	return out, nil
}

// rawNeutralGain derives the gain vector that maps a D65-illuminant
// neutral patch back to raw unity, the inverse of get_raw_neutral's
// forward projection through the correction matrix.
func rawNeutralGain(corr [9]float64) [3]float64 {
	neutral := mat3Solve(corr, [3]float64{1, 1, 1})
	for i, v := range neutral {
		if v == 0 {
			neutral[i] = 1
		} else {
			neutral[i] = 1 / v
		}
	}
	return neutral
}

// GetMaxIntermediate returns the per-channel ceiling ConvertData divides
// by in the intermediate domain (get_max_intermediate): each channel's
// gain, capped at the largest gain across channels to avoid clipping,
// scaled against the bias-to-unit span and shifted back up by bias.
func GetMaxIntermediate(meta *camf.Access, wb string, bias float64) ([3]float64, error) {
	gain, err := GetGain(meta, wb)
	if err != nil {
		return [3]float64{}, err
	}
	maxGain := gain[0]
	for _, g := range gain[1:] {
		if g > maxGain {
			maxGain = g
		}
	}
	if maxGain == 0 {
		maxGain = 1
	}
	var out [3]float64
	for i, g := range gain {
		out[i] = math.Round(g*(IntermediateUnit-bias)/maxGain + bias)
	}
	return out, nil
}

// GetRawToXYZ composes the sensor-native-to-XYZ matrix with a per-channel
// white-balance gain, x3f_get_raw_to_xyz's raw_to_xyz = bmt_to_xyz *
// diag(gain).
func GetRawToXYZ(meta *camf.Access, wb string) ([9]float64, error) {
	gain, err := GetGain(meta, wb)
	if err != nil {
		return [9]float64{}, err
	}
	bmt := GetBMTToXYZ(meta)
	return mat3MulDiag(bmt, gain), nil
}

// xyzToSRGB, xyzToAdobeRGB, and xyzToProPhoto are the fixed working-space
// matrices get_conv selects among, reproduced from x3f_matrix.c.
var (
	xyzToSRGB = [9]float64{
		3.2406, -1.5372, -0.4986,
		-0.9689, 1.8758, 0.0415,
		0.0557, -0.2040, 1.0570,
	}
	xyzToAdobeRGB = [9]float64{
		2.0414, -0.5649, -0.3447,
		-0.9693, 1.8760, 0.0416,
		0.0134, -0.1184, 1.0154,
	}
	xyzToProPhoto = [9]float64{
		1.3460, -0.2556, -0.0511,
		-0.5446, 1.5082, 0.0205,
		0.0000, 0.0000, 1.2123,
	}
	bradfordD65toD50 = [9]float64{
		1.0478112, 0.0228866, -0.0501270,
		0.0295424, 0.9904844, -0.0170491,
		-0.0092345, 0.0150436, 0.7521316,
	}
)

// GetConv builds the combined raw-to-working-space matrix and output
// gamma LUT for a target color space (get_conv): ProPhotoRGB's matrix is
// additionally Bradford-adapted from D65 to D50 to match its native white
// point.
func GetConv(meta *camf.Access, wb string, space OutputSpace) ([9]float64, [LUTSize]float64, error) {
	rawToXYZ, err := GetRawToXYZ(meta, wb)
	if err != nil {
		return [9]float64{}, [LUTSize]float64{}, err
	}

	var xyzToSpace [9]float64
	var gamma func(float64) float64
	switch space {
	case SRGB:
		xyzToSpace = xyzToSRGB
		gamma = srgbGamma
	case AdobeRGB:
		xyzToSpace = xyzToAdobeRGB
		gamma = func(v float64) float64 { return powGamma(v, 1/2.2) }
	case ProPhotoRGB:
		xyzToSpace = mat3Mul(xyzToProPhoto, bradfordD65toD50)
		gamma = func(v float64) float64 { return powGamma(v, 1/1.8) }
	default:
		return [9]float64{}, [LUTSize]float64{}, xerr.New(xerr.TypeMismatch, "unknown output color space")
	}

	conv := mat3Mul(xyzToSpace, rawToXYZ)

	var lut [LUTSize]float64
	for i := range lut {
		lut[i] = gamma(float64(i) / float64(LUTSize-1))
	}
	return conv, lut, nil
}

func srgbGamma(v float64) float64 {
	if v <= 0.0031308 {
		return 12.92 * v
	}
	return 1.055*math.Pow(v, 1/2.4) - 0.055
}

func powGamma(v, exp float64) float64 {
	if v <= 0 {
		return 0
	}
	return math.Pow(v, exp)
}

// LUTLookup performs x3f_LUT_lookup's 1024-entry linear-interpolated
// gamma lookup over a value in [0,1].
func LUTLookup(lut [LUTSize]float64, v float64) float64 {
	if v <= 0 {
		return lut[0]
	}
	if v >= 1 {
		return lut[LUTSize-1]
	}
	f := v * float64(LUTSize-1)
	i := int(f)
	frac := f - float64(i)
	if i >= LUTSize-1 {
		return lut[LUTSize-1]
	}
	return lut[i]*(1-frac) + lut[i+1]*frac
}

// ConvertData applies, per pixel, the spatial-gain correction, then the
// combined raw-to-output-space matrix, then the gamma LUT, writing a
// normalized [0,1] interleaved output (convert_data). Spatial gain from
// grid is applied only when hasGrid is true; otherwise grid is ignored
// (e.g. a camera with no calibration data for the current white balance).
// The grid is stretched over the whole image: pixel (row, col) samples it
// at (row*(grid.Rows-1)/(raw.Rows-1), col*(grid.Cols-1)/(raw.Cols-1)).
func ConvertData(raw PixelArea, black, maxRaw [3]float64, conv [9]float64, lut [LUTSize]float64, grid GainGrid, hasGrid bool) []float64 {
	out := make([]float64, raw.Cols*raw.Rows*3)
	var rowScale, colScale float64
	if hasGrid && raw.Rows > 1 {
		rowScale = float64(grid.Rows-1) / float64(raw.Rows-1)
	}
	if hasGrid && raw.Cols > 1 {
		colScale = float64(grid.Cols-1) / float64(raw.Cols-1)
	}
	for row := 0; row < raw.Rows; row++ {
		for col := 0; col < raw.Cols; col++ {
			base := raw.At(row, col)
			var in [3]float64
			for c := 0; c < 3; c++ {
				norm := (float64(raw.Data[base+c]) - black[c]) / (maxRaw[c] - black[c])
				if hasGrid {
					norm *= CalcSpatialGain(grid, float64(row)*rowScale, float64(col)*colScale, c, 1, 1)
				}
				in[c] = norm
			}
			x := conv[0]*in[0] + conv[1]*in[1] + conv[2]*in[2]
			y := conv[3]*in[0] + conv[4]*in[1] + conv[5]*in[2]
			z := conv[6]*in[0] + conv[7]*in[1] + conv[8]*in[2]

			oi := 3 * (row*raw.Cols + col)
			out[oi] = LUTLookup(lut, x)
			out[oi+1] = LUTLookup(lut, y)
			out[oi+2] = LUTLookup(lut, z)
		}
	}
	return out
}

func mat3Mul(a, b [9]float64) [9]float64 {
	var out [9]float64
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			var sum float64
			for k := 0; k < 3; k++ {
				sum += a[r*3+k] * b[k*3+c]
			}
			out[r*3+c] = sum
		}
	}
	return out
}

func mat3MulDiag(a [9]float64, diag [3]float64) [9]float64 {
	var out [9]float64
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			out[r*3+c] = a[r*3+c] * diag[c]
		}
	}
	return out
}

// mat3Solve solves m*x = v via Cramer's rule for the fixed 3x3 case.
func mat3Solve(m [9]float64, v [3]float64) [3]float64 {
	det := m[0]*(m[4]*m[8]-m[5]*m[7]) - m[1]*(m[3]*m[8]-m[5]*m[6]) + m[2]*(m[3]*m[7]-m[4]*m[6])
	if det == 0 {
		return v
	}
	inv := [9]float64{
		(m[4]*m[8] - m[5]*m[7]) / det, (m[2]*m[7] - m[1]*m[8]) / det, (m[1]*m[5] - m[2]*m[4]) / det,
		(m[5]*m[6] - m[3]*m[8]) / det, (m[0]*m[8] - m[2]*m[6]) / det, (m[2]*m[3] - m[0]*m[5]) / det,
		(m[3]*m[7] - m[4]*m[6]) / det, (m[1]*m[6] - m[0]*m[7]) / det, (m[0]*m[4] - m[1]*m[3]) / det,
	}
	return [3]float64{
		inv[0]*v[0] + inv[1]*v[1] + inv[2]*v[2],
		inv[3]*v[0] + inv[4]*v[1] + inv[5]*v[2],
		inv[6]*v[0] + inv[7]*v[1] + inv[8]*v[2],
	}
}
