package develop

import (
	"math"
	"testing"

	"github.com/sigmaraw/x3fcore/internal/camf"
)

func floatMatrix(name string, dims []int, vals []float64) camf.Entry {
	d := make([]camf.DimEntry, len(dims))
	for i, s := range dims {
		d[i] = camf.DimEntry{Size: s}
	}
	return camf.Entry{Name: name, Matrix: &camf.MatrixEntry{Dims: d, Kind: camf.KindFloat, Floats: vals}}
}

func propertyList(name string, props map[string]string) camf.Entry {
	return camf.Entry{Name: name, Property: &camf.PropertyEntry{Properties: props}}
}

func TestGetGain_DirectTable(t *testing.T) {
	entries := []camf.Entry{
		propertyList("WhiteBalanceGains", map[string]string{"Sunlight": "SunlightGains"}),
		floatMatrix("SunlightGains", []int{3}, []float64{1.5, 1.0, 2.1}),
	}
	meta := camf.NewAccess(entries, nil, "")

	gain, err := GetGain(meta, "Sunlight")
	if err != nil {
		t.Fatalf("GetGain: %v", err)
	}
	if gain != [3]float64{1.5, 1.0, 2.1} {
		t.Errorf("gain = %v, want {1.5,1.0,2.1}", gain)
	}
}

func TestGetBMTToXYZ_SelectsByEngine(t *testing.T) {
	// No WhiteBalanceGains/Corrections present: not a TRUE-engine camera.
	meta := camf.NewAccess(nil, nil, "")
	if GetBMTToXYZ(meta) != bmtToXYZMatrices["legacy"] {
		t.Error("expected legacy matrix for a non-TRUE-engine camera")
	}

	entries := []camf.Entry{
		propertyList("WhiteBalanceColorCorrections", map[string]string{"Auto": "x"}),
		propertyList("WhiteBalanceGains", map[string]string{"Auto": "y"}),
	}
	trueMeta := camf.NewAccess(entries, nil, "")
	if GetBMTToXYZ(trueMeta) != bmtToXYZMatrices["TRUE"] {
		t.Error("expected TRUE matrix for a TRUE-engine camera")
	}
}

func TestLUTLookup_Interpolates(t *testing.T) {
	var lut [LUTSize]float64
	for i := range lut {
		lut[i] = float64(i) / float64(LUTSize-1)
	}
	got := LUTLookup(lut, 0.5)
	if math.Abs(got-0.5) > 1e-6 {
		t.Errorf("LUTLookup(0.5) = %v, want ~0.5 for an identity LUT", got)
	}
}

func TestSRGBGamma_Monotonic(t *testing.T) {
	prev := -1.0
	for i := 0; i <= 10; i++ {
		v := srgbGamma(float64(i) / 10)
		if v < prev {
			t.Fatalf("srgbGamma not monotonic at step %d: %v < %v", i, v, prev)
		}
		prev = v
	}
}
