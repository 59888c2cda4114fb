package develop

import (
	"testing"

	"github.com/sigmaraw/x3fcore/internal/camf"
)

func TestPreprocessor_Run_LinearizesTowardIntermediateUnit(t *testing.T) {
	entries := []camf.Entry{
		uintMatrix("KeepImageArea", []int{4}, []uint32{1, 1, 6, 6}),
		uintMatrix("DarkShieldTop", []int{4}, []uint32{1, 0, 6, 0}),
		uintMatrix("ImageDepth", []int{1}, []uint32{12}),
	}
	meta := camf.NewAccess(entries, nil, "")

	image := flatFill(8, 8, 1, 0)
	for row := 0; row < 1; row++ {
		for col := 0; col < image.Cols; col++ {
			image.Data[image.At(row, col)] = 16
		}
	}
	for row := 1; row < image.Rows; row++ {
		for col := 0; col < image.Cols; col++ {
			image.Data[image.At(row, col)] = 2048
		}
	}

	p := &Preprocessor{Meta: meta, CameraModel: "SIGMA SD9", Colors: 1}
	_, err := p.Run(image, [4]uint32{1, 1, 6, 6}, false)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	for row := 1; row < image.Rows; row++ {
		v := image.Data[image.At(row, 0)]
		if v == 0 || v > IntermediateUnit {
			t.Errorf("row %d: linearized value %d out of expected [1,%d] range", row, v, IntermediateUnit)
		}
	}
}

func TestIntermediateBias_ClampsToUnit(t *testing.T) {
	level := [3]float64{0, 0, 0}
	dev := [3]float64{1e9, 1e9, 1e9}
	maxRaw := [3]uint32{1, 1, 1}
	if got := intermediateBias(level, dev, maxRaw, 3); got != IntermediateUnit {
		t.Errorf("intermediateBias = %v, want clamped to %v", got, float64(IntermediateUnit))
	}
}
