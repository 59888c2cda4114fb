package camf

import (
	"testing"

	"github.com/sigmaraw/x3fcore/internal/xerr"
)

func uintEntry(name string, vals ...uint32) Entry {
	dims := []DimEntry{{Size: len(vals)}}
	return Entry{Name: name, Matrix: &MatrixEntry{Dims: dims, Kind: KindUint, Uints: vals}}
}

func floatEntry(name string, vals ...float64) Entry {
	dims := []DimEntry{{Size: len(vals)}}
	return Entry{Name: name, Matrix: &MatrixEntry{Dims: dims, Kind: KindFloat, Floats: vals}}
}

func propEntry(name string, props map[string]string) Entry {
	return Entry{Name: name, Property: &PropertyEntry{Properties: props}}
}

func textEntry(name, text string) Entry {
	return Entry{Name: name, Text: &TextEntry{Text: text}}
}

func TestGetRect(t *testing.T) {
	a := NewAccess([]Entry{uintEntry("KeepImageArea", 1, 2, 3, 4)}, nil, "")
	rect, err := a.GetRect("KeepImageArea")
	if err != nil {
		t.Fatalf("GetRect: %v", err)
	}
	if rect != [4]uint32{1, 2, 3, 4} {
		t.Errorf("rect = %v, want [1 2 3 4]", rect)
	}
}

func TestGetRect_NotFound(t *testing.T) {
	a := NewAccess(nil, nil, "")
	_, err := a.GetRect("Missing")
	if !xerr.Is(err, xerr.NotFound) {
		t.Errorf("error = %v, want NotFound", err)
	}
}

func TestGetFloatMatrix_WrongKind(t *testing.T) {
	a := NewAccess([]Entry{uintEntry("X", 1)}, nil, "")
	_, err := a.GetFloatMatrix("X")
	if !xerr.Is(err, xerr.TypeMismatch) {
		t.Errorf("error = %v, want TypeMismatch", err)
	}
}

func TestGetFloatMatrix_DimMismatch(t *testing.T) {
	a := NewAccess([]Entry{floatEntry("X", 1, 2, 3)}, nil, "")
	_, err := a.GetFloatMatrix("X", 4)
	if !xerr.Is(err, xerr.ShapeMismatch) {
		t.Errorf("error = %v, want ShapeMismatch", err)
	}
}

func TestGetWB_FromCAMFCode(t *testing.T) {
	a := NewAccess([]Entry{uintEntry("WhiteBalance", 2)}, nil, "Auto")
	if got := a.GetWB(); got != "Sunlight" {
		t.Errorf("GetWB() = %q, want Sunlight", got)
	}
}

func TestGetWB_UnknownCodeDefaultsToAuto(t *testing.T) {
	a := NewAccess([]Entry{uintEntry("WhiteBalance", 999)}, nil, "Overcast")
	if got := a.GetWB(); got != "Auto" {
		t.Errorf("GetWB() = %q, want Auto", got)
	}
}

func TestGetWB_FallsBackToHeader(t *testing.T) {
	a := NewAccess(nil, nil, "Shadow")
	if got := a.GetWB(); got != "Shadow" {
		t.Errorf("GetWB() = %q, want Shadow", got)
	}
}

func TestIsTrueEngine(t *testing.T) {
	entries := []Entry{
		propEntry("WhiteBalanceColorCorrections", map[string]string{"Sunlight": "m1"}),
		propEntry("WhiteBalanceGains", map[string]string{"Sunlight": "g1"}),
	}
	a := NewAccess(entries, nil, "")
	if !a.IsTrueEngine() {
		t.Error("IsTrueEngine() = false, want true")
	}
}

func TestIsTrueEngine_FalseWhenGainsMissing(t *testing.T) {
	entries := []Entry{
		propEntry("WhiteBalanceColorCorrections", map[string]string{"Sunlight": "m1"}),
	}
	a := NewAccess(entries, nil, "")
	if a.IsTrueEngine() {
		t.Error("IsTrueEngine() = true, want false")
	}
}

func TestGetMaxRaw_PrefersImageDepth(t *testing.T) {
	a := NewAccess([]Entry{uintEntry("ImageDepth", 12)}, nil, "")
	got, err := a.GetMaxRaw()
	if err != nil {
		t.Fatalf("GetMaxRaw: %v", err)
	}
	want := uint32(1<<12 - 1)
	if got != [3]uint32{want, want, want} {
		t.Errorf("GetMaxRaw() = %v, want all %d", got, want)
	}
}

func TestGetMaxRaw_Unsupported(t *testing.T) {
	a := NewAccess(nil, nil, "")
	_, err := a.GetMaxRaw()
	if !xerr.Is(err, xerr.UnsupportedCamera) {
		t.Errorf("error = %v, want UnsupportedCamera", err)
	}
}

func TestGetMatrixForWB_DaylightFallsBackToSunlight(t *testing.T) {
	entries := []Entry{
		propEntry("Matrices", map[string]string{"Sunlight": "M_Sun"}),
		floatEntry("M_Sun", 1, 0, 0, 0, 1, 0, 0, 0, 1),
	}
	a := NewAccess(entries, nil, "")
	got, err := a.GetMatrixForWB("Matrices", "Daylight", 9)
	if err != nil {
		t.Fatalf("GetMatrixForWB: %v", err)
	}
	if len(got) != 9 || got[0] != 1 {
		t.Errorf("got %v, want identity-ish 9-vector", got)
	}
}

func TestGetPropEntry(t *testing.T) {
	a := NewAccess(nil, map[string]string{"CAMMODEL": "SIGMA SD9"}, "")
	got, err := a.GetPropEntry("CAMMODEL")
	if err != nil {
		t.Fatalf("GetPropEntry: %v", err)
	}
	if got != "SIGMA SD9" {
		t.Errorf("got %q, want SIGMA SD9", got)
	}
}

func TestGetText(t *testing.T) {
	a := NewAccess([]Entry{textEntry("CAMMODEL", "SIGMA dp2 Quattro")}, nil, "")
	got, err := a.GetText("CAMMODEL")
	if err != nil {
		t.Fatalf("GetText: %v", err)
	}
	if got != "SIGMA dp2 Quattro" {
		t.Errorf("got %q, want SIGMA dp2 Quattro", got)
	}
}
