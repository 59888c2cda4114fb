package camf

import "github.com/sigmaraw/x3fcore/internal/xerr"

// Access implements MetaAccess: typed lookups over a
// decoded CAMF entry set, a file's PROP entries, and the header's
// fallback white-balance name. It never panics on an absent key; callers
// get NotFound/TypeMismatch/ShapeMismatch errors instead.
//
// Access is deliberately independent of internal/container (which holds
// the PROP section and header) to avoid an import cycle: container
// constructs an Access by handing it the already-decoded PROP map and
// header white-balance string, explicit configuration passed in rather
// than read from module-scope globals.
type Access struct {
	byName map[string]Entry
	prop   map[string]string
	headerWB string
}

// NewAccess builds an Access over a CAMF entry set, a file's PROP section
// entries (UTF-8, keyed by name), and the header's white_balance field.
func NewAccess(entries []Entry, propEntries map[string]string, headerWB string) *Access {
	byName := make(map[string]Entry, len(entries))
	for _, e := range entries {
		byName[e.Name] = e
	}
	return &Access{byName: byName, prop: propEntries, headerWB: headerWB}
}

func (a *Access) matrix(name string) (*MatrixEntry, error) {
	e, ok := a.byName[name]
	if !ok {
		return nil, xerr.New(xerr.NotFound, "CAMF entry not found: %s", name)
	}
	if e.Matrix == nil {
		return nil, xerr.New(xerr.TypeMismatch, "CAMF entry %s is not a matrix", name)
	}
	return e.Matrix, nil
}

// MatrixShape returns a matrix entry's per-dimension sizes and its
// decoded kind, without reading the element data — the by-name shape
// introspection x3f_get_camf_matrix_var supports.
func (a *Access) MatrixShape(name string) (dims []int, kind Kind, err error) {
	m, err := a.matrix(name)
	if err != nil {
		return nil, 0, err
	}
	dims = make([]int, len(m.Dims))
	for i, d := range m.Dims {
		dims[i] = d.Size
	}
	return dims, m.Kind, nil
}

// checkDims verifies a matrix's dimension sizes against want (only
// non-zero entries of want are checked, allowing callers that only know
// some dimensions in advance, mirroring x3f_get_camf_matrix_var's partial
// dimension queries).
func checkDims(name string, m *MatrixEntry, want []int) error {
	if len(want) != 0 && len(m.Dims) != len(want) {
		return xerr.New(xerr.ShapeMismatch, "CAMF matrix %s has %d dimensions, want %d", name, len(m.Dims), len(want))
	}
	for i, w := range want {
		if w != 0 && m.Dims[i].Size != w {
			return xerr.New(xerr.ShapeMismatch, "CAMF matrix %s dimension %d is %d, want %d", name, i, m.Dims[i].Size, w)
		}
	}
	return nil
}

// GetFloatMatrix returns a float64 matrix's flattened data, verifying its
// dimension sizes (0 entries in want are unchecked) and that it decodes
// to KindFloat.
func (a *Access) GetFloatMatrix(name string, want ...int) ([]float64, error) {
	m, err := a.matrix(name)
	if err != nil {
		return nil, err
	}
	if m.Kind != KindFloat {
		return nil, xerr.New(xerr.TypeMismatch, "CAMF matrix %s is not float", name)
	}
	if err := checkDims(name, m, want); err != nil {
		return nil, err
	}
	return m.Floats, nil
}

// GetUintMatrix is GetFloatMatrix's unsigned-integer counterpart.
func (a *Access) GetUintMatrix(name string, want ...int) ([]uint32, error) {
	m, err := a.matrix(name)
	if err != nil {
		return nil, err
	}
	if m.Kind != KindUint {
		return nil, xerr.New(xerr.TypeMismatch, "CAMF matrix %s is not unsigned", name)
	}
	if err := checkDims(name, m, want); err != nil {
		return nil, err
	}
	return m.Uints, nil
}

// GetIntMatrix is GetFloatMatrix's signed-integer counterpart.
func (a *Access) GetIntMatrix(name string, want ...int) ([]int32, error) {
	m, err := a.matrix(name)
	if err != nil {
		return nil, err
	}
	if m.Kind != KindInt {
		return nil, xerr.New(xerr.TypeMismatch, "CAMF matrix %s is not signed", name)
	}
	if err := checkDims(name, m, want); err != nil {
		return nil, err
	}
	return m.Ints, nil
}

// GetFloat returns a scalar (1-element, 1-dimensional) float matrix.
func (a *Access) GetFloat(name string) (float64, error) {
	v, err := a.GetFloatMatrix(name, 1)
	if err != nil {
		return 0, err
	}
	return v[0], nil
}

// GetUnsigned returns a scalar unsigned matrix.
func (a *Access) GetUnsigned(name string) (uint32, error) {
	v, err := a.GetUintMatrix(name, 1)
	if err != nil {
		return 0, err
	}
	return v[0], nil
}

// GetSigned returns a scalar signed matrix.
func (a *Access) GetSigned(name string) (int32, error) {
	v, err := a.GetIntMatrix(name, 1)
	if err != nil {
		return 0, err
	}
	return v[0], nil
}

// GetFloatVector returns a 3-element float vector.
func (a *Access) GetFloatVector(name string) ([3]float64, error) {
	v, err := a.GetFloatMatrix(name, 3)
	if err != nil {
		return [3]float64{}, err
	}
	return [3]float64{v[0], v[1], v[2]}, nil
}

// GetSignedVector returns a 3-element signed vector.
func (a *Access) GetSignedVector(name string) ([3]int32, error) {
	v, err := a.GetIntMatrix(name, 3)
	if err != nil {
		return [3]int32{}, err
	}
	return [3]int32{v[0], v[1], v[2]}, nil
}

// GetRect returns a 4-element unsigned rectangle (x0,y0,x1,y1), the shape
// used by KeepImageArea/ActiveImageArea and the dark-shield rects.
func (a *Access) GetRect(name string) ([4]uint32, error) {
	v, err := a.GetUintMatrix(name, 4)
	if err != nil {
		return [4]uint32{}, err
	}
	return [4]uint32{v[0], v[1], v[2], v[3]}, nil
}

// GetPropertyList returns a decoded CAMF property list (CMbP entry) by name.
func (a *Access) GetPropertyList(name string) (map[string]string, error) {
	e, ok := a.byName[name]
	if !ok {
		return nil, xerr.New(xerr.NotFound, "CAMF entry not found: %s", name)
	}
	if e.Property == nil {
		return nil, xerr.New(xerr.TypeMismatch, "CAMF entry %s is not a property list", name)
	}
	return e.Property.Properties, nil
}

// GetProperty looks up name within CAMF property list.
func (a *Access) GetProperty(list, name string) (string, error) {
	props, err := a.GetPropertyList(list)
	if err != nil {
		return "", err
	}
	v, ok := props[name]
	if !ok {
		return "", xerr.New(xerr.NotFound, "CAMF property %q not found in list %q", name, list)
	}
	return v, nil
}

// GetText returns a decoded CAMF text entry (CMbT) by name.
func (a *Access) GetText(name string) (string, error) {
	e, ok := a.byName[name]
	if !ok {
		return "", xerr.New(xerr.NotFound, "CAMF entry not found: %s", name)
	}
	if e.Text == nil {
		return "", xerr.New(xerr.TypeMismatch, "CAMF entry %s is not text", name)
	}
	return e.Text.Text, nil
}

// GetPropEntry looks up name in the file's PROP section.
func (a *Access) GetPropEntry(name string) (string, error) {
	v, ok := a.prop[name]
	if !ok {
		return "", xerr.New(xerr.NotFound, "PROP entry not found: %s", name)
	}
	return v, nil
}

// wbNames maps the CAMF WhiteBalance numeric code to its canonical name.
var wbNames = map[uint32]string{
	1: "Auto", 2: "Sunlight", 3: "Shadow", 4: "Overcast",
	5: "Incandescent", 6: "Florescent", 7: "Flash", 8: "Custom",
	11: "ColorTemp", 12: "AutoLSP",
}

// GetWB returns the canonical white-balance name: the CAMF WhiteBalance
// numeric code mapped through wbNames when present (Quattro), else the
// header's white_balance string.
func (a *Access) GetWB() string {
	code, err := a.GetUnsigned("WhiteBalance")
	if err != nil {
		return a.headerWB
	}
	if name, ok := wbNames[code]; ok {
		return name
	}
	return "Auto"
}

// ImageAreas returns the KeepImageArea and ActiveImageArea crop
// rectangles: the black-level estimator samples the masked border
// columns outside KeepImageArea, and ActiveImageArea is the visible-pixel
// region. Render does not crop its output to ActiveImageArea.
func (a *Access) ImageAreas() (keep, active [4]uint32, err error) {
	keep, err = a.GetRect("KeepImageArea")
	if err != nil {
		return [4]uint32{}, [4]uint32{}, err
	}
	active, err = a.GetRect("ActiveImageArea")
	if err != nil {
		return [4]uint32{}, [4]uint32{}, err
	}
	return keep, active, nil
}

// IsTrueEngine reports whether the camera is a TRUE-engine (Merrill or
// later) model: both a white-balance color-correction table and a
// white-balance gain table are present, under either the plain or
// DP1-prefixed name (x3f_is_TRUE_engine).
func (a *Access) IsTrueEngine() bool {
	_, ccErr := a.GetPropertyList("WhiteBalanceColorCorrections")
	if ccErr != nil {
		_, ccErr = a.GetPropertyList("DP1_WhiteBalanceColorCorrections")
	}
	_, gErr := a.GetPropertyList("WhiteBalanceGains")
	if gErr != nil {
		_, gErr = a.GetPropertyList("DP1_WhiteBalanceGains")
	}
	return ccErr == nil && gErr == nil
}

// GetMaxRaw returns the per-channel maximum raw sample value, following
// x3f_get_max_raw's priority chain: ImageDepth (Merrill/Quattro) first,
// else RawSaturationLevel for TRUE-engine cameras, else SaturationLevel
// for pre-TRUE-engine cameras. Returns xerr.UnsupportedCamera if none of
// the three are present.
func (a *Access) GetMaxRaw() ([3]uint32, error) {
	if depth, err := a.GetUnsigned("ImageDepth"); err == nil {
		max := uint32(1)<<depth - 1
		return [3]uint32{max, max, max}, nil
	}

	name := "SaturationLevel"
	if a.IsTrueEngine() {
		name = "RawSaturationLevel"
	}
	v, err := a.GetSignedVector(name)
	if err != nil {
		return [3]uint32{}, xerr.New(xerr.UnsupportedCamera, "no ImageDepth/RawSaturationLevel/SaturationLevel available")
	}
	return [3]uint32{uint32(v[0]), uint32(v[1]), uint32(v[2])}, nil
}

// GetMatrixForWB resolves a per-white-balance matrix name (list[wb]) and
// reads it as a float matrix of the given shape, applying the SD1
// Daylight->Sunlight workaround x3f_get_camf_matrix_for_wb carries.
func (a *Access) GetMatrixForWB(list, wb string, want ...int) ([]float64, error) {
	name, err := a.GetProperty(list, wb)
	if err != nil {
		if wb == "Daylight" {
			return a.GetMatrixForWB(list, "Sunlight", want...)
		}
		return nil, err
	}
	return a.GetFloatMatrix(name, want...)
}
