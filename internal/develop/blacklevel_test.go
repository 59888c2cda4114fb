package develop

import (
	"testing"

	"github.com/sigmaraw/x3fcore/internal/camf"
)

func uintMatrix(name string, dims []int, vals []uint32) camf.Entry {
	d := make([]camf.DimEntry, len(dims))
	for i, s := range dims {
		d[i] = camf.DimEntry{Size: s}
	}
	return camf.Entry{Name: name, Matrix: &camf.MatrixEntry{Dims: d, Kind: camf.KindUint, Uints: vals}}
}

func newAccessWithRects(rects map[string][4]uint32) *camf.Access {
	var entries []camf.Entry
	for name, r := range rects {
		entries = append(entries, uintMatrix(name, []int{4}, []uint32{r[0], r[1], r[2], r[3]}))
	}
	return camf.NewAccess(entries, nil, "")
}

func flatFill(cols, rows, channels int, v uint16) PixelArea {
	data := make([]uint16, cols*rows*channels)
	for i := range data {
		data[i] = v
	}
	return PixelArea{Cols: cols, Rows: rows, Channels: channels, RowStride: cols * channels, Data: data}
}

func TestBlackLevel_MeanAndStdDev(t *testing.T) {
	image := flatFill(20, 20, 1, 100)
	// Put a distinct value into the dark-shield-top rows so the mean
	// reflects only the sampled rectangle, not the whole plane.
	meta := newAccessWithRects(map[string][4]uint32{
		"KeepImageArea":    {2, 2, 17, 17},
		"DarkShieldTop":    {2, 0, 17, 1},
		"DarkShieldBottom": {2, 18, 17, 19},
	})
	for row := 0; row < 2; row++ {
		for col := 0; col < image.Cols; col++ {
			image.Data[image.At(row, col)] = 50
		}
	}
	for row := 18; row < 20; row++ {
		for col := 0; col < image.Cols; col++ {
			image.Data[image.At(row, col)] = 50
		}
	}

	level, dev, ok := BlackLevel(meta, image, 1, "SIGMA SD9")
	if !ok {
		t.Fatal("BlackLevel returned ok=false")
	}
	if level[0] < 1 || level[0] > 99 {
		t.Errorf("level[0] = %v, want something pulled toward the masked value of 50 (not the 100 bulk fill)", level[0])
	}
	if dev[0] <= 0 {
		t.Errorf("dev[0] = %v, want > 0 (the sampled areas mix 50 and 100)", dev[0])
	}
}

func TestBlackLevel_SkipsBottomShieldForDP2(t *testing.T) {
	image := flatFill(20, 20, 1, 100)
	// DarkShieldBottom rescales (16-pixel KeepImageArea onto a 20-pixel
	// image) to row 18, cols 0..18. Zeroing that row outside the left
	// masked columns pulls the level below 100 if the bottom shield is
	// sampled.
	meta := newAccessWithRects(map[string][4]uint32{
		"KeepImageArea":    {2, 2, 17, 17},
		"DarkShieldTop":    {2, 0, 17, 1},
		"DarkShieldBottom": {0, 15, 15, 15},
	})
	for col := 2; col < image.Cols; col++ {
		image.Data[image.At(18, col)] = 0
	}

	level, _, ok := BlackLevel(meta, image, 1, "SIGMA DP2")
	if !ok {
		t.Fatal("BlackLevel returned ok=false")
	}
	if level[0] != 100 {
		t.Errorf("level[0] = %v, want 100 (only the top shield and masked columns should be sampled)", level[0])
	}
}

func TestBlackLevel_NoRectanglesFails(t *testing.T) {
	image := flatFill(10, 10, 1, 0)
	meta := camf.NewAccess(nil, nil, "")
	if _, _, ok := BlackLevel(meta, image, 1, "SIGMA SD9"); ok {
		t.Fatal("expected ok=false with no KeepImageArea available")
	}
}
