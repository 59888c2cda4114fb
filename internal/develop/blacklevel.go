package develop

import (
	"math"

	"github.com/sigmaraw/x3fcore/internal/camf"
)

// cropArea returns the sub-rectangle [x0,x1]x[y0,y1] of image as a view
// sharing the same backing Data (x3f_crop_area).
func cropArea(image PixelArea, x0, y0, x1, y1 int) PixelArea {
	return PixelArea{
		Cols:      x1 - x0 + 1,
		Rows:      y1 - y0 + 1,
		Channels:  image.Channels,
		RowStride: image.RowStride,
		Data:      image.Data[y0*image.RowStride+x0*image.Channels:],
	}
}

// cropAreaCAMF resolves a CAMF rect by name and returns the corresponding
// crop of image, optionally rescaling the rect's coordinates (given in
// KeepImageArea's own resolution) into image's resolution when image was
// decoded at a different pixel pitch (x3f_get_camf_rect +
// x3f_crop_area_camf). Unlike KeepImageArea/ActiveImageArea, shield rects
// such as DarkShieldTop/Bottom live outside the active sensor area, so
// this does not clip against KeepImageArea's bounds — only against
// image's own extent.
func cropAreaCAMF(meta *camf.Access, name string, image PixelArea, rescale bool) (PixelArea, bool) {
	rect, err := meta.GetRect(name)
	if err != nil {
		return PixelArea{}, false
	}
	x0, y0, x1, y1 := int(rect[0]), int(rect[1]), int(rect[2]), int(rect[3])

	if rescale {
		keep, err := meta.GetRect("KeepImageArea")
		if err != nil {
			return PixelArea{}, false
		}
		keepCols := int(keep[2] - keep[0] + 1)
		keepRows := int(keep[3] - keep[1] + 1)
		if keepCols <= 0 || keepRows <= 0 {
			return PixelArea{}, false
		}
		x0 = x0 * image.Cols / keepCols
		x1 = x1 * image.Cols / keepCols
		y0 = y0 * image.Rows / keepRows
		y1 = y1 * image.Rows / keepRows
	}

	if x1 >= image.Cols {
		x1 = image.Cols - 1
	}
	if y1 >= image.Rows {
		y1 = image.Rows - 1
	}
	if x0 < 0 {
		x0 = 0
	}
	if y0 < 0 {
		y0 = 0
	}
	if x0 > x1 || y0 > y1 {
		return PixelArea{}, false
	}
	return cropArea(image, x0, y0, x1, y1), true
}

// colSide names which masked border columns cropAreaColumn crops: the
// sensor columns outside KeepImageArea's horizontal extent, used as an
// optical-black reference the same way DarkShieldTop/Bottom are.
type colSide int

const (
	colSideLeft colSide = iota
	colSideRight
)

// cropAreaColumn crops the masked column strip (all rows) to the left or
// right of KeepImageArea's horizontal bounds, rescaling KeepImageArea's
// column bounds into image's resolution first when rescale is set. This
// mirrors x3f_crop_area_column's role alongside x3f_crop_area_camf in
// get_black_level's four-rectangle scheme (its own body lives outside the
// retrievable sources; this reconstructs it from that call site).
func cropAreaColumn(side colSide, meta *camf.Access, image PixelArea, rescale bool) (PixelArea, bool) {
	keep, err := meta.GetRect("KeepImageArea")
	if err != nil {
		return PixelArea{}, false
	}
	keepCols := int(keep[2] - keep[0] + 1)

	left := int(keep[0])
	right := int(keep[2])
	if rescale && keepCols > 0 {
		left = left * image.Cols / keepCols
		right = right * image.Cols / keepCols
	}

	var x0, x1 int
	switch side {
	case colSideLeft:
		x0, x1 = 0, left-1
	case colSideRight:
		x0, x1 = right+1, image.Cols-1
	}
	if x0 > x1 || x0 < 0 || x1 >= image.Cols {
		return PixelArea{}, false
	}
	return cropArea(image, x0, 0, x1, image.Rows-1), true
}

// BlackLevel estimates the per-channel black level (mean) and standard
// deviation over the DarkShieldTop/Bottom CAMF rects plus the masked
// left/right border columns, skipping whichever rects the camera's
// known firmware bugs make unreliable (x3f_process.c's get_black_level).
func BlackLevel(meta *camf.Access, image PixelArea, colors int, cameraModel string) (level, dev [3]float64, ok bool) {
	workaround := shieldWorkaroundFor(cameraModel)

	type namedArea struct {
		area PixelArea
		use  bool
	}
	areas := make([]namedArea, 4)

	if a, got := cropAreaCAMF(meta, "DarkShieldTop", image, true); got {
		areas[0] = namedArea{a, true}
	}
	if !workaround.skipBottomShield {
		if a, got := cropAreaCAMF(meta, "DarkShieldBottom", image, true); got {
			areas[1] = namedArea{a, true}
		}
	}
	if a, got := cropAreaColumn(colSideLeft, meta, image, true); got {
		areas[2] = namedArea{a, true}
	}
	if !workaround.skipRightShield {
		if a, got := cropAreaColumn(colSideRight, meta, image, true); got {
			areas[3] = namedArea{a, true}
		}
	}

	var sum [3]uint64
	pixels := 0
	for _, na := range areas {
		if !na.use {
			continue
		}
		pixels += sumArea(na.area, colors, &sum)
	}
	if pixels == 0 {
		return level, dev, false
	}
	for c := 0; c < colors; c++ {
		level[c] = float64(sum[c]) / float64(pixels)
	}

	var sqdevSum [3]float64
	pixels = 0
	for _, na := range areas {
		if !na.use {
			continue
		}
		var sqdev [3]float64
		pixels += sumAreaSqDev(na.area, colors, level, &sqdev)
		for c := 0; c < colors; c++ {
			sqdevSum[c] += sqdev[c]
		}
	}
	if pixels == 0 {
		return level, dev, false
	}
	for c := 0; c < colors; c++ {
		dev[c] = math.Sqrt(sqdevSum[c] / float64(pixels))
	}
	return level, dev, true
}

func sumArea(area PixelArea, colors int, sum *[3]uint64) int {
	for row := 0; row < area.Rows; row++ {
		for col := 0; col < area.Cols; col++ {
			base := area.At(row, col)
			for c := 0; c < colors; c++ {
				sum[c] += uint64(area.Data[base+c])
			}
		}
	}
	return area.Cols * area.Rows
}

func sumAreaSqDev(area PixelArea, colors int, mean [3]float64, sum *[3]float64) int {
	for row := 0; row < area.Rows; row++ {
		for col := 0; col < area.Cols; col++ {
			base := area.At(row, col)
			for c := 0; c < colors; c++ {
				d := float64(area.Data[base+c]) - mean[c]
				sum[c] += d * d
			}
		}
	}
	return area.Cols * area.Rows
}
