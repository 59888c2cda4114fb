package develop

import "testing"

func TestBadPixelMap_InterpolateSinglePixel(t *testing.T) {
	image := flatFill(5, 5, 1, 10)
	image.Data[image.At(2, 2)] = 0

	m := NewBadPixelMap(5, 5)
	m.Mark(2, 2)
	m.Interpolate(image, 1)

	if got := image.Data[image.At(2, 2)]; got != 10 {
		t.Errorf("interpolated value = %d, want 10 (average of good neighbors)", got)
	}
	if m.pending.Len() != 0 {
		t.Errorf("pending list should be empty after a successful interpolation, has %d entries", m.pending.Len())
	}
}

func TestBadPixelMap_InterpolateRequiresMultiplePasses(t *testing.T) {
	image := flatFill(5, 5, 1, 20)
	// Mark an entire 3x3 block bad except its border, so the center
	// pixel has no good neighbor until the first ring is fixed.
	m := NewBadPixelMap(5, 5)
	for r := 1; r <= 3; r++ {
		for c := 1; c <= 3; c++ {
			image.Data[image.At(r, c)] = 0
			m.Mark(r, c)
		}
	}
	m.Interpolate(image, 1)

	for r := 1; r <= 3; r++ {
		for c := 1; c <= 3; c++ {
			if got := image.Data[image.At(r, c)]; got != 20 {
				t.Errorf("(%d,%d) = %d, want 20", r, c, got)
			}
		}
	}
}

func TestBadPixelMap_PrefersLinearCardinalPairOverDiagonal(t *testing.T) {
	image := flatFill(5, 5, 1, 0)
	image.Data[image.At(2, 1)] = 10 // left, good
	image.Data[image.At(2, 3)] = 10 // right, good
	image.Data[image.At(1, 1)] = 99 // diagonal neighbor: never consulted

	m := NewBadPixelMap(5, 5)
	m.Mark(2, 2) // the bad pixel itself
	m.Mark(1, 2) // up: bad
	m.Mark(3, 2) // down: bad
	m.Interpolate(image, 1)

	if got := image.Data[image.At(2, 2)]; got != 10 {
		t.Errorf("interpolated value = %d, want 10 (left+right average; a diagonal-polluted average would give ~40)", got)
	}
}

func TestBadPixelMap_DefersLShapeUntilCornerFixupEnabled(t *testing.T) {
	// A bad pixel at the grid corner has only two in-bounds cardinal
	// neighbors (right, down), an L-shaped (non-opposite) pair: deferred
	// in the first pass, fixed only once corner fixup is enabled.
	image := flatFill(5, 5, 1, 0)
	image.Data[image.At(0, 1)] = 6 // right, good
	image.Data[image.At(1, 0)] = 8 // down, good

	m := NewBadPixelMap(5, 5)
	m.Mark(0, 0)
	m.Interpolate(image, 1)

	if got := image.Data[image.At(0, 0)]; got != 7 {
		t.Errorf("interpolated value = %d, want 7 (average of the two good cardinal neighbors, via corner fixup)", got)
	}
	if m.pending.Len() != 0 {
		t.Errorf("pending list should be empty once corner fixup resolves the L-shaped neighbor, has %d entries", m.pending.Len())
	}
}

func TestBadPixelMap_MarkGrid(t *testing.T) {
	m := NewBadPixelMap(20, 20)
	m.MarkGrid(afGrid{ci: 0, cf: 10, cp: 5, cs: 2, ri: 0, rf: 10, rp: 5, rs: 2})

	if !m.IsBad(0, 0) || !m.IsBad(1, 1) {
		t.Error("first tile should be marked bad")
	}
	if !m.IsBad(5, 5) {
		t.Error("second tile origin should be marked bad")
	}
	if m.IsBad(3, 3) {
		t.Error("gap between tiles should not be marked bad")
	}
}
