package rawcodec

import (
	"testing"

	"github.com/sigmaraw/x3fcore/internal/bitio"
	"github.com/sigmaraw/x3fcore/internal/huffcode"
)

func TestTrueDecoder_SeedZero(t *testing.T) {
	// All diffs decode to L=0 (single-symbol table), so every pixel equals
	// its plane's seed.
	table := []huffcode.LengthCodeEntry{{Length: 1, Prefix: 0}}

	d := TrueDecoder{
		Seeds:   [3]uint16{100, 100, 100},
		Table:   table,
		OutCols: 2,
		OutRows: 2,
		Planes: [3]TruePlaneGeometry{
			{Rows: 2, Cols: 2}, {Rows: 2, Cols: 2}, {Rows: 2, Cols: 2},
		},
		PlaneOff: [3]int{0, 16, 32},
	}
	// 2x2 symbols per plane, one bit each (all zero) -> fits comfortably
	// within a 16-byte padded slot per plane.
	data := make([]byte, 48)

	out, err := d.Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	for i, v := range out {
		if v != 100 {
			t.Errorf("out[%d] = %d, want 100", i, v)
		}
	}
}

func TestTrueDecoder_QuattroExpansion(t *testing.T) {
	// Plane 0 is decoded at half resolution with values equal to a
	// position-dependent difference sequence, then expanded into 2x2
	// tiles; plane 2 stays at full resolution. data[0] = 0xAA holds the
	// codes 101 0 101 0, so plane 0 decodes (row-major, each sample its
	// own lattice seed) to 1, 0, 1, 0; the rest of the data is zero.
	table := []huffcode.LengthCodeEntry{
		{Length: 1, Prefix: 0x00}, // symbol 0 (L=0) -> code 0b0 -> diff 0
		{Length: 2, Prefix: 0x80}, // symbol 1 (L=1) -> code 0b10, then bit 1 -> diff 1 (bit 0 -> diff -1)
	}

	d := TrueDecoder{
		Seeds:   [3]uint16{0, 0, 0},
		Table:   table,
		OutCols: 4,
		OutRows: 4,
		Planes: [3]TruePlaneGeometry{
			{Rows: 2, Cols: 2}, {Rows: 2, Cols: 2}, {Rows: 4, Cols: 4},
		},
		PlaneOff: [3]int{0, 16, 32},
	}
	data := make([]byte, 96)
	data[0] = 0xAA

	out, err := d.Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	// Every 2x2 tile of the expanded plane-0 channel must be uniform and
	// carry its decoded half-resolution sample.
	wantTiles := [2][2]uint16{{1, 0}, {1, 0}}
	for r := 0; r < 2; r++ {
		for c := 0; c < 2; c++ {
			want := out[3*(2*r*d.OutCols+2*c)+0]
			if want != wantTiles[r][c] {
				t.Errorf("tile (%d,%d) = %d, want %d", r, c, want, wantTiles[r][c])
			}
			got := [4]uint16{
				out[3*((2*r)*d.OutCols+2*c)+0],
				out[3*((2*r)*d.OutCols+2*c+1)+0],
				out[3*((2*r+1)*d.OutCols+2*c)+0],
				out[3*((2*r+1)*d.OutCols+2*c+1)+0],
			}
			for _, v := range got {
				if v != want {
					t.Errorf("tile (%d,%d): got %v, want uniform %d", r, c, got, want)
				}
			}
		}
	}
}

func TestTrueDecoder_ShapeMismatch(t *testing.T) {
	table := []huffcode.LengthCodeEntry{{Length: 1, Prefix: 0}}
	d := TrueDecoder{
		Table:   table,
		OutCols: 4,
		OutRows: 4,
		Planes: [3]TruePlaneGeometry{
			{Rows: 3, Cols: 3}, {Rows: 4, Cols: 4}, {Rows: 4, Cols: 4},
		},
	}
	data := make([]byte, 64)
	_, err := d.Decode(data)
	if err == nil {
		t.Fatal("expected shape-mismatch error, got nil")
	}
}

func TestGetDiff_ZeroLength(t *testing.T) {
	table := []huffcode.LengthCodeEntry{{Length: 1, Prefix: 0}}
	tree, err := huffcode.BuildLengthCodeTable(table)
	if err != nil {
		t.Fatalf("BuildLengthCodeTable: %v", err)
	}
	r := bitio.NewReader([]byte{0x00})
	diff, err := GetDiff(r, tree)
	if err != nil {
		t.Fatalf("GetDiff: %v", err)
	}
	if diff != 0 {
		t.Errorf("diff = %d, want 0", diff)
	}
}
