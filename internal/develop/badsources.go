package develop

import "github.com/sigmaraw/x3fcore/internal/camf"

// collectBadPixels gathers every known bad-pixel source for a camera into
// a single map over a cols x rows plane, translating each source's own
// coordinate convention into plane-local (row,col) pairs (x3f_process.c's
// preprocess_data bad-pixel setup). Sources that are absent (most models
// carry only a handful) are silently skipped; only malformed matrices
// that are present but misshapen are treated as significant.
func collectBadPixels(meta *camf.Access, cols, rows int, keep [4]uint32, cameraModel string, luma bool) *BadPixelMap {
	m := NewBadPixelMap(cols, rows)

	markBadPixelsPacked(meta, m, keep)
	markRowColTable(meta, m, "BadPixelsF20", keep)
	markRowColTable(meta, m, "Jpeg_BadClusters", keep)
	markHighlightPixels(meta, m, keep)
	if luma {
		markVariableList(meta, m, "BadPixelsLumaF23", keep)
	} else {
		markVariableList(meta, m, "BadPixelsChromaF23", keep)
	}
	if g, ok := afGridFor(cameraModel, luma); ok {
		m.MarkGrid(g)
	}
	return m
}

// markBadPixelsPacked decodes the BadPixels matrix: a flat array of
// uint32 entries, each packing a (col,row) pair in its low/high 16 bits,
// in KeepImageArea-relative coordinates that must be offset by
// (keep[0],keep[1]) to land on the plane's own origin.
func markBadPixelsPacked(meta *camf.Access, m *BadPixelMap, keep [4]uint32) {
	vals, err := meta.GetUintMatrix("BadPixels")
	if err != nil {
		return
	}
	for _, v := range vals {
		col := int(v&0xffff) + int(keep[0])
		row := int(v>>16) + int(keep[1])
		m.Mark(row, col)
	}
}

// markRowColTable decodes a 3-column bad-cluster table (BadPixelsF20,
// Jpeg_BadClusters): each triple is read as (row, col, count), with row
// in field 0 and col in field 1, and marks count consecutive columns
// (at least one) starting at (row, col), offset by KeepImageArea's origin.
func markRowColTable(meta *camf.Access, m *BadPixelMap, name string, keep [4]uint32) {
	vals, err := meta.GetUintMatrix(name)
	if err != nil || len(vals) == 0 {
		return
	}
	for i := 0; i+2 < len(vals); i += 3 {
		row := int(vals[i]) + int(keep[1])
		col := int(vals[i+1]) + int(keep[0])
		count := int(vals[i+2])
		if count < 1 {
			count = 1
		}
		m.MarkRect(row, col, row, col+count-1)
	}
}

// markHighlightPixels decodes HighlightPixelsInfo: a periodic grid of
// known-bright defect pixels described as (start_row,start_col,row_pitch,
// col_pitch,row_count,col_count).
func markHighlightPixels(meta *camf.Access, m *BadPixelMap, keep [4]uint32) {
	vals, err := meta.GetUintMatrix("HighlightPixelsInfo")
	if err != nil || len(vals) < 6 {
		return
	}
	startRow, startCol := int(vals[0])+int(keep[1]), int(vals[1])+int(keep[0])
	rowPitch, colPitch := int(vals[2]), int(vals[3])
	rowCount, colCount := int(vals[4]), int(vals[5])
	if rowPitch <= 0 {
		rowPitch = 1
	}
	if colPitch <= 0 {
		colPitch = 1
	}
	for ri := 0; ri < rowCount; ri++ {
		for ci := 0; ci < colCount; ci++ {
			m.Mark(startRow+ri*rowPitch, startCol+ci*colPitch)
		}
	}
}

// markVariableList decodes the BadPixelsLumaF23/BadPixelsChromaF23
// format: a row count, then for each row a row index followed by its own
// count of bad column indices, i.e. [n_rows, (row, n_cols, col...)...].
func markVariableList(meta *camf.Access, m *BadPixelMap, name string, keep [4]uint32) {
	vals, err := meta.GetUintMatrix(name)
	if err != nil || len(vals) == 0 {
		return
	}
	i := 0
	nRows := int(vals[i])
	i++
	for n := 0; n < nRows && i < len(vals); n++ {
		row := int(vals[i]) + int(keep[1])
		i++
		if i >= len(vals) {
			break
		}
		nCols := int(vals[i])
		i++
		for c := 0; c < nCols && i < len(vals); c++ {
			m.Mark(row, int(vals[i])+int(keep[0]))
			i++
		}
	}
}
