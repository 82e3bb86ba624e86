package router

import (
	"math"

	"panel-router/internal/obstacle"
	"panel-router/pkg/geometry"
)

// gridSpec is the uniform grid of committed-point cells laid over the panel.
type gridSpec struct {
	minX, minY float64
	chunk      float64
	w, h       int
}

func newGridSpec(panel geometry.Rect, chunk float64) gridSpec {
	return gridSpec{
		minX:  panel.MinX(),
		minY:  panel.MinY(),
		chunk: chunk,
		w:     max(1, int(math.Ceil(panel.Width/chunk))),
		h:     max(1, int(math.Ceil(panel.Height/chunk))),
	}
}

// cell returns the cell holding p. Points off the panel land in the nearest
// edge cell.
func (g *gridSpec) cell(p geometry.PointInt) (int, int) {
	cx := int(math.Floor((float64(p.X) - g.minX) / g.chunk))
	cy := int(math.Floor((float64(p.Y) - g.minY) / g.chunk))
	return min(max(cx, 0), g.w-1), min(max(cy, 0), g.h-1)
}

// pointHash stores one unit's committed route points by grid cell. Cells are
// allocated on first insert and hold at most perCell points.
type pointHash struct {
	grid    *gridSpec
	perCell int
	cells   [][]obstacle.CommittedPoint
	// overflow records that a point was dropped from a full cell.
	overflow bool
}

func newPointHash(grid *gridSpec, perCell int) *pointHash {
	return &pointHash{
		grid:    grid,
		perCell: perCell,
		cells:   make([][]obstacle.CommittedPoint, grid.w*grid.h),
	}
}

func (h *pointHash) reset() {
	for i := range h.cells {
		h.cells[i] = h.cells[i][:0]
	}
	h.overflow = false
}

// insert adds cp to its cell. It returns false and sets overflow when the
// cell is full.
func (h *pointHash) insert(cp obstacle.CommittedPoint) bool {
	cx, cy := h.grid.cell(cp.Pos)
	i := cy*h.grid.w + cx
	if h.cells[i] == nil {
		h.cells[i] = make([]obstacle.CommittedPoint, 0, min(h.perCell, 64))
	}
	if len(h.cells[i]) >= h.perCell {
		h.overflow = true
		return false
	}
	h.cells[i] = append(h.cells[i], cp)
	return true
}

// Near visits the 3x3 block of cells centered on p's cell.
func (h *pointHash) Near(p geometry.PointInt, fn func(obstacle.CommittedPoint) bool) {
	cx, cy := h.grid.cell(p)
	for gy := max(cy-1, 0); gy <= min(cy+1, h.grid.h-1); gy++ {
		for gx := max(cx-1, 0); gx <= min(cx+1, h.grid.w-1); gx++ {
			for _, cp := range h.cells[gy*h.grid.w+gx] {
				if !fn(cp) {
					return
				}
			}
		}
	}
}

func (h *pointHash) size() int {
	n := 0
	for _, c := range h.cells {
		n += len(c)
	}
	return n
}

func (h *pointHash) bytes() int64 {
	const pointSize = 16 + 8 + 8
	var n int64
	for _, c := range h.cells {
		n += int64(cap(c)) * pointSize
	}
	return n
}
