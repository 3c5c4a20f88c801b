package tenniscourt

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// DefaultCellSize is the coverage grid pitch in pixels.
const DefaultCellSize = 20

// GridCell is the top left corner of a coverage cell, in frame pixels.
type GridCell struct {
	X, Y int
}

// CoverageHeatmap counts visits per cell.
type CoverageHeatmap map[GridCell]int

// Total is the number of recorded positions.
func (h CoverageHeatmap) Total() int {
	n := 0
	for _, v := range h {
		n += v
	}
	return n
}

// Cells returns the visited cells ordered by row, then column.
func (h CoverageHeatmap) Cells() []GridCell {
	cells := make([]GridCell, 0, len(h))
	for c := range h {
		cells = append(cells, c)
	}
	sort.Slice(cells, func(i, j int) bool {
		if cells[i].Y != cells[j].Y {
			return cells[i].Y < cells[j].Y
		}
		return cells[i].X < cells[j].X
	})
	return cells
}

// Coverage accumulates where a player has been. Nothing is ever evicted;
// callers Reset when they want a fresh map.
type Coverage struct {
	cellSize int
	heatmap  CoverageHeatmap
}

// NewCoverage returns an empty accumulator. A cellSize below 1 uses DefaultCellSize.
func NewCoverage(cellSize int) *Coverage {
	if cellSize < 1 {
		cellSize = DefaultCellSize
	}
	return &Coverage{cellSize: cellSize, heatmap: CoverageHeatmap{}}
}

// CellSize is the grid pitch.
func (c *Coverage) CellSize() int {
	return c.cellSize
}

// CellFor returns the cell containing (x, y).
func (c *Coverage) CellFor(x, y float64) GridCell {
	s := float64(c.cellSize)
	return GridCell{
		X: int(math.Floor(x/s)) * c.cellSize,
		Y: int(math.Floor(y/s)) * c.cellSize,
	}
}

// Record adds one visit at (x, y). Non-finite points are ignored.
func (c *Coverage) Record(x, y float64) bool {
	if !finite(x, y) {
		return false
	}
	c.heatmap[c.CellFor(x, y)]++
	return true
}

// Snapshot returns a copy of the heatmap.
func (c *Coverage) Snapshot() CoverageHeatmap {
	out := make(CoverageHeatmap, len(c.heatmap))
	for k, v := range c.heatmap {
		out[k] = v
	}
	return out
}

// Reset clears the heatmap.
func (c *Coverage) Reset() {
	c.heatmap = CoverageHeatmap{}
}

// CoverageStats summarises a heatmap.
type CoverageStats struct {
	Visits       int
	CellsVisited int
	AreaPx       float64

	MeanX, MeanY     float64
	StdDevX, StdDevY float64
}

// ToMap is the DoCommand form of the stats.
func (s CoverageStats) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"visits":        s.Visits,
		"cells_visited": s.CellsVisited,
		"area_px":       s.AreaPx,
		"mean_x":        s.MeanX,
		"mean_y":        s.MeanY,
		"stddev_x":      s.StdDevX,
		"stddev_y":      s.StdDevY,
	}
}

// Stats computes the visit weighted centre and spread of the cell centres.
func (h CoverageHeatmap) Stats(cellSize int) CoverageStats {
	s := CoverageStats{CellsVisited: len(h), Visits: h.Total()}
	s.AreaPx = float64(len(h) * cellSize * cellSize)
	if len(h) == 0 {
		return s
	}

	cells := h.Cells()
	xs := make([]float64, len(cells))
	ys := make([]float64, len(cells))
	ws := make([]float64, len(cells))
	half := float64(cellSize) / 2
	for i, c := range cells {
		xs[i] = float64(c.X) + half
		ys[i] = float64(c.Y) + half
		ws[i] = float64(h[c])
	}

	s.MeanX, s.StdDevX = stat.MeanStdDev(xs, ws)
	s.MeanY, s.StdDevY = stat.MeanStdDev(ys, ws)
	if len(cells) == 1 || math.IsNaN(s.StdDevX) {
		s.StdDevX = 0
	}
	if len(cells) == 1 || math.IsNaN(s.StdDevY) {
		s.StdDevY = 0
	}
	return s
}

// heatGrid adapts a heatmap to plotter.GridXYZ. Row 0 is the bottom of the frame.
type heatGrid struct {
	h        CoverageHeatmap
	cellSize int
	minX     int
	minY     int
	cols     int
	rows     int
}

func newHeatGrid(h CoverageHeatmap, cellSize int) *heatGrid {
	g := &heatGrid{h: h, cellSize: cellSize}
	first := true
	maxX, maxY := 0, 0
	for c := range h {
		if first {
			g.minX, g.minY, maxX, maxY = c.X, c.Y, c.X, c.Y
			first = false
			continue
		}
		g.minX = min(g.minX, c.X)
		g.minY = min(g.minY, c.Y)
		maxX = max(maxX, c.X)
		maxY = max(maxY, c.Y)
	}
	// the heat map needs two cells in each direction to size them
	g.cols = max(2, (maxX-g.minX)/cellSize+1)
	g.rows = max(2, (maxY-g.minY)/cellSize+1)
	return g
}

func (g *heatGrid) Dims() (int, int) { return g.cols, g.rows }

func (g *heatGrid) frameY(r int) int {
	return g.minY + (g.rows-1-r)*g.cellSize
}

func (g *heatGrid) Z(c, r int) float64 {
	return float64(g.h[GridCell{X: g.minX + c*g.cellSize, Y: g.frameY(r)}])
}

func (g *heatGrid) X(c int) float64 {
	return float64(g.minX+c*g.cellSize) + float64(g.cellSize)/2
}

// Y is negated so the top of the frame is at the top of the plot.
func (g *heatGrid) Y(r int) float64 {
	return -(float64(g.frameY(r)) + float64(g.cellSize)/2)
}

// PlotCoverage writes the heatmap as an image. The format follows the file extension.
func PlotCoverage(h CoverageHeatmap, cellSize int, title, path string) error {
	if len(h) == 0 {
		return fmt.Errorf("no coverage to plot")
	}
	if cellSize < 1 {
		return fmt.Errorf("bad cell size %d", cellSize)
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "x (px)"
	p.Y.Label.Text = "-y (px)"

	grid := newHeatGrid(h, cellSize)
	hm := plotter.NewHeatMap(grid, palette.Heat(12, 1))
	if hm.Min == hm.Max {
		// a single value would divide by zero when picking colours
		hm.Max = hm.Min + 1
	}
	p.Add(hm)

	if err := p.Save(8*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("save coverage plot: %w", err)
	}
	return nil
}
