package tetris

import "github.com/zyedidia/generic/mapset"

// MinRun is the shortest straight run of equal colors that gets eliminated.
const MinRun = 3

// MatchPolicy selects what a match removes.
type MatchPolicy int

const (
	// LineRuns removes every straight run of MinRun or more, all at once.
	LineRuns MatchPolicy = iota
	// FloodFill removes the whole same-colored region connected to the first
	// run found, one region per scan.
	FloodFill
)

// Detector scans a grid for the cells to remove. An empty set means the
// grid is stable.
type Detector interface {
	Scan(g *Grid) mapset.Set[Cell]
}

// NewDetector returns the detector for p.
func NewDetector(p MatchPolicy) Detector {
	if p == FloodFill {
		return floodFill{}
	}
	return lineRuns{}
}

type lineRuns struct{}

// Scan extends a run rightward and upward from every occupied cell,
// collecting the cells of runs of MinRun or more. A cell in both a
// horizontal and a vertical run is reported once.
func (lineRuns) Scan(g *Grid) mapset.Set[Cell] {
	matches := mapset.New[Cell]()
	g.Each(func(c Cell, t Tile) {
		for _, step := range [2]func(Cell) Cell{Cell.right, Cell.up} {
			run := runFrom(g, c, t.Color, step)
			if len(run) < MinRun {
				continue
			}
			for _, r := range run {
				matches.Put(r)
			}
		}
	})
	return matches
}

type floodFill struct{}

// Scan finds the first run of MinRun or more in column-major order and
// returns the entire 4-connected region of that color around its start.
func (floodFill) Scan(g *Grid) mapset.Set[Cell] {
	for x := range g.Width {
		for y := range g.Height() {
			c := Cell{Col: x, Row: y}
			t, ok := g.At(c)
			if !ok {
				continue
			}
			if len(runFrom(g, c, t.Color, Cell.right)) >= MinRun ||
				len(runFrom(g, c, t.Color, Cell.up)) >= MinRun {
				return regionOf(g, c, func(o Tile) bool { return o.Color == t.Color })
			}
		}
	}
	return mapset.New[Cell]()
}

// runFrom returns start and the following cells of the same color reached by
// repeatedly applying step.
func runFrom(g *Grid, start Cell, color Color, step func(Cell) Cell) []Cell {
	run := []Cell{start}
	for next := step(start); ; next = step(next) {
		t, ok := g.At(next)
		if !ok || t.Color != color {
			return run
		}
		run = append(run, next)
	}
}

// regionOf flood fills the 4-connected occupied cells around start whose
// tiles satisfy match.
func regionOf(g *Grid, start Cell, match func(Tile) bool) mapset.Set[Cell] {
	region := mapset.New[Cell]()
	queue := []Cell{start}
	region.Put(start)
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		for _, n := range c.neighbors() {
			if region.Has(n) {
				continue
			}
			t, ok := g.At(n)
			if !ok || !match(t) {
				continue
			}
			region.Put(n)
			queue = append(queue, n)
		}
	}
	return region
}
