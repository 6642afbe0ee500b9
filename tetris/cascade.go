package tetris

import "github.com/zyedidia/generic/mapset"

// Fall is one group dropped by a gravity pass.
type Fall struct {
	Moves    []Move
	Distance int
}

// Step is one round of a cascade: the cells cleared and the groups dropped
// by the gravity pass that followed.
type Step struct {
	Cleared []Cell
	Falls   []Fall
}

// Cascade runs the clear, gravity, rescan loop until the detector finds
// nothing. Next exposes it one step at a time for animators, Run computes
// the settled grid in one call.
type Cascade struct {
	grid     *Grid
	detector Detector
	gravity  Gravity
	done     bool
}

func NewCascade(g *Grid, d Detector) *Cascade {
	return &Cascade{grid: g, detector: d}
}

// Next clears the current matches and settles the grid. It returns false
// once the grid holds no match.
func (c *Cascade) Next() (Step, bool) {
	if c.done {
		return Step{}, false
	}
	matches := c.detector.Scan(c.grid)
	if matches.Size() == 0 {
		c.done = true
		return Step{}, false
	}

	step := Step{Cleared: cellsOf(matches)}
	for _, cell := range step.Cleared {
		c.grid.Clear(cell)
	}
	c.gravity.OnMove = func(moves []Move, d int) {
		step.Falls = append(step.Falls, Fall{Moves: moves, Distance: d})
	}
	c.gravity.Settle(c.grid)
	return step, true
}

// Run steps the cascade to completion.
func (c *Cascade) Run() []Step {
	var steps []Step
	for {
		s, ok := c.Next()
		if !ok {
			return steps
		}
		steps = append(steps, s)
	}
}

// cellsOf returns the cells of a set in row, column order.
func cellsOf(set mapset.Set[Cell]) []Cell {
	cells := make([]Cell, 0, set.Size())
	set.Each(func(c Cell) { cells = append(cells, c) })
	sortCells(cells)
	return cells
}
