package tetris

import "math"

// Point is a position in world units. Tiles are centered on integer
// coordinates, a pivot can sit between two tiles.
type Point struct {
	X, Y float64
}

func (p Point) add(o Point) Point { return Point{X: p.X + o.X, Y: p.Y + o.Y} }

// Cell is a grid coordinate. Row is relative to the grid's bottom offset.
type Cell struct {
	Col, Row int
}

func (c Cell) up() Cell    { return Cell{Col: c.Col, Row: c.Row + 1} }
func (c Cell) down() Cell  { return Cell{Col: c.Col, Row: c.Row - 1} }
func (c Cell) left() Cell  { return Cell{Col: c.Col - 1, Row: c.Row} }
func (c Cell) right() Cell { return Cell{Col: c.Col + 1, Row: c.Row} }

// neighbors returns the 4-connected neighbors of c, no diagonals.
func (c Cell) neighbors() [4]Cell {
	return [4]Cell{c.left(), c.right(), c.down(), c.up()}
}

// Tile is a single colored unit. ID is stable for the life of the tile so
// renderers can follow it across gravity moves.
type Tile struct {
	ID    uint64
	Color Color
}

// Grid is the occupancy matrix, hidden rows above the visible field included.
//
//	      0 1 2 3 4 5 6 7 8 9 10 11
//	27    . . . . . . . . . .  .  .   <- extra rows (spawn area)
//	24    . . . . . . . . . .  .  .
//	23    . . . . . . . . . .  .  .   <- top visible row
//	 0    . . . . . . . . . .  .  .   <- world row BottomOffset
//
// A falling piece is never stored here until it lands.
type Grid struct {
	Width         int
	VisibleHeight int
	ExtraRows     int
	BottomOffset  int

	// cells is indexed [row][col].
	cells [][]*Tile
}

// NewGrid creates an empty grid. Non-positive sizes are clamped to 1.
func NewGrid(width, visibleHeight, extraRows, bottomOffset int) *Grid {
	width = max(width, 1)
	visibleHeight = max(visibleHeight, 1)
	extraRows = max(extraRows, 0)
	g := &Grid{
		Width:         width,
		VisibleHeight: visibleHeight,
		ExtraRows:     extraRows,
		BottomOffset:  bottomOffset,
	}
	g.cells = make([][]*Tile, g.Height())
	for i := range g.cells {
		g.cells[i] = make([]*Tile, width)
	}
	return g
}

// Height is the total number of rows, extra rows included.
func (g *Grid) Height() int { return g.VisibleHeight + g.ExtraRows }

// CellOf converts a world position to a cell using floor(pos + 0.5) on both
// axes, which keeps half-unit pivots stable in both rotation directions.
func (g *Grid) CellOf(p Point) Cell {
	return Cell{
		Col: int(math.Floor(p.X + 0.5)),
		Row: int(math.Floor(p.Y+0.5)) - g.BottomOffset,
	}
}

// WorldOf returns the world position of the center of c.
func (g *Grid) WorldOf(c Cell) Point {
	return Point{X: float64(c.Col), Y: float64(c.Row + g.BottomOffset)}
}

func (g *Grid) IsInside(c Cell) bool {
	return c.Col >= 0 && c.Col < g.Width && c.Row >= 0 && c.Row < g.Height()
}

func (g *Grid) Occupied(c Cell) bool {
	return g.IsInside(c) && g.cells[c.Row][c.Col] != nil
}

// At returns the tile committed at c.
func (g *Grid) At(c Cell) (Tile, bool) {
	if !g.Occupied(c) {
		return Tile{}, false
	}
	return *g.cells[c.Row][c.Col], true
}

// Commit stores t at c. Writes outside the grid are dropped.
func (g *Grid) Commit(c Cell, t Tile) {
	if !g.IsInside(c) {
		return
	}
	g.cells[c.Row][c.Col] = &t
}

// Clear empties c. Cells outside the grid are ignored.
func (g *Grid) Clear(c Cell) {
	if !g.IsInside(c) {
		return
	}
	g.cells[c.Row][c.Col] = nil
}

// Reset empties every cell.
func (g *Grid) Reset() {
	for _, row := range g.cells {
		clear(row)
	}
}

// Each calls fn for every occupied cell, column by column from the bottom.
func (g *Grid) Each(fn func(Cell, Tile)) {
	for x := range g.Width {
		for y := range g.Height() {
			if t := g.cells[y][x]; t != nil {
				fn(Cell{Col: x, Row: y}, *t)
			}
		}
	}
}

// Len returns the number of occupied cells.
func (g *Grid) Len() int {
	n := 0
	g.Each(func(Cell, Tile) { n++ })
	return n
}

// Snapshot is a read-only copy of the grid colors, indexed [row][col].
type Snapshot struct {
	Width         int
	Height        int
	VisibleHeight int
	Cells         [][]Color
}

// Color returns the color at c, or None when c is empty or outside.
func (s Snapshot) Color(c Cell) Color {
	if c.Col < 0 || c.Col >= s.Width || c.Row < 0 || c.Row >= s.Height {
		return None
	}
	return s.Cells[c.Row][c.Col]
}

// Snapshot copies the occupancy and colors of the grid.
func (g *Grid) Snapshot() Snapshot {
	s := Snapshot{
		Width:         g.Width,
		Height:        g.Height(),
		VisibleHeight: g.VisibleHeight,
		Cells:         make([][]Color, g.Height()),
	}
	for y, row := range g.cells {
		s.Cells[y] = make([]Color, g.Width)
		for x, t := range row {
			if t != nil {
				s.Cells[y][x] = t.Color
			}
		}
	}
	return s
}

// clone returns a deep copy used by speculative computations.
func (g *Grid) clone() *Grid {
	c := NewGrid(g.Width, g.VisibleHeight, g.ExtraRows, g.BottomOffset)
	g.Each(func(cell Cell, t Tile) { c.Commit(cell, t) })
	return c
}
