package tetris

import "slices"

// Piece is a rigid cluster of tiles around a pivot. Offsets[i] belongs to Tiles[i].
type Piece struct {
	Shape    Shape
	Pivot    Point
	Offsets  []Point
	Tiles    []Tile
	Rotation int // degrees: 0, 270, 180, 90
}

func (p Piece) copy() Piece {
	p.Offsets = slices.Clone(p.Offsets)
	p.Tiles = slices.Clone(p.Tiles)
	return p
}

func (p Piece) translated(d Point) Piece {
	p = p.copy()
	p.Pivot = p.Pivot.add(d)
	return p
}

// rotated turns every offset -90 degrees around the pivot: (x, y) -> (y, -x).
func (p Piece) rotated() Piece {
	p = p.copy()
	for i, o := range p.Offsets {
		p.Offsets[i] = Point{X: o.Y, Y: -o.X}
	}
	p.Rotation = (p.Rotation + 270) % 360
	return p
}

// Cells returns the grid cell of every tile, in tile order.
func (p Piece) Cells(g *Grid) []Cell {
	cells := make([]Cell, len(p.Offsets))
	for i, o := range p.Offsets {
		cells[i] = g.CellOf(p.Pivot.add(o))
	}
	return cells
}

// State of a piece controller.
type State int

const (
	Falling State = iota
	Landed
)

func (s State) String() string {
	if s == Landed {
		return "landed"
	}
	return "falling"
}

// Placement is a tile committed into the grid on landing.
type Placement struct {
	Tile Tile
	Cell Cell
}

// Controller owns the falling piece. Every move is validated against the
// grid and either fully applied or not applied at all.
type Controller struct {
	grid   *Grid
	piece  Piece
	kicks  []Point
	state  State
	onLand func([]Placement)
}

// NewController takes control of p. onLand runs once, after the piece tiles
// were committed into g.
func NewController(g *Grid, p Piece, kicks []Point, onLand func([]Placement)) *Controller {
	return &Controller{
		grid:   g,
		piece:  p.copy(),
		kicks:  slices.Clone(kicks),
		onLand: onLand,
	}
}

// Piece returns a copy of the current piece.
func (c *Controller) Piece() Piece { return c.piece.copy() }

func (c *Controller) State() State { return c.state }

// Cells returns the cells currently covered by the piece.
func (c *Controller) Cells() []Cell { return c.piece.Cells(c.grid) }

// IsValidPosition reports whether every tile of p is inside the grid and on
// an empty cell.
func (c *Controller) IsValidPosition(p Piece) bool {
	for _, cell := range p.Cells(c.grid) {
		if !c.grid.IsInside(cell) || c.grid.Occupied(cell) {
			return false
		}
	}
	return true
}

func (c *Controller) MoveLeft() bool  { return c.try(c.piece.translated(Point{X: -1})) }
func (c *Controller) MoveRight() bool { return c.try(c.piece.translated(Point{X: 1})) }

// Rotate turns the piece -90 degrees. When the rotated piece collides, the
// kicks are tried in order and the first valid one wins. If none fits the
// piece keeps its previous position and rotation.
func (c *Controller) Rotate() bool {
	if c.state == Landed {
		return false
	}
	rotated := c.piece.rotated()
	if c.try(rotated) {
		return true
	}
	for _, k := range c.kicks {
		if c.try(rotated.translated(k)) {
			return true
		}
	}
	return false
}

// Tick moves the piece one row down, landing it when it can't.
func (c *Controller) Tick() bool {
	if c.state == Landed {
		return false
	}
	if c.try(c.piece.translated(Point{Y: -1})) {
		return true
	}
	c.land()
	return false
}

// HardDrop drops the piece as far as it goes and lands it. Returns the
// number of rows dropped.
func (c *Controller) HardDrop() int {
	if c.state == Landed {
		return 0
	}
	rows := c.dropDistance()
	c.piece = c.piece.translated(Point{Y: -float64(rows)})
	c.land()
	return rows
}

// Ghost returns the cells the piece would land on with a hard drop. The
// live piece and the grid are not modified.
func (c *Controller) Ghost() []Cell {
	return c.piece.translated(Point{Y: -float64(c.dropDistance())}).Cells(c.grid)
}

func (c *Controller) dropDistance() int {
	rows := 0
	for c.IsValidPosition(c.piece.translated(Point{Y: -float64(rows + 1)})) {
		rows++
	}
	return rows
}

func (c *Controller) try(p Piece) bool {
	if c.state == Landed || !c.IsValidPosition(p) {
		return false
	}
	c.piece = p
	return true
}

// land commits the tiles of the piece. It runs at most once per controller.
func (c *Controller) land() {
	if c.state == Landed {
		return
	}
	c.state = Landed
	placed := make([]Placement, 0, len(c.piece.Tiles))
	for i, cell := range c.Cells() {
		c.grid.Commit(cell, c.piece.Tiles[i])
		placed = append(placed, Placement{Tile: c.piece.Tiles[i], Cell: cell})
	}
	if c.onLand != nil {
		c.onLand(placed)
	}
}
