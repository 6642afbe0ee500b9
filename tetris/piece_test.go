package tetris

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type landing struct {
	count  int
	placed []Placement
}

// newTestController puts a piece with its pivot on cell of an empty
// 12x24 grid with 4 extra rows.
func newTestController(shape Shape, cell Cell) (*Controller, *Grid, *landing) {
	g := NewGrid(12, 24, 4, 0)
	spec := LookupShape(shape)
	p := Piece{Shape: shape, Pivot: g.WorldOf(cell), Offsets: spec.Offsets, Tiles: make([]Tile, len(spec.Offsets))}
	for i := range p.Tiles {
		p.Tiles[i] = Tile{ID: uint64(i + 1), Color: Red}
	}
	l := &landing{}
	c := NewController(g, p, spec.Kicks, func(placed []Placement) {
		l.count++
		l.placed = placed
	})
	return c, g, l
}

func TestMoveActions(t *testing.T) {
	// Initial state of the test, T on its spawn cell:
	//
	// .	0 1 2 3 4 5 6 7 8 9 10 11
	// 25	. . . . . . O . . .  .  .
	// 24	. . . . . O P O . .  .  .
	// 23	. . . . . . . . . .  .  .
	spawn := Cell{Col: 6, Row: 24}
	tests := []struct {
		name      string
		action    func(c *Controller) bool
		block     []Cell
		wantPivot Point
		wantOK    bool
	}{
		{
			name:      "move left unblocked",
			action:    (*Controller).MoveLeft,
			wantPivot: Point{X: 5, Y: 24},
			wantOK:    true,
		},
		{
			name:      "move left blocked",
			action:    (*Controller).MoveLeft,
			block:     []Cell{{Col: 4, Row: 24}},
			wantPivot: Point{X: 6, Y: 24},
		},
		{
			name:      "move right unblocked",
			action:    (*Controller).MoveRight,
			wantPivot: Point{X: 7, Y: 24},
			wantOK:    true,
		},
		{
			name:      "move right blocked",
			action:    (*Controller).MoveRight,
			block:     []Cell{{Col: 7, Row: 25}},
			wantPivot: Point{X: 6, Y: 24},
		},
		{
			name:      "tick moves down",
			action:    (*Controller).Tick,
			wantPivot: Point{X: 6, Y: 23},
			wantOK:    true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c, g, _ := newTestController(T, spawn)
			for _, b := range tt.block {
				g.Commit(b, Tile{Color: Blue})
			}
			assert.Equal(t, tt.wantOK, tt.action(c))
			assert.Equal(t, tt.wantPivot, c.Piece().Pivot)
			assert.Equal(t, Falling, c.State())
		})
	}
}

func TestMoveAgainstWalls(t *testing.T) {
	c, _, _ := newTestController(T, Cell{Col: 6, Row: 10})
	moves := 0
	for c.MoveLeft() {
		moves++
	}
	assert.Equal(t, 5, moves)
	assert.Equal(t, 0.0, c.Piece().Pivot.X-1)

	moves = 0
	for c.MoveRight() {
		moves++
	}
	assert.Equal(t, 9, moves)
	assert.Equal(t, 10.0, c.Piece().Pivot.X)
}

func TestTickLands(t *testing.T) {
	c, g, l := newTestController(T, Cell{Col: 6, Row: 1})
	g.Commit(Cell{Col: 5, Row: 0}, Tile{ID: 99, Color: Blue})

	assert.False(t, c.Tick())
	assert.Equal(t, Landed, c.State())
	assert.Equal(t, 1, l.count)
	assert.Len(t, l.placed, 4)
	for _, cell := range []Cell{{Col: 6, Row: 2}, {Col: 5, Row: 1}, {Col: 6, Row: 1}, {Col: 7, Row: 1}} {
		assert.True(t, g.Occupied(cell), "cell %v", cell)
	}
}

func TestHardDrop(t *testing.T) {
	c, g, l := newTestController(T, Cell{Col: 6, Row: 24})
	ghost := c.Ghost()
	assert.Equal(t, Point{X: 6, Y: 24}, c.Piece().Pivot, "ghost must not move the piece")

	assert.Equal(t, 24, c.HardDrop())
	assert.Equal(t, Point{X: 6, Y: 0}, c.Piece().Pivot)
	assert.Equal(t, Landed, c.State())
	assert.ElementsMatch(t, ghost, c.Cells())
	assert.Equal(t, 4, g.Len())

	t.Run("landing runs once", func(t *testing.T) {
		assert.Equal(t, 0, c.HardDrop())
		assert.False(t, c.Tick())
		assert.False(t, c.MoveLeft())
		assert.False(t, c.Rotate())
		assert.Equal(t, 1, l.count)
		assert.Equal(t, 4, g.Len())
	})
}

func TestHardDropDeterminism(t *testing.T) {
	var landed [][]Cell
	for range 3 {
		c, g, _ := newTestController(S, Cell{Col: 3, Row: 20})
		g.Commit(Cell{Col: 3, Row: 4}, Tile{Color: Blue})
		g.Commit(Cell{Col: 1, Row: 2}, Tile{Color: Blue})
		c.HardDrop()
		landed = append(landed, c.Cells())
	}
	assert.Equal(t, landed[0], landed[1])
	assert.Equal(t, landed[0], landed[2])
}

func TestRotate(t *testing.T) {
	t.Run("rotates in place when free", func(t *testing.T) {
		// .	5 6 7		5 6 7
		// 25	. O .		. O .
		// 24	O P O	>	. P O
		// 23	. . .		. O .
		c, _, _ := newTestController(T, Cell{Col: 6, Row: 24})
		require.True(t, c.Rotate())
		p := c.Piece()
		assert.Equal(t, 270, p.Rotation)
		assert.Equal(t, Point{X: 6, Y: 24}, p.Pivot)
		assert.ElementsMatch(t, []Cell{{Col: 7, Row: 24}, {Col: 6, Row: 25}, {Col: 6, Row: 24}, {Col: 6, Row: 23}}, c.Cells())
	})

	t.Run("four rotations return to the spawn orientation", func(t *testing.T) {
		c, _, _ := newTestController(J, Cell{Col: 6, Row: 10})
		before := c.Cells()
		for range 4 {
			require.True(t, c.Rotate())
		}
		assert.Equal(t, 0, c.Piece().Rotation)
		assert.Equal(t, before, c.Cells())
	})

	t.Run("first valid kick wins", func(t *testing.T) {
		// .	5 6 7 8
		// 11	. . . .
		// 10	O P O .
		// 9	. X . .
		c, g, _ := newTestController(T, Cell{Col: 6, Row: 10})
		g.Commit(Cell{Col: 6, Row: 9}, Tile{Color: Blue})
		require.True(t, c.Rotate())
		p := c.Piece()
		assert.Equal(t, Point{X: 7, Y: 10}, p.Pivot)
		assert.Equal(t, 270, p.Rotation)
	})

	t.Run("I kicks off the left wall", func(t *testing.T) {
		c, _, _ := newTestController(I, Cell{Col: 6, Row: 24})
		require.True(t, c.Rotate())
		assert.ElementsMatch(t, []Cell{{Col: 6, Row: 26}, {Col: 6, Row: 25}, {Col: 6, Row: 24}, {Col: 6, Row: 23}}, c.Cells())
		for c.MoveLeft() {
		}
		assert.Equal(t, 0.0, c.Piece().Pivot.X)

		require.True(t, c.Rotate())
		assert.Equal(t, Point{X: 1, Y: 24}, c.Piece().Pivot)
		assert.Equal(t, 180, c.Piece().Rotation)
		assert.ElementsMatch(t, []Cell{{Col: 0, Row: 24}, {Col: 1, Row: 24}, {Col: 2, Row: 24}, {Col: 3, Row: 24}}, c.Cells())
	})

	t.Run("no valid kick leaves the piece untouched", func(t *testing.T) {
		// T on column 3 with its top tile on the top row of the grid.
		// Kicks moving up leave the grid, the others are blocked.
		//
		// .	1 2 3 4 5
		// 27	. . O . .
		// 26	. O P O X
		// 25	. X X . .
		c, g, l := newTestController(T, Cell{Col: 3, Row: 26})
		for _, b := range []Cell{{Col: 3, Row: 25}, {Col: 5, Row: 26}, {Col: 2, Row: 25}} {
			g.Commit(b, Tile{Color: Blue})
		}
		require.Equal(t, 27, g.Height()-1)
		before := c.Piece()

		assert.False(t, c.Rotate())
		assert.Equal(t, before, c.Piece())
		assert.Equal(t, Falling, c.State())
		assert.Equal(t, 0, l.count)
	})
}
