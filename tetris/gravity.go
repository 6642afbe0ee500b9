package tetris

import (
	"slices"

	"github.com/zyedidia/generic/mapset"
)

// Move is a single tile translated by a gravity pass.
type Move struct {
	Tile     Tile
	From, To Cell
}

// Group is a 4-connected set of occupied cells, regardless of color.
type Group []Cell

// bottom returns the lowest row of the group.
func (gr Group) bottom() int {
	low := gr[0].Row
	for _, c := range gr[1:] {
		low = min(low, c.Row)
	}
	return low
}

// Gravity compacts a grid after cells were cleared. Groups fall as rigid
// bodies: they never split, rotate or fall partially.
type Gravity struct {
	// OnMove is called once per fallen group with the moves of all its tiles.
	OnMove func(moves []Move, distance int)
}

// Settle lets every group fall as far as it can, repeating until a full
// sweep moves nothing. Reports whether anything moved.
func (gv *Gravity) Settle(g *Grid) bool {
	moved := false
	for gv.sweep(g) {
		moved = true
	}
	return moved
}

// sweep recomputes the groups and drops each of them by its maximum fall
// distance, bottom-most groups first so upper groups see the freed space.
func (gv *Gravity) sweep(g *Grid) bool {
	groups := Groups(g)
	slices.SortStableFunc(groups, func(a, b Group) int { return a.bottom() - b.bottom() })

	moved := false
	for _, gr := range groups {
		d := fallDistance(g, gr)
		if d == 0 {
			continue
		}
		moves := translate(g, gr, d)
		if gv.OnMove != nil {
			gv.OnMove(moves, d)
		}
		moved = true
	}
	return moved
}

// Groups returns every connected group of occupied cells.
func Groups(g *Grid) []Group {
	var groups []Group
	seen := mapset.New[Cell]()
	g.Each(func(c Cell, _ Tile) {
		if seen.Has(c) {
			return
		}
		var gr Group
		regionOf(g, c, func(Tile) bool { return true }).Each(func(m Cell) {
			seen.Put(m)
			gr = append(gr, m)
		})
		sortCells(gr)
		groups = append(groups, gr)
	})
	return groups
}

// fallDistance is the largest d such that every cell of the group moved d
// rows down lands on an empty cell or on a cell of the group itself.
func fallDistance(g *Grid, gr Group) int {
	members := mapset.New[Cell]()
	for _, c := range gr {
		members.Put(c)
	}
	d := 0
	for {
		for _, c := range gr {
			dst := Cell{Col: c.Col, Row: c.Row - d - 1}
			if dst.Row < 0 || (g.Occupied(dst) && !members.Has(dst)) {
				return d
			}
		}
		d++
	}
}

// translate moves the group down by d rows in one step.
func translate(g *Grid, gr Group, d int) []Move {
	moves := make([]Move, 0, len(gr))
	for _, c := range gr {
		t, _ := g.At(c)
		moves = append(moves, Move{Tile: t, From: c, To: Cell{Col: c.Col, Row: c.Row - d}})
	}
	for _, m := range moves {
		g.Clear(m.From)
	}
	for _, m := range moves {
		g.Commit(m.To, m.Tile)
	}
	return moves
}

// sortCells orders cells by row, then column.
func sortCells(cells []Cell) {
	slices.SortFunc(cells, func(a, b Cell) int {
		if a.Row != b.Row {
			return a.Row - b.Row
		}
		return a.Col - b.Col
	})
}
