package tetris

import "slices"

// Frame is a read-only picture of the game for renderers: grid colors, the
// falling piece, its ghost and the events since the previous frame.
type Frame struct {
	Grid    Snapshot
	Piece   []Placement
	Ghost   []Cell
	Next    Shape
	Events  []Event
	// Blocked is set when the last spawn collided.
	Blocked bool
}

// Frame copies the current state. Events are left empty, the Runner fills
// them from its subscription.
func (e *Engine) Frame() Frame {
	f := Frame{
		Grid:    e.grid.Snapshot(),
		Next:    e.next,
		Ghost:   e.Ghost(),
		Blocked: e.blocked,
	}
	if e.ctrl != nil {
		p := e.ctrl.Piece()
		for i, c := range p.Cells(e.grid) {
			f.Piece = append(f.Piece, Placement{Tile: p.Tiles[i], Cell: c})
		}
	}
	return f
}

// PieceAt returns the tile of the falling piece on c.
func (f Frame) PieceAt(c Cell) (Tile, bool) {
	i := slices.IndexFunc(f.Piece, func(p Placement) bool { return p.Cell == c })
	if i < 0 {
		return Tile{}, false
	}
	return f.Piece[i].Tile, true
}

// IsGhost reports whether c is a landing cell of the falling piece.
func (f Frame) IsGhost(c Cell) bool {
	return slices.Contains(f.Ghost, c)
}
