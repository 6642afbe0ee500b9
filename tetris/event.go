package tetris

// EventKind identifies what an Event reports.
type EventKind int

const (
	// TileCommitted: a landed tile was written into the grid. Tile, Cell.
	TileCommitted EventKind = iota
	// CellsCleared: a match was removed. Cells.
	CellsCleared
	// GroupMoved: a connected group fell. Moves, Distance.
	GroupMoved
	// PieceLanded: the active piece finished landing. Shape, Cells.
	PieceLanded
	// NextPieceRequested: the landing settled and a new piece is spawned. Shape.
	NextPieceRequested
	// SpawnBlocked: a new piece collided on spawn and was discarded. Shape, Cells.
	SpawnBlocked
)

var eventNames = map[EventKind]string{
	TileCommitted:      "tile_committed",
	CellsCleared:       "cells_cleared",
	GroupMoved:         "group_moved",
	PieceLanded:        "piece_landed",
	NextPieceRequested: "next_piece_requested",
	SpawnBlocked:       "spawn_blocked",
}

func (k EventKind) String() string { return eventNames[k] }

// Event is emitted to listeners while the engine mutates the grid.
type Event struct {
	Kind     EventKind
	Shape    Shape
	Tile     Tile
	Cell     Cell
	Cells    []Cell
	Moves    []Move
	Distance int
}

// Listener receives engine events synchronously. It must not call back
// into the engine.
type Listener func(Event)

// ParseEventKind is the reverse of EventKind.String.
func ParseEventKind(s string) (EventKind, bool) {
	for k, n := range eventNames {
		if n == s {
			return k, true
		}
	}
	return 0, false
}
