// Package tetris contains the simulation core of a falling piece puzzle
// where landed tiles are eliminated in runs of three colors instead of
// full lines.
package tetris

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"
)

var (
	ErrNoPiece       = errors.New("no active piece")
	ErrSpawnBlocked  = errors.New("spawn position is blocked")
	ErrUnknownShape  = errors.New("unknown shape")
	ErrUnknownIntent = errors.New("unknown intent")
	ErrReentrant     = errors.New("engine is settling the grid")
)

// Intent is an abstracted player command or a timer tick.
type Intent string

const (
	MoveLeft  Intent = "left"   // Moves the piece one column to the left.
	MoveRight Intent = "right"  // Moves the piece one column to the right.
	Rotate    Intent = "rotate" // Rotates the piece -90 degrees.
	HardDrop  Intent = "drop"   // Drops the piece down the stack and lands it.
	Tick      Intent = "tick"   // Moves the piece one row down or lands it.
)

// ParseIntent validates a raw intent name.
func ParseIntent(s string) (Intent, error) {
	switch i := Intent(s); i {
	case MoveLeft, MoveRight, Rotate, HardDrop, Tick:
		return i, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownIntent, s)
}

// Engine wires the grid, the active piece controller and the landing
// sequence together. It is single threaded: callers serialize intents.
type Engine struct {
	cfg      Config
	logger   *slog.Logger
	grid     *Grid
	rng      *rand.Rand
	colors   *ColorAssigner
	detector Detector
	shapes   map[Shape]ShapeSpec
	order    []Shape

	ctrl      *Controller
	next      Shape
	nextID    uint64
	listeners []Listener
	settling  bool
	blocked   bool
}

// New creates an engine with an empty grid, plus the pregenerated rows if
// configured. No piece is spawned until Start or SpawnPiece.
func New(cfg Config) *Engine {
	cfg = cfg.withDefaults()
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))
	e := &Engine{
		cfg:      cfg,
		logger:   cfg.Logger,
		grid:     NewGrid(cfg.Width, cfg.VisibleHeight, cfg.ExtraRows, cfg.BottomOffset),
		rng:      rng,
		colors:   NewColorAssigner(cfg.Palette, rng),
		detector: NewDetector(cfg.Match),
		shapes:   make(map[Shape]ShapeSpec, len(cfg.Shapes)),
	}
	for _, s := range cfg.Shapes {
		if _, ok := e.shapes[s.Shape]; !ok {
			e.order = append(e.order, s.Shape)
		}
		e.shapes[s.Shape] = s
	}
	e.pregenerate(cfg.PregenRows)
	e.next = e.drawShape()
	return e
}

// Subscribe registers l for every future event.
func (e *Engine) Subscribe(l Listener) {
	e.listeners = append(e.listeners, l)
}

// Start spawns the first piece from the preview queue.
func (e *Engine) Start() error {
	return e.spawnNext()
}

// SpawnCell is the default pivot cell of a new piece: the center column,
// one row above the visible field.
func (e *Engine) SpawnCell() Cell {
	return Cell{Col: e.grid.Width / 2, Row: e.grid.VisibleHeight}
}

// SpawnPiece creates a piece of shape s with its pivot on cell and gives it
// control. A blocked spawn discards the piece and reports ErrSpawnBlocked;
// the engine then idles until the next SpawnPiece.
func (e *Engine) SpawnPiece(s Shape, cell Cell) error {
	if e.settling {
		return ErrReentrant
	}
	spec, ok := e.shapes[s]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownShape, s)
	}

	colors := e.colors.Assign(spec.Offsets, spec.Colors)
	p := Piece{
		Shape:   s,
		Pivot:   e.grid.WorldOf(cell),
		Offsets: slices.Clone(spec.Offsets),
		Tiles:   make([]Tile, len(spec.Offsets)),
	}
	for i := range p.Tiles {
		e.nextID++
		p.Tiles[i] = Tile{ID: e.nextID, Color: colors[i]}
	}

	ctrl := NewController(e.grid, p, spec.Kicks, e.landed)
	if !ctrl.IsValidPosition(p) {
		e.ctrl = nil
		e.blocked = true
		e.logger.Info("spawn blocked", slog.String("shape", string(s)), slog.Int("col", cell.Col), slog.Int("row", cell.Row))
		e.emit(Event{Kind: SpawnBlocked, Shape: s, Cells: p.Cells(e.grid)})
		return fmt.Errorf("%w: %s at %d,%d", ErrSpawnBlocked, s, cell.Col, cell.Row)
	}
	e.ctrl = ctrl
	e.blocked = false
	return nil
}

// ApplyIntent runs one command against the active piece. Rejected moves
// leave the piece untouched and are not errors.
func (e *Engine) ApplyIntent(i Intent) error {
	if e.settling {
		return ErrReentrant
	}
	if e.ctrl == nil || e.ctrl.State() == Landed {
		return ErrNoPiece
	}
	switch i {
	case MoveLeft:
		e.ctrl.MoveLeft()
	case MoveRight:
		e.ctrl.MoveRight()
	case Rotate:
		e.ctrl.Rotate()
	case HardDrop:
		e.ctrl.HardDrop()
	case Tick:
		e.ctrl.Tick()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownIntent, i)
	}
	return nil
}

// Piece returns a copy of the active piece.
func (e *Engine) Piece() (Piece, bool) {
	if e.ctrl == nil {
		return Piece{}, false
	}
	return e.ctrl.Piece(), true
}

// PieceCells returns the cells of the active piece, nil without one.
func (e *Engine) PieceCells() []Cell {
	if e.ctrl == nil {
		return nil
	}
	return e.ctrl.Cells()
}

// Ghost returns the hard drop landing cells of the active piece.
func (e *Engine) Ghost() []Cell {
	if e.ctrl == nil {
		return nil
	}
	return e.ctrl.Ghost()
}

// Next returns the shape of the piece that spawns after the active one.
func (e *Engine) Next() Shape { return e.next }

func (e *Engine) Snapshot() Snapshot { return e.grid.Snapshot() }

// landed is the landing entry action of the controller: tiles are already
// in the grid, matches are resolved to a fixed point, then the next piece spawns.
func (e *Engine) landed(placed []Placement) {
	e.settling = true
	var cells []Cell
	for _, p := range placed {
		e.emit(Event{Kind: TileCommitted, Tile: p.Tile, Cell: p.Cell})
		cells = append(cells, p.Cell)
	}
	shape := e.ctrl.piece.Shape
	e.emit(Event{Kind: PieceLanded, Shape: shape, Cells: cells})

	steps := e.resolve()
	e.logger.Debug("piece landed", slog.String("shape", string(shape)), slog.Int("chain", steps))
	e.settling = false

	e.emit(Event{Kind: NextPieceRequested, Shape: e.next})
	if err := e.spawnNext(); err != nil {
		e.logger.Debug("next piece not spawned", slog.String("error", err.Error()))
	}
}

// resolve runs the cascade and reports its events. Returns the chain length.
func (e *Engine) resolve() int {
	steps := NewCascade(e.grid, e.detector).Run()
	for _, s := range steps {
		e.emit(Event{Kind: CellsCleared, Cells: s.Cleared})
		for _, f := range s.Falls {
			e.emit(Event{Kind: GroupMoved, Moves: f.Moves, Distance: f.Distance})
		}
	}
	return len(steps)
}

func (e *Engine) spawnNext() error {
	s := e.next
	e.next = e.drawShape()
	return e.SpawnPiece(s, e.SpawnCell())
}

func (e *Engine) drawShape() Shape {
	return e.order[e.rng.IntN(len(e.order))]
}

// pregenerate fills the bottom rows, avoiding any color that would close a
// run of MinRun with the two tiles to the left or the two below.
func (e *Engine) pregenerate(rows int) {
	palette := e.colors.Palette()
	for y := range rows {
		for x := range e.grid.Width {
			c := Cell{Col: x, Row: y}
			var candidates []Color
			for _, color := range palette {
				if !e.closesRun(c, color) {
					candidates = append(candidates, color)
				}
			}
			if len(candidates) == 0 {
				candidates = palette
			}
			e.nextID++
			e.grid.Commit(c, Tile{ID: e.nextID, Color: candidates[e.rng.IntN(len(candidates))]})
		}
	}
	if rows > 0 {
		// small palettes can't always avoid runs
		e.resolve()
		e.logger.Debug("pregenerated rows", slog.Int("rows", rows), slog.Int("tiles", e.grid.Len()))
	}
}

func (e *Engine) closesRun(c Cell, color Color) bool {
	for _, step := range [2]func(Cell) Cell{Cell.left, Cell.down} {
		n := step(c)
		run := 0
		for t, ok := e.grid.At(n); ok && t.Color == color && run < MinRun-1; t, ok = e.grid.At(n) {
			run++
			n = step(n)
		}
		if run == MinRun-1 {
			return true
		}
	}
	return false
}

func (e *Engine) emit(ev Event) {
	for _, l := range e.listeners {
		l(ev)
	}
}
