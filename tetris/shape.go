package tetris

import "slices"

type Shape string

const (
	I Shape = "I"
	J Shape = "J"
	L Shape = "L"
	S Shape = "S"
	Z Shape = "Z"
	T Shape = "T"
	// U is the "П" pentomino: a bar of three with two legs down.
	U Shape = "U"
)

// Kick lists, tried in order when an in-place rotation collides.
var (
	StandardKicks  = []Point{{X: 1}, {X: -1}, {Y: 1}, {X: 1, Y: 1}, {X: -1, Y: 1}}
	ElongatedKicks = []Point{{X: 1}, {X: -1}, {X: 2}, {X: -2}, {Y: 1}}
)

// ShapeSpec describes a piece variant. The shape only decides the tile
// offsets, kicks and color policy; every piece behaves the same.
type ShapeSpec struct {
	Shape   Shape
	Offsets []Point // relative to the pivot, Y up
	Kicks   []Point
	Colors  ColorPolicy
}

/*
Offsets around the pivot P. The I pivot sits between its two middle tiles.

	I           J        L        S        Z        T        U
	O O O O     O . .    . . O    . O O    O O .    . O .    O P O
	            O P O    O P O    O P .    . P O    O P O    O . O
*/
var shapeSpecs = map[Shape]ShapeSpec{
	I: {Shape: I, Offsets: []Point{{X: -1.5}, {X: -0.5}, {X: 0.5}, {X: 1.5}}, Kicks: ElongatedKicks},
	J: {Shape: J, Offsets: []Point{{X: -1, Y: 1}, {X: -1}, {}, {X: 1}}, Kicks: StandardKicks},
	L: {Shape: L, Offsets: []Point{{X: 1, Y: 1}, {X: -1}, {}, {X: 1}}, Kicks: StandardKicks},
	S: {Shape: S, Offsets: []Point{{Y: 1}, {X: 1, Y: 1}, {X: -1}, {}}, Kicks: StandardKicks},
	Z: {Shape: Z, Offsets: []Point{{X: -1, Y: 1}, {Y: 1}, {}, {X: 1}}, Kicks: StandardKicks},
	T: {Shape: T, Offsets: []Point{{Y: 1}, {X: -1}, {}, {X: 1}}, Kicks: StandardKicks},
	U: {Shape: U, Offsets: []Point{{X: -1}, {}, {X: 1}, {X: -1, Y: -1}, {X: 1, Y: -1}}, Kicks: StandardKicks},
}

// DefaultShapes returns every built-in shape: the tetrominoes without the
// square, plus the U pentomino.
func DefaultShapes() []ShapeSpec {
	var specs []ShapeSpec
	for _, s := range []Shape{I, J, L, S, Z, T, U} {
		specs = append(specs, LookupShape(s))
	}
	return specs
}

// LookupShape returns a copy of the built-in spec for s. Unknown shapes
// return a zero spec.
func LookupShape(s Shape) ShapeSpec {
	spec, ok := shapeSpecs[s]
	if !ok {
		return ShapeSpec{}
	}
	spec.Offsets = slices.Clone(spec.Offsets)
	spec.Kicks = slices.Clone(spec.Kicks)
	return spec
}
