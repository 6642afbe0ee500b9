package tetris

import (
	"cmp"
	"math/rand/v2"
	"slices"

	"github.com/kamstrup/intmap"
)

// Color of a tile. None is the color of an empty cell and never part of a palette.
type Color int

const (
	None Color = iota
	Red
	Blue
	Green
	Yellow
	Purple
	Orange
)

var colorNames = map[Color]string{
	None:   "none",
	Red:    "red",
	Blue:   "blue",
	Green:  "green",
	Yellow: "yellow",
	Purple: "purple",
	Orange: "orange",
}

func (c Color) String() string {
	if n, ok := colorNames[c]; ok {
		return n
	}
	return "unknown"
}

// DefaultPalette is the 4-color palette used by every final game setup.
func DefaultPalette() []Color { return []Color{Red, Blue, Green, Yellow} }

// ColorPolicy selects how a spawned piece gets its colors.
type ColorPolicy int

const (
	// AdjacencyColors colors tile by tile, avoiding a color that 2 already
	// colored neighbors share.
	AdjacencyColors ColorPolicy = iota
	// UniformColor gives the whole piece one random color.
	UniformColor
)

// ColorAssigner picks tile colors for new pieces. It never touches the grid.
type ColorAssigner struct {
	palette []Color
	rng     *rand.Rand
}

func NewColorAssigner(palette []Color, rng *rand.Rand) *ColorAssigner {
	return &ColorAssigner{palette: slices.Clone(palette), rng: rng}
}

// Palette returns a copy of the configured palette.
func (a *ColorAssigner) Palette() []Color { return slices.Clone(a.palette) }

// Assign returns one color per offset, in the same order as offsets. An
// empty palette yields None for every tile.
func (a *ColorAssigner) Assign(offsets []Point, policy ColorPolicy) []Color {
	colors := make([]Color, len(offsets))
	if len(a.palette) == 0 {
		return colors
	}
	if policy == UniformColor {
		c := a.random(a.palette)
		for i := range colors {
			colors[i] = c
		}
		return colors
	}

	// tiles are colored in row-major order: ascending Y, then X.
	order := make([]int, len(offsets))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(i, j int) int {
		if c := cmp.Compare(offsets[i].Y, offsets[j].Y); c != 0 {
			return c
		}
		return cmp.Compare(offsets[i].X, offsets[j].X)
	})

	assigned := make(map[Point]Color, len(offsets))
	for _, i := range order {
		colors[i] = a.pick(a.neighborCounts(offsets[i], assigned))
		assigned[offsets[i]] = colors[i]
	}
	return colors
}

// neighborCounts counts the colors of already assigned 4-connected
// neighbors, exactly one unit away.
func (a *ColorAssigner) neighborCounts(p Point, assigned map[Point]Color) *intmap.Map[Color, int] {
	counts := intmap.New[Color, int](4)
	for _, d := range [4]Point{{X: -1}, {X: 1}, {Y: -1}, {Y: 1}} {
		c, ok := assigned[p.add(d)]
		if !ok {
			continue
		}
		n, _ := counts.Get(c)
		counts.Put(c, n+1)
	}
	return counts
}

func (a *ColorAssigner) pick(counts *intmap.Map[Color, int]) Color {
	var candidates []Color
	for _, c := range a.palette {
		if n, _ := counts.Get(c); n < 2 {
			candidates = append(candidates, c)
		}
	}
	if len(candidates) > 0 {
		return a.random(candidates)
	}

	best := a.palette[0]
	bestN, _ := counts.Get(best)
	for _, c := range a.palette[1:] {
		if n, _ := counts.Get(c); n < bestN {
			best, bestN = c, n
		}
	}
	return best
}

func (a *ColorAssigner) random(from []Color) Color {
	return from[a.rng.IntN(len(from))]
}
