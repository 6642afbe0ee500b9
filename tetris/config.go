package tetris

import (
	"log/slog"
	"time"
)

// Config sets up an Engine. Zero values take the defaults of DefaultConfig.
type Config struct {
	Width         int
	VisibleHeight int
	// ExtraRows are hidden rows above the visible field where pieces
	// spawn. There is always at least one: 0 takes the default.
	ExtraRows     int
	BottomOffset  int

	// Palette nil takes the default; an empty non-nil palette is a
	// misconfiguration and also skips the pregenerated rows.
	Palette []Color
	Shapes  []ShapeSpec
	Match   MatchPolicy

	// PregenRows bottom rows are filled with tiles before the first piece.
	PregenRows int

	// Seed drives every random draw. 0 picks a time based seed.
	Seed uint64

	Logger *slog.Logger
}

func DefaultConfig() Config {
	return Config{
		Width:         12,
		VisibleHeight: 24,
		ExtraRows:     4,
		Palette:       DefaultPalette(),
		Shapes:        DefaultShapes(),
		Match:         LineRuns,
	}
}

// withDefaults fills the zero fields and drops unusable shapes. Problems are
// logged, never returned: a misconfigured game still runs on defaults.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Logger == nil {
		c.Logger = slog.New(slog.DiscardHandler)
	}
	if c.Width <= 0 {
		c.Width = d.Width
	}
	if c.VisibleHeight <= 0 {
		c.VisibleHeight = d.VisibleHeight
	}
	if c.ExtraRows <= 0 {
		c.ExtraRows = d.ExtraRows
	}
	if c.Seed == 0 {
		c.Seed = uint64(time.Now().UnixNano())
	}
	if c.PregenRows > c.VisibleHeight {
		c.Logger.Warn("pregenerated rows exceed the visible field",
			slog.Int("rows", c.PregenRows), slog.Int("visible", c.VisibleHeight))
		c.PregenRows = c.VisibleHeight
	}
	switch {
	case c.Palette == nil:
		c.Palette = d.Palette
	case len(c.Palette) == 0:
		c.Logger.Warn("empty color palette, using the default palette and skipping pregenerated rows")
		c.Palette = d.Palette
		c.PregenRows = 0
	}

	var shapes []ShapeSpec
	for _, s := range c.Shapes {
		if len(s.Offsets) == 0 {
			c.Logger.Warn("shape without tiles ignored", slog.String("shape", string(s.Shape)))
			continue
		}
		if s.Kicks == nil {
			s.Kicks = StandardKicks
		}
		shapes = append(shapes, s)
	}
	if len(shapes) == 0 {
		if len(c.Shapes) > 0 {
			c.Logger.Warn("no usable shape configured, using the default shapes")
		}
		shapes = d.Shapes
	}
	c.Shapes = shapes
	return c
}
