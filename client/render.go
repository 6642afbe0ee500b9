package client

import (
	_ "embed"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"text/template"

	"matchtris/tetris"

	"github.com/charmbracelet/lipgloss"
)

const (
	hideCursor = "\033[2J\033[?25l" // also clear screen
	showCursor = "\033[?25h\r\n"
	resetPos   = "\033[H" // Reset cursor position to 0,0

	empty = "  "
	block = "[]"
)

//go:embed "layout.tmpl"
var layout string

// ANSI color numbers of every tile color.
var colorMap = map[tetris.Color]lipgloss.Color{
	tetris.Red:    lipgloss.Color("1"),
	tetris.Green:  lipgloss.Color("2"),
	tetris.Yellow: lipgloss.Color("3"),
	tetris.Blue:   lipgloss.Color("4"),
	tetris.Purple: lipgloss.Color("5"),
	tetris.Orange: lipgloss.Color("214"),
}

var (
	ghostStyle = lipgloss.NewStyle().Faint(true)
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	alertStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
)

var help = []string{
	"",
	"left/a   move left",
	"right/d  move right",
	"up/w     rotate",
	"down/s   step down",
	"space    drop",
	"q        quit",
}

type renderer interface {
	open()
	frame(tetris.Frame)
	close()
}

type templateData struct {
	Rows [][]string
	Side []string
}

type render struct {
	writer   io.Writer
	logger   *slog.Logger
	template *template.Template
	noGhost  bool
	tiles    map[tetris.Color]string
	width    int
}

func newRender(l *slog.Logger, noGhost bool) (*render, error) {
	return newRenderTo(os.Stdout, l, noGhost)
}

func newRenderTo(w io.Writer, l *slog.Logger, noGhost bool) (*render, error) {
	r := &render{
		writer:  w,
		logger:  l,
		noGhost: noGhost,
		tiles:   make(map[tetris.Color]string, len(colorMap)),
	}
	for c, ansi := range colorMap {
		r.tiles[c] = lipgloss.NewStyle().Reverse(true).Foreground(ansi).Render(block)
	}
	tmp, err := r.loadTemplate()
	if err != nil {
		return nil, fmt.Errorf("failed to load template: %w", err)
	}
	r.template = tmp
	return r, nil
}

func (r *render) loadTemplate() (*template.Template, error) {
	funcMap := template.FuncMap{
		"join":   func(s []string) string { return strings.Join(s, "") },
		"border": func() string { return strings.Repeat("-", r.width*len(block)) },
	}
	// the console is raw so new lines need an explicit carriage return.
	return template.New("layout").Funcs(funcMap).Parse(strings.ReplaceAll(layout, "\n", "\r\n"))
}

func (r *render) open()  { fmt.Fprint(r.writer, hideCursor) }
func (r *render) close() { fmt.Fprint(r.writer, showCursor) }

func (r *render) frame(f tetris.Frame) {
	r.width = f.Grid.Width
	fmt.Fprint(r.writer, resetPos)
	if err := r.template.Execute(r.writer, r.data(f)); err != nil {
		r.logger.Error("unable to execute template in frame()", slog.String("error", err.Error()))
	}
}

func (r *render) tile(c tetris.Color) string {
	if s, ok := r.tiles[c]; ok {
		return s
	}
	return block
}

// data lays out the visible rows top first, with the preview and the key
// help on the side.
func (r *render) data(f tetris.Frame) *templateData {
	visible := f.Grid.VisibleHeight
	d := &templateData{Rows: make([][]string, visible), Side: make([]string, visible)}
	for i := range visible {
		row := visible - 1 - i
		line := make([]string, f.Grid.Width)
		for col := range f.Grid.Width {
			c := tetris.Cell{Col: col, Row: row}
			switch t, ok := f.PieceAt(c); {
			case ok:
				line[col] = r.tile(t.Color)
			case f.Grid.Color(c) != tetris.None:
				line[col] = r.tile(f.Grid.Color(c))
			case !r.noGhost && f.IsGhost(c):
				line[col] = ghostStyle.Render(block)
			default:
				line[col] = empty
			}
		}
		d.Rows[i] = line
	}

	side := append([]string{"next"}, preview(f.Next)...)
	if f.Blocked {
		side = append(side, "", alertStyle.Render("spawn blocked"))
	}
	for _, h := range help {
		side = append(side, helpStyle.Render(h))
	}
	for i := range min(len(side), visible) {
		d.Side[i] = "  " + side[i]
	}
	return d
}

// preview draws the default offsets of s on three rows.
func preview(s tetris.Shape) []string {
	spec := tetris.LookupShape(s)
	g := tetris.NewGrid(4, 3, 1, 0)
	pivot := tetris.Point{X: 1, Y: 1}
	cells := make(map[tetris.Cell]bool, len(spec.Offsets))
	for _, o := range spec.Offsets {
		cells[g.CellOf(tetris.Point{X: pivot.X + o.X, Y: pivot.Y + o.Y})] = true
	}
	rows := make([]string, 3)
	for i := range rows {
		var b strings.Builder
		for col := range 4 {
			if cells[tetris.Cell{Col: col, Row: 2 - i}] {
				b.WriteString(block)
			} else {
				b.WriteString(empty)
			}
		}
		rows[i] = b.String()
	}
	return rows
}
