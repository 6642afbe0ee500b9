package server

import (
	"fmt"

	"matchtris/tetris"

	"google.golang.org/protobuf/types/known/structpb"
)

// Message fields of the GameSession stream.
const (
	fieldSession = "session_id"
	fieldIntent  = "intent"
	fieldGrid    = "grid"
	fieldVisible = "visible_height"
	fieldPiece   = "piece"
	fieldGhost   = "ghost"
	fieldNext    = "next"
	fieldBlocked = "blocked"
	fieldEvents  = "events"
)

// EncodeIntent builds a client message. An empty intent only attaches the
// stream to the session.
func EncodeIntent(sessionID string, i tetris.Intent) *structpb.Struct {
	fields := map[string]*structpb.Value{fieldSession: structpb.NewStringValue(sessionID)}
	if i != "" {
		fields[fieldIntent] = structpb.NewStringValue(string(i))
	}
	return &structpb.Struct{Fields: fields}
}

// EncodeFrame builds the server answer for f.
func EncodeFrame(sessionID string, f tetris.Frame) (*structpb.Struct, error) {
	grid := make([]any, len(f.Grid.Cells))
	for y, row := range f.Grid.Cells {
		r := make([]any, len(row))
		for x, c := range row {
			r[x] = int(c)
		}
		grid[y] = r
	}
	piece := make([]any, 0, len(f.Piece))
	for _, p := range f.Piece {
		piece = append(piece, placement(p.Cell, p.Tile))
	}
	events := make([]any, 0, len(f.Events))
	for _, ev := range f.Events {
		events = append(events, event(ev))
	}

	st, err := structpb.NewStruct(map[string]any{
		fieldSession: sessionID,
		fieldGrid:    grid,
		fieldVisible: f.Grid.VisibleHeight,
		fieldPiece:   piece,
		fieldGhost:   cellList(f.Ghost),
		fieldNext:    string(f.Next),
		fieldBlocked: f.Blocked,
		fieldEvents:  events,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode frame: %w", err)
	}
	return st, nil
}

func cell(c tetris.Cell) map[string]any {
	return map[string]any{"col": c.Col, "row": c.Row}
}

func cellList(cells []tetris.Cell) []any {
	out := make([]any, 0, len(cells))
	for _, c := range cells {
		out = append(out, cell(c))
	}
	return out
}

func placement(c tetris.Cell, t tetris.Tile) map[string]any {
	m := cell(c)
	m["id"] = t.ID
	m["color"] = int(t.Color)
	return m
}

func event(ev tetris.Event) map[string]any {
	m := map[string]any{
		"kind":     ev.Kind.String(),
		"shape":    string(ev.Shape),
		"cells":    cellList(ev.Cells),
		"distance": ev.Distance,
	}
	if ev.Kind == tetris.TileCommitted {
		m["tile"] = placement(ev.Cell, ev.Tile)
	}
	moves := make([]any, 0, len(ev.Moves))
	for _, mv := range ev.Moves {
		moves = append(moves, map[string]any{
			"from": cell(mv.From),
			"to":   placement(mv.To, mv.Tile),
		})
	}
	m["moves"] = moves
	return m
}

// DecodeIntent reads a client message.
func DecodeIntent(st *structpb.Struct) (sessionID, intent string) {
	fields := st.GetFields()
	return fields[fieldSession].GetStringValue(), fields[fieldIntent].GetStringValue()
}

// DecodeFrame reads a server answer back into a frame.
func DecodeFrame(st *structpb.Struct) (string, tetris.Frame) {
	fields := st.GetFields()
	f := tetris.Frame{
		Next:    tetris.Shape(fields[fieldNext].GetStringValue()),
		Blocked: fields[fieldBlocked].GetBoolValue(),
		Ghost:   decodeCells(fields[fieldGhost]),
	}

	rows := fields[fieldGrid].GetListValue().GetValues()
	f.Grid = tetris.Snapshot{
		Height:        len(rows),
		VisibleHeight: number(fields[fieldVisible]),
		Cells:         make([][]tetris.Color, len(rows)),
	}
	for y, row := range rows {
		values := row.GetListValue().GetValues()
		f.Grid.Width = len(values)
		f.Grid.Cells[y] = make([]tetris.Color, len(values))
		for x, v := range values {
			f.Grid.Cells[y][x] = tetris.Color(number(v))
		}
	}

	for _, v := range fields[fieldPiece].GetListValue().GetValues() {
		c, t := decodePlacement(v)
		f.Piece = append(f.Piece, tetris.Placement{Tile: t, Cell: c})
	}
	for _, v := range fields[fieldEvents].GetListValue().GetValues() {
		f.Events = append(f.Events, decodeEvent(v))
	}
	return fields[fieldSession].GetStringValue(), f
}

func number(v *structpb.Value) int { return int(v.GetNumberValue()) }

func decodeCell(v *structpb.Value) tetris.Cell {
	fields := v.GetStructValue().GetFields()
	return tetris.Cell{Col: number(fields["col"]), Row: number(fields["row"])}
}

func decodeCells(v *structpb.Value) []tetris.Cell {
	var cells []tetris.Cell
	for _, c := range v.GetListValue().GetValues() {
		cells = append(cells, decodeCell(c))
	}
	return cells
}

func decodePlacement(v *structpb.Value) (tetris.Cell, tetris.Tile) {
	fields := v.GetStructValue().GetFields()
	return decodeCell(v), tetris.Tile{
		ID:    uint64(fields["id"].GetNumberValue()),
		Color: tetris.Color(number(fields["color"])),
	}
}

func decodeEvent(v *structpb.Value) tetris.Event {
	fields := v.GetStructValue().GetFields()
	kind, _ := tetris.ParseEventKind(fields["kind"].GetStringValue())
	ev := tetris.Event{
		Kind:     kind,
		Shape:    tetris.Shape(fields["shape"].GetStringValue()),
		Cells:    decodeCells(fields["cells"]),
		Distance: number(fields["distance"]),
	}
	if t, ok := fields["tile"]; ok {
		ev.Cell, ev.Tile = decodePlacement(t)
	}
	for _, mv := range fields["moves"].GetListValue().GetValues() {
		m := mv.GetStructValue().GetFields()
		to, tile := decodePlacement(m["to"])
		ev.Moves = append(ev.Moves, tetris.Move{Tile: tile, From: decodeCell(m["from"]), To: to})
	}
	return ev
}
