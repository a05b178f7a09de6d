package whiteboard

import (
	"encoding/json"

	"github.com/inamate/whiteboard/internal/geom"
	"github.com/inamate/whiteboard/internal/shape"
)

// DrawCommand is a single drawing operation for the canvas front end. All
// coordinates are in world space; Transform maps them to the screen.
type DrawCommand struct {
	Op        string      `json:"op"`                  // "line", "rect", "polyline", "text", "outline"
	ElementID string      `json:"elementId,omitempty"` // empty for in-progress shapes
	Transform []float64   `json:"transform,omitempty"` // [a, b, c, d, e, f] affine matrix
	Points    []geom.Vec2 `json:"points,omitempty"`
	Text      string      `json:"text,omitempty"`
	FontSize  float64     `json:"fontSize,omitempty"`
	Stroke    string      `json:"stroke,omitempty"`
	Width     float64     `json:"strokeWidth,omitempty"`
}

const (
	strokeColor    = "#000000"
	selectionColor = "#1e88e5"
	draftColor     = "#757575"
	strokeWidth    = 2
)

// Render returns the draw commands for the current frame in painter's order:
// committed shapes by kind then append order, selection outlines, and the
// shape being drawn on top.
func (s *Session) Render() []DrawCommand {
	view := s.viewMatrix().ToSlice()
	var commands []DrawCommand

	for _, t := range s.engine.Tools() {
		elements := t.Elements()
		for i, sh := range t.Shapes() {
			commands = append(commands, shapeCommand(sh, elements[i].ID, view, strokeColor))
		}
	}

	if sel := s.sel.Selected(); sel != nil {
		outline := selectionOutline(sel)
		commands = append(commands, DrawCommand{
			Op:        "outline",
			Transform: view,
			Points:    outline,
			Stroke:    selectionColor,
			Width:     1,
		})
	}

	if t := s.drawingTool(); t != nil && t.InProgress() != nil {
		commands = append(commands, shapeCommand(t.InProgress(), "", view, draftColor))
	}

	return commands
}

// selectionOutline is the closed ring drawn around a selected shape: the
// padded oriented box for lines, the clickable rectangle otherwise.
func selectionOutline(sel *shape.Shape) []geom.Vec2 {
	var corners []geom.Vec2
	if sel.Kind == shape.KindLine {
		corners = sel.Bounds.Vertices()
	} else {
		corners = sel.Rect().Vertices()
	}
	return append(corners, corners[0])
}

// RenderJSON serializes Render for the js bridge.
func (s *Session) RenderJSON() string {
	data, err := json.Marshal(s.Render())
	if err != nil {
		s.logger.Error("failed to encode draw commands", "error", err)
		return "[]"
	}
	return string(data)
}

func shapeCommand(sh *shape.Shape, id string, view []float64, stroke string) DrawCommand {
	cmd := DrawCommand{
		ElementID: id,
		Transform: view,
		Stroke:    stroke,
		Width:     strokeWidth,
	}

	switch sh.Kind {
	case shape.KindLine:
		cmd.Op = "line"
		cmd.Points = []geom.Vec2{sh.Start, sh.End}
	case shape.KindBox:
		cmd.Op = "rect"
		cmd.Points = []geom.Vec2{sh.Start, sh.End}
	case shape.KindPencil:
		cmd.Op = "polyline"
		cmd.Points = append([]geom.Vec2(nil), sh.Points...)
	case shape.KindText:
		cmd.Op = "text"
		cmd.Points = []geom.Vec2{sh.Start, sh.End}
		cmd.Text = sh.Text
		cmd.FontSize = shape.TextSize
	}
	return cmd
}
