package render

import (
	"github.com/gdamore/tcell/v2"
	"github.com/lixenwraith/powermode/editor"
)

// TextRenderer draws the visible part of the buffer and places the terminal caret
type TextRenderer struct {
	view *editor.View
}

// NewTextRenderer creates a renderer for view
func NewTextRenderer(view *editor.View) *TextRenderer {
	return &TextRenderer{view: view}
}

func (r *TextRenderer) Render(ctx Context, screen tcell.Screen) {
	buf := r.view.Buffer()
	width, height := r.view.Size()
	scrollX, scrollY := r.view.Offsets()

	for row := 0; row < height && row < ctx.EditorHeight(); row++ {
		line := buf.Line(scrollY + row)
		for col := 0; col < width; col++ {
			x := scrollX + col
			if x < 0 || x >= len(line) {
				continue
			}
			screen.SetContent(col, row, line[x], nil, defaultStyle)
		}
	}

	if x, y, ok := r.view.ToScreen(r.view.Caret()); ok && y < ctx.EditorHeight() {
		screen.ShowCursor(x, y)
	} else {
		screen.HideCursor()
	}
}
