package render

import "github.com/gdamore/tcell/v2"

// Renderer draws one layer of the frame
type Renderer interface {
	Render(ctx Context, screen tcell.Screen)
}

// VisibilityToggle is optionally implemented for runtime enable/disable
type VisibilityToggle interface {
	IsVisible() bool
}
