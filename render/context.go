package render

import "time"

// Context provides frame state for renderers, passed by value
type Context struct {
	Now time.Time

	// Screen dimensions (terminal size)
	ScreenWidth  int
	ScreenHeight int
}

// EditorHeight is the number of rows left for text above the status line
func (c Context) EditorHeight() int {
	return max(c.ScreenHeight-1, 1)
}
