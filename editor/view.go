package editor

import (
	"sync"

	"github.com/lixenwraith/powermode/core"
)

// View is a scrollable window onto a Buffer
// The visible offset is the caret-follow scroll plus the shake displacement;
// shakes only touch the displacement, FollowCaret only the scroll
type View struct {
	buf *Buffer

	mu            sync.RWMutex
	width, height int
	scrollX       int
	scrollY       int
	shakeX        int
	shakeY        int
}

// NewView creates a width x height window at the buffer origin
func NewView(buf *Buffer, width, height int) *View {
	return &View{buf: buf, width: max(width, 1), height: max(height, 1)}
}

// Buffer returns the viewed buffer
func (v *View) Buffer() *Buffer {
	return v.buf
}

// Resize changes the window size
func (v *View) Resize(width, height int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.width = max(width, 1)
	v.height = max(height, 1)
}

// Size returns the window size in cells
func (v *View) Size() (width, height int) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.width, v.height
}

// Offsets returns the visible scroll position, shake included
func (v *View) Offsets() (x, y int) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.scrollX + v.shakeX, v.scrollY + v.shakeY
}

// Bounds returns the visible region in buffer coordinates
func (v *View) Bounds() core.Rect {
	v.mu.RLock()
	defer v.mu.RUnlock()
	x, y := v.scrollX+v.shakeX, v.scrollY+v.shakeY
	return core.Rect{
		Top:    y,
		Bottom: y + v.height - 1,
		Left:   x,
		Right:  x + v.width - 1,
	}
}

// Caret returns the buffer caret position
func (v *View) Caret() core.Point {
	return v.buf.Cursor()
}

// HorizontalOffset returns the horizontal shake displacement
func (v *View) HorizontalOffset() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.shakeX
}

// SetHorizontalOffset sets the horizontal shake displacement
func (v *View) SetHorizontalOffset(x int) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.shakeX = x
	return nil
}

// ScrollVertical moves the vertical shake displacement by dy rows
func (v *View) ScrollVertical(dy int) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.shakeY += dy
	return nil
}

// FollowCaret scrolls the minimum amount that brings the caret into view
// Only the base scroll moves, so an in-flight shake still restores exactly
func (v *View) FollowCaret() {
	c := v.buf.Cursor()

	v.mu.Lock()
	defer v.mu.Unlock()

	switch {
	case c.Y < v.scrollY:
		v.scrollY = c.Y
	case c.Y >= v.scrollY+v.height:
		v.scrollY = c.Y - v.height + 1
	}
	switch {
	case c.X < v.scrollX:
		v.scrollX = c.X
	case c.X >= v.scrollX+v.width:
		v.scrollX = c.X - v.width + 1
	}
}

// ToScreen maps a buffer position to window cell coordinates
func (v *View) ToScreen(p core.Point) (x, y int, visible bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	x, y = p.X-v.scrollX-v.shakeX, p.Y-v.scrollY-v.shakeY
	return x, y, x >= 0 && x < v.width && y >= 0 && y < v.height
}
