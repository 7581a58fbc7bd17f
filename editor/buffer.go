// Package editor is the host text model: a rune buffer with a caret and a scrollable view.
package editor

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/lixenwraith/powermode/core"
)

// ErrNoPath is returned by Save when the buffer was never bound to a file
var ErrNoPath = errors.New("editor: buffer has no file path")

// ChangeFunc receives the sub-edit size deltas of one buffer change
type ChangeFunc func(deltas []int)

// Buffer holds editable lines and the caret
// Every mutating call emits exactly one change notification
type Buffer struct {
	mu        sync.RWMutex
	lines     [][]rune
	cursor    core.Point // X column, Y line
	path      string
	modified  bool
	listeners []ChangeFunc
}

// NewBuffer creates a buffer holding text with the caret at the origin
func NewBuffer(text string) *Buffer {
	return &Buffer{lines: splitLines(text)}
}

// OpenFile loads path; a missing file yields an empty buffer bound to path
func OpenFile(path string) (*Buffer, error) {
	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	b := NewBuffer(string(data))
	b.path = path
	return b, nil
}

func splitLines(text string) [][]rune {
	parts := strings.Split(text, "\n")
	lines := make([][]rune, len(parts))
	for i, p := range parts {
		lines[i] = []rune(p)
	}
	return lines
}

// OnChange registers fn for every subsequent change
func (b *Buffer) OnChange(fn ChangeFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners = append(b.listeners, fn)
}

// emit runs listeners outside the lock so they may read the buffer
func (b *Buffer) emit(deltas []int) {
	b.mu.RLock()
	listeners := b.listeners
	b.mu.RUnlock()
	for _, fn := range listeners {
		fn(deltas)
	}
}

// Text returns the full contents joined with newlines
func (b *Buffer) Text() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var sb strings.Builder
	for i, l := range b.lines {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(string(l))
	}
	return sb.String()
}

// LineCount returns the number of lines, at least 1
func (b *Buffer) LineCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.lines)
}

// Line returns a copy of line y, or nil when out of range
func (b *Buffer) Line(y int) []rune {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if y < 0 || y >= len(b.lines) {
		return nil
	}
	return append([]rune(nil), b.lines[y]...)
}

// Cursor returns the caret position
func (b *Buffer) Cursor() core.Point {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.cursor
}

// Path returns the bound file path
func (b *Buffer) Path() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.path
}

// Modified reports unsaved changes
func (b *Buffer) Modified() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.modified
}

// Save writes the buffer to its path
func (b *Buffer) Save() error {
	path := b.Path()
	if path == "" {
		return ErrNoPath
	}
	if err := os.WriteFile(path, []byte(b.Text()), 0o644); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	b.mu.Lock()
	b.modified = false
	b.mu.Unlock()
	return nil
}

// InsertRune inserts r at the caret and advances it
func (b *Buffer) InsertRune(r rune) {
	b.mu.Lock()
	line := b.lines[b.cursor.Y]
	x := b.cursor.X
	line = append(line[:x], append([]rune{r}, line[x:]...)...)
	b.lines[b.cursor.Y] = line
	b.cursor.X++
	b.modified = true
	b.mu.Unlock()

	b.emit([]int{1})
}

// InsertNewline splits the current line at the caret
func (b *Buffer) InsertNewline() {
	b.mu.Lock()
	b.splitAtCursor()
	b.modified = true
	b.mu.Unlock()

	b.emit([]int{1})
}

// splitAtCursor requires b.mu held
func (b *Buffer) splitAtCursor() {
	y, x := b.cursor.Y, b.cursor.X
	head := append([]rune(nil), b.lines[y][:x]...)
	tail := append([]rune(nil), b.lines[y][x:]...)

	lines := make([][]rune, 0, len(b.lines)+1)
	lines = append(lines, b.lines[:y]...)
	lines = append(lines, head, tail)
	lines = append(lines, b.lines[y+1:]...)
	b.lines = lines
	b.cursor = core.Point{X: 0, Y: y + 1}
}

// InsertText pastes text at the caret as one change
// Each line segment and line break is reported as its own sub-edit
func (b *Buffer) InsertText(text string) {
	if text == "" {
		return
	}
	segments := strings.Split(text, "\n")
	deltas := make([]int, 0, 2*len(segments))

	b.mu.Lock()
	for i, seg := range segments {
		if i > 0 {
			b.splitAtCursor()
			deltas = append(deltas, 1)
		}
		if seg == "" {
			continue
		}
		rs := []rune(seg)
		y, x := b.cursor.Y, b.cursor.X
		line := b.lines[y]
		merged := make([]rune, 0, len(line)+len(rs))
		merged = append(merged, line[:x]...)
		merged = append(merged, rs...)
		merged = append(merged, line[x:]...)
		b.lines[y] = merged
		b.cursor.X += len(rs)
		deltas = append(deltas, len(rs))
	}
	b.modified = true
	b.mu.Unlock()

	b.emit(deltas)
}

// DeleteBackward removes the rune before the caret, joining lines at column 0
func (b *Buffer) DeleteBackward() {
	b.mu.Lock()
	y, x := b.cursor.Y, b.cursor.X
	switch {
	case x > 0:
		b.lines[y] = append(b.lines[y][:x-1], b.lines[y][x:]...)
		b.cursor.X--
	case y > 0:
		prevLen := len(b.lines[y-1])
		b.joinLines(y - 1)
		b.cursor = core.Point{X: prevLen, Y: y - 1}
	default:
		b.mu.Unlock()
		return
	}
	b.modified = true
	b.mu.Unlock()

	b.emit([]int{-1})
}

// DeleteForward removes the rune under the caret, joining lines at end of line
func (b *Buffer) DeleteForward() {
	b.mu.Lock()
	y, x := b.cursor.Y, b.cursor.X
	switch {
	case x < len(b.lines[y]):
		b.lines[y] = append(b.lines[y][:x], b.lines[y][x+1:]...)
	case y < len(b.lines)-1:
		b.joinLines(y)
	default:
		b.mu.Unlock()
		return
	}
	b.modified = true
	b.mu.Unlock()

	b.emit([]int{-1})
}

// joinLines appends line y+1 onto line y; requires b.mu held
func (b *Buffer) joinLines(y int) {
	b.lines[y] = append(b.lines[y], b.lines[y+1]...)
	b.lines = append(b.lines[:y+1], b.lines[y+2:]...)
}

// DeleteLine removes the caret's line including its break
func (b *Buffer) DeleteLine() {
	b.mu.Lock()
	y := b.cursor.Y
	removed := len(b.lines[y])
	if len(b.lines) == 1 {
		if removed == 0 {
			b.mu.Unlock()
			return
		}
		b.lines[0] = b.lines[0][:0]
	} else {
		removed++
		b.lines = append(b.lines[:y], b.lines[y+1:]...)
		if y >= len(b.lines) {
			y = len(b.lines) - 1
		}
	}
	b.cursor = core.Point{X: min(b.cursor.X, len(b.lines[y])), Y: y}
	b.modified = true
	b.mu.Unlock()

	b.emit([]int{-removed})
}

// MoveCursor shifts the caret, clamped to the text
func (b *Buffer) MoveCursor(dx, dy int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	y := min(max(b.cursor.Y+dy, 0), len(b.lines)-1)
	x := b.cursor.X + dx
	if dy != 0 {
		x = b.cursor.X
	}
	b.cursor = core.Point{X: min(max(x, 0), len(b.lines[y])), Y: y}
}

// LineStart moves the caret to column 0
func (b *Buffer) LineStart() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cursor.X = 0
}

// LineEnd moves the caret past the last rune of its line
func (b *Buffer) LineEnd() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cursor.X = len(b.lines[b.cursor.Y])
}
