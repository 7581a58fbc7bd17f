package editor

import (
	"strings"

	"github.com/gdamore/tcell/v2"
)

// Action is the outcome of a key the editor does not consume itself
type Action int

const (
	ActionNone Action = iota
	ActionEdit
	ActionMove
	ActionSave
	ActionQuit
	ActionToggle
)

// tabWidth is the number of spaces a Tab inserts
const tabWidth = 4

// HandleKey applies ev to buf and reports what happened
func HandleKey(buf *Buffer, ev *tcell.EventKey) Action {
	switch ev.Key() {
	case tcell.KeyCtrlQ, tcell.KeyCtrlC, tcell.KeyEscape:
		return ActionQuit
	case tcell.KeyCtrlS:
		return ActionSave
	case tcell.KeyCtrlP:
		return ActionToggle

	case tcell.KeyEnter:
		buf.InsertNewline()
		return ActionEdit
	case tcell.KeyTab:
		buf.InsertText(strings.Repeat(" ", tabWidth))
		return ActionEdit
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		buf.DeleteBackward()
		return ActionEdit
	case tcell.KeyDelete:
		buf.DeleteForward()
		return ActionEdit
	case tcell.KeyCtrlK:
		buf.DeleteLine()
		return ActionEdit

	case tcell.KeyLeft:
		buf.MoveCursor(-1, 0)
		return ActionMove
	case tcell.KeyRight:
		buf.MoveCursor(1, 0)
		return ActionMove
	case tcell.KeyUp:
		buf.MoveCursor(0, -1)
		return ActionMove
	case tcell.KeyDown:
		buf.MoveCursor(0, 1)
		return ActionMove
	case tcell.KeyHome, tcell.KeyCtrlA:
		buf.LineStart()
		return ActionMove
	case tcell.KeyEnd, tcell.KeyCtrlE:
		buf.LineEnd()
		return ActionMove

	case tcell.KeyRune:
		buf.InsertRune(ev.Rune())
		return ActionEdit
	}
	return ActionNone
}
