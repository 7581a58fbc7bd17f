package render

import (
	"fmt"
	"path/filepath"
	"sync/atomic"

	"github.com/gdamore/tcell/v2"
	"github.com/lixenwraith/powermode/config"
	"github.com/lixenwraith/powermode/editor"
	"github.com/lixenwraith/powermode/particle"
)

// StatusSource exposes the power mode counters shown on the status line
type StatusSource interface {
	Streak() int
	PoolStats() particle.Stats
	ShakesRunning() int
}

// StatusRenderer draws the bottom status line
type StatusRenderer struct {
	src     StatusSource
	buf     *editor.Buffer
	cfg     *config.Store
	message atomic.Pointer[string]
}

// NewStatusRenderer creates the status line renderer
func NewStatusRenderer(src StatusSource, buf *editor.Buffer, cfg *config.Store) *StatusRenderer {
	return &StatusRenderer{src: src, buf: buf, cfg: cfg}
}

// SetMessage shows msg on the status line until replaced; empty clears it
func (r *StatusRenderer) SetMessage(msg string) {
	r.message.Store(&msg)
}

// Line returns the status text without styling
func (r *StatusRenderer) Line() string {
	name := filepath.Base(r.buf.Path())
	if r.buf.Path() == "" {
		name = "[scratch]"
	}
	if r.buf.Modified() {
		name += " [+]"
	}

	power := "POWER OFF"
	if r.cfg.Load().PowerModeEnabled {
		power = "POWER ON"
	}

	st := r.src.PoolStats()
	line := fmt.Sprintf(" %s | combo x%d | sparks %d/%d | shakes %d | %s ",
		name, r.src.Streak(), st.Outstanding, st.Created, r.src.ShakesRunning(), power)
	if msg := r.message.Load(); msg != nil && *msg != "" {
		line += "| " + *msg + " "
	}
	return line
}

func (r *StatusRenderer) Render(ctx Context, screen tcell.Screen) {
	row := ctx.ScreenHeight - 1
	if row < 0 {
		return
	}

	snap := r.cfg.Load()
	fg := RgbStatusBar
	switch {
	case !snap.PowerModeEnabled:
		fg = RgbPowerOff
	case r.src.Streak() >= snap.ComboActivationThreshold:
		fg = RgbComboHot
	}
	style := tcell.StyleDefault.Background(RgbStatusBg.Color()).Foreground(fg.Color())

	runes := []rune(r.Line())
	for x := 0; x < ctx.ScreenWidth; x++ {
		ch := ' '
		if x < len(runes) {
			ch = runes[x]
		}
		screen.SetContent(x, row, ch, nil, style)
	}
}
