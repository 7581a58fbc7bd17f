package editor

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/lixenwraith/powermode/config"
	"github.com/lixenwraith/powermode/core"
	"github.com/lixenwraith/powermode/shake"
	"github.com/lixenwraith/powermode/vmath"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordChanges captures every notification the buffer emits
func recordChanges(b *Buffer) *[][]int {
	var got [][]int
	b.OnChange(func(d []int) { got = append(got, append([]int(nil), d...)) })
	return &got
}

func TestInsertAndDeleteDeltas(t *testing.T) {
	b := NewBuffer("")
	changes := recordChanges(b)

	b.InsertRune('a')
	b.InsertRune('b')
	b.InsertNewline()
	b.InsertRune('c')
	b.DeleteBackward()
	b.DeleteBackward() // joins lines

	assert.Equal(t, "ab", b.Text())
	assert.Equal(t, core.Point{X: 2, Y: 0}, b.Cursor())
	assert.Equal(t, [][]int{{1}, {1}, {1}, {1}, {-1}, {-1}}, *changes)
	assert.True(t, b.Modified())
}

func TestDeleteAtEdgesIsSilent(t *testing.T) {
	b := NewBuffer("x")
	changes := recordChanges(b)

	b.DeleteBackward()
	b.LineEnd()
	b.DeleteForward()

	assert.Empty(t, *changes)
	assert.Equal(t, "x", b.Text())
}

func TestDeleteForwardJoinsLines(t *testing.T) {
	b := NewBuffer("ab\ncd")
	changes := recordChanges(b)

	b.LineEnd()
	b.DeleteForward()

	assert.Equal(t, "abcd", b.Text())
	assert.Equal(t, [][]int{{-1}}, *changes)
}

func TestInsertTextReportsSubEdits(t *testing.T) {
	b := NewBuffer("<>")
	changes := recordChanges(b)
	b.MoveCursor(1, 0)

	b.InsertText("hello\nworld\n!")

	assert.Equal(t, "<hello\nworld\n!>", b.Text())
	assert.Equal(t, core.Point{X: 1, Y: 2}, b.Cursor())
	require.Len(t, *changes, 1)
	assert.Equal(t, []int{5, 1, 5, 1, 1}, (*changes)[0])
	assert.Equal(t, 13, core.SumDeltas((*changes)[0]).SizeDelta)
}

func TestInsertTextEmptyIsNoop(t *testing.T) {
	b := NewBuffer("")
	changes := recordChanges(b)
	b.InsertText("")
	assert.Empty(t, *changes)
}

func TestDeleteLine(t *testing.T) {
	b := NewBuffer("one\ntwo\nthree")
	changes := recordChanges(b)
	b.MoveCursor(0, 1)
	b.LineEnd()

	b.DeleteLine()
	assert.Equal(t, "one\nthree", b.Text())
	assert.Equal(t, core.Point{X: 3, Y: 1}, b.Cursor())

	b.DeleteLine()
	assert.Equal(t, "one", b.Text())
	assert.Equal(t, 0, b.Cursor().Y)

	b.DeleteLine()
	assert.Equal(t, "", b.Text())

	b.DeleteLine()
	assert.Equal(t, [][]int{{-4}, {-6}, {-3}}, *changes)
}

func TestMoveCursorClamps(t *testing.T) {
	b := NewBuffer("long line\nab")

	b.MoveCursor(-5, 0)
	assert.Equal(t, core.Point{}, b.Cursor())

	b.LineEnd()
	b.MoveCursor(0, 1)
	assert.Equal(t, core.Point{X: 2, Y: 1}, b.Cursor())

	b.MoveCursor(0, 10)
	assert.Equal(t, 1, b.Cursor().Y)
	b.MoveCursor(0, -10)
	assert.Equal(t, 0, b.Cursor().Y)
}

func TestOpenAndSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "note.txt")

	b, err := OpenFile(path)
	require.NoError(t, err)
	assert.Equal(t, "", b.Text())

	b.InsertText("saved\ntext")
	require.NoError(t, b.Save())
	assert.False(t, b.Modified())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "saved\ntext", string(data))

	reopened, err := OpenFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, reopened.LineCount())
	assert.Equal(t, []rune("text"), reopened.Line(1))
}

func TestSaveWithoutPath(t *testing.T) {
	assert.ErrorIs(t, NewBuffer("x").Save(), ErrNoPath)
}

func TestViewGeometry(t *testing.T) {
	b := NewBuffer("abc")
	v := NewView(b, 10, 4)

	assert.Equal(t, core.Rect{Top: 0, Bottom: 3, Left: 0, Right: 9}, v.Bounds())

	require.NoError(t, v.SetHorizontalOffset(-2))
	require.NoError(t, v.ScrollVertical(3))
	assert.Equal(t, -2, v.HorizontalOffset())
	assert.Equal(t, core.Rect{Top: 3, Bottom: 6, Left: -2, Right: 7}, v.Bounds())

	x, y, ok := v.ToScreen(core.Point{X: 0, Y: 3})
	assert.True(t, ok)
	assert.Equal(t, 2, x)
	assert.Equal(t, 0, y)

	_, _, ok = v.ToScreen(core.Point{X: 0, Y: 0})
	assert.False(t, ok)
}

func TestViewFollowCaret(t *testing.T) {
	b := NewBuffer("0\n1\n2\n3\n4\n5\n6\n7")
	v := NewView(b, 3, 3)

	b.MoveCursor(0, 6)
	v.FollowCaret()
	_, y := v.Offsets()
	assert.Equal(t, 4, y)

	b.MoveCursor(0, -6)
	v.FollowCaret()
	_, y = v.Offsets()
	assert.Equal(t, 0, y)

	b.InsertText("abcdef")
	v.FollowCaret()
	x, _ := v.Offsets()
	assert.Equal(t, 4, x)
	assert.Equal(t, b.Cursor(), v.Caret())
}

// gatedTimer holds each shake step open until release is sent
type gatedTimer struct {
	applied chan struct{}
	release chan time.Time
}

func newGatedTimer() *gatedTimer {
	return &gatedTimer{applied: make(chan struct{}, 1), release: make(chan time.Time)}
}

func (g *gatedTimer) after(time.Duration) <-chan time.Time {
	g.applied <- struct{}{}
	return g.release
}

func TestFollowCaretDuringShakeRestoresExactly(t *testing.T) {
	for seed := uint64(1); seed <= 8; seed++ {
		b := NewBuffer("first\nsecond")
		v := NewView(b, 20, 5)
		timer := newGatedTimer()
		anim := shake.NewAnimator(v, config.MustNewStore(config.Default()),
			shake.WithSeeds(vmath.NewSeedSource(seed)), shake.WithTimer(timer.after))

		session := anim.Shake(context.Background(), 1)
		<-timer.applied

		shakenX, shakenY := v.Offsets()
		assert.NotZero(t, shakenX, "seed %d", seed)
		assert.NotZero(t, shakenY, "seed %d", seed)

		// Caret sits at the origin, inside the base window; following it must not absorb the shake
		v.FollowCaret()
		x, y := v.Offsets()
		assert.Equal(t, shakenX, x, "seed %d", seed)
		assert.Equal(t, shakenY, y, "seed %d", seed)

		timer.release <- time.Time{}
		require.NoError(t, session.Wait())

		x, y = v.Offsets()
		assert.Zero(t, x, "seed %d", seed)
		assert.Zero(t, y, "seed %d", seed)
		assert.Zero(t, v.HorizontalOffset(), "seed %d", seed)
	}
}

func TestFollowCaretMovesBaseScrollUnderShake(t *testing.T) {
	b := NewBuffer("0\n1\n2\n3\n4\n5")
	v := NewView(b, 4, 2)

	require.NoError(t, v.SetHorizontalOffset(2))
	require.NoError(t, v.ScrollVertical(-2))

	b.MoveCursor(0, 4)
	v.FollowCaret()
	x, y := v.Offsets()
	assert.Equal(t, 2, x)
	assert.Equal(t, 3-2, y)

	require.NoError(t, v.SetHorizontalOffset(v.HorizontalOffset()-2))
	require.NoError(t, v.ScrollVertical(2))
	x, y = v.Offsets()
	assert.Equal(t, 0, x)
	assert.Equal(t, 3, y)
	assert.True(t, v.Bounds().Contains(v.Caret()))
}

func TestHandleKey(t *testing.T) {
	b := NewBuffer("")

	tests := []struct {
		ev   *tcell.EventKey
		want Action
	}{
		{tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModNone), ActionEdit},
		{tcell.NewEventKey(tcell.KeyTab, 0, tcell.ModNone), ActionEdit},
		{tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone), ActionEdit},
		{tcell.NewEventKey(tcell.KeyUp, 0, tcell.ModNone), ActionMove},
		{tcell.NewEventKey(tcell.KeyEnd, 0, tcell.ModNone), ActionMove},
		{tcell.NewEventKey(tcell.KeyBackspace2, 0, tcell.ModNone), ActionEdit},
		{tcell.NewEventKey(tcell.KeyCtrlS, 0, tcell.ModCtrl), ActionSave},
		{tcell.NewEventKey(tcell.KeyCtrlP, 0, tcell.ModCtrl), ActionToggle},
		{tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone), ActionQuit},
		{tcell.NewEventKey(tcell.KeyF1, 0, tcell.ModNone), ActionNone},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HandleKey(b, tt.ev), tt.ev.Name())
	}
	assert.Equal(t, "x   \n", b.Text())
}
