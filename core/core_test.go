package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSumDeltas(t *testing.T) {
	tests := []struct {
		name      string
		deltas    []int
		wantDelta int
		wantMag   int
	}{
		{"empty", nil, 0, 0},
		{"single insert", []int{1}, 1, 1},
		{"replace shrinks", []int{3, -7}, -4, 4},
		{"paste", []int{12, 8, 5}, 25, 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := SumDeltas(tt.deltas)
			assert.Equal(t, tt.wantDelta, ev.SizeDelta)
			assert.Equal(t, tt.wantMag, ev.Magnitude())
		})
	}
}

func TestRectGeometry(t *testing.T) {
	r := Rect{Top: 10, Bottom: 19, Left: 4, Right: 83}

	assert.Equal(t, 80, r.Width())
	assert.Equal(t, 10, r.Height())
	assert.True(t, r.Contains(Point{X: 4, Y: 10}))
	assert.True(t, r.Contains(Point{X: 83, Y: 19}))
	assert.False(t, r.Contains(Point{X: 84, Y: 19}))
	assert.False(t, r.Contains(Point{X: 4, Y: 9}))

	moved := r.Translate(-4, 2)
	assert.Equal(t, Rect{Top: 12, Bottom: 21, Left: 0, Right: 79}, moved)

	// Degenerate rects still report a usable extent
	assert.Equal(t, 1, Rect{Left: 5, Right: 2}.Width())
	assert.Equal(t, 1, Rect{Top: 5, Bottom: 2}.Height())
}

func TestMockTimeProvider(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMockTimeProvider(start)

	assert.Equal(t, start, m.Now())
	got := m.Advance(150 * time.Millisecond)
	assert.Equal(t, start.Add(150*time.Millisecond), got)
	assert.Equal(t, got, m.Now())

	later := start.Add(time.Hour)
	m.SetTime(later)
	assert.Equal(t, later, m.Now())

	// Stepping back lets tests replay an edit at an earlier timestamp
	m.SetTime(start)
	assert.Equal(t, start, m.Now())
}

// TestMockClockDrivesComboWindow steps the clock across a 10s window the way edits do
func TestMockClockDrivesComboWindow(t *testing.T) {
	var clock Clock = NewMockTimeProvider(time.Unix(0, 0))
	mock := clock.(*MockTimeProvider)

	last := clock.Now()
	for i := 0; i < 3; i++ {
		mock.Advance(10 * time.Millisecond)
	}
	assert.Equal(t, 30*time.Millisecond, clock.Now().Sub(last))

	mock.Advance(10 * time.Second)
	assert.Greater(t, clock.Now().Sub(last), 10*time.Second)
}
