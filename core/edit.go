package core

// EditEvent is one host change notification reduced to its size delta
// SizeDelta is added length minus removed length and is negative for deletions
type EditEvent struct {
	SizeDelta int
}

// SumDeltas folds the sub-edits of one notification into a single event
func SumDeltas(deltas []int) EditEvent {
	total := 0
	for _, d := range deltas {
		total += d
	}
	return EditEvent{SizeDelta: total}
}

// Magnitude returns the absolute size of the edit
func (e EditEvent) Magnitude() int {
	return Abs(e.SizeDelta)
}

// Abs returns |v|
func Abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
