package core

// Point is a cell position; X is the column (left), Y is the row (top)
type Point struct {
	X, Y int
}

// Rect is an inclusive viewport region in buffer coordinates
type Rect struct {
	Top, Bottom int
	Left, Right int
}

// Width returns the number of columns covered, never less than 1
func (r Rect) Width() int {
	if r.Right < r.Left {
		return 1
	}
	return r.Right - r.Left + 1
}

// Height returns the number of rows covered, never less than 1
func (r Rect) Height() int {
	if r.Bottom < r.Top {
		return 1
	}
	return r.Bottom - r.Top + 1
}

// Contains reports whether p lies inside r
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Left && p.X <= r.Right && p.Y >= r.Top && p.Y <= r.Bottom
}

// Translate returns r shifted by dx columns and dy rows
func (r Rect) Translate(dx, dy int) Rect {
	return Rect{
		Top:    r.Top + dy,
		Bottom: r.Bottom + dy,
		Left:   r.Left + dx,
		Right:  r.Right + dx,
	}
}
