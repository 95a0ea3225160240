package layout

// Rect is an axis-aligned rectangle in pixels. Y grows downward, so Top is
// less than or equal to Bottom.
type Rect struct {
	Left, Top     float64
	Right, Bottom float64
}

// Size returns a rectangle of the given size anchored at the origin.
func Size(width, height float64) Rect {
	return Rect{Right: width, Bottom: height}
}

// Width returns the horizontal span of the rectangle.
func (r Rect) Width() float64 { return r.Right - r.Left }

// Height returns the vertical span of the rectangle.
func (r Rect) Height() float64 { return r.Bottom - r.Top }

// CenterX returns the horizontal center point.
func (r Rect) CenterX() float64 { return (r.Left + r.Right) / 2 }

// CenterY returns the vertical center point.
func (r Rect) CenterY() float64 { return (r.Top + r.Bottom) / 2 }

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool { return r.Width() <= 0 || r.Height() <= 0 }

// centered returns a w x h rectangle centered on (x, y).
func centered(x, y, w, h float64) Rect {
	return Rect{Left: x - w/2, Top: y - h/2, Right: x + w/2, Bottom: y + h/2}
}
