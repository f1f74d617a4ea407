// Package geometry snaps and constrains widget windows against the work
// area of the monitor they are on.
package geometry

import "fmt"

// Rect is an axis-aligned rectangle in screen pixels. Right and Bottom are
// exclusive.
type Rect struct {
	Left, Top, Right, Bottom int
}

// RectFromBounds builds a Rect from a position and size.
func RectFromBounds(x, y, w, h int) Rect {
	return Rect{Left: x, Top: y, Right: x + w, Bottom: y + h}
}

func (r Rect) Width() int  { return r.Right - r.Left }
func (r Rect) Height() int { return r.Bottom - r.Top }

// Empty reports whether r has no area.
func (r Rect) Empty() bool { return r.Width() <= 0 || r.Height() <= 0 }

// MoveTo returns r translated so its top-left corner is (x, y).
func (r Rect) MoveTo(x, y int) Rect {
	return RectFromBounds(x, y, r.Width(), r.Height())
}

// Intersect returns the overlap of r and o, or the zero Rect.
func (r Rect) Intersect(o Rect) Rect {
	out := Rect{
		Left:   max(r.Left, o.Left),
		Top:    max(r.Top, o.Top),
		Right:  min(r.Right, o.Right),
		Bottom: min(r.Bottom, o.Bottom),
	}
	if out.Empty() {
		return Rect{}
	}
	return out
}

// Area returns Width*Height, or 0 for an empty rect.
func (r Rect) Area() int {
	if r.Empty() {
		return 0
	}
	return r.Width() * r.Height()
}

// Center returns the midpoint of r.
func (r Rect) Center() (x, y int) {
	return r.Left + r.Width()/2, r.Top + r.Height()/2
}

func (r Rect) String() string {
	return fmt.Sprintf("(%d,%d)-(%d,%d) %dx%d", r.Left, r.Top, r.Right, r.Bottom, r.Width(), r.Height())
}
