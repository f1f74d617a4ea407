package geometry

const (
	// SnapDistance is how close an edge must be to the work area edge to snap.
	SnapDistance = 20
	// SnapMargin is the gap left between a snapped edge and the work area.
	SnapMargin = 0
)

// Trigger selects when snapping and constraining run during a drag.
type Trigger int

const (
	// TriggerOnRelease applies geometry once when the drag ends.
	TriggerOnRelease Trigger = iota
	// TriggerLive applies geometry on every location change.
	TriggerLive
)

func (t Trigger) String() string {
	if t == TriggerLive {
		return "live"
	}
	return "release"
}

// Placement selects which adjustments Engine.Place applies.
type Placement struct {
	Snap      bool
	Constrain bool
}

// Engine holds the snapping parameters.
type Engine struct {
	SnapDistance int
	SnapMargin   int
}

// DefaultEngine uses SnapDistance and SnapMargin.
var DefaultEngine = Engine{SnapDistance: SnapDistance, SnapMargin: SnapMargin}

// SnapToNearestEdge snaps win with DefaultEngine.
func SnapToNearestEdge(win, area Rect) Rect {
	return DefaultEngine.Snap(win, area)
}

// ConstrainToScreen constrains win with DefaultEngine.
func ConstrainToScreen(win, area Rect) Rect {
	return DefaultEngine.Constrain(win, area)
}

// Snap moves win so that the single edge closest to its snapped position
// (the area edge inset by SnapMargin) lands there, when that distance is
// within SnapDistance. Ties go to left, then top, right, bottom. Only one
// axis changes and the size is kept. Snap(Snap(w, a), a) == Snap(w, a).
func (e Engine) Snap(win, area Rect) Rect {
	dLeft := abs(win.Left - (area.Left + e.SnapMargin))
	dTop := abs(win.Top - (area.Top + e.SnapMargin))
	dRight := abs(win.Right - (area.Right - e.SnapMargin))
	dBottom := abs(win.Bottom - (area.Bottom - e.SnapMargin))

	nearest := min(dLeft, dTop, dRight, dBottom)
	if nearest > e.SnapDistance {
		return win
	}

	switch nearest {
	case dLeft:
		return win.MoveTo(area.Left+e.SnapMargin, win.Top)
	case dTop:
		return win.MoveTo(win.Left, area.Top+e.SnapMargin)
	case dRight:
		return win.MoveTo(area.Right-win.Width()-e.SnapMargin, win.Top)
	default:
		return win.MoveTo(win.Left, area.Bottom-win.Height()-e.SnapMargin)
	}
}

// Constrain moves win the minimum distance needed to lie inside area. On an
// axis where win is larger than area, win is aligned to the left or top edge.
// Constrain(Constrain(w, a), a) == Constrain(w, a).
func (e Engine) Constrain(win, area Rect) Rect {
	return win.MoveTo(
		clampAxis(win.Left, win.Width(), area.Left, area.Right),
		clampAxis(win.Top, win.Height(), area.Top, area.Bottom),
	)
}

func clampAxis(pos, size, lo, hi int) int {
	if pos > hi-size {
		pos = hi - size
	}
	if pos < lo {
		pos = lo
	}
	return pos
}

// Place snaps then constrains win as selected by p.
func (e Engine) Place(win, area Rect, p Placement) Rect {
	if p.Snap {
		win = e.Snap(win, area)
	}
	if p.Constrain {
		win = e.Constrain(win, area)
	}
	return win
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
