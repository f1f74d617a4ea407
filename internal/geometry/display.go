package geometry

import (
	"errors"
	"math"

	"github.com/oukeidos/vekotin/internal/logger"
)

// ErrNoMonitor is returned when no monitor can be resolved for a window.
var ErrNoMonitor = errors.New("no monitor for window")

// Display resolves monitor work areas.
type Display interface {
	// WorkAreaFor returns the work area of the monitor nearest to the
	// window identified by handle, or to bounds when handle is zero.
	WorkAreaFor(handle uintptr, bounds Rect) (Rect, error)
	// PrimaryWorkArea returns the primary monitor's work area.
	PrimaryWorkArea() Rect
}

// GetWorkArea returns the work area for a window, falling back to the
// primary work area when the monitor cannot be resolved.
func GetWorkArea(d Display, handle uintptr, bounds Rect) Rect {
	area, err := d.WorkAreaFor(handle, bounds)
	if err == nil && !area.Empty() {
		return area
	}
	logger.Component("geometry").Debug("Falling back to primary work area", "bounds", bounds.String(), "error", err)
	return d.PrimaryWorkArea()
}

// Monitor describes one display.
type Monitor struct {
	Handle   uintptr
	Bounds   Rect
	WorkArea Rect
	Primary  bool
}

// Layout is a fixed set of monitors. It resolves a window to the monitor it
// overlaps most, or to the one whose center is nearest when it overlaps
// none.
type Layout []Monitor

// WorkAreaFor implements Display. A non-zero handle matching a monitor's
// Handle selects that monitor directly.
func (l Layout) WorkAreaFor(handle uintptr, bounds Rect) (Rect, error) {
	m, ok := l.nearest(handle, bounds)
	if !ok {
		return Rect{}, ErrNoMonitor
	}
	return m.WorkArea, nil
}

// PrimaryWorkArea implements Display.
func (l Layout) PrimaryWorkArea() Rect {
	for _, m := range l {
		if m.Primary {
			return m.WorkArea
		}
	}
	if len(l) > 0 {
		return l[0].WorkArea
	}
	return Rect{}
}

func (l Layout) nearest(handle uintptr, bounds Rect) (Monitor, bool) {
	if len(l) == 0 {
		return Monitor{}, false
	}
	if handle != 0 {
		for _, m := range l {
			if m.Handle == handle {
				return m, true
			}
		}
	}

	best, bestArea := -1, 0
	for i, m := range l {
		if a := bounds.Intersect(m.Bounds).Area(); a > bestArea {
			best, bestArea = i, a
		}
	}
	if best >= 0 {
		return l[best], true
	}

	cx, cy := bounds.Center()
	bestDist := math.MaxFloat64
	for i, m := range l {
		mx, my := m.Bounds.Center()
		if d := math.Hypot(float64(cx-mx), float64(cy-my)); d < bestDist {
			best, bestDist = i, d
		}
	}
	return l[best], true
}
