package widget

import (
	"sync"

	"github.com/oukeidos/vekotin/internal/geometry"
	"github.com/oukeidos/vekotin/internal/registry"
)

// Surface is the on-screen window of a widget, owned by the presentation
// layer. Methods are called on the UI context only.
type Surface interface {
	// Handle returns the native window handle, or 0 when there is none.
	Handle() uintptr
	Move(x, y int)
	SetClickThrough(enabled bool)
	SetDraggable(enabled bool)
	Close()
}

// SurfaceFactory creates the surface for item at bounds.
type SurfaceFactory func(item registry.Item, bounds geometry.Rect) (Surface, error)

// NopSurface records the state it is given without showing anything.
type NopSurface struct {
	mu           sync.Mutex
	x, y         int
	clickThrough bool
	draggable    bool
	closed       bool
	moves        int
}

// NewNopSurface is a SurfaceFactory for headless hosts.
func NewNopSurface(_ registry.Item, bounds geometry.Rect) (Surface, error) {
	return &NopSurface{x: bounds.Left, y: bounds.Top}, nil
}

func (s *NopSurface) Handle() uintptr { return 0 }

func (s *NopSurface) Move(x, y int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.x, s.y = x, y
	s.moves++
}

func (s *NopSurface) SetClickThrough(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clickThrough = enabled
}

func (s *NopSurface) SetDraggable(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draggable = enabled
}

func (s *NopSurface) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

// Position returns the last position the surface was moved to.
func (s *NopSurface) Position() (x, y int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.x, s.y
}

// State returns the click-through, draggable and closed states.
func (s *NopSurface) State() (clickThrough, draggable, closed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clickThrough, s.draggable, s.closed
}

// Moves returns how many times Move was called.
func (s *NopSurface) Moves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.moves
}
