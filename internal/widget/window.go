package widget

import (
	"log/slog"

	"github.com/oukeidos/vekotin/internal/config"
	"github.com/oukeidos/vekotin/internal/geometry"
	"github.com/oukeidos/vekotin/internal/notify"
	"github.com/oukeidos/vekotin/internal/registry"
)

// DefaultPosition is where a widget without saved settings opens.
const DefaultPosition = 100

// Window controls one open widget. All methods, and the change callbacks it
// receives from the store, run on the UI context.
type Window struct {
	id      string
	item    registry.Item
	store   *config.Store
	display geometry.Display
	engine  geometry.Engine
	trigger geometry.Trigger
	def     config.Flags
	surface Surface
	log     *slog.Logger

	sub       *notify.Subscription
	bounds    geometry.Rect
	dragging  bool
	adjusting bool
	closed    bool
	onClosed  func(*Window)
}

func (h *Host) openWindow(item registry.Item) (*Window, error) {
	id := item.ID()
	ws, ok := h.store.WidgetSettings(id)
	x, y := DefaultPosition, DefaultPosition
	if ok {
		x, y = ws.WindowX, ws.WindowY
	}
	bounds := geometry.RectFromBounds(x, y, item.Manifest.Width, item.Manifest.Height)
	flags := ws.Resolve(h.defaults)
	if flags.KeepOnScreen {
		bounds = h.engine.Constrain(bounds, geometry.GetWorkArea(h.display, 0, bounds))
	}

	surface, err := h.factory(item, bounds)
	if err != nil {
		return nil, err
	}

	w := &Window{
		id:      id,
		item:    item,
		store:   h.store,
		display: h.display,
		engine:  h.engine,
		trigger: h.trigger,
		def:     h.defaults,
		surface: surface,
		log:     h.log.With("widget_id", id),
		bounds:  bounds,
	}
	w.applyStyles(flags)
	w.sub = h.store.SubscribeFunc(w.configChanged)
	w.log.Debug("Widget opened", "bounds", bounds.String())
	return w, nil
}

// ID returns the widget identifier.
func (w *Window) ID() string { return w.id }

// Item returns the bundle the window shows.
func (w *Window) Item() registry.Item { return w.item }

// Bounds returns the window's current screen rectangle.
func (w *Window) Bounds() geometry.Rect { return w.bounds }

// Surface returns the presentation surface.
func (w *Window) Surface() Surface { return w.surface }

func (w *Window) flags() config.Flags {
	ws, _ := w.store.WidgetSettings(w.id)
	return ws.Resolve(w.def)
}

func (w *Window) applyStyles(f config.Flags) {
	w.surface.SetDraggable(f.Draggable)
	w.surface.SetClickThrough(f.ClickThrough)
}

func (w *Window) configChanged(config.Change) {
	if w.closed {
		return
	}
	w.applyStyles(w.flags())
}

// Moved records a location change reported by the surface. With
// geometry.TriggerLive the snap and constrain rules run immediately.
func (w *Window) Moved(x, y int) {
	if w.closed {
		return
	}
	w.bounds = w.bounds.MoveTo(x, y)
	if w.adjusting || w.trigger != geometry.TriggerLive {
		return
	}
	w.applyGeometry()
}

// BeginDrag marks the start of a user drag.
func (w *Window) BeginDrag() {
	w.dragging = true
}

// EndDrag applies the snap and constrain rules and, when the widget saves
// its position, persists it.
func (w *Window) EndDrag() error {
	if w.closed {
		return nil
	}
	w.dragging = false
	w.applyGeometry()

	if !w.flags().SavePosition {
		return nil
	}
	pos := w.bounds
	if err := w.store.UpdateWidgetSettings(w.id, func(ws *config.WidgetSettings) {
		ws.WindowX, ws.WindowY = pos.Left, pos.Top
	}); err != nil {
		return err
	}
	if err := w.store.Save(); err != nil {
		w.log.Error("Failed to save widget position", "error", err)
		return err
	}
	return nil
}

func (w *Window) applyGeometry() {
	f := w.flags()
	if !f.SnapToEdges && !f.KeepOnScreen {
		return
	}
	area := geometry.GetWorkArea(w.display, w.surface.Handle(), w.bounds)
	next := w.engine.Place(w.bounds, area, geometry.Placement{Snap: f.SnapToEdges, Constrain: f.KeepOnScreen})
	if next == w.bounds {
		return
	}
	w.bounds = next
	w.adjusting = true
	w.surface.Move(next.Left, next.Top)
	w.adjusting = false
}

// Close closes the window and marks the widget inactive.
func (w *Window) Close() error {
	return w.release(true)
}

// release stops change delivery before touching the store so no callback
// reaches a closed window.
func (w *Window) release(deactivate bool) error {
	if w.closed {
		return nil
	}
	w.closed = true
	w.sub.Unsubscribe()

	savePos := w.flags().SavePosition
	pos := w.bounds
	_ = w.store.UpdateWidgetSettings(w.id, func(ws *config.WidgetSettings) {
		if deactivate {
			ws.Active = false
		}
		if savePos {
			ws.WindowX, ws.WindowY = pos.Left, pos.Top
		}
	})
	w.surface.Close()
	if w.onClosed != nil {
		w.onClosed(w)
	}

	if err := w.store.Save(); err != nil {
		w.log.Error("Failed to save settings on close", "error", err)
		return err
	}
	w.log.Debug("Widget closed", "active", !deactivate)
	return nil
}

// Dragging reports whether a drag is in progress.
func (w *Window) Dragging() bool { return w.dragging }
