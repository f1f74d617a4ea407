// Package widget runs open widget windows against the configuration store
// and implements the control-panel actions that open, close and configure
// them.
package widget

import (
	"errors"
	"log/slog"
	"sort"

	"github.com/oukeidos/vekotin/internal/apperrors"
	"github.com/oukeidos/vekotin/internal/config"
	"github.com/oukeidos/vekotin/internal/geometry"
	"github.com/oukeidos/vekotin/internal/logger"
	"github.com/oukeidos/vekotin/internal/registry"
)

// Host owns the widget registry and the open windows. It must be used from
// the UI context only.
type Host struct {
	store    *config.Store
	registry *registry.Registry
	display  geometry.Display
	engine   geometry.Engine
	trigger  geometry.Trigger
	defaults config.Flags
	factory  SurfaceFactory
	log      *slog.Logger

	windows map[string]*Window
}

// HostOption configures a Host.
type HostOption func(*Host)

func WithDisplay(d geometry.Display) HostOption {
	return func(h *Host) {
		if d != nil {
			h.display = d
		}
	}
}

func WithEngine(e geometry.Engine) HostOption {
	return func(h *Host) { h.engine = e }
}

// WithTrigger selects when drag geometry is applied.
func WithTrigger(t geometry.Trigger) HostOption {
	return func(h *Host) { h.trigger = t }
}

func WithSurfaceFactory(f SurfaceFactory) HostOption {
	return func(h *Host) {
		if f != nil {
			h.factory = f
		}
	}
}

// WithDefaults sets the values used for flags the user never set.
func WithDefaults(f config.Flags) HostOption {
	return func(h *Host) { h.defaults = f }
}

// NewHost creates a host for store. Widgets are discovered by Refresh.
func NewHost(store *config.Store, opts ...HostOption) *Host {
	h := &Host{
		store:    store,
		registry: registry.New(store.WidgetRoot()),
		display:  geometry.SystemDisplay(),
		engine:   geometry.DefaultEngine,
		trigger:  geometry.TriggerOnRelease,
		defaults: config.DefaultFlags,
		factory:  NewNopSurface,
		log:      logger.Component("widget"),
		windows:  make(map[string]*Window),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Refresh rescans the configured widget folder.
func (h *Host) Refresh() ([]registry.Item, error) {
	h.registry.SetRoot(h.store.WidgetRoot())
	return h.registry.Refresh()
}

// Items returns the widgets found by the last Refresh.
func (h *Host) Items() []registry.Item {
	return h.registry.Items()
}

// Settings returns the stored settings of id and their resolved flags.
func (h *Host) Settings(id string) (config.WidgetSettings, config.Flags, bool) {
	ws, ok := h.store.WidgetSettings(id)
	return ws, ws.Resolve(h.defaults), ok
}

// IsOpen reports whether id has an open window.
func (h *Host) IsOpen(id string) bool {
	_, ok := h.windows[id]
	return ok
}

// Window returns the open window for id.
func (h *Host) Window(id string) (*Window, bool) {
	w, ok := h.windows[id]
	return w, ok
}

// OpenIDs returns the ids of the open windows, sorted.
func (h *Host) OpenIDs() []string {
	ids := make([]string, 0, len(h.windows))
	for id := range h.windows {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Toggle closes the widget when it is open. Otherwise it marks it active,
// stores the given toggle states and opens it. It reports whether the widget
// is open afterwards.
func (h *Host) Toggle(id string, toggles config.Flags) (bool, error) {
	if h.IsOpen(id) {
		return false, h.Close(id)
	}
	item, err := h.find(id)
	if err != nil {
		return false, err
	}
	if _, ok := h.store.WidgetSettings(id); !ok {
		ws := config.WidgetSettings{Active: true, WindowX: DefaultPosition, WindowY: DefaultPosition}
		applyToggles(&ws, toggles)
		if err := h.store.SetWidgetSettings(id, ws); err != nil {
			return false, err
		}
	} else if err := h.store.UpdateWidgetSettings(id, func(ws *config.WidgetSettings) {
		ws.Active = true
		applyToggles(ws, toggles)
	}); err != nil {
		return false, err
	}
	h.save("open")

	if _, err := h.show(item); err != nil {
		h.deactivate(id)
		return false, err
	}
	return true, nil
}

// Open opens id with its stored settings, creating default settings on
// first use. Opening an open widget returns its window.
func (h *Host) Open(id string) (*Window, error) {
	if w, ok := h.windows[id]; ok {
		return w, nil
	}
	item, err := h.find(id)
	if err != nil {
		return nil, err
	}
	if _, ok := h.store.WidgetSettings(id); !ok {
		if err := h.store.SetWidgetSettings(id, config.WidgetSettings{
			Active: true, WindowX: DefaultPosition, WindowY: DefaultPosition,
		}); err != nil {
			return nil, err
		}
	} else if err := h.store.UpdateWidgetSettings(id, func(ws *config.WidgetSettings) { ws.Active = true }); err != nil {
		return nil, err
	}
	h.save("open")
	w, err := h.show(item)
	if err != nil {
		h.deactivate(id)
		return nil, err
	}
	return w, nil
}

// deactivate clears Active after a window failed to open so RestoreActive
// does not retry it on the next start.
func (h *Host) deactivate(id string) {
	if err := h.store.UpdateWidgetSettings(id, func(ws *config.WidgetSettings) { ws.Active = false }); err != nil {
		h.log.Warn("Failed to reset widget state", "widget_id", id, "error", err)
		return
	}
	h.save("open failed")
}

// Close closes id's window and marks it inactive. Closing a widget that is
// not open does nothing.
func (h *Host) Close(id string) error {
	w, ok := h.windows[id]
	if !ok {
		return nil
	}
	return w.Close()
}

// SetFlag stores one toggle for id and saves. Open windows pick the change
// up from the store notification. Widgets without settings are left alone.
func (h *Host) SetFlag(id string, name FlagName, value bool) error {
	if _, ok := h.store.WidgetSettings(id); !ok {
		return nil
	}
	if err := h.store.UpdateWidgetSettings(id, func(ws *config.WidgetSettings) {
		name.Set(ws, config.FlagOf(value))
	}); err != nil {
		return err
	}
	return h.store.Save()
}

// RestoreActive opens every discovered widget whose settings are active.
func (h *Host) RestoreActive() ([]string, error) {
	var opened []string
	var errs []error
	for _, item := range h.registry.Items() {
		id := item.ID()
		ws, ok := h.store.WidgetSettings(id)
		if !ok || !ws.Active || h.IsOpen(id) {
			continue
		}
		if _, err := h.show(item); err != nil {
			h.log.Warn("Failed to restore widget", "widget_id", id, "error", err)
			errs = append(errs, err)
			continue
		}
		opened = append(opened, id)
	}
	return opened, errors.Join(errs...)
}

// CloseAll closes every window and marks them inactive.
func (h *Host) CloseAll() error {
	return h.closeAll(true)
}

// Shutdown closes every window but keeps them active so RestoreActive
// reopens them on the next start.
func (h *Host) Shutdown() error {
	return h.closeAll(false)
}

func (h *Host) closeAll(deactivate bool) error {
	var errs []error
	for _, id := range h.OpenIDs() {
		if err := h.windows[id].release(deactivate); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (h *Host) find(id string) (registry.Item, error) {
	item, ok := h.registry.Find(id)
	if !ok {
		return registry.Item{}, apperrors.InvalidArgument("unknown widget: " + id)
	}
	return item, nil
}

func (h *Host) show(item registry.Item) (*Window, error) {
	w, err := h.openWindow(item)
	if err != nil {
		return nil, err
	}
	w.onClosed = func(w *Window) {
		if h.windows[w.id] == w {
			delete(h.windows, w.id)
		}
	}
	h.windows[w.id] = w
	return w, nil
}

// save persists the document. Failures keep the in-memory state.
func (h *Host) save(action string) {
	if err := h.store.Save(); err != nil {
		h.log.Warn("Failed to save configuration", "action", action, "error", err)
	}
}
