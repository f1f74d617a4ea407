package widget

import (
	"fmt"
	"strings"

	"github.com/oukeidos/vekotin/internal/config"
)

// FlagName identifies one of the optional per-widget settings.
type FlagName string

const (
	FlagDraggable    FlagName = "draggable"
	FlagClickThrough FlagName = "click-through"
	FlagKeepOnScreen FlagName = "keep-on-screen"
	FlagSavePosition FlagName = "save-position"
	FlagSnapToEdges  FlagName = "snap-to-edges"
)

// FlagNames lists every flag in display order.
var FlagNames = []FlagName{FlagDraggable, FlagClickThrough, FlagKeepOnScreen, FlagSavePosition, FlagSnapToEdges}

// ParseFlagName accepts the dashed names as well as the document keys
// (ClickThrough, keep_on_screen, ...).
func ParseFlagName(s string) (FlagName, error) {
	key := strings.NewReplacer("-", "", "_", "", " ", "").Replace(strings.ToLower(strings.TrimSpace(s)))
	for _, n := range FlagNames {
		if strings.ReplaceAll(string(n), "-", "") == key {
			return n, nil
		}
	}
	return "", fmt.Errorf("unknown widget flag %q", s)
}

// Label returns the control-panel caption.
func (n FlagName) Label() string {
	switch n {
	case FlagDraggable:
		return "Draggable"
	case FlagClickThrough:
		return "Click through"
	case FlagKeepOnScreen:
		return "Keep on screen"
	case FlagSavePosition:
		return "Save position"
	case FlagSnapToEdges:
		return "Snap to edges"
	default:
		return string(n)
	}
}

// Get returns the flag's stored value.
func (n FlagName) Get(ws config.WidgetSettings) config.Flag {
	switch n {
	case FlagDraggable:
		return ws.Draggable
	case FlagClickThrough:
		return ws.ClickThrough
	case FlagKeepOnScreen:
		return ws.KeepOnScreen
	case FlagSavePosition:
		return ws.SavePosition
	case FlagSnapToEdges:
		return ws.SnapToEdges
	default:
		return config.FlagUnset
	}
}

// Set stores f in ws.
func (n FlagName) Set(ws *config.WidgetSettings, f config.Flag) {
	switch n {
	case FlagDraggable:
		ws.Draggable = f
	case FlagClickThrough:
		ws.ClickThrough = f
	case FlagKeepOnScreen:
		ws.KeepOnScreen = f
	case FlagSavePosition:
		ws.SavePosition = f
	case FlagSnapToEdges:
		ws.SnapToEdges = f
	}
}

// Resolved returns the flag from a resolved view.
func (n FlagName) Resolved(f config.Flags) bool {
	switch n {
	case FlagDraggable:
		return f.Draggable
	case FlagClickThrough:
		return f.ClickThrough
	case FlagKeepOnScreen:
		return f.KeepOnScreen
	case FlagSavePosition:
		return f.SavePosition
	case FlagSnapToEdges:
		return f.SnapToEdges
	default:
		return false
	}
}

// SetResolved sets the flag in a resolved view.
func (n FlagName) SetResolved(f *config.Flags, v bool) {
	switch n {
	case FlagDraggable:
		f.Draggable = v
	case FlagClickThrough:
		f.ClickThrough = v
	case FlagKeepOnScreen:
		f.KeepOnScreen = v
	case FlagSavePosition:
		f.SavePosition = v
	case FlagSnapToEdges:
		f.SnapToEdges = v
	}
}

// applyToggles writes every toggle of t into ws as an explicit value.
func applyToggles(ws *config.WidgetSettings, t config.Flags) {
	for _, n := range FlagNames {
		n.Set(ws, config.FlagOf(n.Resolved(t)))
	}
}
