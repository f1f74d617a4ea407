package config

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Flag is an optional boolean setting. FlagUnset means the user never chose a
// value and the caller's default applies.
type Flag uint8

const (
	FlagUnset Flag = iota
	FlagFalse
	FlagTrue
)

// FlagOf converts a bool into an explicit flag.
func FlagOf(v bool) Flag {
	if v {
		return FlagTrue
	}
	return FlagFalse
}

// ParseFlag accepts true, false or unset (also on/off, yes/no, 1/0, null).
func ParseFlag(s string) (Flag, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "on", "yes", "1":
		return FlagTrue, nil
	case "false", "off", "no", "0":
		return FlagFalse, nil
	case "unset", "null", "default", "":
		return FlagUnset, nil
	default:
		return FlagUnset, fmt.Errorf("invalid flag value %q (want true, false or unset)", s)
	}
}

// Resolve returns the flag's value, or def when unset.
func (f Flag) Resolve(def bool) bool {
	switch f {
	case FlagTrue:
		return true
	case FlagFalse:
		return false
	default:
		return def
	}
}

// IsSet reports whether the flag holds an explicit value.
func (f Flag) IsSet() bool { return f == FlagTrue || f == FlagFalse }

func (f Flag) String() string {
	switch f {
	case FlagTrue:
		return "true"
	case FlagFalse:
		return "false"
	default:
		return "unset"
	}
}

func (f Flag) MarshalJSON() ([]byte, error) {
	switch f {
	case FlagTrue:
		return []byte("true"), nil
	case FlagFalse:
		return []byte("false"), nil
	default:
		return []byte("null"), nil
	}
}

func (f *Flag) UnmarshalJSON(data []byte) error {
	var v *bool
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("flag must be true, false or null: %w", err)
	}
	if v == nil {
		*f = FlagUnset
		return nil
	}
	*f = FlagOf(*v)
	return nil
}

// MarshalYAML renders unset flags as null.
func (f Flag) MarshalYAML() (interface{}, error) {
	if !f.IsSet() {
		return nil, nil
	}
	return f == FlagTrue, nil
}

// AppSettings holds host-wide settings.
type AppSettings struct {
	WidgetPath *string `json:"WidgetPath" yaml:"WidgetPath"`
}

// WidgetSettings is the persisted state of one widget.
type WidgetSettings struct {
	Active       bool `json:"Active" yaml:"Active"`
	WindowX      int  `json:"WindowX" yaml:"WindowX"`
	WindowY      int  `json:"WindowY" yaml:"WindowY"`
	Draggable    Flag `json:"Draggable" yaml:"Draggable"`
	ClickThrough Flag `json:"ClickThrough" yaml:"ClickThrough"`
	KeepOnScreen Flag `json:"KeepOnScreen" yaml:"KeepOnScreen"`
	SavePosition Flag `json:"SavePosition" yaml:"SavePosition"`
	SnapToEdges  Flag `json:"SnapToEdges" yaml:"SnapToEdges"`
}

// Flags is the resolved view of a widget's optional settings.
type Flags struct {
	Draggable    bool
	ClickThrough bool
	KeepOnScreen bool
	SavePosition bool
	SnapToEdges  bool
}

// DefaultFlags are the values used for flags the user never set.
var DefaultFlags = Flags{}

// Resolve collapses every optional flag using def for unset ones.
func (s WidgetSettings) Resolve(def Flags) Flags {
	return Flags{
		Draggable:    s.Draggable.Resolve(def.Draggable),
		ClickThrough: s.ClickThrough.Resolve(def.ClickThrough),
		KeepOnScreen: s.KeepOnScreen.Resolve(def.KeepOnScreen),
		SavePosition: s.SavePosition.Resolve(def.SavePosition),
		SnapToEdges:  s.SnapToEdges.Resolve(def.SnapToEdges),
	}
}

// Configuration is the persisted document. Widget ids are opaque and
// compared exactly.
type Configuration struct {
	Vekotin AppSettings               `json:"Vekotin" yaml:"Vekotin"`
	Widgets map[string]WidgetSettings `json:"Widgets" yaml:"Widgets"`
}

// Clone returns a deep copy.
func (c Configuration) Clone() Configuration {
	out := Configuration{Widgets: make(map[string]WidgetSettings, len(c.Widgets))}
	if c.Vekotin.WidgetPath != nil {
		p := *c.Vekotin.WidgetPath
		out.Vekotin.WidgetPath = &p
	}
	for id, s := range c.Widgets {
		out.Widgets[id] = s
	}
	return out
}

func (c *Configuration) normalize() {
	if c.Widgets == nil {
		c.Widgets = make(map[string]WidgetSettings)
	}
}

// ChangeType classifies a configuration change event.
type ChangeType int

const (
	// Loaded follows an explicit Load.
	Loaded ChangeType = iota + 1
	// Saved follows a successful Save.
	Saved
	// ExternalChange follows a reload caused by another writer.
	ExternalChange
)

func (t ChangeType) String() string {
	switch t {
	case Loaded:
		return "loaded"
	case Saved:
		return "saved"
	case ExternalChange:
		return "external"
	default:
		return fmt.Sprintf("ChangeType(%d)", int(t))
	}
}

// Change is delivered to subscribers after the document changed.
type Change struct {
	ID       string
	Type     ChangeType
	Snapshot Configuration
	Time     time.Time
}

// Listener receives configuration changes.
type Listener interface {
	ConfigChanged(Change)
}
