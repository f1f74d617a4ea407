package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/oukeidos/vekotin/internal/apperrors"
	"github.com/oukeidos/vekotin/internal/files"
)

func openTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	dir := t.TempDir()
	opts = append([]Option{WithDefaultWidgetRoot(filepath.Join(dir, "widgets"))}, opts...)
	s, err := Open(dir, opts...)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// recorder collects change events delivered on any goroutine.
type recorder struct {
	mu     sync.Mutex
	events []Change
	ch     chan Change
}

func newRecorder() *recorder {
	return &recorder{ch: make(chan Change, 64)}
}

func (r *recorder) ConfigChanged(c Change) {
	r.mu.Lock()
	r.events = append(r.events, c)
	r.mu.Unlock()
	r.ch <- c
}

func (r *recorder) count(kind ChangeType) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.events {
		if c.Type == kind {
			n++
		}
	}
	return n
}

func TestOpen_CreatesDefaultDocument(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "Vekotin")
	root := filepath.Join(dir, "widgets")
	s, err := Open(dir, WithoutWatch(), WithDefaultWidgetRoot(root))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	data, err := os.ReadFile(filepath.Join(dir, FileName))
	if err != nil {
		t.Fatalf("default document not written: %v", err)
	}
	var doc Configuration
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("default document is not JSON: %v", err)
	}
	if doc.Vekotin.WidgetPath == nil || *doc.Vekotin.WidgetPath != root {
		t.Fatalf("WidgetPath = %v, want %q", doc.Vekotin.WidgetPath, root)
	}
	if s.WidgetRoot() != root {
		t.Fatalf("WidgetRoot() = %q, want %q", s.WidgetRoot(), root)
	}
	if len(s.Snapshot().Widgets) != 0 {
		t.Fatalf("expected empty widget map")
	}
}

func TestSetGetWidgetSettings_RoundTrip(t *testing.T) {
	s := openTestStore(t, WithoutWatch())
	want := WidgetSettings{Active: true, WindowX: 250, WindowY: -40, ClickThrough: FlagTrue, SavePosition: FlagFalse}

	if err := s.SetWidgetSettings("clock", want); err != nil {
		t.Fatalf("SetWidgetSettings: %v", err)
	}
	got, ok := s.WidgetSettings("clock")
	if !ok || got != want {
		t.Fatalf("WidgetSettings() = (%+v, %v), want (%+v, true)", got, ok, want)
	}
	if _, ok := s.WidgetSettings("Clock"); ok {
		t.Fatalf("widget ids must be compared exactly")
	}
	if err := s.SetWidgetSettings("  ", want); !apperrors.IsInvalidArgument(err) {
		t.Fatalf("blank id error = %v, want invalid argument", err)
	}
}

func TestUpdateWidgetSettings_MissingIsNoop(t *testing.T) {
	s := openTestStore(t, WithoutWatch())
	before := s.Snapshot()

	called := false
	if err := s.UpdateWidgetSettings("ghost", func(ws *WidgetSettings) {
		called = true
		ws.Active = true
	}); err != nil {
		t.Fatalf("UpdateWidgetSettings: %v", err)
	}
	if called {
		t.Fatalf("mutator ran for missing id")
	}
	if _, ok := s.WidgetSettings("ghost"); ok {
		t.Fatalf("update created settings")
	}
	if len(s.Snapshot().Widgets) != len(before.Widgets) {
		t.Fatalf("document changed")
	}
	if err := s.UpdateWidgetSettings("ghost", nil); !apperrors.IsInvalidArgument(err) {
		t.Fatalf("nil mutator error = %v, want invalid argument", err)
	}
}

func TestUpdateWidgetSettings_Existing(t *testing.T) {
	s := openTestStore(t, WithoutWatch())
	_ = s.SetWidgetSettings("clock", WidgetSettings{WindowX: 1})
	_ = s.UpdateWidgetSettings("clock", func(ws *WidgetSettings) { ws.WindowX = 2 })

	got, _ := s.WidgetSettings("clock")
	if got.WindowX != 2 {
		t.Fatalf("WindowX = %d, want 2", got.WindowX)
	}
}

func TestSaveLoad_Equality(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "widgets")
	s, err := Open(dir, WithoutWatch(), WithDefaultWidgetRoot(root))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	_ = s.SetWidgetSettings("clock", WidgetSettings{Active: true, WindowX: 5, WindowY: 6, Draggable: FlagTrue})
	_ = s.SetWidgetSettings("cpu-meter", WidgetSettings{KeepOnScreen: FlagFalse})
	if err := s.SetWidgetRoot(filepath.Join(dir, "elsewhere")); err != nil {
		t.Fatalf("SetWidgetRoot: %v", err)
	}
	want := s.Snapshot()

	if err := s.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	t.Run("SameStore", func(t *testing.T) {
		if err := s.Load(); err != nil {
			t.Fatalf("Load: %v", err)
		}
		assertSameConfig(t, s.Snapshot(), want)
	})

	t.Run("FreshStore", func(t *testing.T) {
		fresh, err := Open(dir, WithoutWatch())
		if err != nil {
			t.Fatalf("Open: %v", err)
		}
		defer fresh.Close()
		assertSameConfig(t, fresh.Snapshot(), want)
	})
}

func assertSameConfig(t *testing.T, got, want Configuration) {
	t.Helper()
	if (got.Vekotin.WidgetPath == nil) != (want.Vekotin.WidgetPath == nil) ||
		(got.Vekotin.WidgetPath != nil && *got.Vekotin.WidgetPath != *want.Vekotin.WidgetPath) {
		t.Fatalf("WidgetPath = %v, want %v", got.Vekotin.WidgetPath, want.Vekotin.WidgetPath)
	}
	if len(got.Widgets) != len(want.Widgets) {
		t.Fatalf("widgets = %d, want %d", len(got.Widgets), len(want.Widgets))
	}
	for id, ws := range want.Widgets {
		if got.Widgets[id] != ws {
			t.Fatalf("widget %q = %+v, want %+v", id, got.Widgets[id], ws)
		}
	}
}

func TestLoad_Errors(t *testing.T) {
	s := openTestStore(t, WithoutWatch())
	_ = s.SetWidgetSettings("clock", WidgetSettings{WindowX: 7})

	t.Run("Malformed", func(t *testing.T) {
		if err := os.WriteFile(s.Path(), []byte("{not json"), 0600); err != nil {
			t.Fatalf("write: %v", err)
		}
		if err := s.Load(); !apperrors.IsParse(err) {
			t.Fatalf("Load() = %v, want parse error", err)
		}
		if ws, _ := s.WidgetSettings("clock"); ws.WindowX != 7 {
			t.Fatalf("failed load replaced in-memory state")
		}
	})

	t.Run("NullDocument", func(t *testing.T) {
		if err := os.WriteFile(s.Path(), []byte("null"), 0600); err != nil {
			t.Fatalf("write: %v", err)
		}
		if err := s.Load(); err != nil {
			t.Fatalf("Load(null) = %v", err)
		}
		if _, ok := s.WidgetSettings("clock"); !ok {
			t.Fatalf("null document replaced in-memory state")
		}
	})

	t.Run("Missing", func(t *testing.T) {
		if err := os.Remove(s.Path()); err != nil {
			t.Fatalf("remove: %v", err)
		}
		if err := s.Load(); !apperrors.IsIO(err) {
			t.Fatalf("Load() = %v, want io error", err)
		}
	})
}

func TestLoad_NullWidgetsBecomesEmpty(t *testing.T) {
	s := openTestStore(t, WithoutWatch())
	if err := os.WriteFile(s.Path(), []byte(`{"Vekotin":{"WidgetPath":null},"Widgets":null}`), 0600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := s.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := s.SetWidgetSettings("clock", WidgetSettings{}); err != nil {
		t.Fatalf("SetWidgetSettings after null widgets: %v", err)
	}
}

func TestSave_PublishesSavedAndLoaded(t *testing.T) {
	s := openTestStore(t, WithoutWatch())
	rec := newRecorder()
	sub := s.Subscribe(rec)
	defer sub.Unsubscribe()

	_ = s.SetWidgetSettings("clock", WidgetSettings{Active: true})
	if err := s.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if rec.count(Saved) != 1 || rec.count(Loaded) != 1 {
		t.Fatalf("events = %+v, want one saved and one loaded", rec.events)
	}
	ev := rec.events[0]
	if ev.ID == "" || ev.Time.IsZero() || !ev.Snapshot.Widgets["clock"].Active {
		t.Fatalf("saved event incomplete: %+v", ev)
	}
}

func TestSubscriber_CanCallBackIntoStore(t *testing.T) {
	s := openTestStore(t, WithoutWatch())
	_ = s.SetWidgetSettings("clock", WidgetSettings{})

	done := false
	s.SubscribeFunc(func(Change) {
		_, _ = s.WidgetSettings("clock")
		_ = s.UpdateWidgetSettings("clock", func(ws *WidgetSettings) { ws.WindowX = 3 })
		done = true
	})
	if err := s.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !done {
		t.Fatalf("subscriber not called")
	}
}

func TestHandleFileEvent_Debounces(t *testing.T) {
	s := openTestStore(t, WithoutWatch(), WithDebounce(40*time.Millisecond))
	var reloads atomic.Int32
	s.SubscribeFunc(func(c Change) {
		if c.Type == ExternalChange {
			reloads.Add(1)
		}
	})

	ev := fsnotify.Event{Name: s.Path(), Op: fsnotify.Write}
	for i := 0; i < 10; i++ {
		s.handleFileEvent(ev)
	}
	time.Sleep(300 * time.Millisecond)

	if got := reloads.Load(); got != 1 {
		t.Fatalf("reloads = %d, want 1", got)
	}
}

func TestHandleFileEvent_Filters(t *testing.T) {
	s := openTestStore(t, WithoutWatch(), WithDebounce(20*time.Millisecond))
	var reloads atomic.Int32
	s.SubscribeFunc(func(Change) { reloads.Add(1) })

	dir := filepath.Dir(s.Path())
	s.handleFileEvent(fsnotify.Event{Name: filepath.Join(dir, "other.json"), Op: fsnotify.Write})
	s.handleFileEvent(fsnotify.Event{Name: s.Path(), Op: fsnotify.Chmod})
	s.handleFileEvent(fsnotify.Event{Name: s.Path(), Op: fsnotify.Remove})
	time.Sleep(150 * time.Millisecond)

	if got := reloads.Load(); got != 0 {
		t.Fatalf("reloads = %d, want 0", got)
	}
}

func TestHandleFileEvent_SuppressedAfterSave(t *testing.T) {
	s := openTestStore(t, WithoutWatch(), WithDebounce(20*time.Millisecond), WithQuietPeriod(200*time.Millisecond))
	var reloads atomic.Int32
	s.SubscribeFunc(func(c Change) {
		if c.Type == ExternalChange {
			reloads.Add(1)
		}
	})

	if err := s.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	s.handleFileEvent(fsnotify.Event{Name: s.Path(), Op: fsnotify.Write})
	time.Sleep(100 * time.Millisecond)
	if got := reloads.Load(); got != 0 {
		t.Fatalf("reloads during quiet period = %d, want 0", got)
	}

	time.Sleep(250 * time.Millisecond)
	s.handleFileEvent(fsnotify.Event{Name: s.Path(), Op: fsnotify.Write})
	time.Sleep(150 * time.Millisecond)
	if got := reloads.Load(); got != 1 {
		t.Fatalf("reloads after quiet period = %d, want 1", got)
	}
}

func TestWatch_ExternalWriteReloads(t *testing.T) {
	s := openTestStore(t, WithDebounce(50*time.Millisecond))
	rec := newRecorder()
	s.Subscribe(rec)

	doc := `{"Vekotin":{"WidgetPath":null},"Widgets":{"clock":{"Active":true,"WindowX":42,"WindowY":0}}}`
	if err := files.AtomicWrite(s.Path(), []byte(doc), 0600); err != nil {
		t.Fatalf("external write: %v", err)
	}

	deadline := time.After(5 * time.Second)
	for {
		select {
		case c := <-rec.ch:
			if c.Type != ExternalChange {
				continue
			}
			if c.Snapshot.Widgets["clock"].WindowX != 42 {
				t.Fatalf("reloaded snapshot = %+v", c.Snapshot)
			}
			if ws, _ := s.WidgetSettings("clock"); ws.WindowX != 42 {
				t.Fatalf("store not updated: %+v", ws)
			}
			return
		case <-deadline:
			t.Fatalf("no external change observed")
		}
	}
}

func TestWatch_MalformedExternalWriteKeepsState(t *testing.T) {
	s := openTestStore(t, WithoutWatch(), WithDebounce(20*time.Millisecond))
	_ = s.SetWidgetSettings("clock", WidgetSettings{WindowX: 9})

	if err := os.WriteFile(s.Path(), []byte("{"), 0600); err != nil {
		t.Fatalf("write: %v", err)
	}
	s.handleFileEvent(fsnotify.Event{Name: s.Path(), Op: fsnotify.Write})
	time.Sleep(120 * time.Millisecond)

	if ws, _ := s.WidgetSettings("clock"); ws.WindowX != 9 {
		t.Fatalf("malformed reload replaced state: %+v", ws)
	}
}

func TestClose_Idempotent(t *testing.T) {
	s := openTestStore(t)
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	s.handleFileEvent(fsnotify.Event{Name: s.Path(), Op: fsnotify.Write})
}

func TestDefaultWidgetRoot(t *testing.T) {
	prev := userHomeDir
	defer func() { userHomeDir = prev }()

	home := t.TempDir()
	userHomeDir = func() (string, error) { return home, nil }
	if got, want := DefaultWidgetRoot(), filepath.Join(home, "Vekotin", "Widgets"); got != want {
		t.Fatalf("without Documents: %q, want %q", got, want)
	}

	if err := os.Mkdir(filepath.Join(home, "Documents"), 0700); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if got, want := DefaultWidgetRoot(), filepath.Join(home, "Documents", "Vekotin", "Widgets"); got != want {
		t.Fatalf("with Documents: %q, want %q", got, want)
	}
}
