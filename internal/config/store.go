// Package config persists per-widget settings in a JSON document, watches it
// for edits by other writers, and notifies subscribers of every change.
package config

import (
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"

	"github.com/oukeidos/vekotin/internal/apperrors"
	"github.com/oukeidos/vekotin/internal/files"
	"github.com/oukeidos/vekotin/internal/logger"
	"github.com/oukeidos/vekotin/internal/notify"
	"github.com/oukeidos/vekotin/internal/version"
)

const (
	// FileName is the configuration document inside the config directory.
	FileName = "config.json"

	DefaultDebounce    = 300 * time.Millisecond
	DefaultQuietPeriod = 500 * time.Millisecond
)

var (
	userConfigDir = os.UserConfigDir
	userHomeDir   = os.UserHomeDir
	timeNow       = time.Now
)

// DefaultDir returns the per-user application data directory.
func DefaultDir() (string, error) {
	base, err := userConfigDir()
	if err != nil {
		return "", apperrors.IO("Could not locate the user configuration directory", err)
	}
	return filepath.Join(base, version.AppName), nil
}

// DefaultWidgetRoot returns <Documents>/Vekotin/Widgets, or
// <home>/Vekotin/Widgets when there is no Documents folder.
func DefaultWidgetRoot() string {
	home, err := userHomeDir()
	if err != nil || home == "" {
		return filepath.Join(version.AppName, "Widgets")
	}
	base := home
	if info, err := os.Stat(filepath.Join(home, "Documents")); err == nil && info.IsDir() {
		base = filepath.Join(home, "Documents")
	}
	return filepath.Join(base, version.AppName, "Widgets")
}

// Option configures a Store.
type Option func(*options)

type options struct {
	debounce    time.Duration
	quiet       time.Duration
	dispatcher  notify.Dispatcher
	log         *slog.Logger
	defaultRoot string
	watch       bool
}

// WithDebounce sets how long the file must stay quiet before a reload.
func WithDebounce(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.debounce = d
		}
	}
}

// WithQuietPeriod sets how long watch events stay suppressed after a save.
func WithQuietPeriod(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.quiet = d
		}
	}
}

// WithDispatcher sets the context change events are delivered on.
func WithDispatcher(d notify.Dispatcher) Option {
	return func(o *options) { o.dispatcher = d }
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// WithDefaultWidgetRoot overrides the widget folder written on first run.
func WithDefaultWidgetRoot(path string) Option {
	return func(o *options) { o.defaultRoot = path }
}

// WithoutWatch disables the file watcher.
func WithoutWatch() Option {
	return func(o *options) { o.watch = false }
}

// Store owns the configuration document. All methods are safe for
// concurrent use.
type Store struct {
	path        string
	defaultRoot string
	log         *slog.Logger
	notifier    *notify.Notifier[Change]

	mu  sync.Mutex
	doc Configuration

	saveMu sync.Mutex

	watchMu     sync.Mutex
	watcher     *fsnotify.Watcher
	debounce    time.Duration
	quiet       time.Duration
	timer       *time.Timer
	suppressGen uint64
	suppressed  bool
	closed      bool
	done        chan struct{}
	wg          sync.WaitGroup
}

// Open opens <dir>/config.json, creating dir and a default document on
// first run.
func Open(dir string, opts ...Option) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, apperrors.InvalidArgument("configuration directory is empty")
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, apperrors.IO("Failed to create configuration directory", err)
	}
	return New(filepath.Join(dir, FileName), opts...)
}

// New opens the configuration document at path. A missing document is
// created with defaults before the first load. The watcher starts after a
// successful load.
func New(path string, opts ...Option) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, apperrors.InvalidArgument("configuration path is empty")
	}
	o := options{
		debounce: DefaultDebounce,
		quiet:    DefaultQuietPeriod,
		watch:    true,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logger.Component("config")
	}
	if o.defaultRoot == "" {
		o.defaultRoot = DefaultWidgetRoot()
	}
	nopts := []notify.Option{notify.WithLogger(o.log)}
	if o.dispatcher != nil {
		nopts = append(nopts, notify.WithDispatcher(o.dispatcher))
	}

	s := &Store{
		path:        filepath.Clean(path),
		defaultRoot: o.defaultRoot,
		log:         o.log,
		notifier:    notify.New[Change](nopts...),
		doc:         Configuration{Widgets: make(map[string]WidgetSettings)},
		debounce:    o.debounce,
		quiet:       o.quiet,
		done:        make(chan struct{}),
	}

	if err := s.ensureDefault(); err != nil {
		return nil, err
	}
	if err := s.Load(); err != nil {
		return nil, err
	}
	if o.watch {
		if err := s.startWatch(); err != nil {
			s.log.Warn("Configuration watch unavailable; external edits need a restart", "path", s.path, "error", err)
		}
	}
	return s, nil
}

// Path returns the configuration file path.
func (s *Store) Path() string { return s.path }

func (s *Store) ensureDefault() error {
	if _, err := os.Stat(s.path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return apperrors.IO("Failed to access configuration file", err)
	}

	if err := writeDocument(s.path, s.defaultDocument()); err != nil {
		return err
	}
	s.log.Info("Created default configuration", "path", s.path, "widget_dir", s.defaultRoot)
	return nil
}

// Load reads the document from disk and replaces the in-memory copy.
func (s *Store) Load() error {
	return s.load(Loaded)
}

func (s *Store) load(kind ChangeType) error {
	data, err := files.ReadLimited(s.path, files.MaxDocumentSize)
	if err != nil {
		return apperrors.IO("Failed to read configuration file", err)
	}
	var doc *Configuration
	if err := json.Unmarshal(data, &doc); err != nil {
		return apperrors.Parse("Configuration file is malformed", err)
	}
	if doc == nil {
		s.log.Debug("Configuration document is null; keeping current settings", "path", s.path)
		return nil
	}
	doc.normalize()

	s.mu.Lock()
	s.doc = *doc
	snap := s.doc.Clone()
	s.mu.Unlock()

	s.log.Debug("Configuration loaded", "path", s.path, "widgets", len(snap.Widgets), "reason", kind.String())
	s.publish(kind, snap)
	return nil
}

// Save writes the document atomically. Watch events caused by the write are
// ignored until the quiet period after it has passed.
func (s *Store) Save() error {
	s.saveMu.Lock()
	s.mu.Lock()
	snap := s.doc.Clone()
	s.mu.Unlock()

	gen := s.beginSuppress()
	err := writeDocument(s.path, snap)
	s.endSuppress(gen)
	s.saveMu.Unlock()
	if err != nil {
		return err
	}

	s.log.Debug("Configuration saved", "path", s.path, "widgets", len(snap.Widgets))
	s.publish(Saved, snap)
	return nil
}

func writeDocument(path string, doc Configuration) error {
	doc.normalize()
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return apperrors.IO("Failed to encode configuration", err)
	}
	data = append(data, '\n')
	if err := files.AtomicWrite(path, data, 0600); err != nil {
		return apperrors.IO("Failed to write configuration file", err)
	}
	return nil
}

// Snapshot returns a deep copy of the current document.
func (s *Store) Snapshot() Configuration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Clone()
}

// WidgetSettings returns the settings for id and whether they exist.
func (s *Store) WidgetSettings(id string) (WidgetSettings, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ws, ok := s.doc.Widgets[id]
	return ws, ok
}

// SetWidgetSettings inserts or replaces the settings for id.
func (s *Store) SetWidgetSettings(id string, ws WidgetSettings) error {
	if strings.TrimSpace(id) == "" {
		return apperrors.InvalidArgument("widget id is empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.Widgets[id] = ws
	return nil
}

// UpdateWidgetSettings applies mutate to the settings for id under the
// store lock. It does nothing when id has no settings.
func (s *Store) UpdateWidgetSettings(id string, mutate func(*WidgetSettings)) error {
	if strings.TrimSpace(id) == "" {
		return apperrors.InvalidArgument("widget id is empty")
	}
	if mutate == nil {
		return apperrors.InvalidArgument("update function is nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ws, ok := s.doc.Widgets[id]
	if !ok {
		return nil
	}
	mutate(&ws)
	s.doc.Widgets[id] = ws
	return nil
}

func (s *Store) defaultDocument() Configuration {
	root := s.defaultRoot
	return Configuration{
		Vekotin: AppSettings{WidgetPath: &root},
		Widgets: make(map[string]WidgetSettings),
	}
}

// WidgetRoot returns the configured widget folder, or the default one.
func (s *Store) WidgetRoot() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p := s.doc.Vekotin.WidgetPath; p != nil && strings.TrimSpace(*p) != "" {
		return *p
	}
	return s.defaultRoot
}

// SetWidgetRoot changes the widget folder. Call Save to persist it.
func (s *Store) SetWidgetRoot(path string) error {
	if strings.TrimSpace(path) == "" {
		return apperrors.InvalidArgument("widget folder is empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.Vekotin.WidgetPath = &path
	return nil
}

// Subscribe registers l for change events.
func (s *Store) Subscribe(l Listener) *notify.Subscription {
	if l == nil {
		return s.notifier.Subscribe(nil)
	}
	return s.notifier.Subscribe(l.ConfigChanged)
}

// SubscribeFunc registers fn for change events.
func (s *Store) SubscribeFunc(fn func(Change)) *notify.Subscription {
	return s.notifier.Subscribe(fn)
}

func (s *Store) publish(kind ChangeType, snap Configuration) {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	s.notifier.Publish(Change{
		ID:       id.String(),
		Type:     kind,
		Snapshot: snap,
		Time:     timeNow(),
	})
}

// Close stops watching and drops all subscribers. It is idempotent.
func (s *Store) Close() error {
	s.watchMu.Lock()
	if s.closed {
		s.watchMu.Unlock()
		return nil
	}
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
	}
	close(s.done)
	w := s.watcher
	s.watchMu.Unlock()

	var err error
	if w != nil {
		err = w.Close()
	}
	s.wg.Wait()
	s.notifier.Close()
	return err
}

func (s *Store) startWatch() error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(s.path)); err != nil {
		w.Close()
		return err
	}

	s.watchMu.Lock()
	if s.closed {
		s.watchMu.Unlock()
		return w.Close()
	}
	s.watcher = w
	s.wg.Add(1)
	s.watchMu.Unlock()

	go s.watchLoop(w)
	s.log.Debug("Watching configuration file", "path", s.path)
	return nil
}

func (s *Store) watchLoop(w *fsnotify.Watcher) {
	defer s.wg.Done()
	for {
		select {
		case <-s.done:
			return
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			s.handleFileEvent(ev)
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			s.log.Warn("Configuration watch error", "path", s.path, "error", err)
		}
	}
}

// handleFileEvent restarts the debounce timer for relevant events.
func (s *Store) handleFileEvent(ev fsnotify.Event) {
	if !s.isConfigFile(ev.Name) {
		return
	}
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
		return
	}

	s.watchMu.Lock()
	defer s.watchMu.Unlock()
	if s.closed {
		return
	}
	if s.suppressed {
		s.log.Debug("Ignoring configuration event during save", "op", ev.Op.String())
		return
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.debounce, s.reloadFromWatch)
}

func (s *Store) isConfigFile(name string) bool {
	name = filepath.Clean(name)
	if runtime.GOOS == "windows" {
		return strings.EqualFold(name, s.path)
	}
	return name == s.path
}

func (s *Store) reloadFromWatch() {
	s.watchMu.Lock()
	if s.closed {
		s.watchMu.Unlock()
		return
	}
	s.watchMu.Unlock()

	if err := s.load(ExternalChange); err != nil {
		s.log.Warn("Failed to reload configuration; keeping previous settings", "path", s.path, "error", err)
	}
}

func (s *Store) beginSuppress() uint64 {
	s.watchMu.Lock()
	defer s.watchMu.Unlock()
	s.suppressGen++
	s.suppressed = true
	return s.suppressGen
}

func (s *Store) endSuppress(gen uint64) {
	time.AfterFunc(s.quiet, func() {
		s.watchMu.Lock()
		defer s.watchMu.Unlock()
		if s.suppressGen == gen {
			s.suppressed = false
		}
	})
}
