// Package registry discovers widget bundles under the widget root.
package registry

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/oukeidos/vekotin/internal/apperrors"
	"github.com/oukeidos/vekotin/internal/logger"
)

// Item is one discovered widget.
type Item struct {
	Name     string
	Path     string
	Manifest Manifest
}

// ID returns the widget identifier, which is the bundle's folder name.
func (it Item) ID() string {
	return filepath.Base(it.Path)
}

// UnknownBridges lists requested bridges the host does not provide.
func (it Item) UnknownBridges() []string {
	var out []string
	for _, b := range it.Manifest.Bridges {
		if !IsKnownBridge(b) {
			out = append(out, b)
		}
	}
	return out
}

// Scan reads every immediate subdirectory of fsys and returns the ones with
// a valid manifest, in directory order. root is the OS path fsys is rooted
// at and is only used to build Item.Path. Folders without a manifest are
// skipped silently; invalid manifests are logged and skipped.
func Scan(fsys fs.FS, root string, log *slog.Logger) []Item {
	if log == nil {
		log = logger.Component("registry")
	}
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		log.Warn("Failed to list widget folder", "root", root, "error", err)
		return nil
	}

	items := make([]Item, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		dir := filepath.Join(root, e.Name())
		m, err := ReadManifest(fsys, e.Name())
		if err == errNoManifest {
			continue
		}
		if err != nil {
			log.Warn("Skipping widget", "widget", dir, "reason", apperrors.PublicMessage(err), "error", err)
			continue
		}
		items = append(items, Item{Name: m.Name, Path: dir, Manifest: m})
	}
	return items
}

// Registry caches the result of the last scan of a widget root.
type Registry struct {
	log *slog.Logger

	mu    sync.RWMutex
	root  string
	items []Item
}

// New creates a registry for root. Call Refresh to scan it.
func New(root string) *Registry {
	return &Registry{root: root, log: logger.Component("registry")}
}

// Root returns the scanned folder.
func (r *Registry) Root() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.root
}

// SetRoot changes the folder scanned by the next Refresh.
func (r *Registry) SetRoot(root string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.root = root
}

// Refresh creates the root if needed, rescans it and replaces the cached
// items.
func (r *Registry) Refresh() ([]Item, error) {
	root := r.Root()
	if root == "" {
		return nil, apperrors.InvalidArgument("widget folder is not set")
	}
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, apperrors.IO("Failed to create widget folder", err)
	}

	items := Scan(os.DirFS(root), root, r.log)
	for _, it := range items {
		if unknown := it.UnknownBridges(); len(unknown) > 0 {
			r.log.Warn("Widget requests unavailable bridges", "widget", it.Path, "bridges", unknown)
		}
	}
	r.log.Debug("Widgets discovered", "root", root, "count", len(items))

	r.mu.Lock()
	r.items = items
	r.mu.Unlock()
	return r.Items(), nil
}

// Items returns a copy of the last scan result.
func (r *Registry) Items() []Item {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Item, len(r.items))
	copy(out, r.items)
	return out
}

// Find returns the item whose ID is id.
func (r *Registry) Find(id string) (Item, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, it := range r.items {
		if it.ID() == id {
			return it, true
		}
	}
	return Item{}, false
}
