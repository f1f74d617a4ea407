// Package examples ships sample widget bundles that can be copied into the
// widget folder.
package examples

import (
	"embed"
	"errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/oukeidos/vekotin/internal/apperrors"
	"github.com/oukeidos/vekotin/internal/files"
	"github.com/oukeidos/vekotin/internal/logger"
)

//go:embed bundles
var bundleFS embed.FS

// Bundle is one embedded example widget.
type Bundle struct {
	// Folder is the widget folder name, which is also its widget id.
	Folder string
	dir    string
}

// Bundles lists the embedded examples.
var Bundles = []Bundle{
	{Folder: "Vekotin - Clock", dir: "bundles/clock"},
	{Folder: "Vekotin - CPU Monitor", dir: "bundles/cpu-monitor"},
	{Folder: "Vekotin - RAM Monitor", dir: "bundles/ram-monitor"},
	{Folder: "Vekotin - Disk Monitor", dir: "bundles/disk-monitor"},
}

// FS returns the bundle's files.
func (b Bundle) FS() (fs.FS, error) {
	return fs.Sub(bundleFS, b.dir)
}

// Install copies every bundle whose folder does not exist yet into root and
// returns the installed folder names. Existing folders are never touched.
func Install(root string) ([]string, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, apperrors.IO("Failed to create widget folder", err)
	}
	log := logger.Component("examples")

	var installed []string
	for _, b := range Bundles {
		dest := filepath.Join(root, b.Folder)
		if _, err := os.Stat(dest); err == nil {
			log.Debug("Example already present", "widget", dest)
			continue
		} else if !errors.Is(err, fs.ErrNotExist) {
			return installed, apperrors.IO("Failed to inspect widget folder", err)
		}
		if err := b.install(dest); err != nil {
			return installed, apperrors.IO("Failed to install example widget "+b.Folder, err)
		}
		log.Info("Installed example widget", "widget", dest)
		installed = append(installed, b.Folder)
	}
	return installed, nil
}

func (b Bundle) install(dest string) error {
	return fs.WalkDir(bundleFS, b.dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel := p[len(b.dir):]
		target := filepath.Join(dest, filepath.FromSlash(path.Clean("/"+rel)))
		if d.IsDir() {
			return os.MkdirAll(target, 0755)
		}
		data, err := bundleFS.ReadFile(p)
		if err != nil {
			return err
		}
		return files.AtomicWrite(target, data, 0644)
	})
}
