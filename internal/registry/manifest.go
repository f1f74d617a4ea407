package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/oukeidos/vekotin/internal/apperrors"
	"github.com/oukeidos/vekotin/internal/files"
)

// ManifestFileName is the descriptor file inside every widget folder.
const ManifestFileName = "widget.json"

// KnownBridges are the system-metric bridges the host can expose.
var KnownBridges = []string{"cpu", "ram", "disk"}

// Manifest describes a widget bundle.
type Manifest struct {
	Name        string   `json:"Name" yaml:"Name"`
	Author      string   `json:"Author,omitempty" yaml:"Author,omitempty"`
	Version     string   `json:"Version,omitempty" yaml:"Version,omitempty"`
	License     string   `json:"License,omitempty" yaml:"License,omitempty"`
	Description string   `json:"Description,omitempty" yaml:"Description,omitempty"`
	Width       int      `json:"Width" yaml:"Width"`
	Height      int      `json:"Height" yaml:"Height"`
	Bridges     []string `json:"Bridges,omitempty" yaml:"Bridges,omitempty"`
}

// Validate requires a non-blank name and a positive size.
func (m Manifest) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return apperrors.ManifestInvalid("Widget manifest has no name", nil)
	}
	if m.Width <= 0 || m.Height <= 0 {
		return apperrors.ManifestInvalid(fmt.Sprintf("Widget manifest size %dx%d is not positive", m.Width, m.Height), nil)
	}
	return nil
}

// IsKnownBridge reports whether the host provides the named bridge.
func IsKnownBridge(name string) bool {
	for _, b := range KnownBridges {
		if strings.EqualFold(b, strings.TrimSpace(name)) {
			return true
		}
	}
	return false
}

// errNoManifest marks folders that are not widget bundles.
var errNoManifest = errors.New("no widget manifest")

// ReadManifest reads and validates the manifest in dir of fsys.
func ReadManifest(fsys fs.FS, dir string) (Manifest, error) {
	name := ManifestFileName
	if dir != "" && dir != "." {
		name = dir + "/" + ManifestFileName
	}

	info, err := fs.Stat(fsys, name)
	if errors.Is(err, fs.ErrNotExist) {
		return Manifest{}, errNoManifest
	}
	if err != nil {
		return Manifest{}, apperrors.ManifestInvalid("Widget manifest could not be read", err)
	}
	if info.IsDir() {
		return Manifest{}, apperrors.ManifestInvalid("Widget manifest is a directory", nil)
	}
	if info.Size() > files.MaxDocumentSize {
		return Manifest{}, apperrors.ManifestInvalid(fmt.Sprintf("Widget manifest exceeds %d bytes", files.MaxDocumentSize), nil)
	}

	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return Manifest{}, apperrors.ManifestInvalid("Widget manifest could not be read", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return Manifest{}, apperrors.ManifestInvalid("Widget manifest is malformed", err)
	}
	if err := m.Validate(); err != nil {
		return Manifest{}, err
	}
	return m, nil
}
