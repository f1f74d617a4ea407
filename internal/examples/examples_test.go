package examples

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/oukeidos/vekotin/internal/registry"
)

func TestInstall_SeedsValidBundles(t *testing.T) {
	root := filepath.Join(t.TempDir(), "Widgets")
	installed, err := Install(root)
	if err != nil {
		t.Fatalf("Install: %v", err)
	}
	if len(installed) != len(Bundles) {
		t.Fatalf("installed %v, want %d bundles", installed, len(Bundles))
	}

	items := registry.Scan(os.DirFS(root), root, nil)
	if len(items) != len(Bundles) {
		t.Fatalf("registry found %d bundles, want %d", len(items), len(Bundles))
	}
	for _, it := range items {
		if _, err := os.Stat(filepath.Join(it.Path, "index.html")); err != nil {
			t.Fatalf("%s missing index.html: %v", it.ID(), err)
		}
	}
}

func TestInstall_LeavesExistingFolders(t *testing.T) {
	root := t.TempDir()
	clock := filepath.Join(root, Bundles[0].Folder)
	if err := os.MkdirAll(clock, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	marker := filepath.Join(clock, "index.html")
	if err := os.WriteFile(marker, []byte("mine"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	installed, err := Install(root)
	if err != nil {
		t.Fatalf("Install: %v", err)
	}
	if len(installed) != len(Bundles)-1 {
		t.Fatalf("installed = %v", installed)
	}
	if data, _ := os.ReadFile(marker); string(data) != "mine" {
		t.Fatalf("existing bundle overwritten")
	}

	again, err := Install(root)
	if err != nil || len(again) != 0 {
		t.Fatalf("second Install = (%v, %v), want nothing", again, err)
	}
}

func TestBundle_FS(t *testing.T) {
	for _, b := range Bundles {
		fsys, err := b.FS()
		if err != nil {
			t.Fatalf("FS(%s): %v", b.Folder, err)
		}
		if _, err := registry.ReadManifest(fsys, "."); err != nil {
			t.Fatalf("%s manifest: %v", b.Folder, err)
		}
	}
}

func TestBundles_CoverEveryBridge(t *testing.T) {
	used := make(map[string]bool)
	for _, b := range Bundles {
		fsys, err := b.FS()
		if err != nil {
			t.Fatalf("FS(%s): %v", b.Folder, err)
		}
		m, err := registry.ReadManifest(fsys, ".")
		if err != nil {
			t.Fatalf("%s manifest: %v", b.Folder, err)
		}
		if m.Name != b.Folder {
			t.Errorf("%s: manifest name %q differs from folder", b.Folder, m.Name)
		}
		for _, br := range m.Bridges {
			if !registry.IsKnownBridge(br) {
				t.Errorf("%s requests unknown bridge %q", b.Folder, br)
			}
			used[strings.ToLower(br)] = true
		}
	}
	for _, br := range registry.KnownBridges {
		if !used[br] {
			t.Errorf("no example uses the %s bridge", br)
		}
	}
}
