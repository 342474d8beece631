package assets

import (
	"os"
	"path/filepath"
	"testing"
)

func writeManifest(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	return path
}

func TestFileLoaderYAML(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "rock.yaml", "name: rock\nbounds:\n  min: [-1, -2, 0]\n  max: [1, 2, 3]\n")

	box, err := FileLoader{Dir: dir}.Load("rock.yaml", 0.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if box.Width() != 1 || box.Depth() != 2 {
		t.Fatalf("expected 1x2 footprint, got %gx%g", box.Width(), box.Depth())
	}
}

func TestFileLoaderJSONYUp(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, "pile.json", `{"name":"pile","up":"y","bounds":{"min":[-2,0,-4],"max":[2,9,4]}}`)

	box, err := FileLoader{}.Load(path, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if box.Width() != 8 || box.Depth() != 16 {
		t.Fatalf("expected 8x16 footprint, got %gx%g", box.Width(), box.Depth())
	}
}

func TestFileLoaderErrors(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "mesh.obj", "v 0 0 0\n")
	writeManifest(t, dir, "broken.yaml", "bounds: [")
	writeManifest(t, dir, "sideways.yaml", "name: s\nup: x\n")

	loader := FileLoader{Dir: dir}
	for _, name := range []string{"missing.yaml", "mesh.obj", "broken.yaml", "sideways.yaml"} {
		if _, err := loader.Load(name, 1); err == nil {
			t.Fatalf("expected %s to fail", name)
		}
	}
}

func TestShippedForestManifests(t *testing.T) {
	loader := FileLoader{Dir: filepath.Join("..", "..")}
	tests := []struct {
		path  string
		scale float64
		area  float64
	}{
		{"assets/forest/pine.yaml", 0.02, 36},
		{"assets/forest/bush.yaml", 0.01, 1.44},
		{"assets/forest/large_dirt_pile.yaml", 0.075, 144},
		{"assets/forest/oak_tree_variation.yaml", 0.02, 100},
	}
	for _, tt := range tests {
		box, err := loader.Load(tt.path, tt.scale)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tt.path, err)
		}
		if diff := box.Area() - tt.area; diff > 1e-6 || diff < -1e-6 {
			t.Fatalf("%s: expected area %v, got %v", tt.path, tt.area, box.Area())
		}
	}
}
