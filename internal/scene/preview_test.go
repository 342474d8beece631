package scene

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func TestSavePreviewRendersTerrainAndMarkers(t *testing.T) {
	doc := buildSampleDocument(t)
	path := filepath.Join(t.TempDir(), "preview", "stage.png")

	if err := SavePreview(doc, path, PreviewOptions{PixelsPerUnit: 10}); err != nil {
		t.Fatalf("save preview: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open preview: %v", err)
	}
	defer file.Close()
	img, err := png.Decode(file)
	if err != nil {
		t.Fatalf("decode preview: %v", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() != 21 || bounds.Dy() != 21 {
		t.Fatalf("unexpected preview size %v", bounds)
	}

	// The instance sits at (0.5, 0.5), i.e. pixel (15, 5).
	r, g, b, _ := img.At(15, 5).RGBA()
	if uint8(r>>8) != previewMarkerColor.R || uint8(g>>8) != previewMarkerColor.G || uint8(b>>8) != previewMarkerColor.B {
		t.Fatalf("expected marker colour at instance position, got %d %d %d", r>>8, g>>8, b>>8)
	}
}

func TestSavePreviewOfEmptyDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.png")
	if err := SavePreview(NewMemory(), path, PreviewOptions{}); err != nil {
		t.Fatalf("save preview: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("preview missing: %v", err)
	}
}
