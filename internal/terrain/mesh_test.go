package terrain

import (
	"bytes"
	"context"
	"errors"
	"log"
	"math"
	"strings"
	"testing"

	"github.com/jolfss/stagebuilder/internal/scene"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	originalFlags := log.Flags()
	originalPrefix := log.Prefix()
	originalWriter := log.Writer()
	log.SetFlags(0)
	log.SetPrefix("")
	log.SetOutput(&buf)
	t.Cleanup(func() {
		log.SetOutput(originalWriter)
		log.SetPrefix(originalPrefix)
		log.SetFlags(originalFlags)
	})
	return &buf
}

func TestMeshHeightFieldLogsProgress(t *testing.T) {
	buf := captureLogs(t)
	doc := scene.NewMemory()

	height := func(x, y float64) float64 { return x + y }
	if err := meshHeightField(context.Background(), doc, height, 2, 2, scene.Vec3{}, MeshOptions{Unit: 1, Workers: 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	logs := buf.String()
	for _, marker := range []string{"0%", "33%", "66%", "100%"} {
		if !strings.Contains(logs, marker) {
			t.Fatalf("expected logs to contain progress %s, got: %s", marker, logs)
		}
	}
}

func TestMeshHeightFieldBuildsGrid(t *testing.T) {
	captureLogs(t)
	doc := scene.NewMemory()
	offset := scene.Vec3{10, 20, 30}

	var applied []string
	opts := MeshOptions{
		Unit: 1,
		Applier: func(h scene.Handle) error {
			applied = append(applied, h.Path())
			return h.SetAttribute("custom", "yes")
		},
	}
	height := func(x, y float64) float64 { return x * y }
	if err := meshHeightField(context.Background(), doc, height, 2, 2, offset, opts); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	prim, ok, err := doc.Prim(TerrainPath)
	if err != nil || !ok {
		t.Fatalf("expected terrain prim, ok=%v err=%v", ok, err)
	}
	if prim.Mesh == nil {
		t.Fatal("expected terrain prim to carry a mesh")
	}
	if prim.Mesh.Columns != 3 || prim.Mesh.Rows != 3 {
		t.Fatalf("expected 3x3 grid, got %dx%d", prim.Mesh.Columns, prim.Mesh.Rows)
	}
	if len(prim.Mesh.Points) != 9 {
		t.Fatalf("expected 9 points, got %d", len(prim.Mesh.Points))
	}
	if len(prim.Mesh.Indices) != 24 {
		t.Fatalf("expected 8 triangles, got %d indices", len(prim.Mesh.Indices))
	}
	if prim.Mesh.Points[0] != (scene.Vec3{-1, -1, 1}) {
		t.Fatalf("unexpected first point %v", prim.Mesh.Points[0])
	}
	if prim.Mesh.Points[8] != (scene.Vec3{1, 1, 1}) {
		t.Fatalf("unexpected last point %v", prim.Mesh.Points[8])
	}
	if prim.Transform.Translate != offset {
		t.Fatalf("expected translate %v, got %v", offset, prim.Transform.Translate)
	}
	for _, idx := range prim.Mesh.Indices {
		if idx < 0 || idx >= len(prim.Mesh.Points) {
			t.Fatalf("index %d out of range", idx)
		}
	}

	if len(applied) != 1 || applied[0] != TerrainPath {
		t.Fatalf("expected applier to run once on %s, got %v", TerrainPath, applied)
	}
	if prim.Attributes["custom"] != "yes" {
		t.Fatalf("expected applier attribute on terrain, got %v", prim.Attributes)
	}
}

func TestMeshHeightFieldClampsToEdge(t *testing.T) {
	captureLogs(t)
	doc := scene.NewMemory()
	height := func(x, y float64) float64 { return 0 }
	if err := meshHeightField(context.Background(), doc, height, 2.5, 1, scene.Vec3{}, MeshOptions{Unit: 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	prim, _, err := doc.Prim(TerrainPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if prim.Mesh.Columns != 4 || prim.Mesh.Rows != 2 {
		t.Fatalf("expected 4x2 grid, got %dx%d", prim.Mesh.Columns, prim.Mesh.Rows)
	}
	last := prim.Mesh.Points[prim.Mesh.Columns-1]
	if math.Abs(last[0]-1.25) > 1e-9 {
		t.Fatalf("expected last column at x=1.25, got %v", last[0])
	}
}

func TestMeshHeightFieldRejectsNonFiniteHeights(t *testing.T) {
	captureLogs(t)
	doc := scene.NewMemory()
	height := func(x, y float64) float64 { return math.NaN() }
	err := meshHeightField(context.Background(), doc, height, 2, 2, scene.Vec3{}, MeshOptions{Unit: 1})
	if err == nil || !strings.Contains(err.Error(), "not finite") {
		t.Fatalf("expected non-finite height error, got %v", err)
	}
	if _, ok := doc.Handle(TerrainPath); ok {
		t.Fatal("expected no terrain prim after failure")
	}
}

func TestMeshHeightFieldHonoursCancellation(t *testing.T) {
	captureLogs(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := meshHeightField(ctx, scene.NewMemory(), func(x, y float64) float64 { return 0 }, 4, 4, scene.Vec3{}, MeshOptions{Unit: 1})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestMeshHeightFieldRejectsDuplicateTerrain(t *testing.T) {
	captureLogs(t)
	doc := scene.NewMemory()
	height := func(x, y float64) float64 { return 0 }
	if err := meshHeightField(context.Background(), doc, height, 1, 1, scene.Vec3{}, MeshOptions{Unit: 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := meshHeightField(context.Background(), doc, height, 1, 1, scene.Vec3{}, MeshOptions{Unit: 1})
	if !errors.Is(err, scene.ErrDocumentWrite) {
		t.Fatalf("expected ErrDocumentWrite, got %v", err)
	}
}

func TestWorkerCount(t *testing.T) {
	if got := workerCount(4, 2); got != 2 {
		t.Fatalf("expected workers capped by rows, got %d", got)
	}
	if got := workerCount(3, 10); got != 3 {
		t.Fatalf("expected configured workers, got %d", got)
	}
	if got := workerCount(0, 0); got != 1 {
		t.Fatalf("expected at least one worker, got %d", got)
	}
}
