package scene

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func buildSampleDocument(t *testing.T) *Document {
	t.Helper()
	doc := NewMemory()
	mesh := Mesh{
		Points:  []Vec3{{-1, -1, 0}, {1, -1, 0.5}, {-1, 1, 0.25}, {1, 1, 1}},
		Indices: []int{0, 1, 2, 1, 3, 2},
		Columns: 2,
		Rows:    2,
	}
	if _, err := doc.CreateMesh("/World/Terrain", mesh, Vec3{}); err != nil {
		t.Fatalf("create mesh: %v", err)
	}
	handle, err := doc.AddReference("/World/Assets/pine", "assets/pine.yaml", Transform{
		Translate: Vec3{0.5, 0.5, 0.4},
		RotateXYZ: Vec3{0, 0, 90},
		Scale:     0.02,
	})
	if err != nil {
		t.Fatalf("add reference: %v", err)
	}
	if err := handle.SetAttribute(AttrFootprint, "1.5"); err != nil {
		t.Fatalf("set attribute: %v", err)
	}
	return doc
}

func TestSaveAndOpenAcrossEncodings(t *testing.T) {
	for _, name := range []string{"stage.json", "stage.yaml", "stage.usdc", "nested/dir/stage.usd"} {
		t.Run(name, func(t *testing.T) {
			doc := buildSampleDocument(t)
			path := filepath.Join(t.TempDir(), name)
			if err := doc.Save(path); err != nil {
				t.Fatalf("save: %v", err)
			}
			if _, err := os.Stat(path); err != nil {
				t.Fatalf("stage file missing: %v", err)
			}

			reopened, err := Open(path, NewMemoryStorage())
			if err != nil {
				t.Fatalf("open: %v", err)
			}
			if reopened.ID() != doc.ID() {
				t.Fatalf("id mismatch: got %s want %s", reopened.ID(), doc.ID())
			}

			want, _ := doc.Prims()
			got, err := reopened.Prims()
			if err != nil {
				t.Fatalf("prims: %v", err)
			}
			if !reflect.DeepEqual(got, want) {
				t.Fatalf("prims mismatch:\nwant %+v\n got %+v", want, got)
			}
		})
	}
}

func TestSaveRejectsEmptyPath(t *testing.T) {
	if err := NewMemory().Save(""); err == nil {
		t.Fatalf("expected empty path to fail")
	}
}
