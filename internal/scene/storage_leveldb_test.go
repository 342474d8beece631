package scene

import (
	"path/filepath"
	"reflect"
	"testing"
)

func TestLevelDBStoragePersistsAcrossReopen(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "stage.db")

	storage, err := OpenStorage(BackendLevelDB, dir)
	if err != nil {
		t.Fatalf("open storage: %v", err)
	}
	doc, err := New(storage)
	if err != nil {
		t.Fatalf("new document: %v", err)
	}
	mesh := Mesh{
		Points:  []Vec3{{0, 0, 0}, {1, 0, 0.5}, {0, 1, 0.25}},
		Indices: []int{0, 1, 2},
		Columns: 3,
		Rows:    1,
	}
	if _, err := doc.CreateMesh("/World/Terrain", mesh, Vec3{1, 2, 3}); err != nil {
		t.Fatalf("create mesh: %v", err)
	}
	id := doc.ID()
	if err := doc.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	storage, err = OpenStorage(BackendLevelDB, dir)
	if err != nil {
		t.Fatalf("reopen storage: %v", err)
	}
	reopened, err := New(storage)
	if err != nil {
		t.Fatalf("reopen document: %v", err)
	}
	defer reopened.Close()

	if reopened.ID() != id {
		t.Fatalf("document id mismatch: got %s want %s", reopened.ID(), id)
	}
	prim, ok, err := reopened.Prim("/World/Terrain")
	if err != nil || !ok {
		t.Fatalf("terrain prim missing: ok=%v err=%v", ok, err)
	}
	if !reflect.DeepEqual(*prim.Mesh, mesh) {
		t.Fatalf("mesh mismatch:\nwant %+v\n got %+v", mesh, *prim.Mesh)
	}
	if prim.Transform.Translate != (Vec3{1, 2, 3}) {
		t.Fatalf("translate mismatch: %v", prim.Transform.Translate)
	}
}

func TestLevelDBStorageDelete(t *testing.T) {
	storage, err := NewLevelDBStorage(filepath.Join(t.TempDir(), "db"))
	if err != nil {
		t.Fatalf("open storage: %v", err)
	}
	defer storage.Close()

	if err := storage.Save(Prim{Path: "/World/a", Type: PrimXform}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := storage.Delete("/World/a"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, err := storage.Load("/World/a"); err != nil || ok {
		t.Fatalf("expected prim to be gone: ok=%v err=%v", ok, err)
	}
}

func TestOpenStorageRejectsUnknownBackend(t *testing.T) {
	if _, err := OpenStorage("postgres", ""); err == nil {
		t.Fatalf("expected unknown backend to fail")
	}
	if _, err := OpenStorage(BackendLevelDB, ""); err == nil {
		t.Fatalf("expected leveldb without path to fail")
	}
}
