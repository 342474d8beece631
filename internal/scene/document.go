package scene

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// ErrDocumentWrite wraps every failure to mutate a document or its storage.
var ErrDocumentWrite = errors.New("document write failed")

const (
	// RootPath is the default prim every document is created with.
	RootPath = "/World"

	PrimXform = "Xform"
	PrimMesh  = "Mesh"

	attrDocumentID = "stagebuilder:documentId"
)

// Vec3 is a world space position, offset or euler rotation.
type Vec3 [3]float64

func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v[0] + o[0], v[1] + o[1], v[2] + o[2]}
}

// Transform places a prim relative to the world.
type Transform struct {
	Translate Vec3    `json:"translate" yaml:"translate"`
	RotateXYZ Vec3    `json:"rotateXYZ" yaml:"rotateXYZ"` // degrees
	Scale     float64 `json:"scale" yaml:"scale"`
}

// Mesh is triangle geometry sampled on a regular grid of Columns x Rows points.
type Mesh struct {
	Points  []Vec3 `json:"points" yaml:"points"`
	Indices []int  `json:"indices" yaml:"indices"`
	Columns int    `json:"columns" yaml:"columns"`
	Rows    int    `json:"rows" yaml:"rows"`
}

// Prim is a single node of the scene graph.
type Prim struct {
	Path       string            `json:"path" yaml:"path"`
	Type       string            `json:"type" yaml:"type"`
	Reference  string            `json:"reference,omitempty" yaml:"reference,omitempty"`
	Transform  Transform         `json:"transform" yaml:"transform"`
	Attributes map[string]string `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	Mesh       *Mesh             `json:"mesh,omitempty" yaml:"mesh,omitempty"`
}

func (p Prim) clone() Prim {
	dup := p
	if p.Attributes != nil {
		dup.Attributes = make(map[string]string, len(p.Attributes))
		for k, v := range p.Attributes {
			dup.Attributes[k] = v
		}
	}
	if p.Mesh != nil {
		mesh := *p.Mesh
		mesh.Points = append([]Vec3(nil), p.Mesh.Points...)
		mesh.Indices = append([]int(nil), p.Mesh.Indices...)
		dup.Mesh = &mesh
	}
	return dup
}

// Document is an in-process scene graph backed by a PrimStorage.
type Document struct {
	id      uuid.UUID
	storage PrimStorage

	mu    sync.RWMutex
	paths map[string]struct{}
}

// New attaches a document to storage. Prims already present in the storage
// are adopted, including the document identity recorded on the root prim.
func New(storage PrimStorage) (*Document, error) {
	if storage == nil {
		return nil, errors.New("scene: storage is nil")
	}
	doc := &Document{
		storage: storage,
		paths:   make(map[string]struct{}),
	}

	err := storage.ForEach(func(prim Prim) bool {
		doc.paths[prim.Path] = struct{}{}
		if prim.Path == RootPath {
			if parsed, err := uuid.Parse(prim.Attributes[attrDocumentID]); err == nil {
				doc.id = parsed
			}
		}
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("scan prim storage: %w", err)
	}

	if _, ok := doc.paths[RootPath]; ok && doc.id != uuid.Nil {
		return doc, nil
	}

	doc.id = uuid.New()
	root := Prim{
		Path:       RootPath,
		Type:       PrimXform,
		Transform:  Transform{Scale: 1},
		Attributes: map[string]string{attrDocumentID: doc.id.String()},
	}
	if err := doc.write(root, true); err != nil {
		return nil, err
	}
	return doc, nil
}

// NewMemory returns a document held entirely in memory.
func NewMemory() *Document {
	doc, err := New(NewMemoryStorage())
	if err != nil {
		panic(fmt.Sprintf("scene: memory document: %v", err))
	}
	return doc
}

func (d *Document) ID() uuid.UUID {
	return d.id
}

// CreateMesh inserts geometry at path, translated by translate.
func (d *Document) CreateMesh(path string, mesh Mesh, translate Vec3) (Handle, error) {
	if len(mesh.Indices)%3 != 0 {
		return Handle{}, fmt.Errorf("%w: mesh %s: index count %d is not a multiple of 3", ErrDocumentWrite, path, len(mesh.Indices))
	}
	prim := Prim{
		Path:      path,
		Type:      PrimMesh,
		Transform: Transform{Translate: translate, Scale: 1},
		Mesh:      &mesh,
	}
	if err := d.write(prim, false); err != nil {
		return Handle{}, err
	}
	return Handle{doc: d, path: path}, nil
}

// AddReference creates an xform prim at path that instances the asset at assetPath.
func (d *Document) AddReference(path, assetPath string, xform Transform) (Handle, error) {
	if assetPath == "" {
		return Handle{}, fmt.Errorf("%w: reference %s: empty asset path", ErrDocumentWrite, path)
	}
	prim := Prim{
		Path:      path,
		Type:      PrimXform,
		Reference: assetPath,
		Transform: xform,
	}
	if err := d.write(prim, false); err != nil {
		return Handle{}, err
	}
	return Handle{doc: d, path: path}, nil
}

// Remove deletes the prim at path. Removing a missing prim is not an error.
func (d *Document) Remove(path string) error {
	if path == RootPath {
		return fmt.Errorf("%w: the root prim cannot be removed", ErrDocumentWrite)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.storage.Delete(path); err != nil {
		return fmt.Errorf("%w: delete prim %s: %v", ErrDocumentWrite, path, err)
	}
	delete(d.paths, path)
	return nil
}

// Handle returns a handle for an existing prim.
func (d *Document) Handle(path string) (Handle, bool) {
	d.mu.RLock()
	_, ok := d.paths[path]
	d.mu.RUnlock()
	if !ok {
		return Handle{}, false
	}
	return Handle{doc: d, path: path}, true
}

func (d *Document) Prim(path string) (Prim, bool, error) {
	prim, ok, err := d.storage.Load(path)
	if err != nil {
		return Prim{}, false, fmt.Errorf("load prim %s: %w", path, err)
	}
	return prim, ok, nil
}

// Prims returns every prim ordered by path.
func (d *Document) Prims() ([]Prim, error) {
	prims := make([]Prim, 0, d.Len())
	err := d.storage.ForEach(func(prim Prim) bool {
		prims = append(prims, prim)
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("list prims: %w", err)
	}
	sort.Slice(prims, func(i, j int) bool { return prims[i].Path < prims[j].Path })
	return prims, nil
}

func (d *Document) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.paths)
}

func (d *Document) Close() error {
	return d.storage.Close()
}

func (d *Document) write(prim Prim, replace bool) error {
	if err := validatePath(prim.Path); err != nil {
		return fmt.Errorf("%w: %v", ErrDocumentWrite, err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.paths[prim.Path]; exists && !replace {
		return fmt.Errorf("%w: prim %s already exists", ErrDocumentWrite, prim.Path)
	}
	if err := d.storage.Save(prim); err != nil {
		return fmt.Errorf("%w: save prim %s: %v", ErrDocumentWrite, prim.Path, err)
	}
	d.paths[prim.Path] = struct{}{}
	return nil
}

func (d *Document) update(path string, fn func(*Prim)) error {
	prim, ok, err := d.Prim(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDocumentWrite, err)
	}
	if !ok {
		return fmt.Errorf("%w: prim %s does not exist", ErrDocumentWrite, path)
	}
	fn(&prim)
	return d.write(prim, true)
}

func validatePath(path string) error {
	if !strings.HasPrefix(path, "/") {
		return fmt.Errorf("prim path %q must be absolute", path)
	}
	if path == "/" || strings.HasSuffix(path, "/") || strings.Contains(path, "//") {
		return fmt.Errorf("prim path %q is malformed", path)
	}
	return nil
}
