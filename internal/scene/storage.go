package scene

import "fmt"

const (
	BackendMemory  = "memory"
	BackendLevelDB = "leveldb"
)

// PrimStorage provides persistent storage for document prims.
type PrimStorage interface {
	Load(path string) (Prim, bool, error)
	Save(prim Prim) error
	Delete(path string) error
	ForEach(fn func(prim Prim) bool) error
	Close() error
}

// OpenStorage creates the prim storage named by backend. The leveldb backend
// persists beneath dir.
func OpenStorage(backend, dir string) (PrimStorage, error) {
	switch backend {
	case "", BackendMemory:
		return NewMemoryStorage(), nil
	case BackendLevelDB:
		if dir == "" {
			return nil, fmt.Errorf("leveldb storage requires a path")
		}
		return NewLevelDBStorage(dir)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}
