package scene

import "sync"

type memoryPrimStorage struct {
	mu    sync.RWMutex
	prims map[string]Prim
}

func NewMemoryStorage() PrimStorage {
	return &memoryPrimStorage{
		prims: make(map[string]Prim),
	}
}

func (m *memoryPrimStorage) Load(path string) (Prim, bool, error) {
	m.mu.RLock()
	prim, ok := m.prims[path]
	m.mu.RUnlock()
	if !ok {
		return Prim{}, false, nil
	}
	return prim.clone(), true, nil
}

func (m *memoryPrimStorage) Save(prim Prim) error {
	m.mu.Lock()
	m.prims[prim.Path] = prim.clone()
	m.mu.Unlock()
	return nil
}

func (m *memoryPrimStorage) Delete(path string) error {
	m.mu.Lock()
	delete(m.prims, path)
	m.mu.Unlock()
	return nil
}

func (m *memoryPrimStorage) ForEach(fn func(prim Prim) bool) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, prim := range m.prims {
		if !fn(prim.clone()) {
			break
		}
	}
	return nil
}

func (m *memoryPrimStorage) Close() error {
	return nil
}
