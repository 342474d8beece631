package scene

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"os"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"
)

var primKeyPrefix = []byte("prim:")

type levelDBPrimStorage struct {
	db *leveldb.DB
}

// NewLevelDBStorage opens (or creates) a leveldb database at dir holding one
// gob encoded record per prim.
func NewLevelDBStorage(dir string) (PrimStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}
	db, err := leveldb.OpenFile(dir, nil)
	if err != nil {
		return nil, fmt.Errorf("open leveldb %s: %w", dir, err)
	}
	return &levelDBPrimStorage{db: db}, nil
}

func primKey(path string) []byte {
	key := make([]byte, 0, len(primKeyPrefix)+len(path))
	key = append(key, primKeyPrefix...)
	return append(key, path...)
}

func encodePrim(prim Prim) ([]byte, error) {
	var payload bytes.Buffer
	if err := gob.NewEncoder(&payload).Encode(prim); err != nil {
		return nil, fmt.Errorf("encode prim %s: %w", prim.Path, err)
	}
	return payload.Bytes(), nil
}

func decodePrim(data []byte) (Prim, error) {
	var prim Prim
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&prim); err != nil {
		return Prim{}, fmt.Errorf("decode prim: %w", err)
	}
	return prim, nil
}

func (s *levelDBPrimStorage) Load(path string) (Prim, bool, error) {
	data, err := s.db.Get(primKey(path), nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return Prim{}, false, nil
		}
		return Prim{}, false, fmt.Errorf("get prim %s: %w", path, err)
	}
	prim, err := decodePrim(data)
	if err != nil {
		return Prim{}, false, err
	}
	return prim, true, nil
}

func (s *levelDBPrimStorage) Save(prim Prim) error {
	payload, err := encodePrim(prim)
	if err != nil {
		return err
	}
	if err := s.db.Put(primKey(prim.Path), payload, nil); err != nil {
		return fmt.Errorf("put prim %s: %w", prim.Path, err)
	}
	return nil
}

func (s *levelDBPrimStorage) Delete(path string) error {
	if err := s.db.Delete(primKey(path), nil); err != nil {
		return fmt.Errorf("delete prim %s: %w", path, err)
	}
	return nil
}

// ForEach visits prims in key order.
func (s *levelDBPrimStorage) ForEach(fn func(prim Prim) bool) error {
	iter := s.db.NewIterator(util.BytesPrefix(primKeyPrefix), nil)
	defer iter.Release()
	for iter.Next() {
		prim, err := decodePrim(iter.Value())
		if err != nil {
			return fmt.Errorf("prim %s: %w", bytes.TrimPrefix(iter.Key(), primKeyPrefix), err)
		}
		if !fn(prim) {
			break
		}
	}
	return iter.Error()
}

func (s *levelDBPrimStorage) Close() error {
	return s.db.Close()
}
