package scene

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

type snapshot struct {
	ID    string `json:"id" yaml:"id"`
	Prims []Prim `json:"prims" yaml:"prims"`
}

type encoding int

const (
	encodingGob encoding = iota
	encodingJSON
	encodingYAML
)

// The extension only selects an encoding; unknown extensions (.usd, .usdc,
// .usdz, ...) are written as a gob snapshot and never rejected.
func encodingFor(path string) encoding {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return encodingJSON
	case ".yaml", ".yml":
		return encodingYAML
	default:
		return encodingGob
	}
}

// Save writes every prim of the document to path.
func (d *Document) Save(path string) error {
	if path == "" {
		return fmt.Errorf("%w: empty output path", ErrDocumentWrite)
	}
	prims, err := d.Prims()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDocumentWrite, err)
	}
	snap := snapshot{ID: d.id.String(), Prims: prims}

	var data []byte
	switch encodingFor(path) {
	case encodingJSON:
		data, err = json.MarshalIndent(&snap, "", "  ")
	case encodingYAML:
		data, err = yaml.Marshal(&snap)
	default:
		var buf bytes.Buffer
		err = gob.NewEncoder(&buf).Encode(&snap)
		data = buf.Bytes()
	}
	if err != nil {
		return fmt.Errorf("%w: encode stage: %v", ErrDocumentWrite, err)
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%w: create stage directory: %v", ErrDocumentWrite, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("%w: write stage: %v", ErrDocumentWrite, err)
	}
	return nil
}

// Open loads a stage written by Save into storage.
func Open(path string, storage PrimStorage) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read stage: %w", err)
	}

	var snap snapshot
	switch encodingFor(path) {
	case encodingJSON:
		err = json.Unmarshal(data, &snap)
	case encodingYAML:
		err = yaml.Unmarshal(data, &snap)
	default:
		err = gob.NewDecoder(bytes.NewReader(data)).Decode(&snap)
	}
	if err != nil {
		return nil, fmt.Errorf("parse stage: %w", err)
	}

	id, err := uuid.Parse(snap.ID)
	if err != nil {
		return nil, fmt.Errorf("parse stage id: %w", err)
	}
	for _, prim := range snap.Prims {
		if prim.Path == RootPath {
			if prim.Attributes == nil {
				prim.Attributes = map[string]string{}
			}
			prim.Attributes[attrDocumentID] = id.String()
		}
		if err := storage.Save(prim); err != nil {
			return nil, fmt.Errorf("%w: restore prim %s: %v", ErrDocumentWrite, prim.Path, err)
		}
	}
	return New(storage)
}
