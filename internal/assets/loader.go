package assets

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Loader reports the ground footprint of the geometry at path once scaled.
type Loader interface {
	Load(path string, scale float64) (BoundingBox2D, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(path string, scale float64) (BoundingBox2D, error)

func (f LoaderFunc) Load(path string, scale float64) (BoundingBox2D, error) {
	return f(path, scale)
}

// Manifest describes asset geometry on disk. Bounds are in the asset's own
// units, before scaling.
type Manifest struct {
	Name   string         `json:"name" yaml:"name"`
	Up     string         `json:"up" yaml:"up"` // "z" (default) or "y"
	Bounds ManifestBounds `json:"bounds" yaml:"bounds"`
}

type ManifestBounds struct {
	Min [3]float64 `json:"min" yaml:"min"`
	Max [3]float64 `json:"max" yaml:"max"`
}

// FileLoader reads YAML or JSON manifests. Relative paths resolve against Dir.
type FileLoader struct {
	Dir string
}

func (l FileLoader) Load(path string, scale float64) (BoundingBox2D, error) {
	manifest, err := ReadManifest(l.resolve(path))
	if err != nil {
		return BoundingBox2D{}, err
	}
	return manifest.Footprint(scale)
}

func (l FileLoader) resolve(path string) string {
	if l.Dir == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(l.Dir, path)
}

func ReadManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("read manifest: %w", err)
	}

	var manifest Manifest
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &manifest)
	case ".json":
		err = json.Unmarshal(data, &manifest)
	default:
		return Manifest{}, fmt.Errorf("manifest %s: unsupported extension", path)
	}
	if err != nil {
		return Manifest{}, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	return manifest, nil
}

// Footprint projects the bounds onto the ground plane and scales them.
func (m Manifest) Footprint(scale float64) (BoundingBox2D, error) {
	depthAxis := 1
	switch strings.ToLower(m.Up) {
	case "", "z":
	case "y":
		depthAxis = 2
	default:
		return BoundingBox2D{}, fmt.Errorf("manifest %s: unknown up axis %q", m.Name, m.Up)
	}
	return BoundingBox2D{
		Min: [2]float64{m.Bounds.Min[0] * scale, m.Bounds.Min[depthAxis] * scale},
		Max: [2]float64{m.Bounds.Max[0] * scale, m.Bounds.Max[depthAxis] * scale},
	}, nil
}
