package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	TerrainFlat          = "flat"
	TerrainForestedRoads = "forested_roads"

	StorageMemory  = "memory"
	StorageLevelDB = "leveldb"

	PhysicsNone          = "none"
	PhysicsDefaultGround = "default_ground"
)

// Config captures everything the stage builder CLI needs for one build.
type Config struct {
	Stage     StageConfig     `json:"stage" yaml:"stage"`
	Terrain   TerrainConfig   `json:"terrain" yaml:"terrain"`
	Weighting WeightingConfig `json:"weighting" yaml:"weighting"`
	Assets    []AssetConfig   `json:"assets" yaml:"assets"`
	Storage   StorageConfig   `json:"storage" yaml:"storage"`
	Output    OutputConfig    `json:"output" yaml:"output"`
}

type StageConfig struct {
	XDim         float64    `json:"xdim" yaml:"xdim"`
	YDim         float64    `json:"ydim" yaml:"ydim"`
	Density      float64    `json:"density" yaml:"density"` // footprint area per unit of terrain area
	GlobalOffset [3]float64 `json:"globalOffset" yaml:"global_offset"`
	SpawnAssets  bool       `json:"spawnAssets" yaml:"spawn_assets"`
	Seed         int64      `json:"seed" yaml:"seed"` // 0 seeds from the clock
}

type TerrainConfig struct {
	Kind            string  `json:"kind" yaml:"kind"`
	Unit            float64 `json:"unit" yaml:"unit"` // mesh grid spacing
	Amplitude       float64 `json:"amplitude" yaml:"amplitude"`
	Frequency       float64 `json:"frequency" yaml:"frequency"`
	Octaves         int     `json:"octaves" yaml:"octaves"`
	Persistence     float64 `json:"persistence" yaml:"persistence"`
	Lacunarity      float64 `json:"lacunarity" yaml:"lacunarity"`
	Seed            int64   `json:"seed" yaml:"seed"`
	BaseHeight      float64 `json:"baseHeight" yaml:"base_height"`
	SpawnRadius     float64 `json:"spawnRadius" yaml:"spawn_radius"` // clearing kept free of assets
	RoadMinWidth    float64 `json:"roadMinWidth" yaml:"road_min_width"`
	RoadMaxWidth    float64 `json:"roadMaxWidth" yaml:"road_max_width"`
	RoadCount       int     `json:"roadCount" yaml:"road_count"`
	BorderThreshold float64 `json:"borderThreshold" yaml:"border_threshold"`
	BorderHeight    float64 `json:"borderHeight" yaml:"border_height"`
	Color           string  `json:"color" yaml:"color"`
	Workers         int     `json:"workers" yaml:"workers"` // 0 picks from GOMAXPROCS
}

// WeightingConfig buckets assets by footprint area. Large assets weigh 1.
type WeightingConfig struct {
	SmallMaxArea  float64 `json:"smallMaxArea" yaml:"small_max_area"`
	MediumMaxArea float64 `json:"mediumMaxArea" yaml:"medium_max_area"`
	SmallWeight   float64 `json:"smallWeight" yaml:"small_weight"`
	MediumWeight  float64 `json:"mediumWeight" yaml:"medium_weight"`
}

type AssetConfig struct {
	Path            string  `json:"path" yaml:"path"`
	Scale           float64 `json:"scale" yaml:"scale"`
	Color           string  `json:"color,omitempty" yaml:"color,omitempty"`
	PhysicsMaterial string  `json:"physicsMaterial,omitempty" yaml:"physics_material,omitempty"`
}

type StorageConfig struct {
	Backend string `json:"backend" yaml:"backend"`
	Path    string `json:"path" yaml:"path"`
}

type OutputConfig struct {
	StagePath    string  `json:"stagePath" yaml:"stage_path"`
	PreviewPath  string  `json:"previewPath" yaml:"preview_path"`
	PreviewScale float64 `json:"previewScale" yaml:"preview_scale"`
}

// Load reads configuration from a JSON or YAML file if provided. An empty
// path returns defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := Decode(path, data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// Decode unmarshals data into cfg, choosing YAML for .yaml/.yml paths and
// JSON otherwise. Fields missing from data keep their value in cfg, except
// that a present assets list replaces the existing one entirely.
func Decode(path string, data []byte, cfg *Config) error {
	unmarshal := json.Unmarshal
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		unmarshal = yaml.Unmarshal
	}

	var keys map[string]any
	if err := unmarshal(data, &keys); err != nil {
		return err
	}

	defaults := cfg.Assets
	cfg.Assets = nil
	if err := unmarshal(data, cfg); err != nil {
		cfg.Assets = defaults
		return err
	}
	if _, ok := keys["assets"]; !ok {
		cfg.Assets = defaults
	}
	return nil
}

func Default() *Config {
	return &Config{
		Stage: StageConfig{
			XDim:         100,
			YDim:         100,
			Density:      0.3,
			GlobalOffset: [3]float64{0, 0, 0},
			SpawnAssets:  true,
			Seed:         0,
		},
		Terrain: TerrainConfig{
			Kind:            TerrainForestedRoads,
			Unit:            0.5,
			Amplitude:       1.5,
			Frequency:       0.04,
			Octaves:         4,
			Persistence:     0.45,
			Lacunarity:      2.0,
			Seed:            1337,
			BaseHeight:      0,
			SpawnRadius:     5.5,
			RoadMinWidth:    0.15,
			RoadMaxWidth:    1.5,
			RoadCount:       13,
			BorderThreshold: 10,
			BorderHeight:    4,
			Color:           "#312419",
			Workers:         0,
		},
		Weighting: WeightingConfig{
			SmallMaxArea:  3,
			MediumMaxArea: 70,
			SmallWeight:   3,
			MediumWeight:  3,
		},
		Assets: DefaultAssets(),
		Storage: StorageConfig{
			Backend: StorageMemory,
		},
		Output: OutputConfig{
			StagePath:    "stages/forest_demo_bordered_bowl.yaml",
			PreviewPath:  "",
			PreviewScale: 8,
		},
	}
}

func (c *Config) Validate() error {
	if !isFinite(c.Stage.XDim) || !isFinite(c.Stage.YDim) {
		return errors.New("stage dimensions must be finite")
	}
	if c.Stage.XDim <= 0 || c.Stage.YDim <= 0 {
		return errors.New("stage dimensions must be positive")
	}
	if !isFinite(c.Stage.Density) {
		return errors.New("stage.density must be finite")
	}
	if c.Stage.Density < 0 {
		return errors.New("stage.density cannot be negative")
	}
	switch c.Terrain.Kind {
	case TerrainFlat, TerrainForestedRoads:
	default:
		return fmt.Errorf("terrain.kind %q must be %s or %s", c.Terrain.Kind, TerrainFlat, TerrainForestedRoads)
	}
	if c.Terrain.Unit <= 0 {
		return errors.New("terrain.unit must be positive")
	}
	if c.Terrain.Workers < 0 {
		return errors.New("terrain.workers cannot be negative")
	}
	if c.Terrain.RoadCount < 0 {
		return errors.New("terrain.roadCount cannot be negative")
	}
	if c.Terrain.RoadMinWidth < 0 || c.Terrain.RoadMaxWidth < c.Terrain.RoadMinWidth {
		return errors.New("terrain road widths must satisfy 0 <= roadMinWidth <= roadMaxWidth")
	}
	if c.Terrain.SpawnRadius < 0 || c.Terrain.BorderThreshold < 0 {
		return errors.New("terrain spawn radius and border threshold cannot be negative")
	}
	if c.Weighting.SmallMaxArea < 0 || c.Weighting.MediumMaxArea < c.Weighting.SmallMaxArea {
		return errors.New("weighting thresholds must satisfy 0 <= smallMaxArea <= mediumMaxArea")
	}
	if c.Weighting.SmallWeight < 0 || c.Weighting.MediumWeight < 0 {
		return errors.New("weighting weights cannot be negative")
	}
	for i, asset := range c.Assets {
		if asset.Path == "" {
			return fmt.Errorf("assets[%d].path must be set", i)
		}
		if asset.Scale <= 0 {
			return fmt.Errorf("assets[%d].scale must be positive", i)
		}
		switch asset.PhysicsMaterial {
		case "", PhysicsNone, PhysicsDefaultGround:
		default:
			return fmt.Errorf("assets[%d].physicsMaterial %q is unknown", i, asset.PhysicsMaterial)
		}
	}
	if c.Stage.SpawnAssets && c.Stage.Density > 0 && len(c.Assets) == 0 {
		return errors.New("assets cannot be empty when spawning assets")
	}
	switch c.Storage.Backend {
	case "", StorageMemory:
	case StorageLevelDB:
		if c.Storage.Path == "" {
			return errors.New("storage.path must be set for the leveldb backend")
		}
	default:
		return fmt.Errorf("storage.backend %q must be %s or %s", c.Storage.Backend, StorageMemory, StorageLevelDB)
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
