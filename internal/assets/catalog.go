package assets

import (
	"errors"
	"fmt"
	"log"
	"math/rand"
	"path"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/jolfss/stagebuilder/internal/scene"
)

// AssetsPath is the parent of every instanced asset.
const AssetsPath = "/World/Assets"

// Catalog holds the assets available to a build. Register everything before
// sampling; Sample and Instantiate do not change the set of assets.
type Catalog struct {
	loader Loader

	mu     sync.RWMutex
	assets []*Asset
	index  map[string]int

	instances atomic.Uint64
}

func NewCatalog(loader Loader) *Catalog {
	if loader == nil {
		loader = FileLoader{}
	}
	return &Catalog{loader: loader, index: make(map[string]int)}
}

// Register loads the geometry at path and records its footprint at scale.
// Registering a path again replaces the earlier definition in place.
func (c *Catalog) Register(assetPath string, scale float64, onPlace scene.Applier) (*Asset, error) {
	if assetPath == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidAsset)
	}
	if !(scale > 0) {
		return nil, fmt.Errorf("%w: %s: scale %v must be positive", ErrInvalidAsset, assetPath, scale)
	}
	bounds, err := c.loader.Load(assetPath, scale)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidAsset, assetPath, err)
	}
	if !bounds.valid() {
		return nil, fmt.Errorf("%w: %s: footprint %gx%g has no extent", ErrInvalidAsset, assetPath, bounds.Width(), bounds.Depth())
	}

	asset := &Asset{
		Path:    assetPath,
		Area:    bounds.Area(),
		Scale:   scale,
		Bounds:  bounds,
		OnPlace: onPlace,
	}

	c.mu.Lock()
	if i, ok := c.index[assetPath]; ok {
		c.assets[i] = asset
	} else {
		c.index[assetPath] = len(c.assets)
		c.assets = append(c.assets, asset)
	}
	c.mu.Unlock()

	log.Printf("registered asset %s (scale %g, footprint %.3f)", assetPath, scale, asset.Area)
	return asset, nil
}

func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.assets)
}

// Assets returns the registered assets in registration order.
func (c *Catalog) Assets() []*Asset {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*Asset, len(c.assets))
	copy(out, c.assets)
	return out
}

func (c *Catalog) Lookup(assetPath string) (*Asset, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i, ok := c.index[assetPath]
	if !ok {
		return nil, false
	}
	return c.assets[i], true
}

// Sample draws an asset with probability proportional to weight(asset).
func (c *Catalog) Sample(rng *rand.Rand, weight func(*Asset) float64) (*Asset, error) {
	candidates := c.Assets()
	if len(candidates) == 0 {
		return nil, ErrEmptyCatalog
	}
	weights := make([]float64, len(candidates))
	for i, asset := range candidates {
		weights[i] = weight(asset)
	}
	return Choose(rng, candidates, weights)
}

// Instantiate adds one instance of asset to doc at the placement, then runs
// the asset's OnPlace callback on it.
func (c *Catalog) Instantiate(doc *scene.Document, asset *Asset, at Placement) (scene.Handle, error) {
	if doc == nil {
		return scene.Handle{}, fmt.Errorf("%w: document is nil", scene.ErrDocumentWrite)
	}
	if asset == nil {
		return scene.Handle{}, fmt.Errorf("%w: asset is nil", ErrInvalidAsset)
	}

	n := c.instances.Add(1)
	id := uuid.NewSHA1(doc.ID(), []byte(asset.Path+"#"+strconv.FormatUint(n, 10)))
	primPath := AssetsPath + "/" + instanceName(asset.Path) + "_" + strings.ReplaceAll(id.String(), "-", "")

	handle, err := doc.AddReference(primPath, asset.Path, scene.Transform{
		Translate: scene.Vec3{at.X, at.Y, at.Z},
		RotateXYZ: scene.Vec3{0, 0, at.Yaw},
		Scale:     asset.Scale,
	})
	if err != nil {
		return scene.Handle{}, fmt.Errorf("instantiate %s: %w", asset.Path, err)
	}
	if err := handle.SetAttribute(scene.AttrFootprint, strconv.FormatFloat(asset.Area, 'f', -1, 64)); err != nil {
		return scene.Handle{}, discard(doc, primPath, fmt.Errorf("instantiate %s: %w", asset.Path, err))
	}
	if asset.OnPlace != nil {
		if err := asset.OnPlace(handle); err != nil {
			return scene.Handle{}, discard(doc, primPath, fmt.Errorf("place %s: %w", asset.Path, err))
		}
	}
	return handle, nil
}

// discard removes a partially placed instance so a failed placement leaves
// no prim behind.
func discard(doc *scene.Document, primPath string, cause error) error {
	if err := doc.Remove(primPath); err != nil {
		return errors.Join(cause, err)
	}
	return cause
}

// instanceName is the asset file name reduced to characters valid in a prim name.
func instanceName(assetPath string) string {
	base := path.Base(strings.ReplaceAll(assetPath, "\\", "/"))
	if ext := path.Ext(base); ext != "" && ext != base {
		base = strings.TrimSuffix(base, ext)
	}
	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "asset"
	}
	return b.String()
}
