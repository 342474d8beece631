package scene

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

const (
	previewDefaultScale  = 8.0
	previewEmptySize     = 64
	previewMaxDimension  = 4096
	previewAmbientLight  = 0.2
	previewMarkerMinSize = 2

	// AttrFootprint records the footprint area of an instanced asset.
	AttrFootprint = "stagebuilder:footprintArea"
)

var (
	previewBackground   = color.NRGBA{R: 10, G: 10, B: 18, A: 255}
	previewTerrainColor = color.NRGBA{R: 96, G: 128, B: 72, A: 255}
	previewMarkerColor  = color.NRGBA{R: 214, G: 64, B: 48, A: 255}
)

type PreviewOptions struct {
	// PixelsPerUnit defaults to 8.
	PixelsPerUnit float64
}

type previewBounds struct {
	minX, maxX, minY, maxY, minZ, maxZ float64
	empty                              bool
}

func (b *previewBounds) include(p Vec3) {
	if b.empty {
		b.minX, b.maxX = p[0], p[0]
		b.minY, b.maxY = p[1], p[1]
		b.minZ, b.maxZ = p[2], p[2]
		b.empty = false
		return
	}
	b.minX = math.Min(b.minX, p[0])
	b.maxX = math.Max(b.maxX, p[0])
	b.minY = math.Min(b.minY, p[1])
	b.maxY = math.Max(b.maxY, p[1])
	b.minZ = math.Min(b.minZ, p[2])
	b.maxZ = math.Max(b.maxZ, p[2])
}

// SavePreview renders a top-down PNG of the terrain meshes, shaded by
// height, with one marker per instanced asset.
func SavePreview(doc *Document, path string, opts PreviewOptions) error {
	if doc == nil {
		return fmt.Errorf("document is nil")
	}
	scale := opts.PixelsPerUnit
	if scale <= 0 {
		scale = previewDefaultScale
	}

	prims, err := doc.Prims()
	if err != nil {
		return err
	}

	var meshes, instances []Prim
	bounds := previewBounds{empty: true}
	for _, prim := range prims {
		switch {
		case prim.Mesh != nil:
			meshes = append(meshes, prim)
			for _, p := range prim.Mesh.Points {
				bounds.include(p.Add(prim.Transform.Translate))
			}
		case prim.Reference != "":
			instances = append(instances, prim)
			bounds.include(prim.Transform.Translate)
		}
	}

	var img *image.NRGBA
	if bounds.empty {
		img = image.NewNRGBA(image.Rect(0, 0, previewEmptySize, previewEmptySize))
		draw.Draw(img, img.Bounds(), &image.Uniform{previewBackground}, image.Point{}, draw.Src)
		return writePreview(img, path)
	}

	width := int(math.Ceil((bounds.maxX-bounds.minX)*scale)) + 1
	height := int(math.Ceil((bounds.maxY-bounds.minY)*scale)) + 1
	if width > previewMaxDimension || height > previewMaxDimension {
		return fmt.Errorf("preview of %dx%d pixels exceeds %d; lower pixels per unit", width, height, previewMaxDimension)
	}
	img = image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{previewBackground}, image.Point{}, draw.Src)

	project := func(p Vec3) image.Point {
		return image.Point{
			X: int(math.Round((p[0] - bounds.minX) * scale)),
			Y: int(math.Round((bounds.maxY - p[1]) * scale)),
		}
	}

	zRange := bounds.maxZ - bounds.minZ
	for _, prim := range meshes {
		base := resolvePrimColor(prim, previewTerrainColor)
		mesh := prim.Mesh
		for i := 0; i+2 < len(mesh.Indices); i += 3 {
			a, b, c := mesh.Indices[i], mesh.Indices[i+1], mesh.Indices[i+2]
			if a >= len(mesh.Points) || b >= len(mesh.Points) || c >= len(mesh.Points) {
				continue
			}
			pa := mesh.Points[a].Add(prim.Transform.Translate)
			pb := mesh.Points[b].Add(prim.Transform.Translate)
			pc := mesh.Points[c].Add(prim.Transform.Translate)
			shade := 1.0
			if zRange > 0 {
				shade = ((pa[2]+pb[2]+pc[2])/3 - bounds.minZ) / zRange
			}
			col := applyLighting(base, previewAmbientLight+0.8*shade)
			fillPolygon(img, []image.Point{project(pa), project(pb), project(pc)}, col)
		}
	}

	sort.Slice(instances, func(i, j int) bool {
		return instances[i].Transform.Translate[2] < instances[j].Transform.Translate[2]
	})
	for _, prim := range instances {
		half := previewMarkerMinSize
		if area, err := strconv.ParseFloat(prim.Attributes[AttrFootprint], 64); err == nil && area > 0 {
			half = max(half, int(math.Sqrt(area)*scale/2))
		}
		center := project(prim.Transform.Translate)
		marker := []image.Point{
			{X: center.X - half, Y: center.Y - half},
			{X: center.X + half, Y: center.Y - half},
			{X: center.X + half, Y: center.Y + half},
			{X: center.X - half, Y: center.Y + half},
		}
		fillPolygon(img, marker, resolvePrimColor(prim, previewMarkerColor))
	}

	return writePreview(img, path)
}

func writePreview(img *image.NRGBA, path string) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create preview directory: %w", err)
		}
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create preview: %w", err)
	}
	defer file.Close()
	if err := png.Encode(file, img); err != nil {
		return fmt.Errorf("encode preview: %w", err)
	}
	return nil
}

func resolvePrimColor(prim Prim, fallback color.NRGBA) color.NRGBA {
	value, ok := prim.Attributes[AttrDisplayColor]
	if !ok {
		return fallback
	}
	var r, g, b float64
	if _, err := fmt.Sscanf(value, "(%g, %g, %g)", &r, &g, &b); err != nil {
		return fallback
	}
	return color.NRGBA{
		R: uint8(math.Round(clamp(r, 0, 1) * 255)),
		G: uint8(math.Round(clamp(g, 0, 1) * 255)),
		B: uint8(math.Round(clamp(b, 0, 1) * 255)),
		A: 255,
	}
}

func parseHexColor(value string) (color.NRGBA, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return color.NRGBA{}, false
	}
	trimmed = strings.TrimPrefix(trimmed, "#")
	if len(trimmed) != 6 {
		return color.NRGBA{}, false
	}
	r, ok := parseHexByte(trimmed[0:2])
	if !ok {
		return color.NRGBA{}, false
	}
	g, ok := parseHexByte(trimmed[2:4])
	if !ok {
		return color.NRGBA{}, false
	}
	b, ok := parseHexByte(trimmed[4:6])
	if !ok {
		return color.NRGBA{}, false
	}
	return color.NRGBA{R: r, G: g, B: b, A: 255}, true
}

func parseHexByte(value string) (uint8, bool) {
	if len(value) != 2 {
		return 0, false
	}
	v, err := strconv.ParseUint(value, 16, 8)
	if err != nil {
		return 0, false
	}
	return uint8(v), true
}

func applyLighting(base color.NRGBA, factor float64) color.NRGBA {
	factor = clamp(factor, 0, 1)
	r := uint8(math.Round(float64(base.R) * factor))
	g := uint8(math.Round(float64(base.G) * factor))
	b := uint8(math.Round(float64(base.B) * factor))
	return color.NRGBA{R: r, G: g, B: b, A: 255}
}

func clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

func fillPolygon(img *image.NRGBA, pts []image.Point, col color.NRGBA) {
	if len(pts) < 3 {
		return
	}
	minY := pts[0].Y
	maxY := pts[0].Y
	for _, p := range pts[1:] {
		minY = min(minY, p.Y)
		maxY = max(maxY, p.Y)
	}
	bounds := img.Bounds()
	if minY < bounds.Min.Y {
		minY = bounds.Min.Y
	}
	if maxY > bounds.Max.Y-1 {
		maxY = bounds.Max.Y - 1
	}
	tmp := make([]int, 0, len(pts))
	for y := minY; y <= maxY; y++ {
		tmp = tmp[:0]
		for i := range pts {
			j := (i + 1) % len(pts)
			x1, y1 := pts[i].X, pts[i].Y
			x2, y2 := pts[j].X, pts[j].Y
			if y1 == y2 {
				continue
			}
			if y < min(y1, y2) || y > max(y1, y2) {
				continue
			}
			x := x1 + (y-y1)*(x2-x1)/(y2-y1)
			tmp = append(tmp, x)
		}
		if len(tmp) < 2 {
			continue
		}
		sort.Ints(tmp)
		xStart, xEnd := tmp[0], tmp[len(tmp)-1]
		if xEnd < bounds.Min.X || xStart >= bounds.Max.X {
			continue
		}
		xStart = max(xStart, bounds.Min.X)
		xEnd = min(xEnd, bounds.Max.X-1)
		for x := xStart; x <= xEnd; x++ {
			idx := (y-bounds.Min.Y)*img.Stride + (x-bounds.Min.X)*4
			img.Pix[idx] = col.R
			img.Pix[idx+1] = col.G
			img.Pix[idx+2] = col.B
			img.Pix[idx+3] = col.A
		}
	}
}
