package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"sort"
	"time"

	"github.com/jolfss/stagebuilder/internal/assets"
	"github.com/jolfss/stagebuilder/internal/config"
	"github.com/jolfss/stagebuilder/internal/scene"
	"github.com/jolfss/stagebuilder/internal/stage"
	"github.com/jolfss/stagebuilder/internal/terrain"
)

// run builds one stage from cfg and writes the stage and optional preview.
func run(ctx context.Context, cfg *config.Config, assetsDir string) error {
	storage, err := scene.OpenStorage(cfg.Storage.Backend, cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("open prim storage: %w", err)
	}
	doc, err := scene.New(storage)
	if err != nil {
		storage.Close()
		return fmt.Errorf("create document: %w", err)
	}
	defer func() {
		if err := doc.Close(); err != nil {
			log.Printf("close document: %v", err)
		}
	}()

	catalog := assets.NewCatalog(assets.FileLoader{Dir: assetsDir})
	for i, asset := range cfg.Assets {
		applier, err := assetApplier(asset)
		if err != nil {
			return fmt.Errorf("assets[%d]: %w", i, err)
		}
		if _, err := catalog.Register(asset.Path, asset.Scale, applier); err != nil {
			return fmt.Errorf("assets[%d]: %w", i, err)
		}
	}

	oracle, err := newTerrain(cfg)
	if err != nil {
		return err
	}

	seed := cfg.Stage.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	log.Printf("building %gx%g stage with %s terrain, %d assets, seed %d",
		cfg.Stage.XDim, cfg.Stage.YDim, cfg.Terrain.Kind, catalog.Len(), seed)

	builder, err := stage.New(stage.Config{
		XDim:      cfg.Stage.XDim,
		YDim:      cfg.Stage.YDim,
		Terrain:   oracle,
		Catalog:   catalog,
		Rand:      rand.New(rand.NewSource(seed)),
		Weighting: stage.WeightingFromConfig(cfg.Weighting),
	})
	if err != nil {
		return fmt.Errorf("create stage builder: %w", err)
	}

	report, err := builder.BuildStage(ctx, doc, stage.BuildOptions{
		GlobalOffset: scene.Vec3(cfg.Stage.GlobalOffset),
		SpawnAssets:  cfg.Stage.SpawnAssets,
		Density:      cfg.Stage.Density,
	})
	if err != nil {
		return err
	}
	logReport(report)

	if cfg.Output.StagePath != "" {
		if err := stage.Save(doc, cfg.Output.StagePath); err != nil {
			return fmt.Errorf("save stage: %w", err)
		}
		log.Printf("saved stage %s (%d prims)", cfg.Output.StagePath, doc.Len())
	}
	if cfg.Output.PreviewPath != "" {
		if err := scene.SavePreview(doc, cfg.Output.PreviewPath, scene.PreviewOptions{PixelsPerUnit: cfg.Output.PreviewScale}); err != nil {
			return fmt.Errorf("save preview: %w", err)
		}
		log.Printf("saved preview %s", cfg.Output.PreviewPath)
	}
	return nil
}

func newTerrain(cfg *config.Config) (terrain.Oracle, error) {
	var applier scene.Applier = scene.DefaultGroundPhysics()
	if cfg.Terrain.Color != "" {
		colour, err := scene.ColorHex(cfg.Terrain.Color)
		if err != nil {
			return nil, fmt.Errorf("terrain.color: %w", err)
		}
		applier = scene.Chain(applier, colour)
	}

	switch cfg.Terrain.Kind {
	case config.TerrainFlat:
		return terrain.NewFlat(cfg.Terrain.BaseHeight, terrain.MeshOptions{
			Unit:    cfg.Terrain.Unit,
			Workers: cfg.Terrain.Workers,
			Applier: applier,
		}), nil
	case config.TerrainForestedRoads:
		t, err := terrain.NewForestedRoads(cfg.Terrain, cfg.Stage.XDim, cfg.Stage.YDim, applier)
		if err != nil {
			return nil, err
		}
		return t, nil
	default:
		return nil, fmt.Errorf("unknown terrain kind %q", cfg.Terrain.Kind)
	}
}

func assetApplier(asset config.AssetConfig) (scene.Applier, error) {
	var appliers []scene.Applier
	switch asset.PhysicsMaterial {
	case "", config.PhysicsNone:
	case config.PhysicsDefaultGround:
		appliers = append(appliers, scene.DefaultGroundPhysics())
	default:
		return nil, fmt.Errorf("unknown physics material %q", asset.PhysicsMaterial)
	}
	if asset.Color != "" {
		colour, err := scene.ColorHex(asset.Color)
		if err != nil {
			return nil, err
		}
		appliers = append(appliers, colour)
	}
	if len(appliers) == 0 {
		return nil, nil
	}
	return scene.Chain(appliers...), nil
}

func logReport(report stage.Report) {
	log.Printf("stage %s: %d iterations, %d placed, %d rejected, area %.2f of %.2f",
		report.Phase, report.Iterations, report.Placed, report.Rejected, report.TotalArea, report.TargetArea)
	paths := make([]string, 0, len(report.PerAsset))
	for path := range report.PerAsset {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	for _, path := range paths {
		log.Printf("  %s: %d", path, report.PerAsset[path])
	}
}
