package stage

import (
	"testing"

	"github.com/jolfss/stagebuilder/internal/assets"
	"github.com/jolfss/stagebuilder/internal/config"
)

func TestBoundingBoxWeightingBuckets(t *testing.T) {
	w := DefaultWeighting()
	tests := []struct {
		area float64
		want float64
	}{
		{0.5, 3},
		{3, 3},
		{3.01, 3},
		{70, 3},
		{70.5, 1},
		{500, 1},
	}
	for _, tt := range tests {
		if got := w.Weight(&assets.Asset{Area: tt.area}); got != tt.want {
			t.Fatalf("area %v: expected weight %v, got %v", tt.area, tt.want, got)
		}
	}

	custom := BoundingBoxWeighting{SmallMaxArea: 1, MediumMaxArea: 10, Small: 5, Medium: 2}
	for area, want := range map[float64]float64{1: 5, 5: 2, 11: 1} {
		if got := custom.Weight(&assets.Asset{Area: area}); got != want {
			t.Fatalf("area %v: expected weight %v, got %v", area, want, got)
		}
	}
}

func TestWeightingFromConfigMatchesDefaults(t *testing.T) {
	if got := WeightingFromConfig(config.Default().Weighting); got != DefaultWeighting() {
		t.Fatalf("expected default config to map to %+v, got %+v", DefaultWeighting(), got)
	}
}
