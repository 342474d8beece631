package terrain

import (
	"math/rand"
	"testing"
)

func TestFractalValueNoiseRangeAndDeterminism(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 500; i++ {
		x := rng.Float64()*200 - 100
		y := rng.Float64()*200 - 100
		a := fractalValueNoise(x, y, 7, 4, 0.1, 0.5, 2)
		b := fractalValueNoise(x, y, 7, 4, 0.1, 0.5, 2)
		if a != b {
			t.Fatalf("noise not stable at (%v, %v): %v vs %v", x, y, a, b)
		}
		if a < -1 || a > 1 {
			t.Fatalf("noise %v out of range at (%v, %v)", a, x, y)
		}
	}
}

func TestFractalValueNoiseZeroOctaves(t *testing.T) {
	if v := fractalValueNoise(1, 2, 3, 0, 0.1, 0.5, 2); v != 0 {
		t.Fatalf("expected 0 without octaves, got %v", v)
	}
}

func TestValueNoiseMatchesLatticeAtIntegers(t *testing.T) {
	for x := -3; x <= 3; x++ {
		for y := -3; y <= 3; y++ {
			if got, want := valueNoise(float64(x), float64(y), 5), random2D(x, y, 5); got != want {
				t.Fatalf("expected lattice value %v at (%d, %d), got %v", want, x, y, got)
			}
		}
	}
}

func TestValueNoiseSeedsDiffer(t *testing.T) {
	same := 0
	for i := 0; i < 50; i++ {
		x := float64(i) * 0.37
		if valueNoise(x, x, 1) == valueNoise(x, x, 2) {
			same++
		}
	}
	if same == 50 {
		t.Fatal("expected different seeds to produce different noise")
	}
}
