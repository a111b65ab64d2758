package geo

import (
	"math"
	"testing"
)

func TestHaversineKM(t *testing.T) {
	t.Parallel()

	// Krasnodar to Krasnoyarsk, roughly 3800 km.
	d := HaversineKM(45.04, 38.97, 56.01, 92.87)
	if d < 3500 || d > 4100 {
		t.Fatalf("unexpected Krasnodar-Krasnoyarsk distance: %f km", d)
	}

	// Two points inside Sevastopol, a couple of kilometers.
	d = HaversineKM(44.60, 33.52, 44.58, 33.53)
	if d > 5 {
		t.Fatalf("expected short intra-city distance, got %f km", d)
	}

	if got := HaversineKM(51.5, 30.2, 51.5, 30.2); got != 0 {
		t.Fatalf("expected zero distance for identical points, got %f", got)
	}

	// Symmetry.
	a := HaversineKM(50.6, 36.58, 51.3, 37.84)
	b := HaversineKM(51.3, 37.84, 50.6, 36.58)
	if math.Abs(a-b) > 1e-9 {
		t.Fatalf("distance must be symmetric: %f vs %f", a, b)
	}
}
