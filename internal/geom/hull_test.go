package geom

import (
	"math/rand"
	"testing"
)

// assertConvexHull checks that hull is CCW convex and contains every point.
func assertConvexHull(t *testing.T, hull, points []Vec2) {
	t.Helper()

	n := len(hull)
	for i := range n {
		a, b, c := hull[i], hull[(i+1)%n], hull[(i+2)%n]
		if b.Sub(a).Cross(c.Sub(b)) <= 0 {
			t.Fatalf("hull not strictly convex at %v -> %v -> %v", a, b, c)
		}
	}

	for _, p := range points {
		for i := range n {
			a, b := hull[i], hull[(i+1)%n]
			if b.Sub(a).Cross(p.Sub(a)) < -1e-9 {
				t.Fatalf("point %v outside hull edge %v -> %v", p, a, b)
			}
		}
	}
}

func TestGrahamScanSquare(t *testing.T) {
	points := []Vec2{
		V2(5, 5), V2(0, 0), V2(10, 10), V2(10, 0), V2(0, 10), V2(3, 7),
	}
	hull := GrahamScan(points)

	want := []Vec2{V2(0, 0), V2(10, 0), V2(10, 10), V2(0, 10)}
	if len(hull) != len(want) {
		t.Fatalf("hull = %v, want %v", hull, want)
	}
	for i := range want {
		if !hull[i].Equals(want[i]) {
			t.Errorf("hull[%d] = %v, want %v", i, hull[i], want[i])
		}
	}
}

func TestGrahamScanPivotTieBreak(t *testing.T) {
	hull := GrahamScan([]Vec2{V2(4, 0), V2(2, 3), V2(1, 0)})
	if !hull[0].Equals(V2(1, 0)) {
		t.Errorf("pivot = %v, want lowest-y then lowest-x (1,0)", hull[0])
	}
}

func TestGrahamScanDegenerate(t *testing.T) {
	tests := []struct {
		name    string
		points  []Vec2
		maxSize int
	}{
		{"empty", nil, 0},
		{"single", []Vec2{V2(1, 1)}, 1},
		{"pair", []Vec2{V2(1, 1), V2(2, 2)}, 2},
		{"collinear", []Vec2{V2(0, 0), V2(1, 1), V2(2, 2), V2(3, 3), V2(-1, -1)}, 2},
		{"duplicates", []Vec2{V2(1, 1), V2(1, 1), V2(1, 1)}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hull := GrahamScan(tt.points)
			if len(hull) > tt.maxSize {
				t.Errorf("hull size %d > %d: %v", len(hull), tt.maxSize, hull)
			}
		})
	}
}

func TestGrahamScanCollinearEdgePoints(t *testing.T) {
	points := []Vec2{V2(0, 0), V2(5, 0), V2(10, 0), V2(10, 10), V2(0, 10), V2(0, 5)}
	hull := GrahamScan(points)
	if len(hull) != 4 {
		t.Fatalf("hull = %v, want 4 corners", hull)
	}
	assertConvexHull(t, hull, points)
}

func TestGrahamScanRandom(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for trial := range 50 {
		points := make([]Vec2, 3+trial)
		for i := range points {
			points[i] = V2(rng.Float64()*200-100, rng.Float64()*200-100)
		}
		orig := append([]Vec2(nil), points...)

		hull := GrahamScan(points)
		assertConvexHull(t, hull, points)

		for i := range points {
			if !points[i].Equals(orig[i]) {
				t.Fatalf("input mutated at %d", i)
			}
		}
	}
}
