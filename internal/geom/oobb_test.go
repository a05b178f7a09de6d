package geom

import (
	"math"
	"math/rand"
	"testing"
)

func TestComputeForLineOrientation(t *testing.T) {
	tests := []struct {
		name   string
		p1, p2 Vec2
	}{
		{"horizontal", V2(0, 0), V2(100, 0)},
		{"vertical", V2(0, 0), V2(0, 50)},
		{"diagonal", V2(10, 10), V2(40, 50)},
		{"backwards", V2(100, 20), V2(-30, -10)},
		{"steep negative", V2(0, 0), V2(1, -200)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			box := ComputeForLine(tt.p1, tt.p2)
			want := math.Atan2(tt.p2.Y-tt.p1.Y, tt.p2.X-tt.p1.X)
			if math.Abs(box.Orientation-want) > 1e-12 {
				t.Errorf("orientation = %v, want %v", box.Orientation, want)
			}
			if !box.Center.Approx(tt.p1.Midpoint(tt.p2), 1e-12) {
				t.Errorf("center = %v", box.Center)
			}
			if math.Abs(box.HalfExtent.X-tt.p1.DistanceTo(tt.p2)/2) > 1e-9 {
				t.Errorf("half extent along line = %v", box.HalfExtent.X)
			}
			if box.HalfExtent.Y != LinePadding {
				t.Errorf("padding = %v, want %v", box.HalfExtent.Y, LinePadding)
			}
			if !box.Contains(box.Center) {
				t.Error("center not inside")
			}
			if !box.Contains(tt.p1) || !box.Contains(tt.p2) {
				t.Error("endpoints not inside")
			}
		})
	}
}

func TestComputeForLineCoincident(t *testing.T) {
	box := ComputeForLine(V2(5, 5), V2(5, 5))
	if math.IsNaN(box.Orientation) || box.Orientation != 0 {
		t.Errorf("orientation = %v, want 0", box.Orientation)
	}
	if box.HalfExtent.X != 0 {
		t.Errorf("half extent = %v", box.HalfExtent)
	}
}

func TestOOBBRotatedHitTest(t *testing.T) {
	// A 45° line from (0,0) to (100,100).
	box := ComputeForLine(V2(0, 0), V2(100, 100))

	tests := []struct {
		name   string
		p      Vec2
		inside bool
	}{
		{"on the line", V2(50, 50), true},
		{"just off the line", V2(60, 40), true},
		{"past the end along the line", V2(120, 120), false},
		{"axis-aligned corner of the aabb", V2(100, 0), false},
		{"perpendicular within padding", V2(50+20, 50-20), true},
		{"perpendicular past padding", V2(50+30, 50-30), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsPointInside(tt.p, box); got != tt.inside {
				t.Errorf("IsPointInside(%v) = %v, want %v", tt.p, got, tt.inside)
			}
		})
	}
}

func TestOOBBVerticesAgreeWithContains(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	const eps = 1e-6

	for range 100 {
		box := OOBB{
			Center:      V2(rng.Float64()*200-100, rng.Float64()*200-100),
			HalfExtent:  V2(1+rng.Float64()*50, 1+rng.Float64()*50),
			Orientation: rng.Float64()*4*math.Pi - 2*math.Pi,
		}

		if !box.Contains(box.Center) {
			t.Fatalf("center not inside %+v", box)
		}

		for _, v := range box.Vertices() {
			inset := v.Add(box.Center.Sub(v).Scale(eps))
			if !box.Contains(inset) {
				t.Fatalf("inset corner %v not inside %+v", inset, box)
			}
			outset := v.Add(v.Sub(box.Center).Scale(0.01))
			if box.Contains(outset) {
				t.Fatalf("outset corner %v inside %+v", outset, box)
			}
		}
	}
}

func TestOOBBVerticesArea(t *testing.T) {
	box := OOBB{Center: V2(3, 4), HalfExtent: V2(10, 2), Orientation: 0.7}
	v := box.Vertices()
	if len(v) != 4 {
		t.Fatalf("got %d vertices", len(v))
	}
	w := v[0].DistanceTo(v[1])
	h := v[1].DistanceTo(v[2])
	if math.Abs(w*h-box.Area()) > 1e-9 {
		t.Errorf("vertex area %v, want %v", w*h, box.Area())
	}
}

func TestComputeAxisAlignedRect(t *testing.T) {
	points := []Vec2{V2(0, 0), V2(10, 0), V2(10, 4), V2(0, 4), V2(5, 2)}
	box := Compute(points)

	if math.Abs(box.Area()-40) > 1e-9 {
		t.Errorf("area = %v, want 40", box.Area())
	}
	if !box.Center.Approx(V2(5, 2), 1e-9) {
		t.Errorf("center = %v, want (5,2)", box.Center)
	}
	for _, p := range points {
		if !box.Contains(p) {
			t.Errorf("point %v not inside", p)
		}
	}
}

func TestComputeRotatedRect(t *testing.T) {
	base := OOBB{Center: V2(20, -5), HalfExtent: V2(30, 8), Orientation: math.Pi / 6}
	points := base.Vertices()
	points = append(points, base.Center, base.Center.Add(V2(3, 1)))

	box := Compute(points)
	if math.Abs(box.Area()-base.Area()) > 1e-6 {
		t.Errorf("area = %v, want %v", box.Area(), base.Area())
	}
	if !box.Center.Approx(base.Center, 1e-6) {
		t.Errorf("center = %v, want %v", box.Center, base.Center)
	}
	for _, p := range points {
		shrunk := p.Add(box.Center.Sub(p).Scale(1e-6))
		if !box.Contains(shrunk) {
			t.Errorf("point %v not inside %+v", p, box)
		}
	}
}

func TestComputeContainsAllPoints(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	for range 30 {
		points := make([]Vec2, 12)
		for i := range points {
			points[i] = V2(rng.Float64()*100, rng.Float64()*60)
		}
		box := Compute(points)
		for _, p := range points {
			shrunk := p.Add(box.Center.Sub(p).Scale(1e-9))
			if !box.Contains(shrunk) {
				t.Fatalf("point %v outside computed box %+v", p, box)
			}
		}
		if box.Area() > RectFromPoints(points...).Width*RectFromPoints(points...).Height+1e-9 {
			t.Fatalf("oriented box larger than axis-aligned bounds")
		}
	}
}

func TestComputeDegenerate(t *testing.T) {
	if got := Compute(nil); got != (OOBB{}) {
		t.Errorf("Compute(nil) = %+v", got)
	}
	single := Compute([]Vec2{V2(3, 3)})
	if !single.Center.Equals(V2(3, 3)) || single.Area() != 0 {
		t.Errorf("single = %+v", single)
	}
	seg := Compute([]Vec2{V2(0, 0), V2(10, 0), V2(5, 0)})
	if seg.Area() != 0 || !seg.Center.Approx(V2(5, 0), 1e-9) {
		t.Errorf("segment = %+v", seg)
	}
}
