package geom

import "math"

// LinePadding is the perpendicular half extent given to a line's bounding box
// so that thin strokes have a clickable width.
const LinePadding = 40.01

// OOBB is an oriented bounding box: a rectangle of half size HalfExtent,
// rotated counter-clockwise by Orientation radians about Center.
// It is derived data, recomputed whenever the owning geometry changes.
type OOBB struct {
	Center      Vec2    `json:"center"`
	HalfExtent  Vec2    `json:"halfExtent"`
	Orientation float64 `json:"orientation"`
}

// Area returns the full area of the box.
func (b OOBB) Area() float64 {
	return 4 * b.HalfExtent.X * b.HalfExtent.Y
}

// Vertices returns the four corners in world space, starting at the local
// (-x, -y) corner and walking counter-clockwise in the box frame.
func (b OOBB) Vertices() []Vec2 {
	hx, hy := b.HalfExtent.X, b.HalfExtent.Y
	corners := []Vec2{
		{X: -hx, Y: -hy},
		{X: hx, Y: -hy},
		{X: hx, Y: hy},
		{X: -hx, Y: hy},
	}
	for i, c := range corners {
		corners[i] = b.toWorld(c)
	}
	return corners
}

// Contains reports whether p lies inside the box or on its boundary.
func (b OOBB) Contains(p Vec2) bool {
	local := b.toLocal(p)
	return math.Abs(local.X) <= b.HalfExtent.X && math.Abs(local.Y) <= b.HalfExtent.Y
}

// IsPointInside is Contains in free-function form.
func IsPointInside(p Vec2, b OOBB) bool {
	return b.Contains(p)
}

// toWorld applies R(θ) then translates by the center.
func (b OOBB) toWorld(local Vec2) Vec2 {
	return local.Rotate(b.Orientation).Add(b.Center)
}

// toLocal is the exact inverse of toWorld: translate, then R(-θ).
func (b OOBB) toLocal(world Vec2) Vec2 {
	return world.Sub(b.Center).Rotate(-b.Orientation)
}

// ComputeForLine is the O(1) box for a two-point shape: aligned with the
// segment, padded by LinePadding on either side. Coincident points give a
// zero-length box with orientation 0.
func ComputeForLine(p1, p2 Vec2) OOBB {
	d := p2.Sub(p1)
	orientation := 0.0
	if d.Length() != 0 {
		orientation = math.Atan2(d.Y, d.X)
	}

	return OOBB{
		Center:      p1.Midpoint(p2),
		HalfExtent:  Vec2{X: d.Length() / 2, Y: LinePadding},
		Orientation: orientation,
	}
}

// Compute returns the minimum-area box among those with one side flush with
// an edge of the convex hull of points. The first minimum in hull order wins.
// An empty input yields the zero box; coincident points yield a zero-size box
// at that point.
func Compute(points []Vec2) OOBB {
	if len(points) == 0 {
		return OOBB{}
	}

	hull := GrahamScan(points)

	best := OOBB{Center: points[0]}
	bestArea := math.Inf(1)

	for i := range hull {
		p1 := hull[i]
		p2 := hull[(i+1)%len(hull)]
		edge := p2.Sub(p1)
		if edge.Length() == 0 {
			continue
		}
		orientation := math.Atan2(edge.Y, edge.X)

		minX, maxX := math.Inf(1), math.Inf(-1)
		minY, maxY := math.Inf(1), math.Inf(-1)
		for _, p := range hull {
			r := p.Rotate(-orientation)
			minX = min(minX, r.X)
			maxX = max(maxX, r.X)
			minY = min(minY, r.Y)
			maxY = max(maxY, r.Y)
		}

		width := maxX - minX
		height := maxY - minY
		area := width * height
		if area < bestArea {
			bestArea = area
			localCenter := Vec2{X: (minX + maxX) / 2, Y: (minY + maxY) / 2}
			best = OOBB{
				Center:      localCenter.Rotate(orientation),
				HalfExtent:  Vec2{X: width / 2, Y: height / 2},
				Orientation: orientation,
			}
		}
	}

	return best
}
