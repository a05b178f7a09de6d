package geom

import "sort"

// GrahamScan returns the convex hull of points in counter-clockwise order,
// starting at the lowest point (lowest x breaks ties). Fewer than three points
// are returned unchanged. Collinear points on hull edges are dropped, so an
// all-collinear input yields at most two vertices. points is not modified.
func GrahamScan(points []Vec2) []Vec2 {
	if len(points) < 3 {
		return points
	}

	pivotIdx := 0
	for i, p := range points {
		lowest := points[pivotIdx]
		if p.Y < lowest.Y || (p.Y == lowest.Y && p.X < lowest.X) {
			pivotIdx = i
		}
	}
	pivot := points[pivotIdx]

	rest := make([]Vec2, 0, len(points)-1)
	rest = append(rest, points[:pivotIdx]...)
	rest = append(rest, points[pivotIdx+1:]...)

	// Equal angles sort nearest first so the farther point replaces it.
	sort.SliceStable(rest, func(i, j int) bool {
		ai, aj := PolarAngle(pivot, rest[i]), PolarAngle(pivot, rest[j])
		if ai != aj {
			return ai < aj
		}
		return pivot.DistanceTo(rest[i]) < pivot.DistanceTo(rest[j])
	})

	hull := make([]Vec2, 0, len(points))
	hull = append(hull, pivot)
	for _, p := range rest {
		for len(hull) > 1 {
			top := hull[len(hull)-1]
			second := hull[len(hull)-2]
			if top.Sub(second).Cross(p.Sub(top)) > 0 {
				break
			}
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}

	return hull
}
