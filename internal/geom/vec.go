package geom

import "math"

// Vec2 is a 2D point or displacement. All operations return new values.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// V2 is a convenience constructor.
func V2(x, y float64) Vec2 {
	return Vec2{X: x, Y: y}
}

func (v Vec2) Add(w Vec2) Vec2 {
	return Vec2{X: v.X + w.X, Y: v.Y + w.Y}
}

func (v Vec2) Sub(w Vec2) Vec2 {
	return Vec2{X: v.X - w.X, Y: v.Y - w.Y}
}

// Mul multiplies component-wise.
func (v Vec2) Mul(w Vec2) Vec2 {
	return Vec2{X: v.X * w.X, Y: v.Y * w.Y}
}

// Div divides component-wise.
func (v Vec2) Div(w Vec2) Vec2 {
	return Vec2{X: v.X / w.X, Y: v.Y / w.Y}
}

// Scale multiplies both components by s.
func (v Vec2) Scale(s float64) Vec2 {
	return Vec2{X: v.X * s, Y: v.Y * s}
}

func (v Vec2) Dot(w Vec2) float64 {
	return v.X*w.X + v.Y*w.Y
}

// Cross returns the z-component of the 3D cross product with z=0.
// Positive when w is counter-clockwise from v.
func (v Vec2) Cross(w Vec2) float64 {
	return v.X*w.Y - v.Y*w.X
}

func (v Vec2) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y)
}

// Normalize returns a unit vector in the same direction.
// The caller must ensure Length() != 0: a zero vector yields NaN components.
func (v Vec2) Normalize() Vec2 {
	l := v.Length()
	return Vec2{X: v.X / l, Y: v.Y / l}
}

func (v Vec2) DistanceTo(w Vec2) float64 {
	return w.Sub(v).Length()
}

// Equals reports exact component equality.
func (v Vec2) Equals(w Vec2) bool {
	return v.X == w.X && v.Y == w.Y
}

// Approx reports equality within eps on each axis.
func (v Vec2) Approx(w Vec2, eps float64) bool {
	return math.Abs(v.X-w.X) <= eps && math.Abs(v.Y-w.Y) <= eps
}

// Lerp moves t of the way from v to w.
func (v Vec2) Lerp(w Vec2, t float64) Vec2 {
	return Vec2{
		X: Interpolate(v.X, w.X, t),
		Y: Interpolate(v.Y, w.Y, t),
	}
}

// Rotate rotates v counter-clockwise by angle radians about the origin.
func (v Vec2) Rotate(angle float64) Vec2 {
	cos, sin := math.Cos(angle), math.Sin(angle)
	return Vec2{
		X: cos*v.X - sin*v.Y,
		Y: sin*v.X + cos*v.Y,
	}
}

// Midpoint returns the point halfway between v and w.
func (v Vec2) Midpoint(w Vec2) Vec2 {
	return Vec2{X: (v.X + w.X) / 2, Y: (v.Y + w.Y) / 2}
}

// FromAngle returns the unit vector at angle radians.
func FromAngle(angle float64) Vec2 {
	return Vec2{X: math.Cos(angle), Y: math.Sin(angle)}
}

// PolarAngle returns the angle of p1 as seen from p0.
func PolarAngle(p0, p1 Vec2) float64 {
	return math.Atan2(p1.Y-p0.Y, p1.X-p0.X)
}

// Interpolate returns a + (b-a)*t.
func Interpolate(a, b, t float64) float64 {
	return a + (b-a)*t
}
