// Package geometry provides basic geometric types used throughout the router.
package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Point2D represents a 2D point with floating-point coordinates.
type Point2D struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// NewPoint2D creates a new Point2D.
func NewPoint2D(x, y float64) Point2D {
	return Point2D{X: x, Y: y}
}

// Distance returns the Euclidean distance to another point.
func (p Point2D) Distance(other Point2D) float64 {
	return r2.Norm(r2.Sub(p.Vec(), other.Vec()))
}

// Add returns the sum of two points.
func (p Point2D) Add(other Point2D) Point2D {
	return Point2D{X: p.X + other.X, Y: p.Y + other.Y}
}

// Sub returns the difference of two points.
func (p Point2D) Sub(other Point2D) Point2D {
	return Point2D{X: p.X - other.X, Y: p.Y - other.Y}
}

// Vec converts the point to a gonum vector.
func (p Point2D) Vec() r2.Vec {
	return r2.Vec{X: p.X, Y: p.Y}
}

// Round snaps the point to the nearest routing grid position.
func (p Point2D) Round() PointInt {
	return PointInt{X: int(math.Round(p.X)), Y: int(math.Round(p.Y))}
}

// PointInt is a position on the integer routing grid.
type PointInt struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

// ToFloat converts to Point2D.
func (p PointInt) ToFloat() Point2D {
	return Point2D{X: float64(p.X), Y: float64(p.Y)}
}

// Add returns the component-wise sum.
func (p PointInt) Add(other PointInt) PointInt {
	return PointInt{X: p.X + other.X, Y: p.Y + other.Y}
}

// Sub returns the component-wise difference.
func (p PointInt) Sub(other PointInt) PointInt {
	return PointInt{X: p.X - other.X, Y: p.Y - other.Y}
}

// Size represents a 2D extent.
type Size struct {
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// Rect is an axis-aligned rectangle described by its center and extent,
// the way panel outlines and keep-in regions are specified.
type Rect struct {
	Center Point2D `json:"center" yaml:"center"`
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// NewRect creates a Rect from its center and extent.
func NewRect(cx, cy, width, height float64) Rect {
	return Rect{Center: Point2D{X: cx, Y: cy}, Width: width, Height: height}
}

// MinX returns the left edge.
func (r Rect) MinX() float64 { return r.Center.X - r.Width/2 }

// MaxX returns the right edge.
func (r Rect) MaxX() float64 { return r.Center.X + r.Width/2 }

// MinY returns the bottom edge.
func (r Rect) MinY() float64 { return r.Center.Y - r.Height/2 }

// MaxY returns the top edge.
func (r Rect) MaxY() float64 { return r.Center.Y + r.Height/2 }

// Contains reports whether p lies inside the rectangle. The minimum edges are
// inclusive and the maximum edges exclusive, so adjacent grid cells never
// both claim a shared boundary.
func (r Rect) Contains(p Point2D) bool {
	return p.X >= r.MinX() && p.X < r.MaxX() &&
		p.Y >= r.MinY() && p.Y < r.MaxY()
}

// ContainsInt is Contains for a grid position.
func (r Rect) ContainsInt(p PointInt) bool {
	return r.Contains(p.ToFloat())
}

// AffineTransform represents a 2x3 affine transformation matrix.
// [a b tx]
// [c d ty]
type AffineTransform struct {
	A, B, TX float64
	C, D, TY float64
}

// Identity returns the identity transform.
func Identity() AffineTransform {
	return AffineTransform{A: 1, D: 1}
}

// Translation returns a translation transform.
func Translation(tx, ty float64) AffineTransform {
	return AffineTransform{A: 1, D: 1, TX: tx, TY: ty}
}

// Rotation returns a rotation transform around the origin.
func Rotation(radians float64) AffineTransform {
	cos := math.Cos(radians)
	sin := math.Sin(radians)
	return AffineTransform{A: cos, B: -sin, C: sin, D: cos}
}

// RigidAbout returns the transform that rotates by theta about pivot and then
// translates by shift. This is how a die's measured placement error maps its
// nominal geometry into panel space.
func RigidAbout(shift Point2D, theta float64, pivot Point2D) AffineTransform {
	return Translation(pivot.X+shift.X, pivot.Y+shift.Y).
		Compose(Rotation(theta)).
		Compose(Translation(-pivot.X, -pivot.Y))
}

// Apply applies the transform to a point.
func (t AffineTransform) Apply(p Point2D) Point2D {
	return Point2D{
		X: t.A*p.X + t.B*p.Y + t.TX,
		Y: t.C*p.X + t.D*p.Y + t.TY,
	}
}

// Compose returns this transform composed with another (this * other).
func (t AffineTransform) Compose(other AffineTransform) AffineTransform {
	return AffineTransform{
		A:  t.A*other.A + t.B*other.C,
		B:  t.A*other.B + t.B*other.D,
		TX: t.A*other.TX + t.B*other.TY + t.TX,
		C:  t.C*other.A + t.D*other.C,
		D:  t.C*other.B + t.D*other.D,
		TY: t.C*other.TX + t.D*other.TY + t.TY,
	}
}

// IsIdentity reports whether the transform leaves every point in place.
func (t AffineTransform) IsIdentity() bool {
	return t == Identity()
}
