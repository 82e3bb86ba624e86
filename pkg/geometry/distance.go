package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Segments shorter than this (squared) are treated as a single point.
const degenerateLength2 = 0.1

// touchTolerance is how close an endpoint may come to the other segment
// before the two segments count as intersecting.
const touchTolerance = 0.1

// DistancePointToSegment returns the shortest distance from p to the segment a-b.
func DistancePointToSegment(p, a, b Point2D) float64 {
	pv, av, bv := p.Vec(), a.Vec(), b.Vec()
	ab := r2.Sub(bv, av)
	l2 := r2.Norm2(ab)
	if l2 < degenerateLength2 {
		return r2.Norm(r2.Sub(pv, av))
	}

	t := r2.Dot(r2.Sub(pv, av), ab) / l2
	switch {
	case t < 0:
		return r2.Norm(r2.Sub(pv, av))
	case t > 1:
		return r2.Norm(r2.Sub(pv, bv))
	}
	proj := r2.Add(av, r2.Scale(t, ab))
	return r2.Norm(r2.Sub(pv, proj))
}

// ccw reports whether a, b, c make a counter-clockwise turn.
func ccw(a, b, c Point2D) bool {
	return r2.Cross(r2.Sub(b.Vec(), a.Vec()), r2.Sub(c.Vec(), a.Vec())) > 0
}

// SegmentsIntersect reports whether segments a0-a1 and b0-b1 cross or touch.
func SegmentsIntersect(a0, a1, b0, b1 Point2D) bool {
	if DistancePointToSegment(b0, a0, a1) < touchTolerance ||
		DistancePointToSegment(b1, a0, a1) < touchTolerance {
		return true
	}
	return ccw(a0, b0, b1) != ccw(a1, b0, b1) &&
		ccw(a0, a1, b0) != ccw(a0, a1, b1)
}

// DistanceSegmentToSegment returns the shortest distance between two segments,
// zero when they intersect.
func DistanceSegmentToSegment(a0, a1, b0, b1 Point2D) float64 {
	if SegmentsIntersect(a0, a1, b0, b1) {
		return 0
	}
	d := math.Min(DistancePointToSegment(b0, a0, a1), DistancePointToSegment(b1, a0, a1))
	d = math.Min(d, DistancePointToSegment(a0, b0, b1))
	return math.Min(d, DistancePointToSegment(a1, b0, b1))
}

// GenerateCirclePoints generates n evenly-spaced points around a circle.
func GenerateCirclePoints(centerX, centerY, radius float64, n int) []Point2D {
	points := make([]Point2D, n)
	for i := 0; i < n; i++ {
		angle := float64(i) * 2.0 * math.Pi / float64(n)
		points[i] = Point2D{
			X: centerX + radius*math.Cos(angle),
			Y: centerY + radius*math.Sin(angle),
		}
	}
	return points
}
