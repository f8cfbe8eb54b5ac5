// Package spatialmath defines the planar geometry used by the planner and the control laws.
package spatialmath

import (
	"math"

	"github.com/golang/geo/r2"
)

// Origin is the target point every maneuver ends at.
var Origin = r2.Point{}

// NewPoint returns the point (x, y).
func NewPoint(x, y float64) r2.Point {
	return r2.Point{X: x, Y: y}
}

// Distance returns the euclidean distance between two points.
func Distance(p1, p2 r2.Point) float64 {
	return p2.Sub(p1).Norm()
}

// PointAlmostEqual compares two points with the given tolerance on each axis.
func PointAlmostEqual(p1, p2 r2.Point, tol float64) bool {
	return math.Abs(p1.X-p2.X) <= tol && math.Abs(p1.Y-p2.Y) <= tol
}

// NormalizeAngle wraps an angle in radians into [-pi, pi].
func NormalizeAngle(rad float64) float64 {
	return math.Remainder(rad, 2*math.Pi)
}
