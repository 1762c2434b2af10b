// Package physics provides distance and hit-test utilities.
package physics

import "math"

// Distance calculates the Euclidean distance between two points.
func Distance(x1, y1, x2, y2 float64) float64 {
	return math.Hypot(x2-x1, y2-y1)
}

// DistanceSquared calculates the squared distance between two points.
// Use this when comparing distances to avoid the sqrt cost.
func DistanceSquared(x1, y1, x2, y2 float64) float64 {
	dx := x2 - x1
	dy := y2 - y1
	return dx*dx + dy*dy
}

// WithinReach reports whether point (px, py) lies strictly closer than
// radius+tolerance to the circle centre (cx, cy). A point exactly on the
// boundary does not count.
func WithinReach(px, py, cx, cy, radius, tolerance float64) bool {
	return Distance(px, py, cx, cy) < radius+tolerance
}

// MirrorX reflects x across the vertical centre line of a field of the
// given width. It converts between camera and playfield coordinates in
// both directions.
func MirrorX(width, x float64) float64 {
	return width - x
}

// Midpoint returns the point halfway between (x1, y1) and (x2, y2).
func Midpoint(x1, y1, x2, y2 float64) (float64, float64) {
	return (x1 + x2) / 2, (y1 + y2) / 2
}
