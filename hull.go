package facefilter

import (
	"image"
	"sort"
)

// convexHull returns the convex hull of the points in counter clockwise order
// (on a y-up plane), computed with the monotone chain algorithm.
// Collinear points on the hull edges are dropped.
func convexHull(points []image.Point) []image.Point {
	pts := make([]image.Point, len(points))
	copy(pts, points)

	sort.Slice(pts, func(i, j int) bool {
		if pts[i].X != pts[j].X {
			return pts[i].X < pts[j].X
		}
		return pts[i].Y < pts[j].Y
	})

	// Remove the duplicates.
	n := 0
	for i, p := range pts {
		if i == 0 || p != pts[n-1] {
			pts[n] = p
			n++
		}
	}
	pts = pts[:n]
	if len(pts) < 3 {
		return pts
	}

	hull := make([]image.Point, 0, 2*len(pts))
	// Lower hull
	for _, p := range pts {
		for len(hull) >= 2 && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	// Upper hull
	lower := len(hull) + 1
	for i := len(pts) - 2; i >= 0; i-- {
		p := pts[i]
		for len(hull) >= lower && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	return hull[:len(hull)-1]
}

// cross returns the z component of the cross product of the OA and OB vectors.
func cross(o, a, b image.Point) int {
	return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
}
