package common

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Polygon is a single closed outline. The closing edge from the last point
// back to the first is implicit.
type Polygon []Point

// PolygonFromFlat builds a polygon from COCO's flat [x1, y1, x2, y2, ...] list.
// A trailing odd coordinate is ignored.
func PolygonFromFlat(flat []float64) Polygon {
	p := make(Polygon, 0, len(flat)/2)
	for i := 0; i+1 < len(flat); i += 2 {
		p = append(p, Point{X: flat[i], Y: flat[i+1]})
	}
	return p
}

// Flat returns the COCO flat coordinate list.
func (p Polygon) Flat() []float64 {
	flat := make([]float64, 0, 2*len(p))
	for _, pt := range p {
		flat = append(flat, pt.X, pt.Y)
	}
	return flat
}

// Valid reports whether the polygon has at least three points.
func (p Polygon) Valid() bool {
	return len(p) >= 3
}

func (p Polygon) ring() orb.Ring {
	r := make(orb.Ring, len(p))
	for i, pt := range p {
		r[i] = orb.Point{pt.X, pt.Y}
	}
	return r
}

// ContainsPoint reports whether pt is inside the polygon. Points on the
// boundary are inside.
func (p Polygon) ContainsPoint(pt Point) bool {
	if !p.Valid() {
		return false
	}
	return planar.RingContains(p.ring(), orb.Point{pt.X, pt.Y})
}

// Area returns the enclosed area.
func (p Polygon) Area() float64 {
	if !p.Valid() {
		return 0
	}
	return math.Abs(planar.Area(p.ring()))
}

// Bounds returns the minimal enclosing box.
func (p Polygon) Bounds() BoundingBox {
	if len(p) == 0 {
		return BoundingBox{}
	}
	b := p.ring().Bound()
	return BoundingBox{X1: b.Min[0], Y1: b.Min[1], X2: b.Max[0], Y2: b.Max[1]}
}

// Translate shifts every point by offset.
func (p Polygon) Translate(offset Point) Polygon {
	out := make(Polygon, len(p))
	for i, pt := range p {
		out[i] = pt.Add(offset)
	}
	return out
}
