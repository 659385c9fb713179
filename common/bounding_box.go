// Package common - Geometry primitives shared by the dataset operations.
package common

import (
	"fmt"
	"image"
	"math"
)

// BoundingBox is an axis-aligned box with its top-left (X1, Y1) and
// bottom-right (X2, Y2) corners in image coordinates.
type BoundingBox struct {
	X1, Y1, X2, Y2 float64
}

// BoundingBoxFromXYWH builds a box from COCO's [x, y, width, height] layout.
func BoundingBoxFromXYWH(x, y, w, h float64) BoundingBox {
	return BoundingBox{X1: x, Y1: y, X2: x + w, Y2: y + h}
}

func (b BoundingBox) String() string {
	return fmt.Sprintf("BoundingBox(%g, %g, %g, %g)", b.X1, b.Y1, b.X2, b.Y2)
}

// XYWH returns the box in COCO's [x, y, width, height] layout.
func (b BoundingBox) XYWH() [4]float64 {
	return [4]float64{b.X1, b.Y1, b.Width(), b.Height()}
}

// Width of the box.
func (b BoundingBox) Width() float64 { return b.X2 - b.X1 }

// Height of the box.
func (b BoundingBox) Height() float64 { return b.Y2 - b.Y1 }

// Area returns the box area, or 0 for an inverted box.
func (b BoundingBox) Area() float64 {
	if b.X2 <= b.X1 || b.Y2 <= b.Y1 {
		return 0
	}
	return b.Width() * b.Height()
}

// IsZero reports whether every coordinate is zero.
func (b BoundingBox) IsZero() bool {
	return b == BoundingBox{}
}

// TopLeft returns the top-left corner, which is the origin of the local
// coordinate frame of anything cropped out of this box.
func (b BoundingBox) TopLeft() Point {
	return Point{X: b.X1, Y: b.Y1}
}

// ContainsPoint reports whether p lies inside the box. Edges count as inside.
func (b BoundingBox) ContainsPoint(p Point) bool {
	return p.X >= b.X1 && p.X <= b.X2 && p.Y >= b.Y1 && p.Y <= b.Y2
}

// Contains reports whether other lies entirely within b.
//
// Arguments:
// - other: The candidate inner box.
//
// Returns:
// - true when every edge of other is on or inside the edges of b.
//
// @example
// outer := BoundingBox{X1: 10, Y1: 10, X2: 110, Y2: 110}
// outer.Contains(BoundingBox{X1: 20, Y1: 20, X2: 40, Y2: 40}) // true
func (b BoundingBox) Contains(other BoundingBox) bool {
	return other.X1 >= b.X1 && other.Y1 >= b.Y1 && other.X2 <= b.X2 && other.Y2 <= b.Y2
}

// Union returns the smallest box enclosing both b and other.
func (b BoundingBox) Union(other BoundingBox) BoundingBox {
	return BoundingBox{
		X1: math.Min(b.X1, other.X1),
		Y1: math.Min(b.Y1, other.Y1),
		X2: math.Max(b.X2, other.X2),
		Y2: math.Max(b.Y2, other.Y2),
	}
}

// Translate shifts the box by offset.
func (b BoundingBox) Translate(offset Point) BoundingBox {
	return BoundingBox{
		X1: b.X1 + offset.X,
		Y1: b.Y1 + offset.Y,
		X2: b.X2 + offset.X,
		Y2: b.Y2 + offset.Y,
	}
}

// Clip clamps the box to a frame of the given size.
func (b BoundingBox) Clip(width, height int) BoundingBox {
	w, h := float64(width), float64(height)
	return BoundingBox{
		X1: clamp(b.X1, 0, w),
		Y1: clamp(b.Y1, 0, h),
		X2: clamp(b.X2, 0, w),
		Y2: clamp(b.Y2, 0, h),
	}
}

// OutsideFrame reports whether the box lies fully outside a frame of the
// given size. A box that only touches a frame edge is outside.
func (b BoundingBox) OutsideFrame(width, height int) bool {
	return b.X2 <= 0 || b.Y2 <= 0 || b.X1 >= float64(width) || b.Y1 >= float64(height)
}

// ToRect converts the bounding box to an image.Rectangle covering every pixel
// the box touches.
//
// Returns:
// - An image.Rectangle with canonicalized coordinates.
//
// @example
// box := BoundingBox{X1: 100.5, Y1: 100.5, X2: 200.5, Y2: 300.5}
// rect := box.ToRect() // (100,100)-(201,301)
func (b BoundingBox) ToRect() image.Rectangle {
	return image.Rect(
		int(math.Floor(b.X1)),
		int(math.Floor(b.Y1)),
		int(math.Ceil(b.X2)),
		int(math.Ceil(b.Y2)),
	).Canon()
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
