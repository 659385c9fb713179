package common

// Point is a 2D image coordinate.
type Point struct {
	X, Y float64
}

// Add returns p + o.
func (p Point) Add(o Point) Point {
	return Point{X: p.X + o.X, Y: p.Y + o.Y}
}

// Sub returns p - o.
func (p Point) Sub(o Point) Point {
	return Point{X: p.X - o.X, Y: p.Y - o.Y}
}

// Neg returns -p.
func (p Point) Neg() Point {
	return Point{X: -p.X, Y: -p.Y}
}

// Region is anything a keypoint can be bound to.
type Region interface {
	ContainsPoint(p Point) bool
}

// Visibility flags as defined by the COCO keypoint format.
const (
	// NotLabeled marks an empty keypoint slot.
	NotLabeled = 0
	// LabeledHidden marks a point that is labeled but occluded.
	LabeledHidden = 1
	// LabeledVisible marks a point that is labeled and visible.
	LabeledVisible = 2
)

// Keypoint is a point with a COCO visibility flag.
type Keypoint struct {
	Point
	Visibility int
}

// Labeled reports whether the slot carries a point.
func (k Keypoint) Labeled() bool {
	return k.Visibility > NotLabeled
}

// Translate shifts a labeled keypoint. Empty slots stay at the (0,0) sentinel.
func (k Keypoint) Translate(offset Point) Keypoint {
	if !k.Labeled() {
		return k
	}
	return Keypoint{Point: k.Point.Add(offset), Visibility: k.Visibility}
}
