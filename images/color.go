package images

import "gocv.io/x/gocv"

// BGR is a pixel color in OpenCV channel order.
type BGR struct {
	B, G, R uint8
}

// InstanceColor returns the instance mask color of an instance id. The id is
// packed little-end first: blue holds bits 0-7, green 8-15 and red 16-23.
//
// Arguments:
// - id: The NDDS instance id.
//
// Returns:
// - The color every pixel of that instance carries in the mask.
//
// @example
// c := InstanceColor(0x010203) // BGR{B: 3, G: 2, R: 1}
func InstanceColor(id int) BGR {
	return BGR{
		B: uint8(id & 255),
		G: uint8((id >> 8) & 255),
		R: uint8((id >> 16) & 255),
	}
}

// Range returns the inclusive lower and upper bounds of colors within
// tolerance of c on every channel, clamped to 0..255.
func (c BGR) Range(tolerance int) (lower, upper BGR) {
	return BGR{
			B: shift(c.B, -tolerance),
			G: shift(c.G, -tolerance),
			R: shift(c.R, -tolerance),
		}, BGR{
			B: shift(c.B, tolerance),
			G: shift(c.G, tolerance),
			R: shift(c.R, tolerance),
		}
}

func (c BGR) scalar() gocv.Scalar {
	return gocv.NewScalar(float64(c.B), float64(c.G), float64(c.R), 0)
}

func shift(v uint8, by int) uint8 {
	n := int(v) + by
	if n < 0 {
		return 0
	}
	if n > 255 {
		return 255
	}
	return uint8(n)
}
