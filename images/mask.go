// Package images - This file contains the instance mask decoding
// functionality using OpenCV (via gocv).
//
// An NDDS instance mask paints every pixel of an object with the color packed
// from its instance id. Decoding one instance is a short pipeline:
//
// ┌──────────────────────────┐
// │ Instance mask (BGR)      │
// └──────┬───────────────────┘
// ┌──────────────────────────────────────┐
// │ InRange (instance color ± tolerance) │
// └──────┬───────────────────────────────┘
// ┌──────────────────────────┐
// │ External contours        │
// └──────┬───────────────────┘
// ┌──────────────────────────┐
// │ Polygon set              │
// └──────────────────────────┘
//
// Usage:
//
//	mask, err := images.OpenInstanceMask("000042.is.png")
//	if err != nil {
//	    return err
//	}
//	defer mask.Close()
//
//	seg, err := mask.Decode(images.InstanceColor(obj.InstanceID), 1)
//
// Note: You must call Close() when finished to release native resources.
package images

import (
	"github.com/nvr-ai/go-cocokit/common"
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// Mask is a color-coded instance mask that can be decoded one color at a time.
type Mask interface {
	// Decode returns the outlines of every region painted in target (within
	// tolerance on each channel). An absent color yields an empty result.
	Decode(target BGR, tolerance int) (common.Segmentation, error)
	// Size returns the mask height and width in pixels.
	Size() (height, width int)
	// Close releases the mask.
	Close() error
}

// InstanceMask is a Mask backed by an OpenCV matrix.
type InstanceMask struct {
	mat gocv.Mat
}

// NewInstanceMask wraps a 3-channel BGR matrix. The mask takes ownership.
func NewInstanceMask(mat gocv.Mat) *InstanceMask {
	return &InstanceMask{mat: mat}
}

// OpenInstanceMask reads an instance mask image from disk.
//
// Arguments:
//   - path: Path to the mask image (usually the frame's .is.png).
//
// Returns:
//   - The mask, or an error if the file is missing or cannot be decoded.
func OpenInstanceMask(path string) (*InstanceMask, error) {
	mat := gocv.IMRead(path, gocv.IMReadColor)
	if mat.Empty() {
		mat.Close()
		return nil, errors.Errorf("failed to read instance mask %s", path)
	}
	return NewInstanceMask(mat), nil
}

// Size implements Mask.
func (m *InstanceMask) Size() (height, width int) {
	return m.mat.Rows(), m.mat.Cols()
}

// Decode implements Mask.
//
// Uses RetrievalExternal and ChainApproxSimple, so holes are not reported and
// straight runs collapse to their end points.
func (m *InstanceMask) Decode(target BGR, tolerance int) (common.Segmentation, error) {
	if m.mat.Empty() {
		return nil, errors.New("instance mask is empty")
	}
	if tolerance < 0 {
		return nil, errors.Errorf("negative color tolerance %d", tolerance)
	}

	lower, upper := target.Range(tolerance)
	binary := gocv.NewMat()
	defer binary.Close()
	gocv.InRangeWithScalar(m.mat, lower.scalar(), upper.scalar(), &binary)

	contours := gocv.FindContours(binary, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	seg := make(common.Segmentation, 0, contours.Size())
	for i := 0; i < contours.Size(); i++ {
		pts := contours.At(i).ToPoints()
		poly := make(common.Polygon, len(pts))
		for j, p := range pts {
			poly[j] = common.Point{X: float64(p.X), Y: float64(p.Y)}
		}
		seg = append(seg, poly)
	}
	return seg, nil
}

// Close implements Mask.
func (m *InstanceMask) Close() error {
	return m.mat.Close()
}
