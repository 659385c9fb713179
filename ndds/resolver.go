package ndds

import (
	"github.com/nvr-ai/go-cocokit/coco"
	"github.com/nvr-ai/go-cocokit/common"
	"github.com/nvr-ai/go-cocokit/images"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Resolved is the geometry of one instance part.
type Resolved struct {
	Segmentation common.Segmentation
	BBox         common.BoundingBox
	// Found is false when a segmentation part had no mask pixels and that was
	// tolerated. Such parts carry no geometry.
	Found bool
}

// Resolver turns instance parts into geometry for one frame.
type Resolver struct {
	Config Config
	// Width and Height are the frame size.
	Width  int
	Height int
}

// Resolve computes the geometry of one part.
//
// Segmentation parts are decoded from mask by their instance color. Box parts
// use the raw box clipped to the frame.
//
// Arguments:
//   - inst: The part to resolve.
//   - mask: The frame's instance mask. Unused for box parts and may be nil.
//
// Returns:
//   - The part geometry.
//   - ErrDataQuality when a visible, in-frame segmentation part has no pixels
//     and AllowUnfoundSeg is off; ErrInvalidInput for keypoint parts.
func (r *Resolver) Resolve(inst *ObjectInstance, mask images.Mask) (Resolved, error) {
	switch inst.Type {
	case TypeBBox:
		return Resolved{BBox: inst.Raw.BoundingBox.Box().Clip(r.Width, r.Height), Found: true}, nil
	case TypeSegmentation:
	default:
		return Resolved{}, errors.Wrapf(coco.ErrInvalidInput, "%q has no region geometry", inst.Raw.ClassName)
	}

	if mask == nil {
		return Resolved{}, errors.Errorf("%q: no instance mask", inst.Raw.ClassName)
	}
	seg, err := mask.Decode(images.InstanceColor(inst.Raw.InstanceID), r.Config.ColorInterval)
	if err != nil {
		return Resolved{}, errors.Wrapf(err, "decode %q", inst.Raw.ClassName)
	}
	if r.Config.ExcludeInvalidPolygons {
		seg = seg.ValidOnly()
	}

	if seg.IsEmpty() {
		outside := inst.Raw.BoundingBox.Box().OutsideFrame(r.Width, r.Height)
		if !r.Config.AllowUnfoundSeg && inst.Raw.Visibility != 0 && !outside {
			return Resolved{}, errors.Wrapf(coco.ErrDataQuality,
				"%q (instance id %d) is visible but has no mask pixels", inst.Raw.ClassName, inst.Raw.InstanceID)
		}
		logrus.WithFields(logrus.Fields{
			"object":   inst.Object,
			"instance": inst.Instance,
			"outside":  outside,
		}).Debug("skipping part without mask pixels")
		return Resolved{}, nil
	}

	return Resolved{Segmentation: seg, BBox: seg.Bounds(), Found: true}, nil
}

// UnionParts merges the found parts of one instance.
//
// When every part has a segmentation the polygons are collected and the box
// encloses them. When none has, the boxes are unioned. A mix of both is
// logged and handled as boxes only.
//
// Returns:
//   - The union, and false if no part was found.
func UnionParts(name string, parts []Resolved) (Resolved, bool) {
	var found []Resolved
	withSeg := 0
	for _, p := range parts {
		if !p.Found {
			continue
		}
		found = append(found, p)
		if !p.Segmentation.IsEmpty() {
			withSeg++
		}
	}
	if len(found) == 0 {
		return Resolved{}, false
	}

	if withSeg > 0 && withSeg < len(found) {
		logrus.WithFields(logrus.Fields{
			"instance":     name,
			"parts":        len(found),
			"segmentation": withSeg,
		}).Warn("mixed segmentation and box parts, using boxes only")
	}

	out := Resolved{BBox: found[0].BBox, Found: true}
	if withSeg == len(found) {
		for _, p := range found {
			out.Segmentation = out.Segmentation.Union(p.Segmentation)
		}
		out.BBox = out.Segmentation.Bounds()
		return out, true
	}
	for _, p := range found[1:] {
		out.BBox = out.BBox.Union(p.BBox)
	}
	return out, true
}
