package ndds

import (
	"path/filepath"

	"github.com/nvr-ai/go-cocokit/coco"
	"github.com/nvr-ai/go-cocokit/common"
	"github.com/nvr-ai/go-cocokit/images"
	"github.com/nvr-ai/go-cocokit/keypoints"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// MaskOpener opens the instance mask at path.
type MaskOpener func(path string) (images.Mask, error)

// ShapeReader returns the height and width of the image at path.
type ShapeReader func(path string) (height, width int, err error)

// Converter turns NDDS exports into COCO datasets.
type Converter struct {
	Config Config
	// OpenMask loads frame masks. Defaults to images.OpenInstanceMask.
	OpenMask MaskOpener
	// ImageShape sizes frames when the export has no camera settings.
	// Defaults to images.ImageShape.
	ImageShape ShapeReader
}

// NewConverter returns a converter that reads masks and images from disk.
func NewConverter(cfg Config) *Converter {
	return &Converter{
		Config: cfg,
		OpenMask: func(path string) (images.Mask, error) {
			return images.OpenInstanceMask(path)
		},
		ImageShape: images.ImageShape,
	}
}

// Convert builds a COCO dataset from an NDDS export.
//
// Every frame becomes one image under license. Instances are grouped by
// object and instance name; parts under the visibility threshold are dropped,
// the rest are unioned, and groups smaller than the area threshold are
// dropped. Contained keypoints are bound to their instance's region.
//
// Arguments:
//   - ds: The loaded export.
//   - categories: Output categories, matched to objects by name. Ids are reassigned.
//   - info: The output dataset info.
//   - license: The license of every output image.
//
// Returns:
//   - The converted dataset.
//   - ErrInvalidInput for an empty category list, an unknown object (unless
//     IgnoreUnknownObjects) or a bad class name; ErrIntegrity and
//     ErrDataQuality as raised by parsing, resolving and binding.
func (c *Converter) Convert(ds *Dataset, categories []coco.Category, info coco.Info, license coco.License) (*coco.Dataset, error) {
	if len(categories) == 0 {
		return nil, errors.Wrap(coco.ErrInvalidInput, "no categories given")
	}

	out := coco.NewDataset(info)
	lic := out.AppendLicense(license)
	for _, cat := range categories {
		if err := cat.Validate(); err != nil {
			return nil, err
		}
		out.AppendCategory(cat)
	}
	index := coco.NewCategoryIndex(out.Categories.All())

	for _, frame := range ds.Frames {
		if err := c.convertFrame(out, index, lic, ds.Settings, frame); err != nil {
			return nil, errors.Wrapf(err, "frame %s", frame.Files.Name)
		}
	}

	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Converter) convertFrame(
	out *coco.Dataset,
	index *coco.CategoryIndex,
	lic coco.License,
	settings Settings,
	frame Frame,
) error {
	handler, err := Parse(frame.Objects, c.Config.NamingRule, c.Config.Delimiter)
	if err != nil {
		return err
	}

	height, width := settings.Height, settings.Width
	if width <= 0 || height <= 0 {
		if height, width, err = c.ImageShape(frame.Files.ImagePath); err != nil {
			return err
		}
	}

	img := out.AppendImage(coco.Image{
		FileName:  filepath.Base(frame.Files.ImagePath),
		Width:     width,
		Height:    height,
		LicenseID: lic.ID,
	})
	log := logrus.WithFields(logrus.Fields{"frame": frame.Files.Name, "image_id": img.ID})

	var mask images.Mask
	defer func() {
		if mask != nil {
			_ = mask.Close()
		}
	}()
	if needsMask(handler) {
		if mask, err = c.OpenMask(frame.Files.MaskPath); err != nil {
			return err
		}
	}

	resolver := &Resolver{Config: c.Config, Width: width, Height: height}
	for _, obj := range handler.Objects {
		cat, err := index.ByName(obj.Name)
		if err != nil {
			if c.Config.IgnoreUnknownObjects {
				log.WithField("object", obj.Name).Debug("skipping object without category")
				continue
			}
			return err
		}

		for _, group := range obj.Groups {
			ann, ok, err := c.convertGroup(resolver, mask, obj.Name, group, cat)
			if err != nil {
				return errors.Wrapf(err, "object %q instance %q", obj.Name, group.Name)
			}
			if !ok {
				continue
			}
			ann.ImageID = img.ID
			ann.CategoryID = cat.ID
			out.AppendAnnotation(ann)
		}
	}

	log.WithField("annotations", out.Annotations.Len()).Debug("converted frame")
	return nil
}

func (c *Converter) convertGroup(
	resolver *Resolver,
	mask images.Mask,
	object string,
	group *InstanceGroup,
	cat coco.Category,
) (coco.Annotation, bool, error) {
	log := logrus.WithFields(logrus.Fields{"object": object, "instance": group.Name})

	threshold := c.Config.VisibilityThreshold(object)
	parts := make([]Resolved, 0, len(group.Parts))
	for _, part := range group.Parts {
		if part.Raw.Visibility < threshold {
			log.WithField("part", part.Token).Debug("part below visibility threshold")
			continue
		}
		r, err := resolver.Resolve(part, mask)
		if err != nil {
			return coco.Annotation{}, false, err
		}
		parts = append(parts, r)
	}

	union, ok := UnionParts(group.Name, parts)
	if !ok {
		return coco.Annotation{}, false, nil
	}
	if union.BBox.Area() < c.Config.BBoxAreaThreshold {
		log.WithField("area", union.BBox.Area()).Debug("instance below area threshold")
		return coco.Annotation{}, false, nil
	}

	ann := coco.Annotation{
		Segmentation: union.Segmentation,
		BBox:         union.BBox,
		Area:         union.BBox.Area(),
	}
	if !union.Segmentation.IsEmpty() {
		ann.Area = union.Segmentation.Area()
	}

	kpts, err := c.bindKeypoints(log, union, group, cat)
	if err != nil {
		return coco.Annotation{}, false, err
	}
	ann.Keypoints = kpts
	ann.NumKeypoints = coco.CountKeypoints(kpts)
	return ann, true, nil
}

func (c *Converter) bindKeypoints(
	log *logrus.Entry,
	union Resolved,
	group *InstanceGroup,
	cat coco.Category,
) ([]common.Keypoint, error) {
	pool := keypoints.NewPool()
	for _, inst := range group.Contained {
		if inst.Type != TypeKeypoint {
			log.WithField("contained", inst.Raw.ClassName).Warn("ignoring contained object that is not a keypoint")
			continue
		}
		pool.Add(inst.Contained, inst.Raw.Centroid())
	}
	if pool.Len() == 0 && len(cat.Keypoints) == 0 {
		return nil, nil
	}

	var container common.Region = union.BBox
	if !union.Segmentation.IsEmpty() {
		container = union.Segmentation
	}
	res, err := keypoints.Bind(container, cat, pool, true)
	if err != nil {
		return nil, err
	}

	if err := pool.EnsureEmpty(); err != nil {
		if c.Config.EnsureNoUnboundedKeypoints {
			return nil, err
		}
		log.WithError(err).Warn("keypoints outside their instance")
	}
	return res.Ordered(cat), nil
}

func needsMask(h *LabeledObjectHandler) bool {
	for _, obj := range h.Objects {
		for _, g := range obj.Groups {
			for _, p := range g.Parts {
				if p.Type == TypeSegmentation {
					return true
				}
			}
		}
	}
	return false
}
