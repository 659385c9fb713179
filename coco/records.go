// Package coco - Typed COCO records and the dataset that holds them.
package coco

import (
	"fmt"
	"slices"

	"github.com/nvr-ai/go-cocokit/common"
	"github.com/pkg/errors"
)

// Info is the free-form dataset header.
type Info struct {
	Description string `json:"description" yaml:"description"`
	URL         string `json:"url" yaml:"url"`
	Version     string `json:"version" yaml:"version"`
	Year        int    `json:"year" yaml:"year"`
	Contributor string `json:"contributor" yaml:"contributor"`
	DateCreated string `json:"date_created" yaml:"date_created"`
}

// License is a usage license referenced by images.
type License struct {
	URL  string `json:"url"`
	Name string `json:"name"`
	ID   int    `json:"id"`
}

// EntityID implements Identified.
func (l License) EntityID() int { return l.ID }

// Equal compares everything but the id.
func (l License) Equal(o License) bool {
	return l.URL == o.URL && l.Name == o.Name
}

// Image is one picture in the dataset. FileName is an opaque,
// dataset-relative reference resolved by the caller.
type Image struct {
	FileName     string `json:"file_name"`
	URL          string `json:"coco_url"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	DateCaptured string `json:"date_captured"`
	LicenseID    int    `json:"license"`
	ID           int    `json:"id"`
}

// EntityID implements Identified.
func (i Image) EntityID() int { return i.ID }

// Equal compares everything but the id and the license reference. License
// references are only comparable through a merge's identity mapper.
func (i Image) Equal(o Image) bool {
	return i.FileName == o.FileName &&
		i.URL == o.URL &&
		i.Width == o.Width &&
		i.Height == o.Height &&
		i.DateCaptured == o.DateCaptured
}

// Category is an object class. Keypoints is the canonical slot order for the
// keypoint vector of every annotation in the class. Skeleton pairs index
// Keypoints starting from 1, as in the COCO format.
type Category struct {
	Supercategory string   `json:"supercategory"`
	Name          string   `json:"name"`
	Keypoints     []string `json:"keypoints"`
	Skeleton      [][2]int `json:"skeleton"`
	ID            int      `json:"id"`
}

// EntityID implements Identified.
func (c Category) EntityID() int { return c.ID }

// Equal compares everything but the id.
func (c Category) Equal(o Category) bool {
	return c.Name == o.Name &&
		c.Supercategory == o.Supercategory &&
		slices.Equal(c.Keypoints, o.Keypoints) &&
		slices.Equal(c.Skeleton, o.Skeleton)
}

// KeypointIndex returns the slot of label, or -1.
func (c Category) KeypointIndex(label string) int {
	return slices.Index(c.Keypoints, label)
}

// Validate checks that every skeleton endpoint addresses a keypoint slot.
func (c Category) Validate() error {
	for _, pair := range c.Skeleton {
		for _, idx := range pair {
			if idx < 1 || idx > len(c.Keypoints) {
				return errors.Wrapf(ErrInvalidInput,
					"category %q: skeleton index %d outside 1..%d", c.Name, idx, len(c.Keypoints))
			}
		}
	}
	return nil
}

// Clone returns a copy that shares no slices with c.
func (c Category) Clone() Category {
	c.Keypoints = slices.Clone(c.Keypoints)
	c.Skeleton = slices.Clone(c.Skeleton)
	return c
}

// Annotation is one labeled region of an image.
type Annotation struct {
	ID           int
	ImageID      int
	CategoryID   int
	Segmentation common.Segmentation
	BBox         common.BoundingBox
	Area         float64
	Keypoints    []common.Keypoint
	NumKeypoints int
	IsCrowd      bool
}

// EntityID implements Identified.
func (a Annotation) EntityID() int { return a.ID }

func (a Annotation) String() string {
	return fmt.Sprintf("Annotation(id=%d, image=%d, category=%d, %s)", a.ID, a.ImageID, a.CategoryID, a.BBox)
}

// Clone returns a copy that shares no slices with a.
func (a Annotation) Clone() Annotation {
	if a.Segmentation != nil {
		seg := make(common.Segmentation, len(a.Segmentation))
		for i, p := range a.Segmentation {
			seg[i] = slices.Clone(p)
		}
		a.Segmentation = seg
	}
	a.Keypoints = slices.Clone(a.Keypoints)
	return a
}

// Translate moves the annotation into a frame whose origin sits at origin.
// The box follows the segmentation when there is one.
func (a Annotation) Translate(origin common.Point) Annotation {
	offset := origin.Neg()
	a = a.Clone()
	if !a.Segmentation.IsEmpty() {
		a.Segmentation = a.Segmentation.Translate(offset)
		a.BBox = a.Segmentation.Bounds()
	} else {
		a.BBox = a.BBox.Translate(offset)
	}
	for i, k := range a.Keypoints {
		a.Keypoints[i] = k.Translate(offset)
	}
	return a
}

// CountKeypoints returns the number of labeled keypoint slots.
func CountKeypoints(kpts []common.Keypoint) int {
	n := 0
	for _, k := range kpts {
		if k.Labeled() {
			n++
		}
	}
	return n
}
