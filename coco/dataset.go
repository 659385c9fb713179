package coco

import (
	"github.com/pkg/errors"
)

// Dataset is one COCO annotation file held in memory.
type Dataset struct {
	Info        Info
	Licenses    Collection[License]
	Images      Collection[Image]
	Categories  Collection[Category]
	Annotations Collection[Annotation]
}

// NewDataset returns an empty dataset with the given header.
func NewDataset(info Info) *Dataset {
	return &Dataset{Info: info}
}

// AppendLicense stores l under the next free id and returns the stored copy.
func (d *Dataset) AppendLicense(l License) License {
	l.ID = d.Licenses.Len()
	d.Licenses.items = append(d.Licenses.items, l)
	return l
}

// AppendImage stores img under the next free id and returns the stored copy.
func (d *Dataset) AppendImage(img Image) Image {
	img.ID = d.Images.Len()
	d.Images.items = append(d.Images.items, img)
	return img
}

// AppendCategory stores a copy of c under the next free id.
func (d *Dataset) AppendCategory(c Category) Category {
	c = c.Clone()
	c.ID = d.Categories.Len()
	d.Categories.items = append(d.Categories.items, c)
	return c
}

// AppendAnnotation stores a copy of a under the next free id.
func (d *Dataset) AppendAnnotation(a Annotation) Annotation {
	a = a.Clone()
	a.ID = d.Annotations.Len()
	d.Annotations.items = append(d.Annotations.items, a)
	return a
}

// ImageAnnotations returns the annotations of one image in dataset order.
func (d *Dataset) ImageAnnotations(imageID int) []Annotation {
	c := d.Annotations.Filter(func(a Annotation) bool { return a.ImageID == imageID })
	return c.All()
}

// Validate checks foreign-key closure: every image license, annotation image
// and annotation category must resolve, and every category skeleton must
// address its keypoints.
//
// Returns:
// - ErrIntegrity describing the first dangling reference.
func (d *Dataset) Validate() error {
	for _, img := range d.Images.All() {
		if !d.Licenses.Contains(img.LicenseID) {
			return errors.Wrapf(ErrIntegrity, "image %d references unknown license %d", img.ID, img.LicenseID)
		}
	}
	for _, c := range d.Categories.All() {
		if err := c.Validate(); err != nil {
			return errors.Wrapf(ErrIntegrity, "category %d: %v", c.ID, err)
		}
	}
	for _, a := range d.Annotations.All() {
		if !d.Images.Contains(a.ImageID) {
			return errors.Wrapf(ErrIntegrity, "annotation %d references unknown image %d", a.ID, a.ImageID)
		}
		if !d.Categories.Contains(a.CategoryID) {
			return errors.Wrapf(ErrIntegrity, "annotation %d references unknown category %d", a.ID, a.CategoryID)
		}
	}
	return nil
}

// Clone returns a deep copy.
func (d *Dataset) Clone() *Dataset {
	out := &Dataset{
		Info:     d.Info,
		Licenses: d.Licenses.Clone(),
		Images:   d.Images.Clone(),
	}
	for _, c := range d.Categories.All() {
		out.Categories.items = append(out.Categories.items, c.Clone())
	}
	for _, a := range d.Annotations.All() {
		out.Annotations.items = append(out.Annotations.items, a.Clone())
	}
	return out
}
