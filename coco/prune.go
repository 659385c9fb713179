package coco

import (
	"slices"

	"github.com/pkg/errors"
)

// RemoveImages drops the given images together with their annotations.
// Licenses are left alone; call PruneLicenses afterwards to drop the ones
// nothing references any more.
//
// Returns:
// - The number of annotations removed with the images.
func (d *Dataset) RemoveImages(ids ...int) int {
	d.Images.RemoveIf(func(img Image) bool { return slices.Contains(ids, img.ID) })
	removed := d.Annotations.RemoveIf(func(a Annotation) bool { return slices.Contains(ids, a.ImageID) })
	return len(removed)
}

// RemoveCategories drops the given categories together with their
// annotations.
//
// Returns:
// - The number of annotations removed with the categories.
func (d *Dataset) RemoveCategories(ids ...int) int {
	d.Categories.RemoveIf(func(c Category) bool { return slices.Contains(ids, c.ID) })
	removed := d.Annotations.RemoveIf(func(a Annotation) bool { return slices.Contains(ids, a.CategoryID) })
	return len(removed)
}

// PruneImages drops images that have no annotation left.
//
// Returns:
// - The ids of the dropped images.
func (d *Dataset) PruneImages() []int {
	used := make(map[int]bool, d.Annotations.Len())
	for _, a := range d.Annotations.All() {
		used[a.ImageID] = true
	}
	removed := d.Images.RemoveIf(func(img Image) bool { return !used[img.ID] })
	return idsOf(removed)
}

// PruneLicenses drops a license only when no remaining image references it.
//
// Returns:
// - The ids of the dropped licenses.
func (d *Dataset) PruneLicenses() []int {
	used := make(map[int]bool, d.Images.Len())
	for _, img := range d.Images.All() {
		used[img.LicenseID] = true
	}
	removed := d.Licenses.RemoveIf(func(l License) bool { return !used[l.ID] })
	return idsOf(removed)
}

// FilterCategories keeps only the named categories and the annotations that
// belong to them. With pruneImages set, images left without annotations and
// licenses left without images are dropped as well.
//
// Arguments:
// - names: Category names to keep. Must be non-empty and all present.
// - pruneImages: Whether to cascade to images and licenses.
//
// Returns:
// - ErrInvalidInput if names is empty or names an unknown category.
func (d *Dataset) FilterCategories(names []string, pruneImages bool) error {
	if len(names) == 0 {
		return errors.Wrap(ErrInvalidInput, "no category names given")
	}
	index := NewCategoryIndex(d.Categories.All())
	for _, name := range names {
		if _, err := index.ByName(name); err != nil {
			return err
		}
	}

	var drop []int
	for _, c := range d.Categories.All() {
		if !slices.Contains(names, c.Name) {
			drop = append(drop, c.ID)
		}
	}
	d.RemoveCategories(drop...)

	if pruneImages {
		d.PruneImages()
		d.PruneLicenses()
	}
	return nil
}

func idsOf[T Identified](items []T) []int {
	ids := make([]int, len(items))
	for i, item := range items {
		ids[i] = item.EntityID()
	}
	return ids
}
