package merge

import (
	"github.com/nvr-ai/go-cocokit/coco"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Combine merges datasets into one.
//
// Licenses, images and categories that are structurally equal (ids aside) are
// stored once; the earliest copy wins. Annotations are always copied with a
// fresh id and their image and category references rewritten.
//
// Arguments:
//   - datasets: The sources, in merge order. The Info of the first is kept.
//
// Returns:
//   - The merged dataset.
//   - ErrInvalidInput if no datasets are given, ErrIntegrity if any reference
//     cannot be resolved. Nothing is returned on failure.
//
// Example:
//
// ```go
//
//	merged, err := merge.Combine([]*coco.Dataset{a, b})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// ```
func Combine(datasets []*coco.Dataset) (*coco.Dataset, error) {
	merged, _, err := CombineWithMapper(datasets)
	return merged, err
}

// CombineWithMapper is Combine that also returns the identity mapper, so
// callers can re-point references kept outside the datasets.
func CombineWithMapper(datasets []*coco.Dataset) (*coco.Dataset, *IdentityMapper, error) {
	if len(datasets) == 0 {
		return nil, nil, errors.Wrap(coco.ErrInvalidInput, "no datasets to combine")
	}

	result := coco.NewDataset(datasets[0].Info)
	mapper := NewIdentityMapper()

	for i, src := range datasets {
		if src == nil {
			return nil, nil, errors.Wrapf(coco.ErrInvalidInput, "dataset %d is nil", i)
		}
		// Images depend on the license mapping, annotations on the image and
		// category mappings.
		if err := mergeLicenses(result, mapper, i, src); err != nil {
			return nil, nil, err
		}
		if err := mergeImages(result, mapper, i, src); err != nil {
			return nil, nil, err
		}
		if err := mergeCategories(result, mapper, i, src); err != nil {
			return nil, nil, err
		}
		if err := mergeAnnotations(result, mapper, i, src); err != nil {
			return nil, nil, err
		}

		logrus.WithFields(logrus.Fields{
			"dataset":     i,
			"licenses":    result.Licenses.Len(),
			"images":      result.Images.Len(),
			"categories":  result.Categories.Len(),
			"annotations": result.Annotations.Len(),
		}).Debug("merged dataset")
	}

	if err := result.Validate(); err != nil {
		return nil, nil, errors.Wrap(err, "merged dataset")
	}
	return result, mapper, nil
}

func mergeLicenses(result *coco.Dataset, mapper *IdentityMapper, i int, src *coco.Dataset) error {
	for _, l := range src.Licenses.All() {
		var newID int
		if found, ok := result.Licenses.Find(l.Equal); ok {
			newID = found.ID
		} else {
			newID = result.AppendLicense(l).ID
		}
		if err := mapper.Add(KindLicense, i, l.ID, newID); err != nil {
			return err
		}
	}
	return nil
}

func mergeImages(result *coco.Dataset, mapper *IdentityMapper, i int, src *coco.Dataset) error {
	for _, img := range src.Images.All() {
		licenseID, err := mapper.Resolve(KindLicense, i, img.LicenseID)
		if err != nil {
			return errors.Wrapf(err, "image %d of dataset %d", img.ID, i)
		}

		// Equal images are only the same image when their licenses also map
		// to the same merged license.
		found, ok := result.Images.Find(func(o coco.Image) bool {
			return o.Equal(img) && o.LicenseID == licenseID
		})
		newID := found.ID
		if !ok {
			img.LicenseID = licenseID
			newID = result.AppendImage(img).ID
		}
		if err := mapper.Add(KindImage, i, img.ID, newID); err != nil {
			return err
		}
	}
	return nil
}

func mergeCategories(result *coco.Dataset, mapper *IdentityMapper, i int, src *coco.Dataset) error {
	for _, c := range src.Categories.All() {
		var newID int
		if found, ok := result.Categories.Find(c.Equal); ok {
			newID = found.ID
		} else {
			newID = result.AppendCategory(c).ID
		}
		if err := mapper.Add(KindCategory, i, c.ID, newID); err != nil {
			return err
		}
	}
	return nil
}

func mergeAnnotations(result *coco.Dataset, mapper *IdentityMapper, i int, src *coco.Dataset) error {
	for _, a := range src.Annotations.All() {
		imageID, err := mapper.Resolve(KindImage, i, a.ImageID)
		if err != nil {
			return errors.Wrapf(err, "annotation %d of dataset %d", a.ID, i)
		}
		categoryID, err := mapper.Resolve(KindCategory, i, a.CategoryID)
		if err != nil {
			return errors.Wrapf(err, "annotation %d of dataset %d", a.ID, i)
		}
		a.ImageID = imageID
		a.CategoryID = categoryID
		result.AppendAnnotation(a)
	}
	return nil
}
