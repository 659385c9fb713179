package measure

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nvr-ai/go-cocokit/coco"
	"github.com/nvr-ai/go-cocokit/common"
	"github.com/nvr-ai/go-cocokit/images"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Result holds the three derived datasets.
type Result struct {
	// Measure holds the source images with their measure annotations.
	Measure *coco.Dataset
	// WholeNumber holds one image per measure with whole number annotations
	// in measure-local coordinates.
	WholeNumber *coco.Dataset
	// Digit holds one image per whole number with digit annotations in
	// whole-number-local coordinates.
	Digit *coco.Dataset
}

// Splitter derives the measure hierarchy of a dataset.
type Splitter struct {
	Options Options
	Store   ImageStore
}

// NewSplitter returns a splitter that crops image files on disk.
func NewSplitter(opts Options) *Splitter {
	return &Splitter{Options: opts, Store: FileStore{}}
}

// region is a source annotation with its category.
type region struct {
	ann  coco.Annotation
	cat  coco.Category
	name string
}

// Split derives the measure, whole number and digit datasets.
//
// Every measure of an image is cropped into a whole number image. Regions
// whose box lies inside the measure box are re-expressed relative to the
// pixel corner the measure crop starts at. Plain regions become one whole number each; part
// regions named "{whole}{separator}{digit}" are grouped by whole and unioned.
// Every whole number is cropped again into a digit image holding its digits.
//
// Arguments:
//   - src: The annotated source dataset.
//
// Returns:
//   - The three datasets, each with its own id spaces.
//   - ErrDataQuality for an image without measures (unless AllowNoMeasures)
//     or a single-member part group (unless AllowMissingParts); ErrIntegrity
//     for dangling references; crop errors from the store.
//
// Example:
//
// ```go
//
//	res, err := measure.NewSplitter(opts).Split(ds)
//	if err != nil {
//	    return err
//	}
//	res.Digit.Save("digits.json")
//
// ```
func (s *Splitter) Split(src *coco.Dataset) (*Result, error) {
	if s.Options.MeasureCategory == "" || s.Options.PartSeparator == "" {
		return nil, errors.Wrap(coco.ErrInvalidInput, "measure category and part separator are required")
	}

	res := &Result{
		Measure:     coco.NewDataset(src.Info),
		WholeNumber: coco.NewDataset(src.Info),
		Digit:       coco.NewDataset(src.Info),
	}

	for _, img := range src.Images.All() {
		if err := s.splitImage(res, src, img); err != nil {
			return nil, errors.Wrapf(err, "image %d (%s)", img.ID, img.FileName)
		}
	}

	if err := res.Measure.Validate(); err != nil {
		return nil, errors.Wrap(err, "measure dataset")
	}
	if err := res.WholeNumber.Validate(); err != nil {
		return nil, errors.Wrap(err, "whole number dataset")
	}
	if err := res.Digit.Validate(); err != nil {
		return nil, errors.Wrap(err, "digit dataset")
	}
	return res, nil
}

func (s *Splitter) splitImage(res *Result, src *coco.Dataset, img coco.Image) error {
	log := logrus.WithFields(logrus.Fields{"image_id": img.ID, "file": img.FileName})

	lic, ok := src.Licenses.Get(img.LicenseID)
	if !ok {
		return errors.Wrapf(coco.ErrIntegrity, "unknown license %d", img.LicenseID)
	}

	var measures, others []region
	for _, a := range src.ImageAnnotations(img.ID) {
		cat, ok := src.Categories.Get(a.CategoryID)
		if !ok {
			return errors.Wrapf(coco.ErrIntegrity, "annotation %d: unknown category %d", a.ID, a.CategoryID)
		}
		r := region{ann: a, cat: cat, name: cat.Name}
		if cat.Name == s.Options.MeasureCategory {
			measures = append(measures, r)
		} else {
			others = append(others, r)
		}
	}

	if len(measures) == 0 {
		if !s.Options.AllowNoMeasures {
			return errors.Wrap(coco.ErrDataQuality, "no measure region")
		}
		log.Warn("skipping image without measure")
		return nil
	}

	measureCat, _ := src.Categories.Get(measures[0].ann.CategoryID)
	mImg := addImage(res.Measure, lic, img)
	mCat := addCategory(res.Measure, measureCat)
	for _, m := range measures {
		a := m.ann.Clone()
		a.ImageID = mImg.ID
		a.CategoryID = mCat.ID
		res.Measure.AppendAnnotation(a)
	}

	claimed := make([]bool, len(others))
	for k, m := range measures {
		var inside []region
		for i, o := range others {
			if !claimed[i] && m.ann.BBox.Contains(o.ann.BBox) {
				claimed[i] = true
				inside = append(inside, o)
			}
		}
		if err := s.splitMeasure(res, lic, img, k, m, inside); err != nil {
			return errors.Wrapf(err, "measure %d", m.ann.ID)
		}
	}

	for i, o := range others {
		if !claimed[i] {
			log.WithFields(logrus.Fields{"annotation": o.ann.ID, "category": o.name}).
				Warn("region outside every measure")
		}
	}
	return nil
}

func (s *Splitter) splitMeasure(res *Result, lic coco.License, img coco.Image, k int, m region, inside []region) error {
	stem := strings.TrimSuffix(img.FileName, filepath.Ext(img.FileName))
	ext := images.FormatFromPath(img.FileName).Extension()

	wnFile := fmt.Sprintf("%s_%d%s", stem, k, ext)
	wnPath := filepath.Join(s.Options.WholeNumberDir, wnFile)
	wnImg, origin, err := s.crop(res.WholeNumber, lic, filepath.Join(s.Options.ImageDir, img.FileName), m.ann.BBox, wnPath, wnFile)
	if err != nil {
		return err
	}

	singles, groups, order := s.partition(inside)
	wholes := make([]wholeNumber, 0, len(singles)+len(order))
	for _, r := range singles {
		wholes = append(wholes, wholeNumber{ann: r.ann, cat: r.cat, digits: []region{r}})
	}
	for _, whole := range order {
		members := groups[whole]
		if len(members) == 1 {
			if !s.Options.AllowMissingParts {
				return errors.Wrapf(coco.ErrDataQuality, "whole number %q has a single part", whole)
			}
			logrus.WithFields(logrus.Fields{"whole": whole, "annotation": members[0].ann.ID}).
				Warn("skipping whole number with a single part")
			continue
		}
		super := members[0].cat.Supercategory
		digits := make([]region, len(members))
		for i, p := range members {
			digits[i] = region{ann: p.ann, cat: coco.Category{Supercategory: super, Name: p.digit}, name: p.digit}
		}
		wholes = append(wholes, wholeNumber{
			ann:    unionRegions(members),
			cat:    coco.Category{Supercategory: super, Name: whole},
			digits: digits,
		})
	}

	for j, w := range wholes {
		wnAnn := w.ann.Translate(origin)
		wnAnn.ImageID = wnImg.ID
		wnAnn.CategoryID = addCategory(res.WholeNumber, w.cat).ID
		res.WholeNumber.AppendAnnotation(wnAnn)

		digitFile := fmt.Sprintf("%s_%d_%d%s", stem, k, j, ext)
		digitImg, wnOrigin, err := s.crop(res.Digit, lic, wnPath, wnAnn.BBox, filepath.Join(s.Options.DigitDir, digitFile), digitFile)
		if err != nil {
			return err
		}
		for _, d := range w.digits {
			digitAnn := d.ann.Translate(origin).Translate(wnOrigin)
			digitAnn.ImageID = digitImg.ID
			digitAnn.CategoryID = addCategory(res.Digit, d.cat).ID
			res.Digit.AppendAnnotation(digitAnn)
		}
	}
	return nil
}

type wholeNumber struct {
	ann    coco.Annotation
	cat    coco.Category
	digits []region
}

type partRegion struct {
	region
	digit string
}

// partition splits regions into plain ones and part groups keyed by whole
// number, returning the group keys in order of first appearance.
func (s *Splitter) partition(regions []region) ([]region, map[string][]partRegion, []string) {
	var singles []region
	groups := make(map[string][]partRegion)
	var order []string
	for _, r := range regions {
		whole, digit, ok := s.splitPartName(r.name)
		if !ok {
			singles = append(singles, r)
			continue
		}
		if _, seen := groups[whole]; !seen {
			order = append(order, whole)
		}
		groups[whole] = append(groups[whole], partRegion{region: r, digit: digit})
	}
	return singles, groups, order
}

// splitPartName splits "{whole}{separator}{digit}" where digit is a number.
// The last separator counts, so whole may contain the separator itself.
func (s *Splitter) splitPartName(name string) (whole, digit string, ok bool) {
	i := strings.LastIndex(name, s.Options.PartSeparator)
	if i <= 0 {
		return "", "", false
	}
	whole, digit = name[:i], name[i+len(s.Options.PartSeparator):]
	if _, err := strconv.Atoi(digit); err != nil {
		return "", "", false
	}
	return whole, digit, true
}

// unionRegions joins part regions into one annotation in source coordinates.
// Segmentations are joined when every part has one, boxes otherwise.
func unionRegions(parts []partRegion) coco.Annotation {
	allSeg := true
	for _, p := range parts {
		if p.ann.Segmentation.IsEmpty() {
			allSeg = false
			break
		}
	}

	out := coco.Annotation{BBox: parts[0].ann.BBox}
	if allSeg {
		var seg common.Segmentation
		for _, p := range parts {
			seg = seg.Union(p.ann.Segmentation)
		}
		out.Segmentation = seg
		out.BBox = seg.Bounds()
		out.Area = seg.Area()
		return out
	}
	for _, p := range parts[1:] {
		out.BBox = out.BBox.Union(p.ann.BBox)
	}
	out.Area = out.BBox.Area()
	return out
}

// crop cuts box out of srcPath into dstPath and registers the result as an
// image of ds. The returned origin is the pixel corner the crop starts at,
// which is the box's top-left rounded down.
func (s *Splitter) crop(
	ds *coco.Dataset,
	lic coco.License,
	srcPath string,
	box common.BoundingBox,
	dstPath, fileName string,
) (coco.Image, common.Point, error) {
	rect := box.ToRect()
	size, err := s.Store.Crop(srcPath, rect, dstPath)
	if err != nil {
		return coco.Image{}, common.Point{}, errors.Wrapf(err, "crop %s", fileName)
	}
	l := addLicense(ds, lic)
	img := ds.AppendImage(coco.Image{FileName: fileName, Width: size.X, Height: size.Y, LicenseID: l.ID})
	return img, common.Point{X: float64(rect.Min.X), Y: float64(rect.Min.Y)}, nil
}

func addLicense(ds *coco.Dataset, l coco.License) coco.License {
	if found, ok := ds.Licenses.Find(l.Equal); ok {
		return found
	}
	return ds.AppendLicense(l)
}

// addImage registers img and its license in ds unless an equal image exists.
func addImage(ds *coco.Dataset, lic coco.License, img coco.Image) coco.Image {
	l := addLicense(ds, lic)
	if found, ok := ds.Images.Find(func(o coco.Image) bool { return o.Equal(img) && o.LicenseID == l.ID }); ok {
		return found
	}
	img.LicenseID = l.ID
	return ds.AppendImage(img)
}

// addCategory returns the category of ds named like c, adding c if needed.
func addCategory(ds *coco.Dataset, c coco.Category) coco.Category {
	if found, ok := ds.Categories.Find(func(o coco.Category) bool { return o.Name == c.Name }); ok {
		return found
	}
	return ds.AppendCategory(c)
}
