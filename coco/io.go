package coco

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/nvr-ai/go-cocokit/common"
	"github.com/pkg/errors"
)

// annotationRecord is the COCO wire layout of an Annotation.
type annotationRecord struct {
	ID           int             `json:"id"`
	ImageID      int             `json:"image_id"`
	CategoryID   int             `json:"category_id"`
	Segmentation json.RawMessage `json:"segmentation"`
	BBox         []float64       `json:"bbox"`
	Area         float64         `json:"area"`
	Keypoints    []float64       `json:"keypoints,omitempty"`
	NumKeypoints int             `json:"num_keypoints"`
	IsCrowd      int             `json:"iscrowd"`
}

// datasetRecord is the COCO wire layout of a Dataset.
type datasetRecord struct {
	Info        Info         `json:"info"`
	Licenses    []License    `json:"licenses"`
	Images      []Image      `json:"images"`
	Annotations []Annotation `json:"annotations"`
	Categories  []Category   `json:"categories"`
}

// MarshalJSON writes the COCO layout.
func (a Annotation) MarshalJSON() ([]byte, error) {
	segJSON, err := json.Marshal(a.Segmentation.Flat())
	if err != nil {
		return nil, err
	}
	xywh := a.BBox.XYWH()
	rec := annotationRecord{
		ID:           a.ID,
		ImageID:      a.ImageID,
		CategoryID:   a.CategoryID,
		Segmentation: segJSON,
		BBox:         xywh[:],
		Area:         a.Area,
		NumKeypoints: a.NumKeypoints,
	}
	if a.IsCrowd {
		rec.IsCrowd = 1
	}
	if len(a.Keypoints) > 0 {
		rec.Keypoints = make([]float64, 0, 3*len(a.Keypoints))
		for _, k := range a.Keypoints {
			rec.Keypoints = append(rec.Keypoints, k.X, k.Y, float64(k.Visibility))
		}
	}
	return json.Marshal(rec)
}

// UnmarshalJSON reads the COCO layout. Run-length encoded segmentations are
// rejected.
func (a *Annotation) UnmarshalJSON(data []byte) error {
	var rec annotationRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}

	var seg [][]float64
	if raw := bytes.TrimSpace(rec.Segmentation); len(raw) > 0 && !bytes.Equal(raw, []byte("null")) {
		if raw[0] != '[' {
			return errors.Wrapf(ErrInvalidInput, "annotation %d: run-length segmentation is not supported", rec.ID)
		}
		if err := json.Unmarshal(raw, &seg); err != nil {
			return errors.Wrapf(err, "annotation %d: segmentation", rec.ID)
		}
	}

	var box common.BoundingBox
	switch len(rec.BBox) {
	case 0:
	case 4:
		box = common.BoundingBoxFromXYWH(rec.BBox[0], rec.BBox[1], rec.BBox[2], rec.BBox[3])
	default:
		return errors.Wrapf(ErrInvalidInput, "annotation %d: bbox has %d values", rec.ID, len(rec.BBox))
	}

	if len(rec.Keypoints)%3 != 0 {
		return errors.Wrapf(ErrInvalidInput, "annotation %d: keypoints length %d is not a multiple of 3",
			rec.ID, len(rec.Keypoints))
	}
	var kpts []common.Keypoint
	for i := 0; i < len(rec.Keypoints); i += 3 {
		kpts = append(kpts, common.Keypoint{
			Point:      common.Point{X: rec.Keypoints[i], Y: rec.Keypoints[i+1]},
			Visibility: int(rec.Keypoints[i+2]),
		})
	}

	*a = Annotation{
		ID:           rec.ID,
		ImageID:      rec.ImageID,
		CategoryID:   rec.CategoryID,
		Segmentation: common.SegmentationFromFlat(seg),
		BBox:         box,
		Area:         rec.Area,
		Keypoints:    kpts,
		NumKeypoints: rec.NumKeypoints,
		IsCrowd:      rec.IsCrowd != 0,
	}
	return nil
}

// MarshalJSON writes the top-level COCO layout.
func (d *Dataset) MarshalJSON() ([]byte, error) {
	rec := datasetRecord{
		Info:        d.Info,
		Licenses:    nonNil(d.Licenses.All()),
		Images:      nonNil(d.Images.All()),
		Annotations: nonNil(d.Annotations.All()),
		Categories:  make([]Category, 0, d.Categories.Len()),
	}
	for _, c := range d.Categories.All() {
		if c.Keypoints == nil {
			c.Keypoints = []string{}
		}
		if c.Skeleton == nil {
			c.Skeleton = [][2]int{}
		}
		rec.Categories = append(rec.Categories, c)
	}
	return json.Marshal(rec)
}

// UnmarshalJSON reads the top-level COCO layout, rejecting duplicate ids.
func (d *Dataset) UnmarshalJSON(data []byte) error {
	var rec datasetRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}

	var (
		out Dataset
		err error
	)
	out.Info = rec.Info
	if out.Licenses, err = NewCollection(rec.Licenses...); err != nil {
		return errors.Wrap(err, "licenses")
	}
	if out.Images, err = NewCollection(rec.Images...); err != nil {
		return errors.Wrap(err, "images")
	}
	if out.Categories, err = NewCollection(rec.Categories...); err != nil {
		return errors.Wrap(err, "categories")
	}
	if out.Annotations, err = NewCollection(rec.Annotations...); err != nil {
		return errors.Wrap(err, "annotations")
	}
	*d = out
	return nil
}

// Load reads a COCO annotation file.
//
// Arguments:
// - path: Path to the JSON file.
//
// Returns:
// - The dataset, or an error if the file cannot be read or parsed.
//
// @example
// ds, err := coco.Load("annotations/train.json")
//
//	if err != nil {
//	    log.Fatal(err)
//	}
func Load(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	var d Dataset
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, errors.Wrapf(err, "parse %s", path)
	}
	return &d, nil
}

// Save writes the dataset as indented COCO JSON, creating parent directories.
func (d *Dataset) Save(path string) error {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode dataset")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "create directory for %s", path)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "write %s", path)
	}
	return nil
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
