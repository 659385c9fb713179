// Package measure - Splits a dataset of measure regions into three derived
// datasets: measures, whole numbers cropped out of each measure, and digits
// cropped out of each whole number.
package measure

import (
	"image"

	"github.com/nvr-ai/go-cocokit/images"
)

// Options configures a split.
type Options struct {
	// MeasureCategory is the category name of root regions.
	MeasureCategory string `json:"measure_category" yaml:"measure_category"`

	// PartSeparator splits part categories, e.g. "12part1" is digit 1 of whole number 12.
	PartSeparator string `json:"part_separator" yaml:"part_separator"`

	// AllowNoMeasures skips images without a measure instead of failing.
	AllowNoMeasures bool `json:"allow_no_measures" yaml:"allow_no_measures"`

	// AllowMissingParts accepts part groups with a single member.
	AllowMissingParts bool `json:"allow_missing_parts" yaml:"allow_missing_parts"`

	// ImageDir holds the source images.
	ImageDir string `json:"image_dir" yaml:"image_dir"`

	// WholeNumberDir receives the measure crops.
	WholeNumberDir string `json:"whole_number_dir" yaml:"whole_number_dir"`

	// DigitDir receives the whole number crops.
	DigitDir string `json:"digit_dir" yaml:"digit_dir"`
}

// DefaultOptions returns the options used by the CLI.
func DefaultOptions() Options {
	return Options{
		MeasureCategory: "measure",
		PartSeparator:   "part",
	}
}

// ImageStore cuts regions out of stored images.
type ImageStore interface {
	// Crop writes the rect region of src to dst and returns the written size.
	Crop(src string, rect image.Rectangle, dst string) (image.Point, error)
}

// FileStore is the ImageStore backed by image files on disk.
type FileStore struct{}

// Crop implements ImageStore.
func (FileStore) Crop(src string, rect image.Rectangle, dst string) (image.Point, error) {
	return images.CropToFile(src, rect, dst)
}
