package main

import (
	"path/filepath"

	"github.com/nvr-ai/go-cocokit/coco"
	"github.com/nvr-ai/go-cocokit/measure"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	measureAnn     string
	measureOutDir  string
	measureOptions = measure.DefaultOptions()
)

var measureCmd = &cobra.Command{
	Use:   "split-measure",
	Short: "Split a measure dataset into measure, whole number and digit datasets",
	Long: `Split a measure dataset into measure, whole number and digit datasets.

Writes measure.json, whole_number.json and digit.json to the output directory,
with the whole number and digit crops under images/whole_number and
images/digit.`,
	RunE: runMeasure,
}

func init() {
	rootCmd.AddCommand(measureCmd)
	f := measureCmd.Flags()
	f.StringVar(&measureAnn, "ann", "", "Input annotation file")
	f.StringVar(&measureOptions.ImageDir, "img-dir", "", "Directory of the input images")
	f.StringVar(&measureOutDir, "out-dir", "", "Output directory")
	f.StringVar(&measureOptions.MeasureCategory, "measure-category", measureOptions.MeasureCategory, "Category name of measure regions")
	f.StringVar(&measureOptions.PartSeparator, "part-separator", measureOptions.PartSeparator, "Separator of part category names")
	f.BoolVar(&measureOptions.AllowNoMeasures, "allow-no-measures", false, "Skip images without a measure")
	f.BoolVar(&measureOptions.AllowMissingParts, "allow-missing-parts", false, "Accept whole numbers with a single part")
	_ = measureCmd.MarkFlagRequired("ann")
	_ = measureCmd.MarkFlagRequired("img-dir")
	_ = measureCmd.MarkFlagRequired("out-dir")
}

func runMeasure(_ *cobra.Command, _ []string) error {
	src, err := coco.Load(measureAnn)
	if err != nil {
		return err
	}

	opts := measureOptions
	opts.WholeNumberDir = filepath.Join(measureOutDir, "images", "whole_number")
	opts.DigitDir = filepath.Join(measureOutDir, "images", "digit")

	res, err := measure.NewSplitter(opts).Split(src)
	if err != nil {
		return errors.Wrap(err, "split")
	}

	for name, ds := range map[string]*coco.Dataset{
		"measure.json":      res.Measure,
		"whole_number.json": res.WholeNumber,
		"digit.json":        res.Digit,
	} {
		if err := ds.Save(filepath.Join(measureOutDir, name)); err != nil {
			return err
		}
		log.WithFields(logrus.Fields{"file": name, "images": ds.Images.Len(), "annotations": ds.Annotations.Len()}).
			Info("✅ wrote dataset")
	}
	return nil
}
