package main

import (
	"encoding/json"
	"os"

	"github.com/nvr-ai/go-cocokit/coco"
	"github.com/nvr-ai/go-cocokit/ndds"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	nddsDir         string
	nddsCategories  string
	nddsConfig      string
	nddsOutput      string
	nddsDescription string
	nddsLicenseName string
	nddsLicenseURL  string
)

var nddsCmd = &cobra.Command{
	Use:   "from-ndds",
	Short: "Convert an NDDS export to a COCO dataset",
	Long: `Convert an NDDS export to a COCO dataset.

Object class names must follow {type}_{object}_{instance}[_{contained}], where
type is seg, bbox or kpt with an optional part number (seg0, seg1, ...).
Segmentations are decoded from each frame's instance mask.`,
	RunE: runNDDS,
}

func init() {
	rootCmd.AddCommand(nddsCmd)
	nddsCmd.Flags().StringVar(&nddsDir, "dir", "", "NDDS export directory")
	nddsCmd.Flags().StringVar(&nddsCategories, "categories", "", "JSON file with the list of output categories")
	nddsCmd.Flags().StringVar(&nddsConfig, "config", "", "YAML conversion settings")
	nddsCmd.Flags().StringVarP(&nddsOutput, "output", "o", "", "Output annotation file")
	nddsCmd.Flags().StringVar(&nddsDescription, "description", "", "Dataset description")
	nddsCmd.Flags().StringVar(&nddsLicenseName, "license-name", "", "License name of every image")
	nddsCmd.Flags().StringVar(&nddsLicenseURL, "license-url", "", "License URL of every image")
	_ = nddsCmd.MarkFlagRequired("dir")
	_ = nddsCmd.MarkFlagRequired("categories")
	_ = nddsCmd.MarkFlagRequired("output")
}

func loadCategories(path string) ([]coco.Category, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read categories %s", path)
	}
	var cats []coco.Category
	if err := json.Unmarshal(data, &cats); err != nil {
		return nil, errors.Wrapf(err, "decode categories %s", path)
	}
	return cats, nil
}

func runNDDS(_ *cobra.Command, _ []string) error {
	cfg := ndds.DefaultConfig()
	if nddsConfig != "" {
		var err error
		if cfg, err = ndds.LoadConfig(nddsConfig); err != nil {
			return err
		}
	}

	cats, err := loadCategories(nddsCategories)
	if err != nil {
		return err
	}

	export, err := ndds.LoadDataset(nddsDir)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{"frames": len(export.Frames), "classes": len(export.Settings.Classes)}).
		Info("📂 loaded NDDS export")

	out, err := ndds.NewConverter(cfg).Convert(
		export,
		cats,
		coco.Info{Description: nddsDescription},
		coco.License{Name: nddsLicenseName, URL: nddsLicenseURL},
	)
	if err != nil {
		return errors.Wrap(err, "convert")
	}
	if err := out.Save(nddsOutput); err != nil {
		return err
	}

	log.WithFields(logrus.Fields{"images": out.Images.Len(), "annotations": out.Annotations.Len()}).
		Infof("✅ wrote %s", nddsOutput)
	return nil
}
