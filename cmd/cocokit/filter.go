package main

import (
	"strings"

	"github.com/nvr-ai/go-cocokit/coco"
	"github.com/spf13/cobra"
)

var (
	filterInput      string
	filterOutput     string
	filterCategories string
	filterKeepEmpty  bool
)

var filterCmd = &cobra.Command{
	Use:   "filter",
	Short: "Keep only the named categories of a dataset",
	RunE:  runFilter,
}

func init() {
	rootCmd.AddCommand(filterCmd)
	filterCmd.Flags().StringVar(&filterInput, "ann", "", "Input annotation file")
	filterCmd.Flags().StringVarP(&filterOutput, "output", "o", "", "Output annotation file")
	filterCmd.Flags().StringVar(&filterCategories, "categories", "", "Comma separated category names to keep")
	filterCmd.Flags().BoolVar(&filterKeepEmpty, "keep-empty-images", false, "Keep images (and their licenses) left without annotations")
	_ = filterCmd.MarkFlagRequired("ann")
	_ = filterCmd.MarkFlagRequired("output")
	_ = filterCmd.MarkFlagRequired("categories")
}

func runFilter(_ *cobra.Command, _ []string) error {
	ds, err := coco.Load(filterInput)
	if err != nil {
		return err
	}

	var names []string
	for _, n := range strings.Split(filterCategories, ",") {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}
	if err := ds.FilterCategories(names, !filterKeepEmpty); err != nil {
		return err
	}
	if err := ds.Save(filterOutput); err != nil {
		return err
	}
	log.WithField("annotations", ds.Annotations.Len()).Infof("✅ wrote %s", filterOutput)
	return nil
}
