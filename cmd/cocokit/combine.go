package main

import (
	"github.com/nvr-ai/go-cocokit/coco"
	"github.com/nvr-ai/go-cocokit/merge"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var combineOutput string

var combineCmd = &cobra.Command{
	Use:   "combine [flags] IN.json IN.json...",
	Short: "Merge COCO datasets into one",
	Long: `Merge COCO datasets into one.

Licenses, images and categories that are equal apart from their ids are kept
once; the first input wins. Every annotation is kept with its references
rewritten.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCombine,
}

func init() {
	rootCmd.AddCommand(combineCmd)
	combineCmd.Flags().StringVarP(&combineOutput, "output", "o", "", "Output annotation file")
	_ = combineCmd.MarkFlagRequired("output")
}

func runCombine(_ *cobra.Command, args []string) error {
	sources := make([]*coco.Dataset, 0, len(args))
	for _, path := range args {
		ds, err := coco.Load(path)
		if err != nil {
			return err
		}
		sources = append(sources, ds)
	}

	merged, mapper, err := merge.CombineWithMapper(sources)
	if err != nil {
		return errors.Wrap(err, "combine")
	}
	if err := merged.Save(combineOutput); err != nil {
		return err
	}

	log.WithFields(logrus.Fields{
		"inputs":      len(sources),
		"images":      merged.Images.Len(),
		"categories":  merged.Categories.Len(),
		"annotations": merged.Annotations.Len(),
		"mappings":    mapper.Len(),
	}).Infof("✅ wrote %s", combineOutput)
	return nil
}
