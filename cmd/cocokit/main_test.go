package main

import (
	"path/filepath"
	"testing"

	"github.com/nvr-ai/go-cocokit/coco"
	"github.com/nvr-ai/go-cocokit/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDataset(t *testing.T, dir, name, image string) string {
	t.Helper()

	d := coco.NewDataset(coco.Info{Description: name})
	lic := d.AppendLicense(coco.License{Name: "cc"})
	img := d.AppendImage(coco.Image{FileName: image, Width: 10, Height: 10, LicenseID: lic.ID})
	a := d.AppendCategory(coco.Category{Name: "a"})
	b := d.AppendCategory(coco.Category{Name: "b"})
	d.AppendAnnotation(coco.Annotation{ImageID: img.ID, CategoryID: a.ID, BBox: common.BoundingBox{X2: 2, Y2: 2}})
	d.AppendAnnotation(coco.Annotation{ImageID: img.ID, CategoryID: b.ID, BBox: common.BoundingBox{X2: 3, Y2: 3}})

	path := filepath.Join(dir, name)
	require.NoError(t, d.Save(path))
	return path
}

func TestCombineAndFilterCommands(t *testing.T) {
	dir := t.TempDir()
	first := writeDataset(t, dir, "first.json", "0.png")
	second := writeDataset(t, dir, "second.json", "1.png")
	merged := filepath.Join(dir, "merged.json")

	rootCmd.SetArgs([]string{"combine", "--log-level", "warn", "-o", merged, first, second})
	require.NoError(t, rootCmd.Execute())

	ds, err := coco.Load(merged)
	require.NoError(t, err)
	assert.Equal(t, 2, ds.Images.Len())
	assert.Equal(t, 2, ds.Categories.Len())
	assert.Equal(t, 4, ds.Annotations.Len())

	filtered := filepath.Join(dir, "filtered.json")
	rootCmd.SetArgs([]string{"filter", "--ann", merged, "--categories", "b", "-o", filtered})
	require.NoError(t, rootCmd.Execute())

	ds, err = coco.Load(filtered)
	require.NoError(t, err)
	assert.Equal(t, 1, ds.Categories.Len())
	assert.Equal(t, 2, ds.Annotations.Len())
	assert.NoError(t, ds.Validate())
}

func TestFilterUnknownCategoryFails(t *testing.T) {
	dir := t.TempDir()
	in := writeDataset(t, dir, "in.json", "0.png")

	rootCmd.SetArgs([]string{"filter", "--ann", in, "--categories", "zebra", "-o", filepath.Join(dir, "out.json")})
	assert.Error(t, rootCmd.Execute())
}

func TestInvalidLogLevel(t *testing.T) {
	rootCmd.SetArgs([]string{"combine", "--log-level", "loud", "-o", "x.json", "y.json"})
	assert.Error(t, rootCmd.Execute())
}
