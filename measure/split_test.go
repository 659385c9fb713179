package measure

import (
	"image"
	"path/filepath"
	"testing"

	"github.com/nvr-ai/go-cocokit/coco"
	"github.com/nvr-ai/go-cocokit/common"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cropCall struct {
	src, dst string
	rect     image.Rectangle
}

// fakeStore records crops and reports the requested size.
type fakeStore struct {
	calls []cropCall
	err   error
}

func (s *fakeStore) Crop(src string, rect image.Rectangle, dst string) (image.Point, error) {
	if s.err != nil {
		return image.Point{}, s.err
	}
	s.calls = append(s.calls, cropCall{src: src, dst: dst, rect: rect})
	return rect.Size(), nil
}

func box(x1, y1, x2, y2 float64) common.BoundingBox {
	return common.BoundingBox{X1: x1, Y1: y1, X2: x2, Y2: y2}
}

func rect(b common.BoundingBox) common.Segmentation {
	return common.Segmentation{{{X: b.X1, Y: b.Y1}, {X: b.X2, Y: b.Y1}, {X: b.X2, Y: b.Y2}, {X: b.X1, Y: b.Y2}}}
}

// newSource builds one image with a measure at (10,10,110,110) holding the
// whole number "7", the two parts of "12" and one region outside the measure.
func newSource(t *testing.T) *coco.Dataset {
	t.Helper()

	d := coco.NewDataset(coco.Info{Description: "gauges"})
	lic := d.AppendLicense(coco.License{Name: "cc"})
	img := d.AppendImage(coco.Image{FileName: "gauge.png", Width: 200, Height: 200, LicenseID: lic.ID})
	measure := d.AppendCategory(coco.Category{Supercategory: "meter", Name: "measure"})
	seven := d.AppendCategory(coco.Category{Supercategory: "number", Name: "7"})
	p1 := d.AppendCategory(coco.Category{Supercategory: "number", Name: "12part1"})
	p2 := d.AppendCategory(coco.Category{Supercategory: "number", Name: "12part2"})

	d.AppendAnnotation(coco.Annotation{ImageID: img.ID, CategoryID: measure.ID, BBox: box(10, 10, 110, 110)})
	d.AppendAnnotation(coco.Annotation{ImageID: img.ID, CategoryID: seven.ID, BBox: box(20, 20, 40, 40)})
	d.AppendAnnotation(coco.Annotation{ImageID: img.ID, CategoryID: p1.ID, Segmentation: rect(box(50, 60, 55, 70)), BBox: box(50, 60, 55, 70)})
	d.AppendAnnotation(coco.Annotation{ImageID: img.ID, CategoryID: p2.ID, Segmentation: rect(box(56, 60, 62, 72)), BBox: box(56, 60, 62, 72)})
	d.AppendAnnotation(coco.Annotation{ImageID: img.ID, CategoryID: seven.ID, BBox: box(150, 150, 160, 160)})
	require.NoError(t, d.Validate())
	return d
}

func newTestSplitter(store *fakeStore) *Splitter {
	opts := DefaultOptions()
	opts.ImageDir = "src"
	opts.WholeNumberDir = "wn"
	opts.DigitDir = "digits"
	return &Splitter{Options: opts, Store: store}
}

func TestSplit(t *testing.T) {
	store := &fakeStore{}
	res, err := newTestSplitter(store).Split(newSource(t))
	require.NoError(t, err)

	// Measure dataset keeps the source frame.
	assert.Equal(t, 1, res.Measure.Images.Len())
	require.Equal(t, 1, res.Measure.Annotations.Len())
	assert.Equal(t, box(10, 10, 110, 110), res.Measure.Annotations.All()[0].BBox)
	assert.Equal(t, "meter", res.Measure.Categories.All()[0].Supercategory)

	// Whole numbers are measure-local.
	require.Equal(t, 1, res.WholeNumber.Images.Len())
	wnImg := res.WholeNumber.Images.All()[0]
	assert.Equal(t, "gauge_0.png", wnImg.FileName)
	assert.Equal(t, 100, wnImg.Width)

	wns := res.WholeNumber.Annotations.All()
	require.Len(t, wns, 2)
	assert.Equal(t, box(10, 10, 30, 30), wns[0].BBox)
	assert.Equal(t, box(40, 50, 52, 62), wns[1].BBox)
	assert.Len(t, wns[1].Segmentation, 2)
	assert.InDelta(t, 50+72, wns[1].Area, 1e-9)

	names := func(ds *coco.Dataset) []string {
		var out []string
		for _, c := range ds.Categories.All() {
			out = append(out, c.Name)
		}
		return out
	}
	assert.Equal(t, []string{"7", "12"}, names(res.WholeNumber))

	// Digits are whole-number-local.
	require.Equal(t, 2, res.Digit.Images.Len())
	assert.Equal(t, "gauge_0_1.png", res.Digit.Images.All()[1].FileName)
	digits := res.Digit.Annotations.All()
	require.Len(t, digits, 3)
	assert.Equal(t, box(0, 0, 20, 20), digits[0].BBox)
	assert.Equal(t, box(0, 0, 5, 10), digits[1].BBox)
	assert.Equal(t, box(6, 0, 12, 12), digits[2].BBox)
	assert.Equal(t, []string{"7", "1", "2"}, names(res.Digit))
	assert.Equal(t, 1, digits[2].ImageID)

	require.Len(t, store.calls, 3)
	assert.Equal(t, cropCall{
		src:  filepath.Join("src", "gauge.png"),
		dst:  filepath.Join("wn", "gauge_0.png"),
		rect: image.Rect(10, 10, 110, 110),
	}, store.calls[0])
	assert.Equal(t, filepath.Join("wn", "gauge_0.png"), store.calls[2].src)
	assert.Equal(t, image.Rect(40, 50, 52, 62), store.calls[2].rect)
}

func TestSplitRoundTripsCoordinates(t *testing.T) {
	src := newSource(t)
	res, err := newTestSplitter(&fakeStore{}).Split(src)
	require.NoError(t, err)

	origin := common.Point{X: 10, Y: 10}
	back := res.WholeNumber.Annotations.All()[0].Translate(origin.Neg())
	assert.Equal(t, src.Annotations.All()[1].BBox, back.BBox)
}

func TestSplitMissingParts(t *testing.T) {
	src := newSource(t)
	src.RemoveCategories(3)

	_, err := newTestSplitter(&fakeStore{}).Split(src)
	assert.True(t, errors.Is(err, coco.ErrDataQuality), "got %v", err)

	store := &fakeStore{}
	s := newTestSplitter(store)
	s.Options.AllowMissingParts = true
	res, err := s.Split(src)
	require.NoError(t, err)

	// The lone part is left out; only "7" remains.
	require.Equal(t, 1, res.WholeNumber.Annotations.Len())
	require.Equal(t, 1, res.Digit.Annotations.Len())
	assert.Equal(t, 1, res.Digit.Images.Len())
	assert.Len(t, store.calls, 2)
	cat, ok := res.WholeNumber.Categories.Get(res.WholeNumber.Annotations.All()[0].CategoryID)
	require.True(t, ok)
	assert.Equal(t, "7", cat.Name)
}

func TestSplitFractionalMeasureUsesCropOrigin(t *testing.T) {
	src := newSource(t)
	src.Annotations.All()[0].BBox = box(10.5, 10.5, 110, 110)
	src.Annotations.All()[1].BBox = box(20.5, 20.5, 40, 40)

	store := &fakeStore{}
	res, err := newTestSplitter(store).Split(src)
	require.NoError(t, err)

	assert.Equal(t, image.Rect(10, 10, 110, 110), store.calls[0].rect)
	wn := res.WholeNumber.Annotations.All()[0]
	assert.Equal(t, box(10.5, 10.5, 30, 30), wn.BBox, "offset by the pixel the crop starts at")

	assert.Equal(t, image.Rect(10, 10, 30, 30), store.calls[1].rect)
	assert.Equal(t, box(0.5, 0.5, 20, 20), res.Digit.Annotations.All()[0].BBox)
}

func TestSplitKeepsSourceCategories(t *testing.T) {
	src := newSource(t)
	src.Categories.All()[1].Keypoints = []string{"top"}

	res, err := newTestSplitter(&fakeStore{}).Split(src)
	require.NoError(t, err)

	seven, err := coco.NewCategoryIndex(res.WholeNumber.Categories.All()).ByName("7")
	require.NoError(t, err)
	assert.Equal(t, "number", seven.Supercategory)
	assert.Equal(t, []string{"top"}, seven.Keypoints)

	twelve, err := coco.NewCategoryIndex(res.WholeNumber.Categories.All()).ByName("12")
	require.NoError(t, err)
	assert.Equal(t, "number", twelve.Supercategory)

	for _, c := range res.Digit.Categories.All() {
		assert.Equal(t, "number", c.Supercategory, c.Name)
	}
}

func TestSplitPartName(t *testing.T) {
	testCases := []struct {
		name  string
		whole string
		digit string
		ok    bool
	}{
		{name: "12part1", whole: "12", digit: "1", ok: true},
		{name: "3part03", whole: "3", digit: "03", ok: true},
		{name: "counterpart", ok: false},
		{name: "spare_parts", ok: false},
		{name: "12partA", ok: false},
		{name: "part1", ok: false},
		{name: "7", ok: false},
	}

	s := newTestSplitter(&fakeStore{})
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			whole, digit, ok := s.splitPartName(tc.name)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.whole, whole)
			assert.Equal(t, tc.digit, digit)
		})
	}
}

func TestSplitNonPartNameIsPlainRegion(t *testing.T) {
	src := newSource(t)
	spare := src.AppendCategory(coco.Category{Name: "spare_parts"})
	src.AppendAnnotation(coco.Annotation{ImageID: 0, CategoryID: spare.ID, BBox: box(80, 80, 90, 90)})

	res, err := newTestSplitter(&fakeStore{}).Split(src)
	require.NoError(t, err)
	assert.Equal(t, 3, res.WholeNumber.Annotations.Len())
	assert.True(t, coco.NewCategoryIndex(res.WholeNumber.Categories.All()).Has("spare_parts"))
}

func TestSplitMixedPartsUseBoxes(t *testing.T) {
	src := newSource(t)
	src.Annotations.All()[3].Segmentation = nil

	res, err := newTestSplitter(&fakeStore{}).Split(src)
	require.NoError(t, err)
	whole := res.WholeNumber.Annotations.All()[1]
	assert.Nil(t, whole.Segmentation)
	assert.Equal(t, box(40, 50, 52, 62), whole.BBox)
	assert.InDelta(t, 12*12, whole.Area, 1e-9)
}

func TestSplitNoMeasures(t *testing.T) {
	src := newSource(t)
	src.RemoveCategories(0)

	_, err := newTestSplitter(&fakeStore{}).Split(src)
	assert.True(t, errors.Is(err, coco.ErrDataQuality), "got %v", err)

	s := newTestSplitter(&fakeStore{})
	s.Options.AllowNoMeasures = true
	res, err := s.Split(src)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Measure.Images.Len())
	assert.Equal(t, 0, res.Digit.Annotations.Len())
}

func TestSplitCropFailureAborts(t *testing.T) {
	res, err := newTestSplitter(&fakeStore{err: errors.New("disk full")}).Split(newSource(t))
	assert.Nil(t, res)
	assert.ErrorContains(t, err, "disk full")
}

func TestSplitRequiresOptions(t *testing.T) {
	_, err := (&Splitter{Store: &fakeStore{}}).Split(newSource(t))
	assert.True(t, errors.Is(err, coco.ErrInvalidInput))
}
