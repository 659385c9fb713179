package ndds

import (
	"testing"

	"github.com/nvr-ai/go-cocokit/coco"
	"github.com/nvr-ai/go-cocokit/common"
	"github.com/nvr-ai/go-cocokit/images"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeMask serves fixed segmentations by instance color.
type fakeMask struct {
	regions map[images.BGR]common.Segmentation
	closed  bool
}

func newFakeMask(byID map[int]common.Segmentation) *fakeMask {
	m := &fakeMask{regions: make(map[images.BGR]common.Segmentation)}
	for id, seg := range byID {
		m.regions[images.InstanceColor(id)] = seg
	}
	return m
}

func (m *fakeMask) Decode(target images.BGR, _ int) (common.Segmentation, error) {
	return m.regions[target], nil
}

func (m *fakeMask) Size() (int, int) { return 100, 100 }

func (m *fakeMask) Close() error {
	m.closed = true
	return nil
}

func square(x, y, size float64) common.Polygon {
	return common.Polygon{{X: x, Y: y}, {X: x + size, Y: y}, {X: x + size, Y: y + size}, {X: x, Y: y + size}}
}

func part(t *testing.T, class string, id int, visibility float64, box common.BoundingBox) *ObjectInstance {
	t.Helper()
	name, err := ParseClassName(class, RuleTypeObjectInstanceContained, "_")
	require.NoError(t, err)
	return &ObjectInstance{
		ParsedName: name,
		Raw: RawInstanceObject{
			ClassName:   class,
			InstanceID:  id,
			Visibility:  visibility,
			BoundingBox: RawBoundingBox{TopLeft: [2]float64{box.Y1, box.X1}, BottomRight: [2]float64{box.Y2, box.X2}},
		},
	}
}

func TestResolveMultiPartUnion(t *testing.T) {
	mask := newFakeMask(map[int]common.Segmentation{
		1: {square(10, 10, 5)},
		2: {square(30, 40, 10)},
	})
	r := &Resolver{Config: DefaultConfig(), Width: 100, Height: 100}

	p0, err := r.Resolve(part(t, "seg0_bolt_A", 1, 1, common.BoundingBox{}), mask)
	require.NoError(t, err)
	p1, err := r.Resolve(part(t, "seg1_bolt_A", 2, 1, common.BoundingBox{}), mask)
	require.NoError(t, err)

	union, ok := UnionParts("A", []Resolved{p0, p1})
	require.True(t, ok)
	assert.Equal(t, common.Segmentation{square(10, 10, 5), square(30, 40, 10)}, union.Segmentation)
	assert.Equal(t, common.BoundingBox{X1: 10, Y1: 10, X2: 40, Y2: 50}, union.BBox)
}

func TestResolveBoxIsClipped(t *testing.T) {
	r := &Resolver{Config: DefaultConfig(), Width: 50, Height: 40}
	got, err := r.Resolve(part(t, "bbox_measure_0", 1, 1, common.BoundingBox{X1: -5, Y1: 10, X2: 60, Y2: 30}), nil)
	require.NoError(t, err)
	assert.True(t, got.Found)
	assert.Equal(t, common.BoundingBox{X1: 0, Y1: 10, X2: 50, Y2: 30}, got.BBox)
}

func TestResolveUnfoundSegmentation(t *testing.T) {
	inFrame := common.BoundingBox{X1: 10, Y1: 10, X2: 20, Y2: 20}
	outside := common.BoundingBox{X1: 200, Y1: 10, X2: 220, Y2: 20}
	mask := newFakeMask(nil)

	testCases := []struct {
		name       string
		allow      bool
		visibility float64
		box        common.BoundingBox
		wantErr    bool
	}{
		{name: "visible in frame", visibility: 1, box: inFrame, wantErr: true},
		{name: "tolerated by flag", allow: true, visibility: 1, box: inFrame},
		{name: "invisible", visibility: 0, box: inFrame},
		{name: "outside frame", visibility: 1, box: outside},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.AllowUnfoundSeg = tc.allow
			r := &Resolver{Config: cfg, Width: 100, Height: 100}

			got, err := r.Resolve(part(t, "seg_bolt_A", 7, tc.visibility, tc.box), mask)
			if tc.wantErr {
				assert.True(t, errors.Is(err, coco.ErrDataQuality), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.False(t, got.Found)
		})
	}
}

func TestResolveExcludesInvalidPolygons(t *testing.T) {
	mask := newFakeMask(map[int]common.Segmentation{
		3: {{{X: 1, Y: 1}, {X: 2, Y: 2}}, square(0, 0, 4)},
	})
	r := &Resolver{Config: DefaultConfig(), Width: 100, Height: 100}
	got, err := r.Resolve(part(t, "seg_bolt_A", 3, 1, common.BoundingBox{}), mask)
	require.NoError(t, err)
	assert.Len(t, got.Segmentation, 1)

	_, err = r.Resolve(part(t, "seg_bolt_A", 3, 1, common.BoundingBox{}), nil)
	assert.Error(t, err)
}

func TestUnionPartsMixedFallsBackToBoxes(t *testing.T) {
	seg := Resolved{Segmentation: common.Segmentation{square(0, 0, 2)}, BBox: common.BoundingBox{X2: 2, Y2: 2}, Found: true}
	box := Resolved{BBox: common.BoundingBox{X1: 5, Y1: 5, X2: 8, Y2: 9}, Found: true}

	got, ok := UnionParts("A", []Resolved{seg, {}, box})
	require.True(t, ok)
	assert.Nil(t, got.Segmentation)
	assert.Equal(t, common.BoundingBox{X1: 0, Y1: 0, X2: 8, Y2: 9}, got.BBox)

	_, ok = UnionParts("A", []Resolved{{}})
	assert.False(t, ok)
}
