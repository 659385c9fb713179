package ndds

import (
	"testing"

	"github.com/nvr-ai/go-cocokit/coco"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClassName(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected ParsedName
		wantErr  bool
	}{
		{
			name:     "segmentation without part",
			input:    "seg_bolt_A",
			expected: ParsedName{Token: "seg", Type: TypeSegmentation, Part: NoPart, Object: "bolt", Instance: "A"},
		},
		{
			name:     "segmentation part",
			input:    "seg12_bolt_A",
			expected: ParsedName{Token: "seg12", Type: TypeSegmentation, Part: 12, Object: "bolt", Instance: "A"},
		},
		{
			name:     "box",
			input:    "bbox_measure_0",
			expected: ParsedName{Token: "bbox", Type: TypeBBox, Part: NoPart, Object: "measure", Instance: "0"},
		},
		{
			name:  "contained keypoint",
			input: "kpt_hand_L_thumb",
			expected: ParsedName{
				Token: "kpt", Type: TypeKeypoint, Part: NoPart, Object: "hand", Instance: "L", Contained: "thumb",
			},
		},
		{name: "too few tokens", input: "seg_bolt", wantErr: true},
		{name: "too many tokens", input: "seg_bolt_A_b_c", wantErr: true},
		{name: "unknown type", input: "mesh_bolt_A", wantErr: true},
		{name: "empty token", input: "seg__A", wantErr: true},
		{name: "part number overflow", input: "seg99999999999999999999_bolt_A", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseClassName(tc.input, RuleTypeObjectInstanceContained, "_")
			if tc.wantErr {
				assert.True(t, errors.Is(err, coco.ErrInvalidInput), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
			assert.Equal(t, tc.expected.Contained != "", got.IsContained())
		})
	}
}

func TestParseClassNameRuleAndDelimiter(t *testing.T) {
	_, err := ParseClassName("seg_bolt_A", "object_type_instance", "_")
	assert.True(t, errors.Is(err, coco.ErrInvalidInput))

	_, err = ParseClassName("seg_bolt_A", RuleTypeObjectInstanceContained, "")
	assert.True(t, errors.Is(err, coco.ErrInvalidInput))

	got, err := ParseClassName("seg1-bolt-A", RuleTypeObjectInstanceContained, "-")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Part)
}
