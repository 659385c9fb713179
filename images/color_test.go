package images

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInstanceColor(t *testing.T) {
	testCases := []struct {
		name     string
		id       int
		expected BGR
	}{
		{name: "zero", id: 0, expected: BGR{}},
		{name: "blue only", id: 7, expected: BGR{B: 7}},
		{name: "green byte", id: 0x0100, expected: BGR{G: 1}},
		{name: "all channels", id: 0x010203, expected: BGR{B: 3, G: 2, R: 1}},
		{name: "high bits ignored", id: 0x7f010203, expected: BGR{B: 3, G: 2, R: 1}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, InstanceColor(tc.id))
		})
	}
}

func TestBGRRangeClamps(t *testing.T) {
	lower, upper := BGR{B: 0, G: 128, R: 255}.Range(2)
	assert.Equal(t, BGR{B: 0, G: 126, R: 253}, lower)
	assert.Equal(t, BGR{B: 2, G: 130, R: 255}, upper)
}

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, FormatJPEG, FormatFromPath("a/b.JPG"))
	assert.Equal(t, FormatPNG, FormatFromPath("a/b.png"))
	assert.Equal(t, ".jpg", FormatJPEG.Extension())
	assert.Equal(t, ".png", FormatFromPath("noext").Extension())
}
