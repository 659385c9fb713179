package images

import (
	"path/filepath"
	"strings"
)

// ImageFormat represents supported image formats
type ImageFormat string

const (
	// FormatJPEG is the JPEG image format.
	FormatJPEG ImageFormat = "jpeg"
	// FormatPNG is the PNG image format.
	FormatPNG ImageFormat = "png"
)

// Extension returns the file extension written for the format, with the dot.
func (f ImageFormat) Extension() string {
	switch f {
	case FormatJPEG:
		return ".jpg"
	default:
		return ".png"
	}
}

// FormatFromPath guesses the format from a file name, defaulting to PNG.
func FormatFromPath(path string) ImageFormat {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return FormatJPEG
	default:
		return FormatPNG
	}
}
