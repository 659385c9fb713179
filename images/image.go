package images

import (
	"image"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// ImageShape returns the height and width of an image file.
//
// Arguments:
// - path: Path to the image.
//
// Returns:
// - height, width in pixels.
// - error if the image cannot be read.
func ImageShape(path string) (height, width int, err error) {
	mat := gocv.IMRead(path, gocv.IMReadUnchanged)
	defer mat.Close()
	if mat.Empty() {
		return 0, 0, errors.Errorf("failed to read image %s", path)
	}
	return mat.Rows(), mat.Cols(), nil
}

// CropToFile cuts rect out of the image at src and writes it to dst, creating
// the destination directory. The rectangle is clipped to the source bounds.
//
// Arguments:
// - src: Path to the source image.
// - rect: Region to keep, in source pixel coordinates.
// - dst: Output path; the extension picks the encoder.
//
// Returns:
// - The size of the written image.
// - error if the region is empty or any I/O step fails.
//
// @example
// size, err := CropToFile("frame.png", image.Rect(10, 10, 110, 110), "out/frame_0.png")
func CropToFile(src string, rect image.Rectangle, dst string) (image.Point, error) {
	img, err := imaging.Open(src)
	if err != nil {
		return image.Point{}, errors.Wrapf(err, "open %s", src)
	}

	if rect.Intersect(img.Bounds()).Empty() {
		return image.Point{}, errors.Errorf("crop %v is outside %s (%v)", rect, src, img.Bounds())
	}
	cropped := imaging.Crop(img, rect)

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return image.Point{}, errors.Wrapf(err, "create directory for %s", dst)
	}
	if err := imaging.Save(cropped, dst); err != nil {
		return image.Point{}, errors.Wrapf(err, "save %s", dst)
	}
	return cropped.Bounds().Size(), nil
}
