// Package ndds - Reads NDDS synthetic exports and converts them to COCO.
//
// An NDDS export is a directory of rendered frames. Each frame has a JSON file
// listing the objects in view, the rendered image, and an instance mask where
// every object is painted with a color derived from its instance id.
package ndds

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/nvr-ai/go-cocokit/common"
	"github.com/nvr-ai/go-cocokit/util"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

// RawBoundingBox is an NDDS box. Corners are stored as [y, x].
type RawBoundingBox struct {
	TopLeft     [2]float64 `json:"top_left"`
	BottomRight [2]float64 `json:"bottom_right"`
}

// Box returns the box in image (x, y) order.
func (b RawBoundingBox) Box() common.BoundingBox {
	return common.BoundingBox{
		X1: b.TopLeft[1],
		Y1: b.TopLeft[0],
		X2: b.BottomRight[1],
		Y2: b.BottomRight[0],
	}
}

// RawInstanceObject is one object of an NDDS frame.
type RawInstanceObject struct {
	ClassName               string         `json:"class"`
	InstanceID              int            `json:"instance_id"`
	Visibility              float64        `json:"visibility"`
	Location                [3]float64     `json:"location"`
	BoundingBox             RawBoundingBox `json:"bounding_box"`
	ProjectedCuboidCentroid [2]float64     `json:"projected_cuboid_centroid"`
}

// Centroid returns the projected cuboid centroid in image coordinates.
func (o RawInstanceObject) Centroid() common.Point {
	return common.Point{X: o.ProjectedCuboidCentroid[0], Y: o.ProjectedCuboidCentroid[1]}
}

// Frame is one rendered frame.
type Frame struct {
	Files   util.FrameFiles
	Objects []RawInstanceObject
}

type frameRecord struct {
	Objects []RawInstanceObject `json:"objects"`
}

// Settings holds the export-wide values from the underscore files.
type Settings struct {
	// Width and Height are the captured image size, zero when unknown.
	Width  int
	Height int
	// Classes are the exported object class names.
	Classes []string
}

// Dataset is a loaded NDDS export.
type Dataset struct {
	Dir      string
	Settings Settings
	Frames   []Frame
}

// LoadFrame reads one frame JSON file.
func LoadFrame(files util.FrameFiles) (Frame, error) {
	data, err := os.ReadFile(files.AnnotationPath)
	if err != nil {
		return Frame{}, errors.Wrapf(err, "read frame %s", files.AnnotationPath)
	}
	var rec frameRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return Frame{}, errors.Wrapf(err, "decode frame %s", files.AnnotationPath)
	}
	return Frame{Files: files, Objects: rec.Objects}, nil
}

// LoadSettings reads _camera_settings.json and _object_settings.json from
// dir. Missing files leave the matching fields empty.
func LoadSettings(dir string) (Settings, error) {
	var s Settings

	data, err := os.ReadFile(filepath.Join(dir, util.CameraSettingsFile))
	switch {
	case err == nil:
		size := gjson.GetBytes(data, "camera_settings.0.captured_image_size")
		if !size.Exists() {
			return s, errors.Errorf("%s has no captured_image_size", util.CameraSettingsFile)
		}
		s.Width = int(size.Get("width").Int())
		s.Height = int(size.Get("height").Int())
	case !os.IsNotExist(err):
		return s, errors.Wrap(err, "read camera settings")
	}

	data, err = os.ReadFile(filepath.Join(dir, util.ObjectSettingsFile))
	switch {
	case err == nil:
		for _, c := range gjson.GetBytes(data, "exported_object_classes").Array() {
			s.Classes = append(s.Classes, c.String())
		}
	case !os.IsNotExist(err):
		return s, errors.Wrap(err, "read object settings")
	}

	return s, nil
}

// LoadDataset reads every frame of an NDDS export directory.
//
// Arguments:
// - dir: The export directory.
//
// Returns:
// - The dataset with frames in frame-number order.
// - error if the directory, a settings file or a frame cannot be read.
func LoadDataset(dir string) (*Dataset, error) {
	settings, err := LoadSettings(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "load settings of %s", dir)
	}

	files, err := util.LoadDirectoryFrames(dir)
	if err != nil {
		return nil, err
	}

	ds := &Dataset{Dir: dir, Settings: settings, Frames: make([]Frame, 0, len(files))}
	for _, f := range files {
		frame, err := LoadFrame(f)
		if err != nil {
			return nil, err
		}
		ds.Frames = append(ds.Frames, frame)
	}
	return ds, nil
}
