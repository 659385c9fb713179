package util

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const (
	// CameraSettingsFile holds the captured image size of an NDDS export.
	CameraSettingsFile = "_camera_settings.json"
	// ObjectSettingsFile lists the object classes of an NDDS export.
	ObjectSettingsFile = "_object_settings.json"
)

// FrameFiles represents the files belonging to one NDDS frame.
type FrameFiles struct {
	// Name is the frame file stem, e.g. "000042".
	Name string
	// Frame is the frame number parsed from the stem.
	Frame int
	// AnnotationPath is the path to the per-frame JSON file.
	AnnotationPath string
	// ImagePath is the path to the rendered image.
	ImagePath string
	// MaskPath is the path to the instance segmentation mask.
	MaskPath string
}

// LoadDirectoryFrames lists the NDDS frames of a directory.
//
// Frame files are named NNNNNN.json with NNNNNN.png and NNNNNN.is.png next to
// them. Settings files (leading underscore) and other JSON files are skipped.
// The image and mask paths are derived, not checked.
//
// Arguments:
// - dir: Directory path containing an NDDS export.
//
// Returns:
// - []FrameFiles: The frames sorted by frame number.
// - error: Error if the directory cannot be read.
func LoadDirectoryFrames(dir string) ([]FrameFiles, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "read frame directory %s", dir)
	}

	var frames []FrameFiles
	for _, file := range files {
		if file.IsDir() || strings.HasPrefix(file.Name(), "_") {
			continue
		}
		if filepath.Ext(file.Name()) != ".json" {
			continue
		}

		stem := strings.TrimSuffix(file.Name(), ".json")
		frame, err := strconv.Atoi(stem)
		if err != nil {
			continue
		}
		frames = append(frames, FrameFiles{
			Name:           stem,
			Frame:          frame,
			AnnotationPath: filepath.Join(dir, file.Name()),
			ImagePath:      filepath.Join(dir, stem+".png"),
			MaskPath:       filepath.Join(dir, stem+".is.png"),
		})
	}

	sort.Slice(frames, func(i, j int) bool {
		return frames[i].Frame < frames[j].Frame
	})

	return frames, nil
}
