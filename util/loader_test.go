package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDirectoryFrames(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"000010.json", "000010.png", "000010.is.png",
		"000002.json", "000002.png",
		CameraSettingsFile, ObjectSettingsFile,
		"notes.json", "readme.txt",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("{}"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "000001.json"), 0o755))

	frames, err := LoadDirectoryFrames(dir)
	require.NoError(t, err)
	require.Len(t, frames, 2)

	assert.Equal(t, 2, frames[0].Frame)
	assert.Equal(t, "000010", frames[1].Name)
	assert.Equal(t, filepath.Join(dir, "000010.is.png"), frames[1].MaskPath)
	assert.Equal(t, filepath.Join(dir, "000010.png"), frames[1].ImagePath)
}

func TestLoadDirectoryFramesMissingDir(t *testing.T) {
	_, err := LoadDirectoryFrames(filepath.Join(t.TempDir(), "absent"))
	assert.Error(t, err)
}
