package infrastructure

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/bogem/id3v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yourusername/tea-go/internal/domain"
)

func TestTagClips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "01-Intro.mp3")
	require.NoError(t, os.WriteFile(path, bytes.Repeat([]byte{0}, 512), 0644))

	results := []domain.ClipResult{
		{Success: true, Clip: 1, Title: "Intro", Path: path},
		{Success: false, Clip: 2, Title: "Broken", Path: filepath.Join(dir, "missing.mp3")},
	}

	NewClipTagger(zap.NewNop()).TagClips(results, "Source Video")

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	require.NoError(t, err)
	defer tag.Close()

	assert.Equal(t, "Intro", tag.Title())
	assert.Equal(t, "Source Video", tag.Album())
}

func TestTagClips_SkipsNonMP3(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "01-Intro.mp4")
	require.NoError(t, os.WriteFile(path, []byte("video"), 0644))

	results := []domain.ClipResult{{Success: true, Clip: 1, Title: "Intro", Path: path}}
	NewClipTagger(zap.NewNop()).TagClips(results, "Album")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("video"), data)
}
