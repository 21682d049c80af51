package infrastructure

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/tea-go/internal/domain"
)

func TestDecodeExtractOutput_Null(t *testing.T) {
	for _, data := range []string{"", "null", "  null\n"} {
		result, raw, err := decodeExtractOutput([]byte(data))
		require.NoError(t, err)
		assert.Equal(t, domain.ResultEmpty, result.Kind)
		assert.Nil(t, raw)
	}
}

func TestDecodeExtractOutput_SingleVideo(t *testing.T) {
	data := []byte(`{"id": "abc", "title": "A Video", "duration": 212.0}`)

	result, raw, err := decodeExtractOutput(data)
	require.NoError(t, err)
	assert.Equal(t, domain.ResultSingle, result.Kind)
	assert.Equal(t, "A Video", result.Title)
	assert.Equal(t, 1, result.ItemCount())
	assert.Equal(t, 212.0, raw["duration"])
}

func TestDecodeExtractOutput_Playlist(t *testing.T) {
	data := []byte(`{
		"_type": "playlist",
		"title": "My Playlist",
		"entries": [
			{"id": "a", "title": "First"},
			null,
			{"id": "b", "title": "Second"}
		]
	}`)

	result, _, err := decodeExtractOutput(data)
	require.NoError(t, err)
	assert.Equal(t, domain.ResultMulti, result.Kind)
	assert.Equal(t, "My Playlist", result.Title)
	require.Equal(t, 2, result.ItemCount())
	assert.Equal(t, "First", result.Entries[0].Title)
	assert.Equal(t, "b", result.Entries[1].ID)
}

func TestDecodeExtractOutput_EmptyPlaylist(t *testing.T) {
	data := []byte(`{"_type": "playlist", "title": "Empty", "entries": []}`)

	result, _, err := decodeExtractOutput(data)
	require.NoError(t, err)
	assert.Equal(t, domain.ResultMulti, result.Kind)
	assert.Equal(t, 0, result.ItemCount())
}

func TestDecodeExtractOutput_Malformed(t *testing.T) {
	_, _, err := decodeExtractOutput([]byte("{not json"))
	assert.Error(t, err)
}

func TestFetchArgs_AudioOnly(t *testing.T) {
	args := fetchArgs(domain.FetchRequest{
		URL:            "https://youtu.be/a",
		OutputTemplate: "out/%(title)s.%(ext)s",
		AudioOnly:      true,
		MP3Quality:     "192",
		EmbedThumbnail: true,
	})

	assert.Contains(t, args, "-x")
	assert.Contains(t, args, "192K")
	assert.Contains(t, args, "--embed-thumbnail")
	assert.NotContains(t, args, "--merge-output-format")
	assert.Equal(t, "https://youtu.be/a", args[len(args)-1])
}

func TestFetchArgs_Video(t *testing.T) {
	args := fetchArgs(domain.FetchRequest{
		URL:     "https://youtu.be/a",
		Quality: "3",
	})

	assert.Contains(t, args, "bestvideo[height<=720]+bestaudio/best")
	assert.Contains(t, args, "--merge-output-format")
	assert.NotContains(t, args, "-x")
	assert.NotContains(t, args, "--embed-thumbnail")
}

func TestShellEscapeCommand(t *testing.T) {
	assert.Equal(t, "yt-dlp -F url", ShellEscapeCommand("yt-dlp", "-F", "url"))
	assert.Equal(t, `yt-dlp 'a b'`, ShellEscapeCommand("yt-dlp", "a b"))
	assert.Equal(t, `yt-dlp ''`, ShellEscapeCommand("yt-dlp", ""))
}
