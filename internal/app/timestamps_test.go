package app

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yourusername/tea-go/internal/domain"
)

func TestTimeToSeconds(t *testing.T) {
	assert.Equal(t, 0, TimeToSeconds("0:00"))
	assert.Equal(t, 90, TimeToSeconds("1:30"))
	assert.Equal(t, 3661, TimeToSeconds("1:01:01"))
	assert.Equal(t, 754, TimeToSeconds(" 12:34 "))
	assert.Equal(t, 0, TimeToSeconds("abc"))
	assert.Equal(t, 0, TimeToSeconds("1:2:3:4"))
}

func TestFormatTime(t *testing.T) {
	assert.Equal(t, "0:00", FormatTime(0))
	assert.Equal(t, "1:30", FormatTime(90))
	assert.Equal(t, "1:01:01", FormatTime(3661))
	assert.Equal(t, "0:00", FormatTime(-5))
	assert.Equal(t, "59:59", FormatTime(3599))
}

func TestParseList_PerLine(t *testing.T) {
	p := NewTimestampProcessor(nil, zap.NewNop())

	text := "0:00 Intro\n1:30 Verse\n3:00 Outro"
	clips := p.ParseList(text, "5:00")

	require.Len(t, clips, 3)
	assert.Equal(t, domain.ClipTimestamp{Start: "0:00", End: "1:30", Title: "Intro"}, clips[0])
	assert.Equal(t, domain.ClipTimestamp{Start: "1:30", End: "3:00", Title: "Verse"}, clips[1])
	assert.Equal(t, domain.ClipTimestamp{Start: "3:00", End: "5:00", Title: "Outro"}, clips[2])
}

func TestParseList_PerLine_LastDroppedWithoutDuration(t *testing.T) {
	p := NewTimestampProcessor(nil, zap.NewNop())

	clips := p.ParseList("0:00 Intro\n1:30 Outro", "")

	require.Len(t, clips, 1)
	assert.Equal(t, "Intro", clips[0].Title)
}

func TestParseList_Ranges(t *testing.T) {
	p := NewTimestampProcessor(nil, zap.NewNop())

	clips := p.ParseList("0:00-5:30 Intro, 5:30-10:00", "")

	require.Len(t, clips, 2)
	assert.Equal(t, domain.ClipTimestamp{Start: "0:00", End: "5:30", Title: "Intro"}, clips[0])
	assert.Equal(t, domain.ClipTimestamp{Start: "5:30", End: "10:00", Title: "Clip 2"}, clips[1])
}

func TestLoadFromJSON_BareArray(t *testing.T) {
	p := NewTimestampProcessor(nil, zap.NewNop())
	path := filepath.Join(t.TempDir(), "clips.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"start": "0:00", "end": "1:30", "title": "Intro"},
		{"start": "1:30", "end": "3:00"}
	]`), 0644))

	clips, err := p.LoadFromJSON(path)
	require.NoError(t, err)
	require.Len(t, clips, 2)
	assert.Equal(t, "Intro", clips[0].Title)
	assert.Equal(t, "Clip 2", clips[1].Title)
}

func TestLoadFromJSON_WrappedAndSkipsInvalid(t *testing.T) {
	p := NewTimestampProcessor(nil, zap.NewNop())
	path := filepath.Join(t.TempDir(), "clips.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"clips": [
		{"start": "0:00", "end": "1:30", "title": "Keep"},
		{"start": "oops", "end": "1:30", "title": "Bad format"},
		{"start": "2:00", "title": "Missing end"}
	]}`), 0644))

	clips, err := p.LoadFromJSON(path)
	require.NoError(t, err)
	require.Len(t, clips, 1)
	assert.Equal(t, "Keep", clips[0].Title)
}

func TestLoadFromJSON_Errors(t *testing.T) {
	p := NewTimestampProcessor(nil, zap.NewNop())

	_, err := p.LoadFromJSON("clips.txt")
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))
	_, err = p.LoadFromJSON(path)
	assert.Error(t, err)

	_, err = p.LoadFromJSON(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestParseDescription(t *testing.T) {
	p := NewTimestampProcessor(nil, zap.NewNop())

	description := `Check out my channel!
0:00 - Intro
[1:30] Verse
(3:00) Bridge
4:00 https://example.com/ignored
9:00 Past the end
1:30 Duplicate verse`

	clips := p.ParseDescription(description, 300)

	require.Len(t, clips, 3)
	assert.Equal(t, domain.ClipTimestamp{Start: "0:00", End: "1:30", Title: "Intro"}, clips[0])
	assert.Equal(t, domain.ClipTimestamp{Start: "1:30", End: "3:00", Title: "Verse"}, clips[1])
	assert.Equal(t, domain.ClipTimestamp{Start: "3:00", End: "5:00", Title: "Bridge"}, clips[2])
}

func TestParseDescription_LongMultiByteTitle(t *testing.T) {
	p := NewTimestampProcessor(nil, zap.NewNop())

	clips := p.ParseDescription("0:00 - "+strings.Repeat("Ж", 120), 300)

	require.Len(t, clips, 1)
	assert.True(t, utf8.ValidString(clips[0].Title))
	assert.Equal(t, strings.Repeat("Ж", 100), clips[0].Title)
}

func TestParseDescription_NoMarks(t *testing.T) {
	p := NewTimestampProcessor(nil, zap.NewNop())
	assert.Empty(t, p.ParseDescription("just some text\nwith no times", 300))
}

func TestExtractChapters_AuthoredChapters(t *testing.T) {
	ext := &mockExtractor{
		probeMeta: map[string]interface{}{
			"chapters": []interface{}{
				map[string]interface{}{"start_time": 0.0, "end_time": 90.0, "title": "Intro"},
				map[string]interface{}{"start_time": 90.0, "end_time": 300.0, "title": "Main"},
			},
		},
		probeResult: &domain.ExtractResult{Kind: domain.ResultSingle, Title: "Video"},
	}
	p := NewTimestampProcessor(ext, zap.NewNop())

	clips := p.ExtractChapters(context.Background(), "https://youtu.be/abc")

	require.Len(t, clips, 2)
	assert.Equal(t, domain.ClipTimestamp{Start: "0:00", End: "1:30", Title: "Intro"}, clips[0])
	assert.Equal(t, domain.ClipTimestamp{Start: "1:30", End: "5:00", Title: "Main"}, clips[1])
}

func TestExtractChapters_DescriptionFallback(t *testing.T) {
	ext := &mockExtractor{
		probeMeta: map[string]interface{}{
			"description": "0:00 Intro\n2:00 Outro",
			"duration":    240.0,
		},
		probeResult: &domain.ExtractResult{Kind: domain.ResultSingle, Title: "Video"},
	}
	p := NewTimestampProcessor(ext, zap.NewNop())

	clips := p.ExtractChapters(context.Background(), "https://youtu.be/abc")

	require.Len(t, clips, 2)
	assert.Equal(t, "4:00", clips[1].End)
}

func TestExtractChapters_ProbeFailure(t *testing.T) {
	ext := &mockExtractor{probeErr: assert.AnError}
	p := NewTimestampProcessor(ext, zap.NewNop())

	assert.Empty(t, p.ExtractChapters(context.Background(), "https://youtu.be/abc"))
}
