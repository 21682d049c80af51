package infrastructure

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestHistory(t *testing.T) *JSONHistoryStore {
	t.Helper()
	return NewJSONHistoryStore(filepath.Join(t.TempDir(), "tea-history.json"), zap.NewNop())
}

func TestHistory_AddAndIsDownloaded(t *testing.T) {
	s := newTestHistory(t)

	found, _ := s.IsDownloaded("https://youtu.be/a")
	assert.False(t, found)

	require.NoError(t, s.Add("https://youtu.be/a", "A Video", "downloads"))

	found, entry := s.IsDownloaded("https://youtu.be/a")
	require.True(t, found)
	assert.Equal(t, "A Video", entry.Title)
	assert.Equal(t, "downloads", entry.OutputPath)
	assert.NotEmpty(t, entry.Timestamp)
}

func TestHistory_PartitionedByDate(t *testing.T) {
	s := newTestHistory(t)
	require.NoError(t, s.Add("https://youtu.be/a", "A", "downloads"))

	all := s.All()
	require.Len(t, all, 1)
	today := time.Now().Format("2006-01-02")
	require.Contains(t, all, today)
	assert.Len(t, all[today], 1)
}

func TestHistory_RemovePrunesEmptyPartitions(t *testing.T) {
	s := newTestHistory(t)
	require.NoError(t, s.Add("https://youtu.be/a", "A", "downloads"))
	require.NoError(t, s.Add("https://youtu.be/b", "B", "downloads"))

	assert.True(t, s.Remove("https://youtu.be/a"))
	assert.False(t, s.Remove("https://youtu.be/a"))

	found, _ := s.IsDownloaded("https://youtu.be/a")
	assert.False(t, found)

	assert.True(t, s.Remove("https://youtu.be/b"))
	assert.Empty(t, s.All())

	// the pruned partition must be gone from the file too
	data, err := os.ReadFile(s.path)
	require.NoError(t, err)
	var onDisk map[string][]map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &onDisk))
	assert.Empty(t, onDisk)
}

func TestHistory_ReloadsBeforeQuery(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tea-history.json")
	writer := NewJSONHistoryStore(path, zap.NewNop())
	reader := NewJSONHistoryStore(path, zap.NewNop())

	require.NoError(t, writer.Add("https://youtu.be/a", "A", "downloads"))

	found, _ := reader.IsDownloaded("https://youtu.be/a")
	assert.True(t, found)
}

func TestHistory_CorruptFileStartsFresh(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tea-history.json")
	require.NoError(t, os.WriteFile(path, []byte("{corrupt"), 0644))

	s := NewJSONHistoryStore(path, zap.NewNop())
	found, _ := s.IsDownloaded("https://youtu.be/a")
	assert.False(t, found)

	require.NoError(t, s.Add("https://youtu.be/a", "A", "downloads"))
	found, _ = s.IsDownloaded("https://youtu.be/a")
	assert.True(t, found)
}

func TestHistory_Clear(t *testing.T) {
	s := newTestHistory(t)
	require.NoError(t, s.Add("https://youtu.be/a", "A", "downloads"))
	require.NoError(t, s.Clear())
	assert.Empty(t, s.All())
}
