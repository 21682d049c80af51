package infrastructure

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/tea-go/internal/domain"
)

// DefaultHistoryFile is the history file name looked up next to the binary
const DefaultHistoryFile = "tea-history.json"

const historyDateLayout = "2006-01-02"

// JSONHistoryStore persists download history as a JSON object keyed by
// calendar date. The file is reloaded before every query so concurrent
// processes see each other's writes; partitions left empty by removals
// are pruned on save.
type JSONHistoryStore struct {
	path   string
	logger *zap.Logger

	mu      sync.Mutex
	history map[string][]domain.HistoryEntry
}

// NewJSONHistoryStore creates a history store at path, or at the default
// location when path is empty
func NewJSONHistoryStore(path string, logger *zap.Logger) *JSONHistoryStore {
	if path == "" {
		path = DefaultHistoryFile
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JSONHistoryStore{
		path:    path,
		logger:  logger,
		history: make(map[string][]domain.HistoryEntry),
	}
}

// load reads the history file into memory. A missing or corrupt file
// yields empty history; corruption is logged but not fatal.
func (s *JSONHistoryStore) load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		s.history = make(map[string][]domain.HistoryEntry)
		return
	}

	var history map[string][]domain.HistoryEntry
	if err := json.Unmarshal(data, &history); err != nil {
		s.logger.Warn("History file is corrupt, starting fresh",
			zap.String("path", s.path),
			zap.Error(err))
		s.history = make(map[string][]domain.HistoryEntry)
		return
	}
	if history == nil {
		history = make(map[string][]domain.HistoryEntry)
	}
	s.history = history
}

func (s *JSONHistoryStore) save() error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(s.history, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write history file: %w", err)
	}
	return nil
}

// IsDownloaded reports whether the exact URL appears anywhere in history
func (s *JSONHistoryStore) IsDownloaded(url string) (bool, *domain.HistoryEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.load()

	for _, entries := range s.history {
		for _, entry := range entries {
			if entry.URL == url {
				e := entry
				return true, &e
			}
		}
	}
	return false, nil
}

// Add appends an entry under today's date partition and persists
func (s *JSONHistoryStore) Add(url, title, outputPath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.load()

	now := time.Now()
	today := now.Format(historyDateLayout)
	s.history[today] = append(s.history[today], domain.HistoryEntry{
		URL:        url,
		Title:      title,
		OutputPath: outputPath,
		Timestamp:  now.Format(time.RFC3339),
	})

	return s.save()
}

// Remove deletes every entry matching the URL, pruning partitions left
// empty. Reports whether anything was removed.
func (s *JSONHistoryStore) Remove(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.load()

	found := false
	for date, entries := range s.history {
		kept := entries[:0]
		for _, entry := range entries {
			if entry.URL == url {
				found = true
				continue
			}
			kept = append(kept, entry)
		}
		if len(kept) == 0 {
			delete(s.history, date)
		} else {
			s.history[date] = kept
		}
	}

	if !found {
		return false
	}
	if err := s.save(); err != nil {
		s.logger.Warn("Failed to save history after removal", zap.Error(err))
		return false
	}
	return true
}

// Clear drops all history
func (s *JSONHistoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = make(map[string][]domain.HistoryEntry)
	return s.save()
}

// All returns the full history keyed by date
func (s *JSONHistoryStore) All() map[string][]domain.HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.load()

	out := make(map[string][]domain.HistoryEntry, len(s.history))
	for date, entries := range s.history {
		out[date] = append([]domain.HistoryEntry(nil), entries...)
	}
	return out
}
