package domain

// HistoryEntry records one completed download. Entries are immutable once
// written.
type HistoryEntry struct {
	URL        string `json:"url"`
	Title      string `json:"title"`
	OutputPath string `json:"output_path"`
	Timestamp  string `json:"timestamp"`
}

// HistoryStore is the persisted record of completed downloads, partitioned
// by calendar date. The store on disk is the sole source of truth for
// duplicate detection; implementations reload before each query.
type HistoryStore interface {
	// IsDownloaded reports whether the exact URL appears anywhere in
	// history, returning the first matching entry
	IsDownloaded(url string) (bool, *HistoryEntry)

	// Add appends an entry under today's date partition and persists
	Add(url, title, outputPath string) error

	// Remove deletes every entry matching the URL across all partitions,
	// pruning partitions left empty. Reports whether anything was removed.
	Remove(url string) bool

	// Clear drops all history
	Clear() error

	// All returns the full history keyed by date
	All() map[string][]HistoryEntry
}
