package domain

import (
	"time"

	"github.com/google/uuid"
)

// RecordStatus is the terminal status of a ledger row
type RecordStatus string

const (
	RecordSucceeded RecordStatus = "succeeded"
	RecordFailed    RecordStatus = "failed"
	RecordSkipped   RecordStatus = "skipped"
)

// DownloadRecord is one attempted URL persisted to the outcome ledger.
// The ledger is diagnostic bookkeeping; duplicate detection stays with
// the history store.
type DownloadRecord struct {
	ID           string       `json:"id" gorm:"primaryKey"`
	BatchID      string       `json:"batch_id" gorm:"not null;index"`
	URL          string       `json:"url" gorm:"not null;index"`
	Kind         ContentKind  `json:"kind"`
	Status       RecordStatus `json:"status" gorm:"not null;index"`
	Title        string       `json:"title,omitempty"`
	ItemCount    int          `json:"item_count" gorm:"default:0"`
	ErrorMessage string       `json:"error_message,omitempty"`
	OutputPath   string       `json:"output_path,omitempty"`
	CreatedAt    time.Time    `json:"created_at" gorm:"autoCreateTime"`
}

// NewDownloadRecord builds a ledger row from a finished outcome
func NewDownloadRecord(batchID string, outcome DownloadOutcome, outputPath string) *DownloadRecord {
	status := RecordFailed
	if outcome.Success {
		status = RecordSucceeded
	}
	return &DownloadRecord{
		ID:           uuid.New().String(),
		BatchID:      batchID,
		URL:          outcome.URL,
		Kind:         outcome.Kind,
		Status:       status,
		Title:        outcome.Title,
		ItemCount:    outcome.ItemCount,
		ErrorMessage: outcome.Error,
		OutputPath:   outputPath,
	}
}

// NewSkippedRecord builds a ledger row for a URL skipped as a duplicate
func NewSkippedRecord(batchID, url string) *DownloadRecord {
	return &DownloadRecord{
		ID:      uuid.New().String(),
		BatchID: batchID,
		URL:     url,
		Status:  RecordSkipped,
	}
}

// LedgerStats summarizes the outcome ledger
type LedgerStats struct {
	Total     int64 `json:"total"`
	Succeeded int64 `json:"succeeded"`
	Failed    int64 `json:"failed"`
	Skipped   int64 `json:"skipped"`
	Items     int64 `json:"items"`
}

// OutcomeRepository persists download records
type OutcomeRepository interface {
	// Record inserts a finished record
	Record(record *DownloadRecord) error

	// FindByURL returns all records for a URL, newest first
	FindByURL(url string) ([]*DownloadRecord, error)

	// RecentBatch returns the records of the most recent batch
	RecentBatch() ([]*DownloadRecord, error)

	// Stats aggregates counts across the ledger
	Stats() (*LedgerStats, error)

	// Close releases the underlying storage
	Close() error
}
