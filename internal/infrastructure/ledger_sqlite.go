package infrastructure

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yourusername/tea-go/internal/domain"
)

// SQLiteLedger implements OutcomeRepository using SQLite
type SQLiteLedger struct {
	db *gorm.DB
}

// NewSQLiteLedger opens the outcome ledger at dbPath, migrating the
// schema on first use
func NewSQLiteLedger(dbPath string) (*SQLiteLedger, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger database: %w", err)
	}

	if err := db.AutoMigrate(&domain.DownloadRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate ledger database: %w", err)
	}

	return &SQLiteLedger{db: db}, nil
}

// Record inserts a finished record
func (l *SQLiteLedger) Record(record *domain.DownloadRecord) error {
	return l.db.Create(record).Error
}

// FindByURL returns all records for a URL, newest first
func (l *SQLiteLedger) FindByURL(url string) ([]*domain.DownloadRecord, error) {
	var records []*domain.DownloadRecord
	err := l.db.Where("url = ?", url).
		Order("created_at DESC").
		Find(&records).Error
	return records, err
}

// RecentBatch returns the records of the most recent batch
func (l *SQLiteLedger) RecentBatch() ([]*domain.DownloadRecord, error) {
	var latest domain.DownloadRecord
	err := l.db.Order("created_at DESC").First(&latest).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var records []*domain.DownloadRecord
	err = l.db.Where("batch_id = ?", latest.BatchID).
		Order("created_at ASC").
		Find(&records).Error
	return records, err
}

// Stats aggregates counts across the ledger
func (l *SQLiteLedger) Stats() (*domain.LedgerStats, error) {
	stats := &domain.LedgerStats{}

	if err := l.db.Model(&domain.DownloadRecord{}).Count(&stats.Total).Error; err != nil {
		return nil, err
	}

	counts := []struct {
		status domain.RecordStatus
		dest   *int64
	}{
		{domain.RecordSucceeded, &stats.Succeeded},
		{domain.RecordFailed, &stats.Failed},
		{domain.RecordSkipped, &stats.Skipped},
	}
	for _, c := range counts {
		if err := l.db.Model(&domain.DownloadRecord{}).
			Where("status = ?", c.status).
			Count(c.dest).Error; err != nil {
			return nil, err
		}
	}

	var items struct{ Total int64 }
	err := l.db.Model(&domain.DownloadRecord{}).
		Select("COALESCE(SUM(item_count), 0) as total").
		Where("status = ?", domain.RecordSucceeded).
		Scan(&items).Error
	if err != nil {
		return nil, err
	}
	stats.Items = items.Total

	return stats, nil
}

// Close closes the underlying database connection
func (l *SQLiteLedger) Close() error {
	sqlDB, err := l.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
