package database

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"resalelens/server/internal/models"
)

// Database stores the analysis history
type Database struct {
	db *gorm.DB
}

// NewDatabase opens (and creates if needed) the SQLite file at dbPath
func NewDatabase(dbPath string) (*Database, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &Database{db: db}, nil
}

// GetDB exposes the underlying gorm handle for transactional writers
func (d *Database) GetDB() *gorm.DB {
	return d.db
}

func (d *Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// InsertRecords writes a batch of history records using tx
func InsertRecords(tx *gorm.DB, batch []*models.HistoryRecord) error {
	if len(batch) == 0 {
		return nil
	}
	return tx.CreateInBatches(batch, 100).Error
}

// GetRecentRecords returns the newest records first
func (d *Database) GetRecentRecords(limit int) ([]models.HistoryRecord, error) {
	var records []models.HistoryRecord
	err := d.db.Order("created_at DESC").Limit(limit).Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	return records, nil
}

// GetCategorySummaries returns per-category counts and average amounts
func (d *Database) GetCategorySummaries() ([]models.CategorySummary, error) {
	var summaries []models.CategorySummary
	err := d.db.Model(&models.HistoryRecord{}).
		Select("category, COUNT(*) AS count, COALESCE(AVG(amount), 0) AS average_amount").
		Group("category").
		Order("category").
		Scan(&summaries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to summarize history: %w", err)
	}
	return summaries, nil
}

// DeleteRecordsBefore removes records created before cutoff and returns how many were deleted
func (d *Database) DeleteRecordsBefore(cutoff time.Time) (int64, error) {
	result := d.db.Where("created_at < ?", cutoff).Delete(&models.HistoryRecord{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to prune history: %w", result.Error)
	}
	return result.RowsAffected, nil
}
