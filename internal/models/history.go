package models

import "time"

// HistoryRecord summarizes one completed analysis. Descriptions and images are never stored.
type HistoryRecord struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	RequestID string    `json:"request_id" gorm:"size:36;index"`
	Category  Category  `json:"category" gorm:"size:32;index"`
	Strategy  string    `json:"strategy" gorm:"size:32"`
	Amount    *int64    `json:"amount"`
	HasImage  bool      `json:"has_image"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
}

// CategorySummary aggregates history per category
type CategorySummary struct {
	Category      Category `json:"category"`
	Count         int64    `json:"count"`
	AverageAmount float64  `json:"average_amount"`
}
