package database

import "resalelens/server/internal/models"

func (d *Database) RunMigrations() error {
	return d.db.AutoMigrate(&models.HistoryRecord{})
}
