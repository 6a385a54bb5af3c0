// internal/store/gorm_store.go
package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pixelmural/mural-backend/internal/models"
)

// GormStore persists cell records in PostgreSQL.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) UpsertCell(ctx context.Context, rec *models.CellRecord, fields []string) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns(append(fields, "updated_at")),
	}).Create(rec).Error
	if err != nil {
		return fmt.Errorf("failed to upsert cell record %d: %w", rec.ID, err)
	}
	return nil
}

func (s *GormStore) LoadCells(ctx context.Context) ([]models.CellRecord, error) {
	var records []models.CellRecord
	if err := s.db.WithContext(ctx).Order("id").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to load cell records: %w", err)
	}
	return records, nil
}
