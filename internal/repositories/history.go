package repositories

import (
	"context"
	"github.com/lilhop36/osta-job-portal-sub001/internal/entities"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// History is the read side of the status ledger. Entries are only ever
// appended through Applications.ApplyTransition.
type History struct {
	db *gorm.DB
}

func NewHistoryRepository(db *gorm.DB) *History {
	return &History{db: db}
}

func (repo *History) GetByApplication(ctx context.Context, applicationID int64) ([]entities.StatusHistoryEntry, error) {

	var entries []entities.StatusHistoryEntry
	if err := repo.db.WithContext(ctx).
		Where("application_id = ?", applicationID).
		Order("created_at ASC").Order("id ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (repo *History) GetLast(ctx context.Context, applicationID int64) (*entities.StatusHistoryEntry, error) {
	return lastHistoryEntry(repo.db.WithContext(ctx), applicationID)
}

// lastHistoryEntry returns nil when the ledger of the application is empty.
func lastHistoryEntry(db *gorm.DB, applicationID int64) (*entities.StatusHistoryEntry, error) {
	var entry entities.StatusHistoryEntry
	err := db.Where("application_id = ?", applicationID).
		Order("created_at DESC").Order("id DESC").
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}
