package repositories

import (
	"context"
	"github.com/lilhop36/osta-job-portal-sub001/internal/entities"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

var ErrApplicationNotFound = errors.New("application not found")

type Applications struct {
	db *gorm.DB
}

func NewApplicationsRepository(db *gorm.DB) *Applications {
	return &Applications{db: db}
}

// Add creates a draft application targeting the given departments.
func (repo *Applications) Add(ctx context.Context, application *entities.Application, departmentIDs []int64) error {
	return repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		application.Status = entities.StatusDraft
		application.EligibilityStatus = entities.EligibilityPending
		if err := tx.Create(application).Error; err != nil {
			return err
		}

		for _, departmentID := range departmentIDs {
			link := entities.ApplicationDepartment{ApplicationID: application.ID, DepartmentID: departmentID}
			if err := tx.Create(&link).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (repo *Applications) GetByID(ctx context.Context, id int64) (*entities.Application, error) {
	return findApplication(repo.db.WithContext(ctx), id)
}

func (repo *Applications) GetDepartments(ctx context.Context, applicationID int64) ([]int64, error) {

	var ids []int64
	if err := repo.db.WithContext(ctx).Model(&entities.ApplicationDepartment{}).
		Where("application_id = ?", applicationID).
		Order("department_id").
		Pluck("department_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// GetIDsByStatuses pages through application ids in the given statuses using
// keyset pagination on id.
func (repo *Applications) GetIDsByStatuses(ctx context.Context, statuses []entities.ApplicationStatus,
	afterID int64, limit int) ([]int64, error) {

	var ids []int64
	if err := repo.db.WithContext(ctx).Model(&entities.Application{}).
		Where("status IN ? AND id > ?", statuses, afterID).
		Order("id").
		Limit(limit).
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// TransitionFunc decides on the change for a locked application. It may modify
// the application's status fields and returns the ledger entry to append.
type TransitionFunc func(application *entities.Application, last *entities.StatusHistoryEntry) (*entities.StatusHistoryEntry, error)

// ApplyTransition runs fn while holding the application lock and persists the
// status projection together with the returned ledger entry. Nothing is written
// when fn fails.
func (repo *Applications) ApplyTransition(ctx context.Context, applicationID int64, fn TransitionFunc) (*entities.StatusHistoryEntry, error) {

	var entry *entities.StatusHistoryEntry
	err := repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		application, err := findApplication(lockForUpdate(tx), applicationID)
		if err != nil {
			return err
		}

		last, err := lastHistoryEntry(tx, applicationID)
		if err != nil {
			return err
		}

		entry, err = fn(application, last)
		if err != nil {
			return err
		}
		entry.ID = 0
		entry.ApplicationID = applicationID

		if err = tx.Model(&entities.Application{}).Where("id = ?", applicationID).
			Updates(map[string]any{
				"status":       application.Status,
				"submitted_at": application.SubmittedAt,
				"reviewed_at":  application.ReviewedAt,
				"updated_at":   entry.CreatedAt,
			}).Error; err != nil {
			return err
		}

		return tx.Create(entry).Error
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func findApplication(db *gorm.DB, id int64) (*entities.Application, error) {
	var application entities.Application
	if err := db.First(&application, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, err
	}
	return &application, nil
}
