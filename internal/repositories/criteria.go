package repositories

import (
	"context"
	"github.com/lilhop36/osta-job-portal-sub001/internal/entities"
	"gorm.io/gorm"
)

type Criteria struct {
	db *gorm.DB
}

func NewCriteriaRepository(db *gorm.DB) *Criteria {
	return &Criteria{db: db}
}

// GetActive returns active criteria that are global or scoped to one of the
// given departments, mandatory first and then by name. An empty department set
// yields the global criteria only.
func (repo *Criteria) GetActive(ctx context.Context, departmentIDs []int64) ([]entities.EligibilityCriterion, error) {

	query := repo.db.WithContext(ctx).Where("is_active = ?", true)
	if len(departmentIDs) == 0 {
		query = query.Where("department_id IS NULL")
	} else {
		query = query.Where("department_id IS NULL OR department_id IN ?", departmentIDs)
	}

	var criteria []entities.EligibilityCriterion
	if err := query.Order("is_mandatory DESC").Order("name ASC").Order("id ASC").
		Find(&criteria).Error; err != nil {
		return nil, err
	}
	return criteria, nil
}

func (repo *Criteria) GetByID(ctx context.Context, id int64) (*entities.EligibilityCriterion, error) {

	var criterion entities.EligibilityCriterion
	if err := repo.db.WithContext(ctx).First(&criterion, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &criterion, nil
}

// SaveAll creates or updates the given criteria in one transaction and returns
// their ids.
func (repo *Criteria) SaveAll(ctx context.Context, criteria []entities.EligibilityCriterion) ([]int64, error) {

	ids := make([]int64, 0, len(criteria))
	err := repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range criteria {
			if err := tx.Save(&criteria[i]).Error; err != nil {
				return err
			}
			ids = append(ids, criteria[i].ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}
