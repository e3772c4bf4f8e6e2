package repositories

import (
	"context"
	"github.com/lilhop36/osta-job-portal-sub001/internal/entities"
	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Evaluations struct {
	db *gorm.DB
}

func NewEvaluationsRepository(db *gorm.DB) *Evaluations {
	return &Evaluations{db: db}
}

// SaveRun atomically replaces the evaluation results of an application with
// the given ones and writes the verdict onto the application. Rows of criteria
// that are not part of the run are removed.
func (repo *Evaluations) SaveRun(ctx context.Context, applicationID int64, results []entities.EvaluationResult,
	verdict entities.EligibilityVerdict) error {

	return repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findApplication(lockForUpdate(tx), applicationID); err != nil {
			return err
		}

		criteriaIDs := lo.Map(results, func(r entities.EvaluationResult, _ int) int64 { return r.CriteriaID })
		stale := tx.Where("application_id = ?", applicationID)
		if len(criteriaIDs) > 0 {
			stale = stale.Where("criteria_id NOT IN ?", criteriaIDs)
		}
		if err := stale.Delete(&entities.EvaluationResult{}).Error; err != nil {
			return err
		}

		if len(results) > 0 {
			rows := lo.Map(results, func(r entities.EvaluationResult, _ int) entities.EvaluationResult {
				r.ID = 0
				r.ApplicationID = applicationID
				return r
			})
			if err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "application_id"}, {Name: "criteria_id"}},
				DoUpdates: clause.AssignmentColumns([]string{
					"criteria_name", "is_mandatory", "weight", "check_result",
					"actual_value", "score", "notes", "checked_at",
				}),
			}).Create(&rows).Error; err != nil {
				return err
			}
		}

		checkedAt := verdict.CheckedAt
		return tx.Model(&entities.Application{}).Where("id = ?", applicationID).
			Updates(map[string]any{
				"eligibility_status":     verdict.Status,
				"eligibility_notes":      verdict.Notes,
				"eligibility_score":      verdict.Score,
				"eligibility_max_score":  verdict.MaxScore,
				"eligibility_percentage": verdict.Percentage,
				"eligibility_checked_at": &checkedAt,
			}).Error
	})
}

func (repo *Evaluations) GetByApplication(ctx context.Context, applicationID int64) ([]entities.EvaluationResult, error) {

	var results []entities.EvaluationResult
	if err := repo.db.WithContext(ctx).
		Where("application_id = ?", applicationID).
		Order("is_mandatory DESC").Order("criteria_name ASC").Order("criteria_id ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
