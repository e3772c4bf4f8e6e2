package repositories

import (
	"context"
	"github.com/lilhop36/osta-job-portal-sub001/internal/entities"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
	"time"
)

func result(criteriaID int64, name string, check entities.CheckResult, score int) entities.EvaluationResult {
	return entities.EvaluationResult{
		CriteriaID:   criteriaID,
		CriteriaName: name,
		Weight:       5,
		CheckResult:  check,
		Score:        score,
		CheckedAt:    transitionTime,
	}
}

func Test_Evaluations_SaveRun_ShouldOverwriteAndRemoveStaleRows(t *testing.T) {
	db := newTestDb(t)
	applications := NewApplicationsRepository(db)
	evaluations := NewEvaluationsRepository(db)
	ctx := context.Background()

	application := entities.NewApplication(1)
	require.NoError(t, applications.Add(ctx, application, nil))

	first := []entities.EvaluationResult{
		result(1, "A", entities.CheckFail, 0),
		result(2, "B", entities.CheckPass, 5),
	}
	require.NoError(t, evaluations.SaveRun(ctx, application.ID, first,
		entities.EligibilityVerdict{Status: entities.EligibilityNotEligible, CheckedAt: transitionTime}))

	second := []entities.EvaluationResult{
		result(1, "A", entities.CheckPass, 5),
		result(3, "C", entities.CheckPending, 0),
	}
	checkedAt := transitionTime.Add(time.Hour)
	require.NoError(t, evaluations.SaveRun(ctx, application.ID, second, entities.EligibilityVerdict{
		Status:     entities.EligibilityEligible,
		Notes:      "all mandatory criteria passed",
		Score:      5,
		MaxScore:   10,
		Percentage: 50,
		CheckedAt:  checkedAt,
	}))

	stored, err := evaluations.GetByApplication(ctx, application.ID)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	byCriterion := lo.KeyBy(stored, func(r entities.EvaluationResult) int64 { return r.CriteriaID })
	assert.Equal(t, entities.CheckPass, byCriterion[1].CheckResult)
	assert.Equal(t, 5, byCriterion[1].Score)
	assert.Equal(t, entities.CheckPending, byCriterion[3].CheckResult)
	assert.NotContains(t, byCriterion, int64(2))

	updated, err := applications.GetByID(ctx, application.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.EligibilityEligible, updated.EligibilityStatus)
	assert.Equal(t, "all mandatory criteria passed", updated.EligibilityNotes)
	assert.Equal(t, 10, updated.EligibilityMaxScore)
	assert.InDelta(t, 50, updated.EligibilityPercentage, 0.001)
	require.NotNil(t, updated.EligibilityCheckedAt)
	assert.True(t, checkedAt.Equal(*updated.EligibilityCheckedAt))
}

func Test_Evaluations_SaveRun_WhenNoResults_ShouldClearRows(t *testing.T) {
	db := newTestDb(t)
	applications := NewApplicationsRepository(db)
	evaluations := NewEvaluationsRepository(db)
	ctx := context.Background()

	application := entities.NewApplication(1)
	require.NoError(t, applications.Add(ctx, application, nil))
	require.NoError(t, evaluations.SaveRun(ctx, application.ID,
		[]entities.EvaluationResult{result(1, "A", entities.CheckPass, 5)},
		entities.EligibilityVerdict{Status: entities.EligibilityEligible, CheckedAt: transitionTime}))

	require.NoError(t, evaluations.SaveRun(ctx, application.ID, nil,
		entities.EligibilityVerdict{Status: entities.EligibilityEligible, Notes: "no criteria defined", CheckedAt: transitionTime}))

	stored, err := evaluations.GetByApplication(ctx, application.ID)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func Test_Evaluations_SaveRun_WhenApplicationMissing_ShouldReturnNotFound(t *testing.T) {
	evaluations := NewEvaluationsRepository(newTestDb(t))

	err := evaluations.SaveRun(context.Background(), 5,
		[]entities.EvaluationResult{result(1, "A", entities.CheckPass, 5)},
		entities.EligibilityVerdict{Status: entities.EligibilityEligible, CheckedAt: transitionTime})

	assert.ErrorIs(t, err, ErrApplicationNotFound)
}
