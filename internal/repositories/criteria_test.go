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

func seedCriteria(t *testing.T, repo *Criteria) {
	t.Helper()

	_, err := repo.SaveAll(context.Background(), []entities.EligibilityCriterion{
		{Name: "B global mandatory", IsMandatory: true, IsActive: true},
		{Name: "A global", IsActive: true},
		{Name: "C department 1", DepartmentID: ptr(int64(1)), IsActive: true},
		{Name: "D department 2", DepartmentID: ptr(int64(2)), IsActive: true},
		{Name: "E inactive", IsActive: false},
	})
	require.NoError(t, err)
}

func names(criteria []entities.EligibilityCriterion) []string {
	return lo.Map(criteria, func(c entities.EligibilityCriterion, _ int) string { return c.Name })
}

func Test_Criteria_GetActive_WhenNoDepartments_ShouldReturnGlobalOnly(t *testing.T) {
	repo := NewCriteriaRepository(newTestDb(t))
	seedCriteria(t, repo)

	criteria, err := repo.GetActive(context.Background(), nil)

	require.NoError(t, err)
	assert.Equal(t, []string{"B global mandatory", "A global"}, names(criteria))
}

func Test_Criteria_GetActive_ShouldIncludeTargetedDepartments(t *testing.T) {
	repo := NewCriteriaRepository(newTestDb(t))
	seedCriteria(t, repo)

	criteria, err := repo.GetActive(context.Background(), []int64{1})

	require.NoError(t, err)
	assert.Equal(t, []string{"B global mandatory", "A global", "C department 1"}, names(criteria))
}

func Test_Criteria_SaveAll_ShouldKeepRequiredValue(t *testing.T) {
	repo := NewCriteriaRepository(newTestDb(t))

	ids, err := repo.SaveAll(context.Background(), []entities.EligibilityCriterion{
		{Name: "Field", CriteriaType: entities.CriteriaFieldOfStudy, Operator: entities.OpInList,
			RequiredValue: entities.List("physics", "mathematics"), IsActive: true},
	})
	require.NoError(t, err)
	require.Len(t, ids, 1)

	stored, err := repo.GetByID(context.Background(), ids[0])
	require.NoError(t, err)
	assert.Equal(t, entities.List("physics", "mathematics"), stored.RequiredValue)
}

type countingCriteria struct {
	calls    int
	criteria []entities.EligibilityCriterion
}

func (c *countingCriteria) GetActive(_ context.Context, _ []int64) ([]entities.EligibilityCriterion, error) {
	c.calls++
	return c.criteria, nil
}

func Test_CachedCriteria_ShouldCacheByDepartmentSet(t *testing.T) {
	inner := &countingCriteria{criteria: []entities.EligibilityCriterion{{ID: 1, Name: "A"}}}
	cached := NewCachedCriteria(inner, time.Minute)
	ctx := context.Background()

	_, err := cached.GetActive(ctx, []int64{2, 1})
	require.NoError(t, err)
	criteria, err := cached.GetActive(ctx, []int64{1, 2, 2})
	require.NoError(t, err)

	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, "A", criteria[0].Name)

	_, err = cached.GetActive(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)
}

func Test_CachedCriteria_WhenInvalidated_ShouldReload(t *testing.T) {
	inner := &countingCriteria{criteria: []entities.EligibilityCriterion{{ID: 1, Name: "A"}}}
	cached := NewCachedCriteria(inner, time.Minute)
	ctx := context.Background()

	_, err := cached.GetActive(ctx, nil)
	require.NoError(t, err)
	cached.Invalidate()
	_, err = cached.GetActive(ctx, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, inner.calls)
}

func Test_CachedCriteria_WhenCallerModifiesResult_ShouldKeepCachedCopy(t *testing.T) {
	inner := &countingCriteria{criteria: []entities.EligibilityCriterion{{ID: 1, Name: "A"}}}
	cached := NewCachedCriteria(inner, time.Minute)
	ctx := context.Background()

	first, err := cached.GetActive(ctx, nil)
	require.NoError(t, err)
	first[0].Name = "changed"

	second, err := cached.GetActive(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, "A", second[0].Name)
}
