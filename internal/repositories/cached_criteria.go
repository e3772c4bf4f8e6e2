package repositories

import (
	"context"
	"github.com/lilhop36/osta-job-portal-sub001/internal/entities"
	gocache "github.com/patrickmn/go-cache"
	"slices"
	"strconv"
	"strings"
	"time"
)

type criteriaRepository interface {
	GetActive(ctx context.Context, departmentIDs []int64) ([]entities.EligibilityCriterion, error)
}

type CachedCriteria struct {
	repo  criteriaRepository
	cache *gocache.Cache
}

func NewCachedCriteria(repo criteriaRepository, ttl time.Duration) *CachedCriteria {
	return &CachedCriteria{repo: repo, cache: gocache.New(ttl, 2*ttl)}
}

func (c *CachedCriteria) GetActive(ctx context.Context, departmentIDs []int64) ([]entities.EligibilityCriterion, error) {
	key := scopeKey(departmentIDs)
	if value, found := c.cache.Get(key); found {
		return slices.Clone(value.([]entities.EligibilityCriterion)), nil
	}

	criteria, err := c.repo.GetActive(ctx, departmentIDs)
	if err != nil {
		return nil, err
	}

	c.cache.Set(key, slices.Clone(criteria), gocache.DefaultExpiration)
	return criteria, nil
}

// Invalidate drops every cached scope. Called when criteria definitions change.
func (c *CachedCriteria) Invalidate() {
	c.cache.Flush()
}

func scopeKey(departmentIDs []int64) string {
	sorted := slices.Clone(departmentIDs)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	parts := make([]string, len(sorted))
	for i, id := range sorted {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return "scope:" + strings.Join(parts, ",")
}
