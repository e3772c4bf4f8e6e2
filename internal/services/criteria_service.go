package services

import (
	"context"
	stderrors "errors"
	"github.com/asaskevich/EventBus"
	"github.com/lilhop36/osta-job-portal-sub001/internal/eligibility"
	"github.com/lilhop36/osta-job-portal-sub001/internal/entities"
	"github.com/lilhop36/osta-job-portal-sub001/internal/events"
	"github.com/lilhop36/osta-job-portal-sub001/internal/logger"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type criteriaStore interface {
	SaveAll(ctx context.Context, criteria []entities.EligibilityCriterion) ([]int64, error)
}

// CriteriaService is the validating write path for criterion definitions.
type CriteriaService struct {
	bus      EventBus.Bus
	criteria criteriaStore
}

func NewCriteriaService(bus EventBus.Bus, criteria criteriaStore) *CriteriaService {
	return &CriteriaService{bus: bus, criteria: criteria}
}

// Import validates every definition and saves them all or none. Validation
// problems are returned joined, one *eligibility.ValidationError per criterion.
func (s *CriteriaService) Import(ctx context.Context, criteria []entities.EligibilityCriterion) ([]int64, error) {

	if len(criteria) == 0 {
		return nil, errors.New("no criteria to import")
	}

	var invalid []error
	for _, criterion := range criteria {
		if err := eligibility.ValidateCriterion(criterion); err != nil {
			invalid = append(invalid, err)
		}
	}
	if len(invalid) > 0 {
		return nil, stderrors.Join(invalid...)
	}

	ids, err := s.criteria.SaveAll(ctx, criteria)
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).Errorf("failed to save criteria: %v", err)
		return nil, errors.Wrap(err, "failed to save criteria")
	}

	log.Infof("imported %d criteria", len(ids))
	s.bus.Publish(events.CriteriaChangedTopic, events.CriteriaChanged{CriteriaIDs: ids})
	return ids, nil
}
