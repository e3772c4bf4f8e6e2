package services

import (
	"context"
	"fmt"
	"github.com/lilhop36/osta-job-portal-sub001/internal/eligibility"
	"github.com/lilhop36/osta-job-portal-sub001/internal/entities"
	"github.com/lilhop36/osta-job-portal-sub001/internal/logger"
	"github.com/lilhop36/osta-job-portal-sub001/internal/metrics"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"strings"
	"time"
)

var ErrNotEvaluated = errors.New("eligibility has not been checked yet")

const noCriteriaNote = "no criteria defined"

type criteriaProvider interface {
	GetActive(ctx context.Context, departmentIDs []int64) ([]entities.EligibilityCriterion, error)
}

type applicationReader interface {
	GetByID(ctx context.Context, id int64) (*entities.Application, error)
	GetDepartments(ctx context.Context, applicationID int64) ([]int64, error)
}

type snapshotProvider interface {
	Snapshot(ctx context.Context, applicationID int64) (entities.ApplicantSnapshot, error)
}

type evaluationStore interface {
	SaveRun(ctx context.Context, applicationID int64, results []entities.EvaluationResult, verdict entities.EligibilityVerdict) error
	GetByApplication(ctx context.Context, applicationID int64) ([]entities.EvaluationResult, error)
}

type EligibilitySummary struct {
	ApplicationID        int64                       `json:"application_id"`
	Eligible             bool                        `json:"eligible"`
	Status               entities.EligibilityStatus  `json:"eligibility_status"`
	Score                int                         `json:"score"`
	MaxScore             int                         `json:"max_score"`
	Percentage           float64                     `json:"percentage"`
	FailedMandatory      []string                    `json:"failed_mandatory"`
	AwaitingVerification []string                    `json:"awaiting_verification"`
	Notes                string                      `json:"notes"`
	CheckedAt            time.Time                   `json:"checked_at"`
	Results              []entities.EvaluationResult `json:"results"`
}

type EligibilityEngine struct {
	applications applicationReader
	criteria     criteriaProvider
	snapshots    snapshotProvider
	evaluations  evaluationStore
	clock        func() time.Time
}

func NewEligibilityEngine(applications applicationReader, criteria criteriaProvider, snapshots snapshotProvider,
	evaluations evaluationStore) (*EligibilityEngine, error) {

	if applications == nil {
		return nil, errors.New("application repository is nil")
	}
	if criteria == nil {
		return nil, errors.New("criteria repository is nil")
	}
	if snapshots == nil {
		return nil, errors.New("snapshot provider is nil")
	}
	if evaluations == nil {
		return nil, errors.New("evaluation repository is nil")
	}

	return &EligibilityEngine{
		applications: applications,
		criteria:     criteria,
		snapshots:    snapshots,
		evaluations:  evaluations,
		clock:        time.Now,
	}, nil
}

// WithClock replaces the evaluation time source.
func (e *EligibilityEngine) WithClock(clock func() time.Time) *EligibilityEngine {
	e.clock = clock
	return e
}

// RunEligibilityCheck evaluates every criterion applicable to the application
// and persists the results together with the verdict. It does not change the
// application status.
func (e *EligibilityEngine) RunEligibilityCheck(ctx context.Context, applicationID int64) (*EligibilitySummary, error) {

	start := time.Now()

	application, err := e.applications.GetByID(ctx, applicationID)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load application %d", applicationID)
	}

	departments, err := e.applications.GetDepartments(ctx, applicationID)
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).
			Errorf("failed to get departments of application %d: %v", applicationID, err)
		return nil, errors.Wrap(err, "failed to get target departments")
	}

	criteria, err := e.criteria.GetActive(ctx, departments)
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).
			Errorf("failed to get criteria for application %d: %v", applicationID, err)
		return nil, errors.Wrap(err, "failed to get applicable criteria")
	}

	snapshot, err := e.snapshots.Snapshot(ctx, applicationID)
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeSnapshot).
			Errorf("failed to take applicant snapshot for application %d: %v", applicationID, err)
		return nil, errors.Wrap(err, "failed to take applicant snapshot")
	}

	now := e.clock().UTC()
	results := make([]entities.EvaluationResult, 0, len(criteria))
	for _, criterion := range criteria {
		outcome := evaluateCriterion(snapshot, criterion, now)
		metrics.CriterionResultsCounter.WithLabelValues(string(criterion.CriteriaType), string(outcome.Result)).Inc()

		results = append(results, entities.EvaluationResult{
			ApplicationID: application.ID,
			CriteriaID:    criterion.ID,
			CriteriaName:  criterion.Name,
			IsMandatory:   criterion.IsMandatory,
			Weight:        criterion.Weight,
			CheckResult:   outcome.Result,
			ActualValue:   outcome.ActualValue,
			Score:         outcome.Score,
			Notes:         outcome.Notes,
			CheckedAt:     now,
		})
	}

	summary := summarize(application.ID, results, now)
	verdict := entities.EligibilityVerdict{
		Status:     summary.Status,
		Notes:      summary.Notes,
		Score:      summary.Score,
		MaxScore:   summary.MaxScore,
		Percentage: summary.Percentage,
		CheckedAt:  now,
	}

	if err = e.evaluations.SaveRun(ctx, application.ID, results, verdict); err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).
			Errorf("failed to save eligibility results for application %d: %v", applicationID, err)
		return nil, errors.Wrap(err, "failed to save eligibility results")
	}

	metrics.EligibilityChecksCounter.WithLabelValues(string(summary.Status)).Inc()
	metrics.EligibilityCheckDuration.Observe(time.Since(start).Seconds())
	log.Infof("eligibility of application %d checked: %s, score %d/%d",
		applicationID, summary.Status, summary.Score, summary.MaxScore)

	return summary, nil
}

// LastSummary rebuilds the summary of the last completed run from the store.
func (e *EligibilityEngine) LastSummary(ctx context.Context, applicationID int64) (*EligibilitySummary, error) {

	application, err := e.applications.GetByID(ctx, applicationID)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load application %d", applicationID)
	}
	if !application.WasEvaluated() {
		return nil, ErrNotEvaluated
	}

	results, err := e.evaluations.GetByApplication(ctx, applicationID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load eligibility results")
	}

	return summarize(application.ID, results, *application.EligibilityCheckedAt), nil
}

func evaluateCriterion(snapshot entities.ApplicantSnapshot, criterion entities.EligibilityCriterion, now time.Time) eligibility.Outcome {
	if err := eligibility.ValidateCriterion(criterion); err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeCriteria).
			Warnf("criterion %d cannot be evaluated: %v", criterion.ID, err)
		return eligibility.Outcome{Result: entities.CheckFail, Notes: eligibility.NoteUnsupportedRule}
	}
	return eligibility.Evaluate(snapshot, criterion, now)
}

func summarize(applicationID int64, results []entities.EvaluationResult, checkedAt time.Time) *EligibilitySummary {

	summary := &EligibilitySummary{
		ApplicationID:        applicationID,
		FailedMandatory:      []string{},
		AwaitingVerification: []string{},
		CheckedAt:            checkedAt,
		Results:              results,
	}

	mandatoryPending := 0
	for _, result := range results {
		summary.Score += result.Score
		summary.MaxScore += result.Weight

		if result.CheckResult == entities.CheckPending {
			summary.AwaitingVerification = append(summary.AwaitingVerification, result.CriteriaName)
		}
		if !result.IsMandatory {
			continue
		}
		switch result.CheckResult {
		case entities.CheckFail:
			summary.FailedMandatory = append(summary.FailedMandatory, result.CriteriaName)
		case entities.CheckPending:
			mandatoryPending++
		}
	}

	summary.Eligible = len(summary.FailedMandatory) == 0 && mandatoryPending == 0
	summary.Percentage = percentage(summary.Score, summary.MaxScore)

	switch {
	case summary.Eligible:
		summary.Status = entities.EligibilityEligible
	case len(summary.FailedMandatory) == 0:
		summary.Status = entities.EligibilityPending
	default:
		summary.Status = entities.EligibilityNotEligible
	}
	summary.Notes = eligibilityNotes(summary, len(results))

	return summary
}

// percentage is score/maxScore*100 rounded to two places, 0 when nothing can be scored.
func percentage(score, maxScore int) float64 {
	if maxScore <= 0 {
		return 0
	}
	p := decimal.NewFromInt(int64(score)).
		Div(decimal.NewFromInt(int64(maxScore))).
		Mul(decimal.NewFromInt(100)).
		Round(2)
	return p.InexactFloat64()
}

func eligibilityNotes(summary *EligibilitySummary, evaluated int) string {
	switch {
	case evaluated == 0:
		return noCriteriaNote
	case summary.Status == entities.EligibilityNotEligible:
		return fmt.Sprintf("failed mandatory criteria: %s", strings.Join(summary.FailedMandatory, ", "))
	case summary.Status == entities.EligibilityPending:
		return fmt.Sprintf("awaiting document verification for: %s", strings.Join(summary.AwaitingVerification, ", "))
	default:
		return "all mandatory criteria passed"
	}
}
