package services

import (
	"context"
	"fmt"
	"github.com/asaskevich/EventBus"
	"github.com/lilhop36/osta-job-portal-sub001/internal/entities"
	"github.com/lilhop36/osta-job-portal-sub001/internal/events"
	"github.com/lilhop36/osta-job-portal-sub001/internal/logger"
	"github.com/lilhop36/osta-job-portal-sub001/internal/metrics"
	"github.com/lilhop36/osta-job-portal-sub001/internal/repositories"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"slices"
	"strings"
	"time"
)

var (
	ErrInvalidTransition    = errors.New("invalid transition")
	ErrGuardFailed          = errors.New("transition guard failed")
	ErrProjectionMismatch   = errors.New("application status does not match its history")
	// ErrConcurrentTransition means another transition of the same application
	// won the race; the caller may retry.
	ErrConcurrentTransition = errors.New("application status changed concurrently")
)

// TransitionError is returned when a transition is refused. It wraps either
// ErrInvalidTransition or ErrGuardFailed.
type TransitionError struct {
	From    entities.ApplicationStatus
	To      entities.ApplicationStatus
	Missing []string
	kind    error
}

func (e *TransitionError) Error() string {
	if len(e.Missing) == 0 {
		return fmt.Sprintf("%v: %s -> %s", e.kind, e.From, e.To)
	}
	return fmt.Sprintf("%v: %s -> %s: %s", e.kind, e.From, e.To, strings.Join(e.Missing, "; "))
}

func (e *TransitionError) Unwrap() error {
	return e.kind
}

func NewInvalidTransitionError(from, to entities.ApplicationStatus) *TransitionError {
	return &TransitionError{From: from, To: to, kind: ErrInvalidTransition}
}

func NewGuardFailedError(from, to entities.ApplicationStatus, missing []string) *TransitionError {
	return &TransitionError{From: from, To: to, Missing: missing, kind: ErrGuardFailed}
}

var transitions = map[entities.ApplicationStatus][]entities.ApplicationStatus{
	entities.StatusDraft:              {entities.StatusSubmitted},
	entities.StatusSubmitted:          {entities.StatusUnderReview, entities.StatusRejected},
	entities.StatusUnderReview:        {entities.StatusShortlisted, entities.StatusRejected},
	entities.StatusShortlisted:        {entities.StatusInterviewScheduled, entities.StatusRejected},
	entities.StatusInterviewScheduled: {entities.StatusAccepted, entities.StatusRejected},
	entities.StatusAccepted:           {entities.StatusOnboarding},
}

// AllowedTransitions lists the statuses reachable from status in one step.
func AllowedTransitions(status entities.ApplicationStatus) []entities.ApplicationStatus {
	return slices.Clone(transitions[status])
}

func CanTransition(from, to entities.ApplicationStatus) bool {
	return slices.Contains(transitions[from], to)
}

type applicationTransitioner interface {
	GetByID(ctx context.Context, id int64) (*entities.Application, error)
	ApplyTransition(ctx context.Context, applicationID int64, fn repositories.TransitionFunc) (*entities.StatusHistoryEntry, error)
}

type historyReader interface {
	GetByApplication(ctx context.Context, applicationID int64) ([]entities.StatusHistoryEntry, error)
}

type documentGate interface {
	RequiredDocumentsSatisfied(ctx context.Context, applicationID int64) (entities.DocumentCheck, error)
}

// guard returns the unmet requirements of a transition; an error means the
// requirements could not be checked.
type guard func(ctx context.Context, application *entities.Application) ([]string, error)

type StatusMachine struct {
	bus          EventBus.Bus
	applications applicationTransitioner
	history      historyReader
	guards       map[entities.ApplicationStatus][]guard
	clock        func() time.Time
}

func NewStatusMachine(bus EventBus.Bus, applications applicationTransitioner, history historyReader,
	documents documentGate, requireEligibleOnSubmit bool) (*StatusMachine, error) {

	if bus == nil {
		return nil, errors.New("event bus is nil")
	}
	if applications == nil || history == nil {
		return nil, errors.New("application repositories are nil")
	}
	if documents == nil {
		return nil, errors.New("document gate is nil")
	}

	submitGuards := []guard{requiredDocumentsGuard(documents)}
	if requireEligibleOnSubmit {
		submitGuards = append(submitGuards, eligibleGuard)
	}

	return &StatusMachine{
		bus:          bus,
		applications: applications,
		history:      history,
		guards:       map[entities.ApplicationStatus][]guard{entities.StatusSubmitted: submitGuards},
		clock:        time.Now,
	}, nil
}

// WithClock replaces the time source used for ledger timestamps.
func (m *StatusMachine) WithClock(clock func() time.Time) *StatusMachine {
	m.clock = clock
	return m
}

// Transition moves the application to target, appends the change to its
// history and publishes events.StatusChanged once the change is committed.
// actorID is nil when the system acts.
func (m *StatusMachine) Transition(ctx context.Context, applicationID int64, target entities.ApplicationStatus,
	actorID *int64, notes string) (*entities.StatusHistoryEntry, error) {

	entry, applicantID, err := m.transition(ctx, applicationID, target, actorID, notes)
	if err != nil {
		metrics.TransitionsCounter.WithLabelValues(string(target), transitionOutcome(err)).Inc()
		if errors.Is(err, ErrProjectionMismatch) {
			log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).Errorf("application %d: %v", applicationID, err)
		}
		return nil, err
	}

	metrics.TransitionsCounter.WithLabelValues(string(target), "ok").Inc()
	log.Infof("application %d moved from %s to %s", applicationID, entry.OldStatus, entry.NewStatus)

	m.bus.Publish(events.StatusChangedTopic, events.StatusChanged{ApplicantID: applicantID, Entry: *entry})
	return entry, nil
}

func (m *StatusMachine) transition(ctx context.Context, applicationID int64, target entities.ApplicationStatus,
	actorID *int64, notes string) (*entities.StatusHistoryEntry, int64, error) {

	// Guards read collaborators outside the write transaction, which holds
	// the only sqlite connection. The write refuses to proceed if the status
	// moved in between.
	current, err := m.applications.GetByID(ctx, applicationID)
	if err != nil {
		return nil, 0, err
	}
	var missing []string
	if CanTransition(current.Status, target) {
		if missing, err = m.checkGuards(ctx, current, target); err != nil {
			return nil, 0, err
		}
	}

	entry, err := m.applications.ApplyTransition(ctx, applicationID,
		func(application *entities.Application, last *entities.StatusHistoryEntry) (*entities.StatusHistoryEntry, error) {

			if err := verifyProjection(application, last); err != nil {
				return nil, err
			}

			from := application.Status
			if !CanTransition(from, target) {
				return nil, NewInvalidTransitionError(from, target)
			}
			if from != current.Status {
				return nil, errors.Wrapf(ErrConcurrentTransition, "status changed from %s to %s", current.Status, from)
			}
			if len(missing) > 0 {
				return nil, NewGuardFailedError(from, target, missing)
			}

			now := m.clock().UTC()
			if last != nil && now.Before(last.CreatedAt) {
				now = last.CreatedAt
			}

			application.Status = target
			if target == entities.StatusSubmitted {
				application.SubmittedAt = &now
			}
			if from == entities.StatusSubmitted && application.ReviewedAt == nil {
				application.ReviewedAt = &now
			}

			return &entities.StatusHistoryEntry{
				OldStatus: from,
				NewStatus: target,
				ActorID:   actorID,
				Notes:     notes,
				CreatedAt: now,
			}, nil
		})
	if err != nil {
		return nil, 0, err
	}
	return entry, current.ApplicantID, nil
}

// History returns the ledger of the application, oldest entry first.
func (m *StatusMachine) History(ctx context.Context, applicationID int64) ([]entities.StatusHistoryEntry, error) {
	if _, err := m.applications.GetByID(ctx, applicationID); err != nil {
		return nil, err
	}

	entries, err := m.history.GetByApplication(ctx, applicationID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get status history")
	}
	return entries, nil
}

// AllowedTransitions lists the statuses the application can move to right now,
// without evaluating guards.
func (m *StatusMachine) AllowedTransitions(ctx context.Context, applicationID int64) ([]entities.ApplicationStatus, error) {
	application, err := m.applications.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	return AllowedTransitions(application.Status), nil
}

func (m *StatusMachine) checkGuards(ctx context.Context, application *entities.Application,
	target entities.ApplicationStatus) ([]string, error) {

	var missing []string
	for _, check := range m.guards[target] {
		unmet, err := check(ctx, application)
		if err != nil {
			return nil, err
		}
		missing = append(missing, unmet...)
	}
	return missing, nil
}

func requiredDocumentsGuard(documents documentGate) guard {
	return func(ctx context.Context, application *entities.Application) ([]string, error) {
		check, err := documents.RequiredDocumentsSatisfied(ctx, application.ID)
		if err != nil {
			log.WithField(logger.ErrorTypeField, logger.ErrorTypeDocumentGate).
				Errorf("failed to check documents of application %d: %v", application.ID, err)
			return nil, errors.Wrap(err, "failed to check required documents")
		}
		if check.Satisfied {
			return nil, nil
		}
		if len(check.Missing) == 0 {
			return []string{"required documents are not satisfied"}, nil
		}

		missing := make([]string, 0, len(check.Missing))
		for _, documentType := range check.Missing {
			missing = append(missing, "missing document: "+documentType)
		}
		return missing, nil
	}
}

func eligibleGuard(_ context.Context, application *entities.Application) ([]string, error) {
	switch {
	case !application.WasEvaluated():
		return []string{"eligibility has not been checked"}, nil
	case application.EligibilityStatus != entities.EligibilityEligible:
		return []string{fmt.Sprintf("eligibility status is %s", application.EligibilityStatus)}, nil
	default:
		return nil, nil
	}
}

// verifyProjection checks the cached status against the last ledger entry. An
// application without history must still be a draft.
func verifyProjection(application *entities.Application, last *entities.StatusHistoryEntry) error {
	expected := entities.StatusDraft
	if last != nil {
		expected = last.NewStatus
	}
	if application.Status != expected {
		return errors.Wrapf(ErrProjectionMismatch, "status is %s, history says %s", application.Status, expected)
	}
	return nil
}

func transitionOutcome(err error) string {
	switch {
	case errors.Is(err, ErrInvalidTransition):
		return "invalid"
	case errors.Is(err, ErrGuardFailed):
		return "guard_failed"
	case errors.Is(err, ErrConcurrentTransition):
		return "conflict"
	case errors.Is(err, repositories.ErrApplicationNotFound):
		return "not_found"
	default:
		return "error"
	}
}
