package services

import (
	"context"
	"github.com/asaskevich/EventBus"
	"github.com/lilhop36/osta-job-portal-sub001/internal/entities"
	"github.com/lilhop36/osta-job-portal-sub001/internal/events"
	"github.com/lilhop36/osta-job-portal-sub001/internal/repositories"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"testing"
	"time"
)

var transitionStart = time.Date(2026, time.April, 1, 9, 0, 0, 0, time.UTC)

type machineFixture struct {
	db           *gorm.DB
	bus          EventBus.Bus
	machine      *StatusMachine
	applications *repositories.Applications
	history      *repositories.History
}

func newMachineFixture(t *testing.T, requireEligibleOnSubmit bool) *machineFixture {
	t.Helper()

	db := newTestDb(t)
	bus := EventBus.New()
	applications := repositories.NewApplicationsRepository(db)
	history := repositories.NewHistoryRepository(db)
	documents := repositories.NewDocumentsRepository(db, requiredDocuments)

	machine, err := NewStatusMachine(bus, applications, history, documents, requireEligibleOnSubmit)
	require.NoError(t, err)

	return &machineFixture{
		db:           db,
		bus:          bus,
		machine:      machine.WithClock(steppingClock(transitionStart)),
		applications: applications,
		history:      history,
	}
}

// submittedApplication creates an application with all documents and submits it.
func (f *machineFixture) submittedApplication(t *testing.T) *entities.Application {
	t.Helper()

	application := addApplication(t, f.db, 100)
	addDocuments(t, f.db, application.ID, entities.DocumentUploaded, requiredDocuments...)
	_, err := f.machine.Transition(context.Background(), application.ID, entities.StatusSubmitted, nil, "")
	require.NoError(t, err)
	return application
}

// moveTo drives the application along the main path until it reaches target.
func (f *machineFixture) moveTo(t *testing.T, applicationID int64, target entities.ApplicationStatus) {
	t.Helper()

	path := []entities.ApplicationStatus{
		entities.StatusUnderReview, entities.StatusShortlisted, entities.StatusInterviewScheduled,
		entities.StatusAccepted, entities.StatusOnboarding,
	}
	current, err := f.applications.GetByID(context.Background(), applicationID)
	require.NoError(t, err)

	for _, next := range path {
		if current.Status == target {
			return
		}
		_, err = f.machine.Transition(context.Background(), applicationID, next, nil, "")
		require.NoError(t, err)
		current.Status = next
	}
	require.Equal(t, target, current.Status)
}

func (f *machineFixture) status(t *testing.T, applicationID int64) entities.ApplicationStatus {
	t.Helper()

	application, err := f.applications.GetByID(context.Background(), applicationID)
	require.NoError(t, err)
	return application.Status
}

func Test_Transition_AlongMainPath_ShouldRecordEveryStep(t *testing.T) {
	f := newMachineFixture(t, false)
	application := f.submittedApplication(t)
	actor := int64(7)

	_, err := f.machine.Transition(context.Background(), application.ID, entities.StatusUnderReview, &actor, "picked up")
	require.NoError(t, err)
	f.moveTo(t, application.ID, entities.StatusOnboarding)

	entries, err := f.machine.History(context.Background(), application.ID)
	require.NoError(t, err)
	require.Len(t, entries, 6)

	assert.Equal(t, entities.StatusDraft, entries[0].OldStatus)
	assert.Equal(t, entities.StatusSubmitted, entries[0].NewStatus)
	assert.Nil(t, entries[0].ActorID)
	assert.Equal(t, entities.StatusUnderReview, entries[1].NewStatus)
	require.NotNil(t, entries[1].ActorID)
	assert.Equal(t, actor, *entries[1].ActorID)
	assert.Equal(t, "picked up", entries[1].Notes)
	assert.Equal(t, entities.StatusOnboarding, entries[5].NewStatus)
	for i := 1; i < len(entries); i++ {
		assert.Equal(t, entries[i-1].NewStatus, entries[i].OldStatus)
		assert.False(t, entries[i].CreatedAt.Before(entries[i-1].CreatedAt))
	}

	stored, err := f.applications.GetByID(context.Background(), application.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.StatusOnboarding, stored.Status)
	require.NotNil(t, stored.SubmittedAt)
	require.NotNil(t, stored.ReviewedAt)
	assert.True(t, stored.SubmittedAt.Equal(entries[0].CreatedAt))
	assert.True(t, stored.ReviewedAt.Equal(entries[1].CreatedAt))
}

func Test_Transition_WhenSkippingStages_ShouldReturnInvalidTransition(t *testing.T) {
	f := newMachineFixture(t, false)
	application := f.submittedApplication(t)

	entry, err := f.machine.Transition(context.Background(), application.ID, entities.StatusAccepted, nil, "")

	assert.Nil(t, entry)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	var transitionErr *TransitionError
	require.True(t, errors.As(err, &transitionErr))
	assert.Equal(t, entities.StatusSubmitted, transitionErr.From)
	assert.Equal(t, entities.StatusAccepted, transitionErr.To)

	assert.Equal(t, entities.StatusSubmitted, f.status(t, application.ID))
	entries, err := f.history.GetByApplication(context.Background(), application.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func Test_Transition_FromEveryPreDecisionState_ShouldAllowRejection(t *testing.T) {
	for _, status := range []entities.ApplicationStatus{
		entities.StatusSubmitted, entities.StatusUnderReview, entities.StatusShortlisted, entities.StatusInterviewScheduled,
	} {
		t.Run(string(status), func(t *testing.T) {
			f := newMachineFixture(t, false)
			application := f.submittedApplication(t)
			f.moveTo(t, application.ID, status)

			entry, err := f.machine.Transition(context.Background(), application.ID, entities.StatusRejected, nil, "no budget")

			require.NoError(t, err)
			assert.Equal(t, status, entry.OldStatus)
			assert.Equal(t, entities.StatusRejected, entry.NewStatus)
			assert.Equal(t, entities.StatusRejected, f.status(t, application.ID))
		})
	}
}

func Test_Transition_FromDecidedStates_ShouldRefuseRejectionAndReopening(t *testing.T) {
	f := newMachineFixture(t, false)
	application := f.submittedApplication(t)
	f.moveTo(t, application.ID, entities.StatusAccepted)

	_, err := f.machine.Transition(context.Background(), application.ID, entities.StatusDraft, nil, "")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = f.machine.Transition(context.Background(), application.ID, entities.StatusRejected, nil, "")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	assert.Equal(t, entities.StatusAccepted, f.status(t, application.ID))
}

func Test_Transition_FromTerminalState_ShouldAlwaysFail(t *testing.T) {
	f := newMachineFixture(t, false)
	application := f.submittedApplication(t)
	_, err := f.machine.Transition(context.Background(), application.ID, entities.StatusRejected, nil, "")
	require.NoError(t, err)

	for _, target := range entities.AllApplicationStatuses {
		_, err = f.machine.Transition(context.Background(), application.ID, target, nil, "")
		assert.ErrorIs(t, err, ErrInvalidTransition, "rejected -> %s", target)
	}
}

func Test_Transition_WhenDocumentsMissing_ShouldFailGuardAndKeepDraft(t *testing.T) {
	f := newMachineFixture(t, false)
	application := addApplication(t, f.db, 100)
	addDocuments(t, f.db, application.ID, entities.DocumentUploaded, "cv")
	addDocuments(t, f.db, application.ID, entities.DocumentRejected, "identity_document")

	entry, err := f.machine.Transition(context.Background(), application.ID, entities.StatusSubmitted, nil, "")

	assert.Nil(t, entry)
	assert.ErrorIs(t, err, ErrGuardFailed)
	var transitionErr *TransitionError
	require.True(t, errors.As(err, &transitionErr))
	assert.Equal(t, []string{"missing document: identity_document"}, transitionErr.Missing)

	stored, err := f.applications.GetByID(context.Background(), application.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.StatusDraft, stored.Status)
	assert.Nil(t, stored.SubmittedAt)

	entries, err := f.history.GetByApplication(context.Background(), application.ID)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func Test_Transition_WhenEligibilityRequiredButNotChecked_ShouldFailGuard(t *testing.T) {
	f := newMachineFixture(t, true)
	application := addApplication(t, f.db, 100)
	addDocuments(t, f.db, application.ID, entities.DocumentVerified, requiredDocuments...)

	_, err := f.machine.Transition(context.Background(), application.ID, entities.StatusSubmitted, nil, "")

	var transitionErr *TransitionError
	require.True(t, errors.As(err, &transitionErr))
	assert.ErrorIs(t, err, ErrGuardFailed)
	assert.Equal(t, []string{"eligibility has not been checked"}, transitionErr.Missing)
}

func Test_Transition_WhenEligibilityRequiredAndEligible_ShouldSubmit(t *testing.T) {
	f := newMachineFixture(t, true)
	application := addApplication(t, f.db, 100)
	addDocuments(t, f.db, application.ID, entities.DocumentVerified, requiredDocuments...)

	engine := newTestEngine(t, f.db)
	summary, err := engine.RunEligibilityCheck(context.Background(), application.ID)
	require.NoError(t, err)
	require.True(t, summary.Eligible)

	_, err = f.machine.Transition(context.Background(), application.ID, entities.StatusSubmitted, nil, "")

	require.NoError(t, err)
	assert.Equal(t, entities.StatusSubmitted, f.status(t, application.ID))
}

func Test_Transition_WhenStatusDiffersFromHistory_ShouldReportProjectionMismatch(t *testing.T) {
	f := newMachineFixture(t, false)
	application := addApplication(t, f.db, 100)
	addDocuments(t, f.db, application.ID, entities.DocumentUploaded, requiredDocuments...)
	require.NoError(t, f.db.Model(&entities.Application{}).Where("id = ?", application.ID).
		Update("status", entities.StatusUnderReview).Error)

	_, err := f.machine.Transition(context.Background(), application.ID, entities.StatusShortlisted, nil, "")

	assert.ErrorIs(t, err, ErrProjectionMismatch)
	assert.NotErrorIs(t, err, ErrInvalidTransition)
	entries, err := f.history.GetByApplication(context.Background(), application.ID)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func Test_Transition_WhenApplicationMissing_ShouldReturnNotFound(t *testing.T) {
	f := newMachineFixture(t, false)

	_, err := f.machine.Transition(context.Background(), 404, entities.StatusSubmitted, nil, "")

	assert.ErrorIs(t, err, repositories.ErrApplicationNotFound)
}

func Test_Transition_ShouldPublishCommittedEntry(t *testing.T) {
	f := newMachineFixture(t, false)

	var published []events.StatusChanged
	require.NoError(t, f.bus.Subscribe(events.StatusChangedTopic, func(event events.StatusChanged) {
		stored, err := f.applications.GetByID(context.Background(), event.Entry.ApplicationID)
		require.NoError(t, err)
		assert.Equal(t, event.Entry.NewStatus, stored.Status)
		published = append(published, event)
	}))

	application := f.submittedApplication(t)

	require.Len(t, published, 1)
	assert.Equal(t, int64(100), published[0].ApplicantID)
	assert.Equal(t, application.ID, published[0].Entry.ApplicationID)
	assert.NotZero(t, published[0].Entry.ID)
	assert.Equal(t, entities.StatusSubmitted, published[0].Entry.NewStatus)

	_, err := f.machine.Transition(context.Background(), application.ID, entities.StatusAccepted, nil, "")
	require.Error(t, err)
	assert.Len(t, published, 1)
}

func Test_Transition_WhenClockGoesBack_ShouldKeepLedgerOrder(t *testing.T) {
	f := newMachineFixture(t, false)
	application := f.submittedApplication(t)

	f.machine.WithClock(fixedClock(transitionStart.Add(-time.Hour)))
	_, err := f.machine.Transition(context.Background(), application.ID, entities.StatusUnderReview, nil, "")
	require.NoError(t, err)
	_, err = f.machine.Transition(context.Background(), application.ID, entities.StatusShortlisted, nil, "")
	require.NoError(t, err)

	last, err := f.history.GetLast(context.Background(), application.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.StatusShortlisted, last.NewStatus)
}

func Test_AllowedTransitions_ShouldFollowLifecycle(t *testing.T) {
	cases := map[entities.ApplicationStatus][]entities.ApplicationStatus{
		entities.StatusDraft:              {entities.StatusSubmitted},
		entities.StatusSubmitted:          {entities.StatusUnderReview, entities.StatusRejected},
		entities.StatusUnderReview:        {entities.StatusShortlisted, entities.StatusRejected},
		entities.StatusShortlisted:        {entities.StatusInterviewScheduled, entities.StatusRejected},
		entities.StatusInterviewScheduled: {entities.StatusAccepted, entities.StatusRejected},
		entities.StatusAccepted:           {entities.StatusOnboarding},
		entities.StatusRejected:           nil,
		entities.StatusOnboarding:         nil,
	}

	for status, expected := range cases {
		assert.ElementsMatch(t, expected, AllowedTransitions(status), "from %s", status)
		assert.False(t, CanTransition(status, status))
	}

	assert.True(t, entities.StatusRejected.IsTerminal())
	assert.True(t, entities.StatusOnboarding.IsTerminal())
}

func Test_AllowedTransitionsOfApplication_ShouldUseCurrentStatus(t *testing.T) {
	f := newMachineFixture(t, false)
	application := f.submittedApplication(t)

	allowed, err := f.machine.AllowedTransitions(context.Background(), application.ID)

	require.NoError(t, err)
	assert.Equal(t, []entities.ApplicationStatus{entities.StatusUnderReview, entities.StatusRejected}, allowed)

	_, err = f.machine.History(context.Background(), 404)
	assert.ErrorIs(t, err, repositories.ErrApplicationNotFound)
}
