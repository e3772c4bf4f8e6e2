package repositories

import (
	"context"
	"github.com/lilhop36/osta-job-portal-sub001/internal/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
	"time"
)

func Test_Documents_ShouldReportMissingTypesIgnoringRejected(t *testing.T) {
	db := newTestDb(t)
	profiles := NewProfilesRepository(db)
	documents := NewDocumentsRepository(db, []string{"cv", "identity_document", "diploma"})
	ctx := context.Background()

	require.NoError(t, profiles.AddDocument(ctx, &entities.ApplicantDocument{ApplicationID: 1, DocumentType: "cv", Status: entities.DocumentUploaded}))
	require.NoError(t, profiles.AddDocument(ctx, &entities.ApplicantDocument{ApplicationID: 1, DocumentType: "diploma", Status: entities.DocumentRejected}))
	require.NoError(t, profiles.AddDocument(ctx, &entities.ApplicantDocument{ApplicationID: 2, DocumentType: "identity_document", Status: entities.DocumentVerified}))

	check, err := documents.RequiredDocumentsSatisfied(ctx, 1)

	require.NoError(t, err)
	assert.False(t, check.Satisfied)
	assert.Equal(t, []string{"identity_document", "diploma"}, check.Missing)
}

func Test_Documents_WhenAllPresent_ShouldBeSatisfied(t *testing.T) {
	db := newTestDb(t)
	profiles := NewProfilesRepository(db)
	documents := NewDocumentsRepository(db, []string{"cv"})
	ctx := context.Background()

	require.NoError(t, profiles.AddDocument(ctx, &entities.ApplicantDocument{ApplicationID: 1, DocumentType: "cv", Status: entities.DocumentVerified}))

	check, err := documents.RequiredDocumentsSatisfied(ctx, 1)

	require.NoError(t, err)
	assert.True(t, check.Satisfied)
	assert.Empty(t, check.Missing)
}

func Test_Profiles_Snapshot_ShouldCollectProfileAndAttributes(t *testing.T) {
	db := newTestDb(t)
	applications := NewApplicationsRepository(db)
	profiles := NewProfilesRepository(db)
	ctx := context.Background()

	application := entities.NewApplication(10)
	require.NoError(t, applications.Add(ctx, application, nil))

	dob := time.Date(1995, 6, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, profiles.SaveProfile(ctx, entities.ApplicantProfile{
		ApplicantID:       10,
		EducationLevel:    "Master's",
		FieldOfStudy:      "Physics",
		YearsOfExperience: 4,
		DateOfBirth:       &dob,
	}))

	uploaded := &entities.ApplicantDocument{ApplicationID: application.ID, DocumentType: "certificate", Status: entities.DocumentUploaded}
	rejected := &entities.ApplicantDocument{ApplicationID: application.ID, DocumentType: "certificate", Status: entities.DocumentRejected}
	verified := &entities.ApplicantDocument{ApplicationID: application.ID, DocumentType: "cv", Status: entities.DocumentVerified}
	for _, document := range []*entities.ApplicantDocument{uploaded, rejected, verified} {
		require.NoError(t, profiles.AddDocument(ctx, document))
	}

	for _, attribute := range []*entities.ApplicantAttribute{
		{ApplicantID: 10, Kind: entities.AttributeCertification, Value: "PMP", DocumentID: &uploaded.ID},
		{ApplicantID: 10, Kind: entities.AttributeCertification, Value: "CISSP", DocumentID: &rejected.ID},
		{ApplicantID: 10, Kind: entities.AttributeSkill, Value: "Go"},
		{ApplicantID: 10, Kind: entities.AttributeSkill, Value: "Go"},
		{ApplicantID: 10, Kind: entities.AttributeOther, Name: "language", Value: "English"},
		{ApplicantID: 10, Kind: entities.AttributeOther, Name: "language", Value: "  "},
		{ApplicantID: 11, Kind: entities.AttributeSkill, Value: "Rust"},
	} {
		require.NoError(t, profiles.AddAttribute(ctx, attribute))
	}

	snapshot, err := profiles.Snapshot(ctx, application.ID)

	require.NoError(t, err)
	assert.Equal(t, application.ID, snapshot.ApplicationID)
	assert.Equal(t, entities.EducationMaster, snapshot.EducationLevel)
	assert.Equal(t, "Physics", snapshot.FieldOfStudy)
	assert.Equal(t, 4, snapshot.YearsOfExperience)
	assert.True(t, dob.Equal(snapshot.DateOfBirth))
	assert.Equal(t, []string{"PMP"}, snapshot.Certifications)
	assert.Equal(t, []string{"Go"}, snapshot.Skills)
	assert.Equal(t, []string{"English"}, snapshot.Other["language"])
	assert.True(t, snapshot.IsAwaitingVerification("pmp"))
	assert.True(t, snapshot.VerifiedDocuments["cv"])
	assert.False(t, snapshot.VerifiedDocuments["certificate"])
}

func Test_Profiles_Snapshot_WhenNoProfile_ShouldMarkExperienceUnknown(t *testing.T) {
	db := newTestDb(t)
	applications := NewApplicationsRepository(db)
	profiles := NewProfilesRepository(db)
	ctx := context.Background()

	application := entities.NewApplication(10)
	require.NoError(t, applications.Add(ctx, application, nil))

	snapshot, err := profiles.Snapshot(ctx, application.ID)

	require.NoError(t, err)
	assert.Equal(t, -1, snapshot.YearsOfExperience)
	assert.Equal(t, entities.EducationUnknown, snapshot.EducationLevel)
	assert.True(t, snapshot.DateOfBirth.IsZero())
}

func Test_Profiles_Snapshot_WhenApplicationMissing_ShouldReturnNotFound(t *testing.T) {
	profiles := NewProfilesRepository(newTestDb(t))

	_, err := profiles.Snapshot(context.Background(), 3)

	assert.ErrorIs(t, err, ErrApplicationNotFound)
}
