package services

import (
	"context"
	"github.com/lilhop36/osta-job-portal-sub001/internal/entities"
	"github.com/lilhop36/osta-job-portal-sub001/internal/repositories"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"path/filepath"
	"testing"
	"time"
)

var requiredDocuments = []string{"cv", "identity_document"}

func newTestDb(t *testing.T) *gorm.DB {
	t.Helper()

	dbCtx, err := repositories.NewDbContext(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, dbCtx.Migrate())
	t.Cleanup(func() { _ = dbCtx.Close() })

	return dbCtx.DB
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

// steppingClock advances one minute on every call.
func steppingClock(start time.Time) func() time.Time {
	current := start
	return func() time.Time {
		current = current.Add(time.Minute)
		return current
	}
}

func addApplication(t *testing.T, db *gorm.DB, applicantID int64, departmentIDs ...int64) *entities.Application {
	t.Helper()

	application := entities.NewApplication(applicantID)
	require.NoError(t, repositories.NewApplicationsRepository(db).Add(context.Background(), application, departmentIDs))
	return application
}

func addCriterion(t *testing.T, db *gorm.DB, criterion entities.EligibilityCriterion) entities.EligibilityCriterion {
	t.Helper()

	criterion.IsActive = true
	require.NoError(t, db.Create(&criterion).Error)
	return criterion
}

func addProfile(t *testing.T, db *gorm.DB, profile entities.ApplicantProfile) {
	t.Helper()
	require.NoError(t, repositories.NewProfilesRepository(db).SaveProfile(context.Background(), profile))
}

func addDocuments(t *testing.T, db *gorm.DB, applicationID int64, status entities.DocumentStatus, documentTypes ...string) {
	t.Helper()

	profiles := repositories.NewProfilesRepository(db)
	for _, documentType := range documentTypes {
		document := &entities.ApplicantDocument{ApplicationID: applicationID, DocumentType: documentType, Status: status}
		require.NoError(t, profiles.AddDocument(context.Background(), document))
	}
}
