package repositories

import (
	"context"
	"github.com/lilhop36/osta-job-portal-sub001/internal/entities"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

// Documents answers whether an application carries every required document
// type. Verification state is not considered here; an uploaded document counts
// as present until it is rejected.
type Documents struct {
	db            *gorm.DB
	requiredTypes []string
}

func NewDocumentsRepository(db *gorm.DB, requiredTypes []string) *Documents {
	return &Documents{db: db, requiredTypes: requiredTypes}
}

func (repo *Documents) RequiredDocumentsSatisfied(ctx context.Context, applicationID int64) (entities.DocumentCheck, error) {

	var present []string
	if err := repo.db.WithContext(ctx).Model(&entities.ApplicantDocument{}).
		Where("application_id = ? AND status <> ?", applicationID, entities.DocumentRejected).
		Distinct().
		Pluck("document_type", &present).Error; err != nil {
		return entities.DocumentCheck{}, err
	}

	missing := lo.Filter(repo.requiredTypes, func(documentType string, _ int) bool {
		return !lo.Contains(present, documentType)
	})
	return entities.DocumentCheck{Satisfied: len(missing) == 0, Missing: missing}, nil
}
