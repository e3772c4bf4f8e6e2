package repositories

import (
	"context"
	"github.com/lilhop36/osta-job-portal-sub001/internal/entities"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"slices"
	"strings"
	"time"
)

// Profiles builds applicant snapshots from the profile tables maintained by the
// portal front office.
type Profiles struct {
	db *gorm.DB
}

func NewProfilesRepository(db *gorm.DB) *Profiles {
	return &Profiles{db: db}
}

func (repo *Profiles) SaveProfile(ctx context.Context, profile entities.ApplicantProfile) error {
	return repo.db.WithContext(ctx).Save(&profile).Error
}

func (repo *Profiles) AddAttribute(ctx context.Context, attribute *entities.ApplicantAttribute) error {
	return repo.db.WithContext(ctx).Create(attribute).Error
}

func (repo *Profiles) AddDocument(ctx context.Context, document *entities.ApplicantDocument) error {
	return repo.db.WithContext(ctx).Create(document).Error
}

// Snapshot reads every attribute of the application's applicant in a single
// transaction so one evaluation run sees a consistent view.
func (repo *Profiles) Snapshot(ctx context.Context, applicationID int64) (entities.ApplicantSnapshot, error) {

	snapshot := entities.ApplicantSnapshot{
		ApplicationID:        applicationID,
		Other:                map[string][]string{},
		AwaitingVerification: map[string]bool{},
		VerifiedDocuments:    map[string]bool{},
	}

	err := repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		application, err := findApplication(tx, applicationID)
		if err != nil {
			return err
		}

		var profile entities.ApplicantProfile
		err = tx.First(&profile, "applicant_id = ?", application.ApplicantID).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			snapshot.YearsOfExperience = -1
		case err != nil:
			return err
		default:
			snapshot.EducationLevel, _ = entities.ParseEducationLevel(profile.EducationLevel)
			snapshot.FieldOfStudy = profile.FieldOfStudy
			snapshot.YearsOfExperience = profile.YearsOfExperience
			if profile.DateOfBirth != nil {
				snapshot.DateOfBirth = *profile.DateOfBirth
			}
		}

		var documents []entities.ApplicantDocument
		if err = tx.Where("application_id = ?", applicationID).Find(&documents).Error; err != nil {
			return err
		}
		for _, document := range documents {
			if document.Status == entities.DocumentVerified {
				snapshot.VerifiedDocuments[document.DocumentType] = true
			}
		}

		var attributes []entities.ApplicantAttribute
		if err = tx.Where("applicant_id = ?", application.ApplicantID).
			Order("kind").Order("name").Order("value").Order("id").
			Find(&attributes).Error; err != nil {
			return err
		}
		return repo.fillAttributes(tx, &snapshot, attributes)
	})
	if err != nil {
		return entities.ApplicantSnapshot{}, err
	}

	snapshot.TakenAt = time.Now()
	return snapshot, nil
}

func (repo *Profiles) fillAttributes(tx *gorm.DB, snapshot *entities.ApplicantSnapshot, attributes []entities.ApplicantAttribute) error {

	statuses, err := documentStatuses(tx, attributes)
	if err != nil {
		return err
	}

	for _, attribute := range attributes {
		value := strings.TrimSpace(attribute.Value)
		if value == "" {
			continue
		}

		if attribute.DocumentID != nil {
			switch statuses[*attribute.DocumentID] {
			case entities.DocumentRejected:
				continue
			case entities.DocumentUploaded:
				snapshot.AwaitingVerification[strings.ToLower(value)] = true
			}
		}

		switch attribute.Kind {
		case entities.AttributeCertification:
			snapshot.Certifications = appendUnique(snapshot.Certifications, value)
		case entities.AttributeSkill:
			snapshot.Skills = appendUnique(snapshot.Skills, value)
		case entities.AttributeOther:
			snapshot.Other[attribute.Name] = appendUnique(snapshot.Other[attribute.Name], value)
		}
	}
	return nil
}

func documentStatuses(tx *gorm.DB, attributes []entities.ApplicantAttribute) (map[int64]entities.DocumentStatus, error) {
	var ids []int64
	for _, attribute := range attributes {
		if attribute.DocumentID != nil {
			ids = append(ids, *attribute.DocumentID)
		}
	}

	statuses := make(map[int64]entities.DocumentStatus, len(ids))
	if len(ids) == 0 {
		return statuses, nil
	}

	var documents []entities.ApplicantDocument
	if err := tx.Where("id IN ?", ids).Find(&documents).Error; err != nil {
		return nil, err
	}
	for _, document := range documents {
		statuses[document.ID] = document.Status
	}
	return statuses, nil
}

func appendUnique(values []string, value string) []string {
	if slices.Contains(values, value) {
		return values
	}
	return append(values, value)
}
