package entities

import (
	"errors"
	"time"
)

type ApplicationStatus string

const (
	StatusDraft              ApplicationStatus = "draft"
	StatusSubmitted          ApplicationStatus = "submitted"
	StatusUnderReview        ApplicationStatus = "under_review"
	StatusShortlisted        ApplicationStatus = "shortlisted"
	StatusInterviewScheduled ApplicationStatus = "interview_scheduled"
	StatusAccepted           ApplicationStatus = "accepted"
	StatusRejected           ApplicationStatus = "rejected"
	StatusOnboarding         ApplicationStatus = "onboarding"
)

var AllApplicationStatuses = []ApplicationStatus{
	StatusDraft, StatusSubmitted, StatusUnderReview, StatusShortlisted,
	StatusInterviewScheduled, StatusAccepted, StatusRejected, StatusOnboarding,
}

func ToApplicationStatus(s string) (ApplicationStatus, error) {
	for _, status := range AllApplicationStatuses {
		if string(status) == s {
			return status, nil
		}
	}
	return "", errors.New("invalid application status")
}

func (s ApplicationStatus) IsTerminal() bool {
	return s == StatusRejected || s == StatusOnboarding
}

type EligibilityStatus string

const (
	EligibilityPending     EligibilityStatus = "pending"
	EligibilityEligible    EligibilityStatus = "eligible"
	EligibilityNotEligible EligibilityStatus = "not_eligible"
)

// Application is mutated only by the eligibility engine (Eligibility* fields)
// and the status machine (Status, SubmittedAt, ReviewedAt).
type Application struct {
	ID                    int64
	ApplicantID           int64 `gorm:"not null;index"`
	Status                ApplicationStatus `gorm:"type:varchar(32);not null;default:draft;index"`
	EligibilityStatus     EligibilityStatus `gorm:"type:varchar(32);not null;default:pending"`
	EligibilityNotes      string
	EligibilityScore      int
	EligibilityMaxScore   int
	EligibilityPercentage float64
	EligibilityCheckedAt  *time.Time
	SubmittedAt           *time.Time
	ReviewedAt            *time.Time
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

func NewApplication(applicantID int64) *Application {
	return &Application{
		ApplicantID:       applicantID,
		Status:            StatusDraft,
		EligibilityStatus: EligibilityPending,
	}
}

// WasEvaluated reports whether an eligibility run has ever completed for the application.
func (a *Application) WasEvaluated() bool {
	return a.EligibilityCheckedAt != nil
}

// ApplicationDepartment links an application to one of the departments it targets.
type ApplicationDepartment struct {
	ApplicationID int64 `gorm:"primaryKey"`
	DepartmentID  int64 `gorm:"primaryKey"`
}
