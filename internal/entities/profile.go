package entities

import "time"

// ApplicantProfile, ApplicantAttribute and ApplicantDocument are written by the
// portal front office; this service only reads them.

type ApplicantProfile struct {
	ApplicantID       int64 `gorm:"primaryKey;autoIncrement:false"`
	EducationLevel    string
	FieldOfStudy      string
	YearsOfExperience int
	DateOfBirth       *time.Time
	UpdatedAt         time.Time
}

type AttributeKind string

const (
	AttributeCertification AttributeKind = "certification"
	AttributeSkill         AttributeKind = "skill"
	AttributeOther         AttributeKind = "other"
)

type ApplicantAttribute struct {
	ID          int64
	ApplicantID int64         `gorm:"not null;index"`
	Kind        AttributeKind `gorm:"type:varchar(32);not null"`
	Name        string        // attribute name, used by "other" attributes
	Value       string        `gorm:"not null"`
	DocumentID  *int64        // supporting document, if any
}

type DocumentStatus string

const (
	DocumentUploaded DocumentStatus = "uploaded"
	DocumentVerified DocumentStatus = "verified"
	DocumentRejected DocumentStatus = "rejected"
)

type ApplicantDocument struct {
	ID            int64
	ApplicationID int64          `gorm:"not null;index"`
	DocumentType  string         `gorm:"not null"`
	Status        DocumentStatus `gorm:"type:varchar(16);not null;default:uploaded"`
	CreatedAt     time.Time
}

// DocumentCheck is the answer of the document gate for one application.
type DocumentCheck struct {
	Satisfied bool
	Missing   []string
}
