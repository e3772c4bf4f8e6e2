package entities

import "time"

type CheckResult string

const (
	CheckPass CheckResult = "pass"
	CheckFail CheckResult = "fail"
	// CheckPending means the value needed by the criterion is backed by a
	// document that still awaits verification.
	CheckPending CheckResult = "pending"
)

// EvaluationResult is unique per (application, criterion); reruns overwrite it.
type EvaluationResult struct {
	ID            int64       `json:"-"`
	ApplicationID int64       `json:"application_id" gorm:"not null;uniqueIndex:idx_application_criterion,priority:1"`
	CriteriaID    int64       `json:"criteria_id" gorm:"not null;uniqueIndex:idx_application_criterion,priority:2"`
	CriteriaName  string      `json:"criteria_name"`
	IsMandatory   bool        `json:"is_mandatory"`
	Weight        int         `json:"weight"`
	CheckResult   CheckResult `json:"check_result" gorm:"type:varchar(16);not null"`
	ActualValue   string      `json:"actual_value"`
	Score         int         `json:"score"`
	Notes         string      `json:"notes"`
	CheckedAt     time.Time   `json:"checked_at"`
}

// EligibilityVerdict is the aggregate written onto the application by one run.
type EligibilityVerdict struct {
	Status     EligibilityStatus
	Notes      string
	Score      int
	MaxScore   int
	Percentage float64
	CheckedAt  time.Time
}
