package entities

import (
	"regexp"
	"strings"
	"time"
)

type EducationLevel string

const (
	EducationUnknown    EducationLevel = ""
	EducationHighSchool EducationLevel = "high_school"
	EducationDiploma    EducationLevel = "diploma"
	EducationBachelor   EducationLevel = "bachelor"
	EducationMaster     EducationLevel = "master"
	EducationPhD        EducationLevel = "phd"
)

var educationRanks = map[EducationLevel]int{
	EducationHighSchool: 1,
	EducationDiploma:    2,
	EducationBachelor:   3,
	EducationMaster:     4,
	EducationPhD:        5,
}

var educationAliases = map[string]EducationLevel{
	"highschool": EducationHighSchool,
	"secondary":  EducationHighSchool,
	"diploma":    EducationDiploma,
	"bachelor":   EducationBachelor,
	"bachelors":  EducationBachelor,
	"degree":     EducationBachelor,
	"master":     EducationMaster,
	"masters":    EducationMaster,
	"phd":        EducationPhD,
	"doctorate":  EducationPhD,
}

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// ParseEducationLevel accepts the canonical names and a few common spellings
// ("High School", "Bachelor's", "Ph.D").
func ParseEducationLevel(s string) (EducationLevel, bool) {
	key := nonAlphanumeric.ReplaceAllString(strings.ToLower(s), "")
	key = strings.TrimSuffix(key, "s")
	if level, ok := educationAliases[key]; ok {
		return level, true
	}
	if level, ok := educationAliases[key+"s"]; ok {
		return level, true
	}
	return EducationUnknown, false
}

// Rank returns the position on the ordinal scale, 0 for unknown levels.
func (e EducationLevel) Rank() int {
	return educationRanks[e]
}

// ApplicantSnapshot is the single consistent read of applicant attributes used
// by one evaluation run.
type ApplicantSnapshot struct {
	ApplicationID     int64
	EducationLevel    EducationLevel
	FieldOfStudy      string
	YearsOfExperience int
	DateOfBirth       time.Time
	Certifications    []string
	Skills            []string
	Other             map[string][]string
	// AwaitingVerification holds lower-cased attribute values whose backing
	// document is uploaded but not yet verified.
	AwaitingVerification map[string]bool
	VerifiedDocuments    map[string]bool
	TakenAt              time.Time
}

func (s ApplicantSnapshot) IsAwaitingVerification(value string) bool {
	return s.AwaitingVerification[strings.ToLower(strings.TrimSpace(value))]
}
