package eligibility

import (
	"github.com/lilhop36/osta-job-portal-sub001/internal/entities"
	"github.com/samber/lo"
	"strconv"
	"strings"
	"time"
)

func evaluateEducation(s entities.ApplicantSnapshot, c entities.EligibilityCriterion, _ time.Time) Outcome {
	if s.EducationLevel.Rank() == 0 {
		return notProvided()
	}
	actual := string(s.EducationLevel)

	if c.Operator == entities.OpInList {
		values, _ := c.RequiredValue.List()
		levels := make([]entities.EducationLevel, 0, len(values))
		for _, value := range values {
			level, ok := entities.ParseEducationLevel(value)
			if !ok {
				return unsupported(actual)
			}
			levels = append(levels, level)
		}
		requirement := describe("education level", c.Operator, joinLevels(levels))
		return verdict(lo.Contains(levels, s.EducationLevel), actual, requirement)
	}

	value, _ := c.RequiredValue.Scalar()
	required, ok := entities.ParseEducationLevel(value)
	if !ok {
		return unsupported(actual)
	}

	matched, ok := compareInts(s.EducationLevel.Rank(), required.Rank(), c.Operator)
	if !ok {
		return unsupported(actual)
	}
	return verdict(matched, actual, describe("education level", c.Operator, string(required)))
}

func evaluateExperience(s entities.ApplicantSnapshot, c entities.EligibilityCriterion, _ time.Time) Outcome {
	if s.YearsOfExperience < 0 {
		return notProvided()
	}
	required, ok := scalarInt(c.RequiredValue)
	if !ok {
		return unsupported("")
	}

	actual := strconv.Itoa(s.YearsOfExperience)
	matched, ok := compareInts(s.YearsOfExperience, required, c.Operator)
	if !ok {
		return unsupported(actual)
	}
	return verdict(matched, actual, describe("years of experience", c.Operator, strconv.Itoa(required)))
}

func evaluateAge(s entities.ApplicantSnapshot, c entities.EligibilityCriterion, now time.Time) Outcome {
	if s.DateOfBirth.IsZero() {
		return notProvided()
	}
	required, ok := scalarInt(c.RequiredValue)
	if !ok {
		return unsupported("")
	}

	age := AgeAt(s.DateOfBirth, now)
	actual := strconv.Itoa(age)
	matched, ok := compareInts(age, required, c.Operator)
	if !ok {
		return unsupported(actual)
	}
	return verdict(matched, actual, describe("age", c.Operator, strconv.Itoa(required)))
}

func evaluateFieldOfStudy(s entities.ApplicantSnapshot, c entities.EligibilityCriterion, _ time.Time) Outcome {
	actual := strings.TrimSpace(s.FieldOfStudy)
	if actual == "" {
		return notProvided()
	}

	required := c.RequiredValue.Values()
	matched, ok := matchText(actual, required, c.Operator)
	if !ok {
		return unsupported(actual)
	}
	return verdict(matched, actual, describe("field of study", c.Operator, strings.Join(required, ", ")))
}

// namedAttribute builds the generic handler shared by certification, skill and
// other criteria: match any of the applicant's values for the attribute.
func namedAttribute(values func(s entities.ApplicantSnapshot, name string) []string) evaluateFunc {
	return func(s entities.ApplicantSnapshot, c entities.EligibilityCriterion, _ time.Time) Outcome {
		if c.CriteriaType == entities.CriteriaOther && strings.TrimSpace(c.AttributeName) == "" {
			return unsupported("")
		}

		provided := lo.Filter(values(s, c.AttributeName), func(v string, _ int) bool {
			return strings.TrimSpace(v) != ""
		})
		if len(provided) == 0 {
			return notProvided()
		}

		required := c.RequiredValue.Values()
		var verified, awaiting []string
		for _, value := range provided {
			matched, ok := matchText(value, required, c.Operator)
			if !ok {
				return unsupported(strings.Join(provided, ", "))
			}
			if !matched {
				continue
			}
			if s.IsAwaitingVerification(value) {
				awaiting = append(awaiting, value)
			} else {
				verified = append(verified, value)
			}
		}

		subject := attributeSubject(c)
		requirement := describe(subject, c.Operator, strings.Join(required, ", "))
		switch {
		case len(verified) > 0:
			return passed(strings.Join(verified, ", "), "meets requirement: "+requirement)
		case len(awaiting) > 0:
			return Outcome{
				Result:      entities.CheckPending,
				ActualValue: strings.Join(awaiting, ", "),
				Notes:       NoteAwaitingVerification,
			}
		default:
			return failed(strings.Join(provided, ", "), "requires "+requirement)
		}
	}
}

func attributeSubject(c entities.EligibilityCriterion) string {
	if c.CriteriaType == entities.CriteriaOther {
		return c.AttributeName
	}
	return string(c.CriteriaType)
}

// AgeAt returns the number of whole years between dob and now, comparing
// calendar dates in the location of dob.
func AgeAt(dob, now time.Time) int {
	by, bm, bd := dob.Date()
	ny, nm, nd := now.In(dob.Location()).Date()

	age := ny - by
	if nm < bm || (nm == bm && nd < bd) {
		age--
	}
	return age
}

func compareInts(actual, required int, op entities.Operator) (matched bool, supported bool) {
	switch op {
	case entities.OpEquals:
		return actual == required, true
	case entities.OpGreaterThan:
		return actual > required, true
	case entities.OpLessThan:
		return actual < required, true
	case entities.OpGreaterEqual:
		return actual >= required, true
	case entities.OpLessEqual:
		return actual <= required, true
	default:
		return false, false
	}
}

// matchText compares case-insensitively. For contains, actual must contain any
// of the required values; for in_list and equals it must equal one of them.
func matchText(actual string, required []string, op entities.Operator) (matched bool, supported bool) {
	actual = normalizeText(actual)
	switch op {
	case entities.OpEquals, entities.OpInList:
		return lo.ContainsBy(required, func(r string) bool { return normalizeText(r) == actual }), true
	case entities.OpContains:
		return lo.ContainsBy(required, func(r string) bool {
			r = normalizeText(r)
			return r != "" && strings.Contains(actual, r)
		}), true
	default:
		return false, false
	}
}

func normalizeText(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func scalarInt(v entities.RequiredValue) (int, bool) {
	s, ok := v.Scalar()
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return n, true
}

func joinLevels(levels []entities.EducationLevel) string {
	return strings.Join(lo.Map(levels, func(l entities.EducationLevel, _ int) string {
		return string(l)
	}), ", ")
}
