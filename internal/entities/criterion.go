package entities

import (
	"bytes"
	"encoding/json"
	"errors"
	"time"
)

type CriteriaType string

const (
	CriteriaEducationLevel  CriteriaType = "education_level"
	CriteriaFieldOfStudy    CriteriaType = "field_of_study"
	CriteriaYearsExperience CriteriaType = "years_experience"
	CriteriaAgeRange        CriteriaType = "age_range"
	CriteriaCertification   CriteriaType = "certification"
	CriteriaSkill           CriteriaType = "skill"
	CriteriaOther           CriteriaType = "other"
)

var AllCriteriaTypes = []CriteriaType{
	CriteriaEducationLevel, CriteriaFieldOfStudy, CriteriaYearsExperience, CriteriaAgeRange,
	CriteriaCertification, CriteriaSkill, CriteriaOther,
}

type Operator string

const (
	OpEquals       Operator = "equals"
	OpGreaterThan  Operator = "greater_than"
	OpLessThan     Operator = "less_than"
	OpGreaterEqual Operator = "greater_equal"
	OpLessEqual    Operator = "less_equal"
	OpContains     Operator = "contains"
	OpInList       Operator = "in_list"
)

var AllOperators = []Operator{
	OpEquals, OpGreaterThan, OpLessThan, OpGreaterEqual, OpLessEqual, OpContains, OpInList,
}

func (o Operator) IsOrdering() bool {
	switch o {
	case OpGreaterThan, OpLessThan, OpGreaterEqual, OpLessEqual:
		return true
	default:
		return false
	}
}

type valueKind uint8

const (
	kindNone valueKind = iota
	kindScalar
	kindList
)

// RequiredValue is either a single scalar or a list of values. It is stored as
// a JSON string or a JSON array respectively.
type RequiredValue struct {
	kind   valueKind
	scalar string
	list   []string
}

func Scalar(value string) RequiredValue {
	return RequiredValue{kind: kindScalar, scalar: value}
}

func List(values ...string) RequiredValue {
	return RequiredValue{kind: kindList, list: append([]string(nil), values...)}
}

func (v RequiredValue) IsScalar() bool { return v.kind == kindScalar }
func (v RequiredValue) IsList() bool   { return v.kind == kindList }
func (v RequiredValue) IsEmpty() bool  { return v.kind == kindNone }

func (v RequiredValue) Scalar() (string, bool) {
	return v.scalar, v.kind == kindScalar
}

func (v RequiredValue) List() ([]string, bool) {
	if v.kind != kindList {
		return nil, false
	}
	return append([]string(nil), v.list...), true
}

// Values returns the scalar as a single-element list, or the list itself.
func (v RequiredValue) Values() []string {
	switch v.kind {
	case kindScalar:
		return []string{v.scalar}
	case kindList:
		return append([]string(nil), v.list...)
	default:
		return nil
	}
}

func (v RequiredValue) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case kindScalar:
		return json.Marshal(v.scalar)
	case kindList:
		if v.list == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.list)
	default:
		return []byte("null"), nil
	}
}

func (v *RequiredValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*v = RequiredValue{}
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = Scalar(s)
	case '[':
		var list []string
		if err := json.Unmarshal(data, &list); err != nil {
			return errors.New("required value list must contain only strings")
		}
		*v = List(list...)
	default:
		// numbers are accepted and kept in their literal form
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return errors.New("required value must be a string, a number or a list of strings")
		}
		*v = Scalar(n.String())
	}
	return nil
}

type EligibilityCriterion struct {
	ID            int64         `json:"id"`
	Name          string        `json:"name" gorm:"not null" validate:"required,max=255"`
	Description   string        `json:"description"`
	DepartmentID  *int64        `json:"department_id" gorm:"index"`
	CriteriaType  CriteriaType  `json:"criteria_type" gorm:"type:varchar(32);not null" validate:"required"`
	Operator      Operator      `json:"operator" gorm:"type:varchar(32);not null" validate:"required"`
	RequiredValue RequiredValue `json:"required_value" gorm:"type:text;serializer:json"`
	AttributeName string        `json:"attribute_name"`
	IsMandatory   bool          `json:"is_mandatory"`
	Weight        int           `json:"weight" validate:"gte=0"`
	IsActive      bool          `json:"is_active" gorm:"index"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

func (c EligibilityCriterion) IsGlobal() bool {
	return c.DepartmentID == nil
}

func (EligibilityCriterion) TableName() string {
	return "eligibility_criteria"
}
