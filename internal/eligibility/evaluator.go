package eligibility

import (
	"fmt"
	"github.com/lilhop36/osta-job-portal-sub001/internal/entities"
	"github.com/samber/lo"
	"time"
)

const (
	NoteAttributeNotProvided = "attribute not provided"
	NoteUnsupportedRule      = "unsupported rule"
	NoteAwaitingVerification = "awaiting document verification"
)

// Outcome is the evaluation of one criterion against one snapshot.
type Outcome struct {
	Result      entities.CheckResult
	ActualValue string
	Score       int
	Notes       string
}

type evaluateFunc func(s entities.ApplicantSnapshot, c entities.EligibilityCriterion, now time.Time) Outcome

type rule struct {
	operators []entities.Operator
	evaluate  evaluateFunc
	// listOperators may carry a List required value; every other operator needs a Scalar.
	listOperators []entities.Operator
}

func (r rule) supports(op entities.Operator) bool {
	return lo.Contains(r.operators, op)
}

func (r rule) acceptsList(op entities.Operator) bool {
	return lo.Contains(r.listOperators, op)
}

var (
	orderingOperators = []entities.Operator{
		entities.OpEquals, entities.OpGreaterThan, entities.OpLessThan,
		entities.OpGreaterEqual, entities.OpLessEqual,
	}
	textOperators = []entities.Operator{entities.OpEquals, entities.OpContains, entities.OpInList}
)

// rules is the closed set of criteria handlers. Every entities.CriteriaType must
// have an entry; a type without one fails closed.
var rules = map[entities.CriteriaType]rule{
	entities.CriteriaEducationLevel: {
		operators:     append(append([]entities.Operator{}, orderingOperators...), entities.OpInList),
		listOperators: []entities.Operator{entities.OpInList},
		evaluate:      evaluateEducation,
	},
	entities.CriteriaFieldOfStudy: {
		operators:     textOperators,
		listOperators: []entities.Operator{entities.OpContains, entities.OpInList},
		evaluate:      evaluateFieldOfStudy,
	},
	entities.CriteriaYearsExperience: {
		operators: orderingOperators,
		evaluate:  evaluateExperience,
	},
	entities.CriteriaAgeRange: {
		operators: orderingOperators,
		evaluate:  evaluateAge,
	},
	entities.CriteriaCertification: {
		operators:     textOperators,
		listOperators: []entities.Operator{entities.OpContains, entities.OpInList},
		evaluate:      namedAttribute(func(s entities.ApplicantSnapshot, _ string) []string { return s.Certifications }),
	},
	entities.CriteriaSkill: {
		operators:     textOperators,
		listOperators: []entities.Operator{entities.OpContains, entities.OpInList},
		evaluate:      namedAttribute(func(s entities.ApplicantSnapshot, _ string) []string { return s.Skills }),
	},
	entities.CriteriaOther: {
		operators:     textOperators,
		listOperators: []entities.Operator{entities.OpContains, entities.OpInList},
		evaluate: namedAttribute(func(s entities.ApplicantSnapshot, name string) []string {
			return s.Other[name]
		}),
	},
}

// Evaluate checks a single criterion against the snapshot at the given time.
// It has no side effects. Unknown types, operators the type does not support
// and malformed required values all fail closed.
func Evaluate(s entities.ApplicantSnapshot, c entities.EligibilityCriterion, now time.Time) Outcome {
	r, ok := rules[c.CriteriaType]
	if !ok || !r.supports(c.Operator) || !shapeMatches(r, c) {
		return unsupported("")
	}

	outcome := r.evaluate(s, c, now)
	if outcome.Result == entities.CheckPass {
		outcome.Score = c.Weight
	} else {
		outcome.Score = 0
	}
	return outcome
}

func shapeMatches(r rule, c entities.EligibilityCriterion) bool {
	if c.RequiredValue.IsList() {
		values, _ := c.RequiredValue.List()
		return r.acceptsList(c.Operator) && len(values) > 0
	}
	if c.Operator == entities.OpInList {
		return false
	}
	return c.RequiredValue.IsScalar()
}

func unsupported(actual string) Outcome {
	return Outcome{Result: entities.CheckFail, ActualValue: actual, Notes: NoteUnsupportedRule}
}

func notProvided() Outcome {
	return Outcome{Result: entities.CheckFail, Notes: NoteAttributeNotProvided}
}

func passed(actual, notes string) Outcome {
	return Outcome{Result: entities.CheckPass, ActualValue: actual, Notes: notes}
}

func failed(actual, notes string) Outcome {
	return Outcome{Result: entities.CheckFail, ActualValue: actual, Notes: notes}
}

func verdict(matched bool, actual string, requirement string) Outcome {
	if matched {
		return passed(actual, fmt.Sprintf("meets requirement: %s", requirement))
	}
	if actual == "" {
		return failed(actual, fmt.Sprintf("requires %s", requirement))
	}
	return failed(actual, fmt.Sprintf("requires %s, provided %s", requirement, actual))
}

var operatorPhrases = map[entities.Operator]string{
	entities.OpEquals:       "exactly",
	entities.OpGreaterThan:  "more than",
	entities.OpLessThan:     "less than",
	entities.OpGreaterEqual: "at least",
	entities.OpLessEqual:    "at most",
	entities.OpContains:     "containing",
	entities.OpInList:       "one of",
}

func describe(subject string, op entities.Operator, required string) string {
	return fmt.Sprintf("%s %s %s", subject, operatorPhrases[op], required)
}
