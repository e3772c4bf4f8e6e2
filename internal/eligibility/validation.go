package eligibility

import (
	"errors"
	"fmt"
	"github.com/go-playground/validator/v10"
	"github.com/lilhop36/osta-job-portal-sub001/internal/entities"
	"reflect"
	"strings"
)

// ValidationError describes a malformed criterion definition. It is meant for
// the criterion author and is never shown to applicants.
type ValidationError struct {
	Criterion string
	Issues    []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid criterion %q: %s", e.Criterion, strings.Join(e.Issues, "; "))
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidateCriterion returns a *ValidationError when the definition cannot be
// evaluated as written.
func ValidateCriterion(c entities.EligibilityCriterion) error {
	var issues []string

	if err := validate.Struct(c); err != nil {
		var fieldErrors validator.ValidationErrors
		if !errors.As(err, &fieldErrors) {
			return err
		}
		for _, fe := range fieldErrors {
			issues = append(issues, describeFieldError(fe))
		}
	}

	r, known := rules[c.CriteriaType]
	switch {
	case c.CriteriaType == "":
	case !known:
		issues = append(issues, fmt.Sprintf("unsupported criteria type %q", c.CriteriaType))
	case c.Operator == "":
	case !r.supports(c.Operator):
		issues = append(issues, fmt.Sprintf("operator %q is not supported for %s", c.Operator, c.CriteriaType))
	default:
		issues = append(issues, requiredValueIssues(r, c)...)
	}

	if c.CriteriaType == entities.CriteriaOther && strings.TrimSpace(c.AttributeName) == "" {
		issues = append(issues, "attribute_name is required for other criteria")
	}

	if len(issues) > 0 {
		return &ValidationError{Criterion: c.Name, Issues: issues}
	}
	return nil
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}

func requiredValueIssues(r rule, c entities.EligibilityCriterion) []string {
	value := c.RequiredValue
	switch {
	case value.IsEmpty():
		return []string{"required_value is required"}
	case value.IsList() && !r.acceptsList(c.Operator):
		return []string{fmt.Sprintf("operator %q expects a single required value, got a list", c.Operator)}
	case value.IsScalar() && c.Operator == entities.OpInList:
		return []string{"operator \"in_list\" expects a list of required values"}
	}

	values := value.Values()
	if len(values) == 0 {
		return []string{"required_value list must not be empty"}
	}

	var issues []string
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			issues = append(issues, "required_value must not contain empty values")
			break
		}
	}

	switch c.CriteriaType {
	case entities.CriteriaEducationLevel:
		for _, v := range values {
			if _, ok := entities.ParseEducationLevel(v); !ok {
				issues = append(issues, fmt.Sprintf("unknown education level %q", v))
			}
		}
	case entities.CriteriaYearsExperience, entities.CriteriaAgeRange:
		if n, ok := scalarInt(value); !ok || n < 0 {
			issues = append(issues, "required_value must be a non-negative whole number")
		}
	}
	return issues
}
