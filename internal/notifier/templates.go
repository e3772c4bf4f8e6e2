package notifier

import (
	"bytes"
	"fmt"
	"text/template"
)

var defaultTemplates = map[string]string{
	"application_submitted":           "Your application #{{.application_id}} was submitted and is waiting for review.",
	"application_under_review":        "Your application #{{.application_id}} is now under review.",
	"application_shortlisted":         "Good news! Your application #{{.application_id}} was shortlisted.",
	"application_interview_scheduled": "An interview was scheduled for your application #{{.application_id}}.{{if .notes}}\n{{.notes}}{{end}}",
	"application_accepted":            "Congratulations! Your application #{{.application_id}} was accepted.",
	"application_rejected":            "Unfortunately your application #{{.application_id}} was rejected.{{if .notes}}\nReason: {{.notes}}{{end}}",
	"application_onboarding":          "Welcome aboard! Onboarding for application #{{.application_id}} has started.",
}

// Templates renders notification texts by template code.
type Templates struct {
	byCode map[string]*template.Template
}

func NewTemplates(sources map[string]string) (*Templates, error) {
	t := &Templates{byCode: make(map[string]*template.Template, len(sources))}
	for code, source := range sources {
		parsed, err := template.New(code).Option("missingkey=zero").Parse(source)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", code, err)
		}
		t.byCode[code] = parsed
	}
	return t, nil
}

func DefaultTemplates() *Templates {
	t, err := NewTemplates(defaultTemplates)
	if err != nil {
		panic(err)
	}
	return t
}

func (t *Templates) Render(code string, variables map[string]string) (string, error) {
	tmpl, ok := t.byCode[code]
	if !ok {
		return "", fmt.Errorf("unknown template %s", code)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, variables); err != nil {
		return "", fmt.Errorf("failed to render template %s: %w", code, err)
	}
	return buf.String(), nil
}
