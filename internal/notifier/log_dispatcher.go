package notifier

import (
	"context"
	log "github.com/sirupsen/logrus"
)

// LogDispatcher writes rendered notifications to the log. It is used when no
// messenger is configured.
type LogDispatcher struct {
	templates *Templates
}

func NewLogDispatcher(templates *Templates) *LogDispatcher {
	return &LogDispatcher{templates: templates}
}

func (d *LogDispatcher) Enqueue(_ context.Context, userID int64, templateCode string, variables map[string]string) error {
	text, err := d.templates.Render(templateCode, variables)
	if err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"user_id":   userID,
		"template":  templateCode,
		"dedup_key": variables["dedup_key"],
	}).Info(text)
	return nil
}
