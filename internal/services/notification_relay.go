package services

import (
	"context"
	"fmt"
	"github.com/asaskevich/EventBus"
	"github.com/google/uuid"
	"github.com/lilhop36/osta-job-portal-sub001/internal/events"
	"github.com/lilhop36/osta-job-portal-sub001/internal/logger"
	"github.com/lilhop36/osta-job-portal-sub001/internal/metrics"
	log "github.com/sirupsen/logrus"
	"strconv"
	"time"
)

// notificationNamespace scopes the dedup keys of status notifications.
var notificationNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("job-portal/status-notifications"))

type notificationDispatcher interface {
	Enqueue(ctx context.Context, userID int64, templateCode string, variables map[string]string) error
}

// NotificationRelay turns committed status changes into notifications for the
// applicant. Delivery failures are logged and never reach the transition.
type NotificationRelay struct {
	dispatcher notificationDispatcher
	timeout    time.Duration
}

func NewNotificationRelay(bus EventBus.Bus, dispatcher notificationDispatcher) (*NotificationRelay, error) {
	r := &NotificationRelay{dispatcher: dispatcher, timeout: 30 * time.Second}
	if err := bus.SubscribeAsync(events.StatusChangedTopic, r.onStatusChanged, false); err != nil {
		return nil, err
	}
	return r, nil
}

func TemplateCode(event events.StatusChanged) string {
	return "application_" + string(event.Entry.NewStatus)
}

// DedupKey is stable for a ledger entry so redelivered notifications can be dropped.
func DedupKey(event events.StatusChanged) string {
	name := fmt.Sprintf("%d/%d", event.Entry.ApplicationID, event.Entry.ID)
	return uuid.NewSHA1(notificationNamespace, []byte(name)).String()
}

func (r *NotificationRelay) onStatusChanged(event events.StatusChanged) {

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	template := TemplateCode(event)
	variables := map[string]string{
		"application_id": strconv.FormatInt(event.Entry.ApplicationID, 10),
		"old_status":     string(event.Entry.OldStatus),
		"new_status":     string(event.Entry.NewStatus),
		"notes":          event.Entry.Notes,
		"changed_at":     event.Entry.CreatedAt.Format(time.RFC3339),
		"dedup_key":      DedupKey(event),
	}

	if err := r.dispatcher.Enqueue(ctx, event.ApplicantID, template, variables); err != nil {
		metrics.NotificationsCounter.WithLabelValues(template, "failed").Inc()
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeNotifier).
			Errorf("failed to enqueue %s for application %d: %v", template, event.Entry.ApplicationID, err)
		return
	}
	metrics.NotificationsCounter.WithLabelValues(template, "enqueued").Inc()
}
