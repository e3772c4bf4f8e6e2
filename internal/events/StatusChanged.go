package events

import "github.com/lilhop36/osta-job-portal-sub001/internal/entities"

var StatusChangedTopic = "StatusChangedEvent"

type StatusChanged struct {
	ApplicantID int64
	Entry       entities.StatusHistoryEntry
}
