package entities

import "time"

// StatusHistoryEntry is an append-only ledger row. The latest entry by
// (created_at, id) is the authoritative status of an application.
type StatusHistoryEntry struct {
	ID            int64             `json:"id"`
	ApplicationID int64             `json:"application_id" gorm:"not null;index:idx_history_order,priority:1"`
	OldStatus     ApplicationStatus `json:"old_status" gorm:"type:varchar(32);not null"`
	NewStatus     ApplicationStatus `json:"new_status" gorm:"type:varchar(32);not null"`
	ActorID       *int64            `json:"actor_id"` // nil when the system acted
	Notes         string            `json:"notes"`
	CreatedAt     time.Time         `json:"created_at" gorm:"not null;index:idx_history_order,priority:2"`
}

func (StatusHistoryEntry) TableName() string {
	return "status_history"
}
