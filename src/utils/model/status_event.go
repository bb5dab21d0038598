package model

import (
	"time"
)

const TableStatusEvent = "status_events"

const (
	EntityKindBatch   = "batch"
	EntityKindPayload = "payload"
)

// Append-only journal of status transitions, written in batches by the
// journal sink. Used for debugging and for auditing status monotonicity.
type StatusEvent struct {
	ID         int     `gorm:"primaryKey; autoIncrement"`
	EntityKind string  `gorm:"not null; index:idx_status_events_entity"`
	EntityID   string  `gorm:"not null; index:idx_status_events_entity"`
	FromStatus *Status `gorm:"type: transaction_status"`
	ToStatus   Status  `gorm:"not null; type: transaction_status"`
	RecordedAt time.Time
}

func (StatusEvent) TableName() string {
	return TableStatusEvent
}
