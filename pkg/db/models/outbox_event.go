package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/enums"
)

// OutboxEvent is one queued domain event. Rows are inserted in the same
// transaction as the order they describe and settled by the relay.
type OutboxEvent struct {
	ID            uuid.UUID                 `gorm:"column:id;type:uuid;primaryKey"`
	EventType     enums.OutboxEventType     `gorm:"column:event_type;not null"`
	AggregateType enums.OutboxAggregateType `gorm:"column:aggregate_type;not null"`
	AggregateID   string                    `gorm:"column:aggregate_id;not null"`
	Payload       json.RawMessage           `gorm:"column:payload;type:jsonb;not null"`
	AttemptCount  int                       `gorm:"column:attempt_count;not null;default:0"`
	LastError     *string                   `gorm:"column:last_error"`
	CreatedAt     time.Time                 `gorm:"column:created_at;autoCreateTime"`
	PublishedAt   *time.Time                `gorm:"column:published_at"`
}

func (OutboxEvent) TableName() string { return "outbox_events" }

// Pending reports whether the relay still owes this row a delivery attempt.
func (e OutboxEvent) Pending(maxAttempts int) bool {
	return e.PublishedAt == nil && (maxAttempts <= 0 || e.AttemptCount < maxAttempts)
}
