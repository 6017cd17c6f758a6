package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// EntityType is the closed set of queue item kinds. Anything else scanned
// from the store maps to EntityUnknown so the engine can route it to the
// fallback handler instead of matching on raw strings.
type EntityType string

const (
	EntityEmployee EntityType = "employee"
	EntityShift    EntityType = "shift"
	EntityPack     EntityType = "pack"
	EntityDayOpen  EntityType = "day_open"
	EntityDayClose EntityType = "day_close"
	EntityUnknown  EntityType = "unknown"
)

// ParseEntityType maps a stored tag onto the closed EntityType set.
func ParseEntityType(s string) EntityType {
	switch EntityType(s) {
	case EntityEmployee, EntityShift, EntityPack, EntityDayOpen, EntityDayClose:
		return EntityType(s)
	default:
		return EntityUnknown
	}
}

// Operation is the queue-level action. OperationDelete is used by the
// day-close coordinator to represent a cancel; nothing is ever deleted
// from the local store through the sync path.
type Operation string

const (
	OperationCreate Operation = "CREATE"
	OperationUpdate Operation = "UPDATE"
	OperationDelete Operation = "DELETE"
)

// Priority values. Shifts are pushed ahead of packs because the cloud
// references shifts by foreign key (activated_shift_id, depleted_shift_id).
const (
	PriorityDefault = 0
	PriorityShift   = 10
)

// DefaultMaxAttempts is applied when a queue item is created without an
// explicit retry budget.
const DefaultMaxAttempts = 5

// JSON is an opaque structured payload stored as a single column.
type JSON map[string]interface{}

// Value implements driver.Valuer for JSON
func (j JSON) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan implements sql.Scanner for JSON
func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, j)
	case string:
		return json.Unmarshal([]byte(v), j)
	default:
		return errors.New("unsupported type for JSON column")
	}
}

// APIContext records which cloud endpoint an attempt hit and what it
// answered, for audit only.
type APIContext struct {
	Endpoint   string `json:"endpoint"`
	StatusCode int    `json:"status_code"`
}

// QueueItem is the unit of pending synchronization work.
type QueueItem struct {
	ID            string     `gorm:"column:id;primaryKey"`
	StoreID       string     `gorm:"column:store_id;index"`
	EntityType    EntityType `gorm:"column:entity_type;index"`
	EntityID      string     `gorm:"column:entity_id"`
	Operation     Operation  `gorm:"column:operation"`
	Payload       JSON       `gorm:"column:payload"`
	Priority      int        `gorm:"column:priority"`
	SyncAttempts  int        `gorm:"column:sync_attempts"`
	MaxAttempts   int        `gorm:"column:max_attempts"`
	Synced        bool       `gorm:"column:synced;index"`
	SyncedAt      *time.Time `gorm:"column:synced_at"`
	LastSyncError *string    `gorm:"column:last_sync_error"`
	LastAttemptAt *time.Time `gorm:"column:last_attempt_at"`
	APIEndpoint   *string    `gorm:"column:api_endpoint"`
	APIStatusCode *int       `gorm:"column:api_status_code"`
	CreatedAt     time.Time  `gorm:"column:created_at"`
	UpdatedAt     time.Time  `gorm:"column:updated_at"`
}

// TableName specifies the table name for GORM
func (QueueItem) TableName() string {
	return "sync_queue_item"
}

// Dead reports whether the item has exhausted its retry budget. Dead items
// stay in the store for operator visibility; they are never retried and
// never silently dropped.
func (q QueueItem) Dead() bool {
	return !q.Synced && q.SyncAttempts >= q.MaxAttempts
}

// QueueCounts is the aggregate snapshot the status layer reports.
// Queued and Failed partition Pending: every non-synced item is either
// still retryable or has exhausted its attempts, never both.
type QueueCounts struct {
	Pending         int64
	Queued          int64
	Failed          int64
	SyncedToday     int64
	OldestPendingAt *time.Time
}
