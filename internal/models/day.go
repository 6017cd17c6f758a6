package models

import "time"

// LocalDayID identifies a business day in the store-local database.
// CloudDayID identifies the same business date in the cloud. The two id
// spaces are never interchangeable: a LocalDayID must go through the
// day-status pull before any prepare call, and only a CloudDayID may be
// sent on prepare/commit/cancel.
type LocalDayID string

type CloudDayID string

// Day statuses as the local database records them.
const (
	DayStatusOpen         = "OPEN"
	DayStatusPendingClose = "PENDING_CLOSE"
	DayStatusClosed       = "CLOSED"
)

// Day is the local business-day record. Read-only from the engine's
// perspective; the day lifecycle is owned by the back-office application.
type Day struct {
	ID           LocalDayID `gorm:"column:id;primaryKey"`
	StoreID      string     `gorm:"column:store_id;index"`
	BusinessDate string     `gorm:"column:business_date"` // YYYY-MM-DD
	Status       string     `gorm:"column:status"`
	OpenedAt     *time.Time `gorm:"column:opened_at"`
	ClosedAt     *time.Time `gorm:"column:closed_at"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	UpdatedAt    time.Time  `gorm:"column:updated_at"`
}

// TableName specifies the table name for GORM
func (Day) TableName() string {
	return "business_day"
}
