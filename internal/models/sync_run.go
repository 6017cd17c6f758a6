package models

import "time"

type SyncRunStatus string

const (
	RunStatusRunning SyncRunStatus = "running"
	RunStatusSuccess SyncRunStatus = "success"
	RunStatusPartial SyncRunStatus = "partial"
	RunStatusFailed  SyncRunStatus = "failed"
)

// SyncRun is the audit record for one scheduler cycle. It is opened at
// cycle start, finalized exactly once at cycle end, and immutable after.
type SyncRun struct {
	ID               string        `gorm:"column:id;primaryKey"`
	StoreID          string        `gorm:"column:store_id;index"`
	Direction        string        `gorm:"column:direction"`
	Status           SyncRunStatus `gorm:"column:status;index"`
	RecordsSent      int           `gorm:"column:records_sent"`
	RecordsSucceeded int           `gorm:"column:records_succeeded"`
	RecordsFailed    int           `gorm:"column:records_failed"`
	ErrorMessage     *string       `gorm:"column:error_message"`
	StartedAt        time.Time     `gorm:"column:started_at"`
	CompletedAt      *time.Time    `gorm:"column:completed_at"`
}

// TableName specifies the table name for GORM
func (SyncRun) TableName() string {
	return "sync_run"
}
