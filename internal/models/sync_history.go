package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SyncHistory records each synchronization attempt with external providers
type SyncHistory struct {
	ID          int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	RunID       string         `gorm:"column:run_id;type:varchar(36);index" json:"runId"`
	Provider    string         `gorm:"column:provider;not null;index" json:"provider"` // "insales", "odoo"
	ConfigID    *uint          `gorm:"column:config_id;index" json:"configId,omitempty"`
	Status      string         `gorm:"column:status;not null;index" json:"status"` // "success", "error", "partial", "skipped"
	StartedAt   time.Time      `gorm:"column:started_at;not null" json:"startedAt"`
	CompletedAt *time.Time     `gorm:"column:completed_at" json:"completedAt"`
	Duration    int            `gorm:"column:duration;default:0" json:"duration"` // milliseconds
	Products    int            `gorm:"column:products;default:0" json:"products"`
	Updated     int            `gorm:"column:updated;default:0" json:"updated"`
	Unchanged   int            `gorm:"column:unchanged;default:0" json:"unchanged"`
	Skipped     int            `gorm:"column:skipped;default:0" json:"skipped"`
	Errors      int            `gorm:"column:errors;default:0" json:"errors"`
	ErrorDetail string         `gorm:"column:error_detail;type:text" json:"errorDetail"`
	DebugInfo   datatypes.JSON `gorm:"column:debug_info;type:jsonb" json:"debugInfo"`
	CreatedAt   time.Time      `gorm:"column:created_at" json:"-"`
	UpdatedAt   time.Time      `gorm:"column:updated_at" json:"-"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name
func (SyncHistory) TableName() string {
	return "sync_history"
}

const (
	SyncStatusSuccess = "success"
	SyncStatusPartial = "partial"
	SyncStatusError   = "error"
	SyncStatusSkipped = "skipped"
)
