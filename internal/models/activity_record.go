package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ActivityRecord is the append-only audit trail: exactly one row per
// completed pipeline run. Rows are never updated or deleted.
type ActivityRecord struct {
	ID         uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Kind       Kind           `gorm:"not null;size:20;index" json:"kind"`
	ItemID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"item_id"`
	Decision   string         `gorm:"not null;size:20" json:"decision"`
	Confidence int            `gorm:"not null" json:"confidence"`
	Reason     string         `gorm:"size:1000" json:"reason"`
	Snapshot   datatypes.JSON `gorm:"type:jsonb;default:'{}'" json:"snapshot"`
	LoggedAt   time.Time      `gorm:"not null;index" json:"logged_at"`
}
