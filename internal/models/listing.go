package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Listing is a buyer request for a service or item, submitted through the
// marketplace and held pending until the triage engine decides on it.
type Listing struct {
	ID            uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Title         string         `gorm:"not null;size:200" json:"title"`
	Description   string         `gorm:"type:text" json:"description"`
	Category      string         `gorm:"size:50;index" json:"category"`
	Budget        float64        `json:"budget"`
	Location      string         `gorm:"size:120" json:"location"`
	Urgent        bool           `json:"urgent"`
	OwnerID       uuid.UUID      `gorm:"type:uuid;not null;index" json:"owner_id"`
	OwnerVerified bool           `json:"owner_verified"`
	Status        Status         `gorm:"not null;default:'pending';size:20;index" json:"status"`
	Analysis      datatypes.JSON `gorm:"type:jsonb" json:"analysis,omitempty"`
	DecidedAt     *time.Time     `json:"decided_at,omitempty"`
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"index" json:"updated_at"`
}

func (l *Listing) ItemKind() Kind       { return KindListing }
func (l *Listing) RecordID() uuid.UUID  { return l.ID }
func (l *Listing) Owner() uuid.UUID     { return l.OwnerID }
func (l *Listing) RecordStatus() Status { return l.Status }
