package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Profile is an identity-verification submission: display name, contact
// phone and uploaded document images.
type Profile struct {
	ID           uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	DisplayName  string         `gorm:"not null;size:120" json:"display_name"`
	Phone        string         `gorm:"size:30" json:"phone"`
	DocumentURLs datatypes.JSON `gorm:"type:jsonb;default:'[]'" json:"document_urls"`
	OwnerID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"owner_id"`
	Status       Status         `gorm:"not null;default:'pending';size:20;index" json:"status"`
	Analysis     datatypes.JSON `gorm:"type:jsonb" json:"analysis,omitempty"`
	DecidedAt    *time.Time     `json:"decided_at,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `gorm:"index" json:"updated_at"`
}

func (p *Profile) ItemKind() Kind       { return KindProfile }
func (p *Profile) RecordID() uuid.UUID  { return p.ID }
func (p *Profile) Owner() uuid.UUID     { return p.OwnerID }
func (p *Profile) RecordStatus() Status { return p.Status }
