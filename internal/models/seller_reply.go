package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// SellerReply is a seller's offer against a listing: a message, a quoted
// price, and the verification state the seller had when replying.
type SellerReply struct {
	ID            uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ListingID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"listing_id"`
	ListingTitle  string         `gorm:"size:200" json:"listing_title"`
	Message       string         `gorm:"type:text" json:"message"`
	Price         float64        `json:"price"`
	OwnerID       uuid.UUID      `gorm:"type:uuid;not null;index" json:"owner_id"`
	OwnerVerified bool           `json:"owner_verified"`
	PhoneVerified bool           `json:"phone_verified"`
	Status        Status         `gorm:"not null;default:'pending';size:20;index" json:"status"`
	Analysis      datatypes.JSON `gorm:"type:jsonb" json:"analysis,omitempty"`
	DecidedAt     *time.Time     `json:"decided_at,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `gorm:"index" json:"updated_at"`
}

func (r *SellerReply) ItemKind() Kind       { return KindSellerReply }
func (r *SellerReply) RecordID() uuid.UUID  { return r.ID }
func (r *SellerReply) Owner() uuid.UUID     { return r.OwnerID }
func (r *SellerReply) RecordStatus() Status { return r.Status }
