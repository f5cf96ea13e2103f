package models

import "github.com/google/uuid"

// Kind identifies which moderation table a record lives in.
type Kind string

const (
	KindListing     Kind = "listing"
	KindProfile     Kind = "profile"
	KindSellerReply Kind = "seller_reply"
)

// Status is the moderation lifecycle of a record. Pending records are owned
// by the triage engine; approved and rejected are terminal for it, flagged
// waits on a human reviewer. Deleted is written only by external flows.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusFlagged  Status = "flagged"
	StatusRejected Status = "rejected"
	StatusDeleted  Status = "deleted"
)

// Item is the tagged union over the three record kinds. The scoring engine
// dispatches on the concrete type; everything else only needs the key.
type Item interface {
	ItemKind() Kind
	RecordID() uuid.UUID
	Owner() uuid.UUID
	RecordStatus() Status
}
