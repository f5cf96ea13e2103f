package store

import (
	"context"
	"errors"
	"time"

	"github.com/ahmetcoskunkizilkaya/triage-engine/internal/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

var ErrNotFound = errors.New("record not found")

// DecisionUpdate is the partial update the outcome executor applies to a
// record: the new status plus the structured analysis block, in one write.
type DecisionUpdate struct {
	Status    models.Status
	Analysis  datatypes.JSON
	DecidedAt time.Time
}

// RecordStore is the engine's view of the record backend. The production
// implementation is Postgres via gorm; tests substitute in-memory fakes.
type RecordStore interface {
	// Item reads one record by kind and id.
	Item(ctx context.Context, kind models.Kind, id uuid.UUID) (models.Item, error)

	// PendingItems lists every record, of any kind, still in pending status.
	PendingItems(ctx context.Context) ([]models.Item, error)

	// RecentListings lists listings created at or after since, excluding
	// rejected and deleted ones. Used by the duplicate detector.
	RecentListings(ctx context.Context, since time.Time) ([]*models.Listing, error)

	// CommitDecision atomically applies the decision update to the record
	// and appends the activity record. Either both persist or neither does.
	CommitDecision(ctx context.Context, item models.Item, activity *models.ActivityRecord, update DecisionUpdate) error
}
