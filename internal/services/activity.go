package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ahmetcoskunkizilkaya/triage-engine/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ActivityLogger builds the append-only audit rows written alongside every
// decision, and serves them back to read-only consumers such as admin views.
// Rows are only ever inserted; nothing in the engine updates or deletes one.
type ActivityLogger struct {
	db *gorm.DB
}

func NewActivityLogger(db *gorm.DB) *ActivityLogger {
	return &ActivityLogger{db: db}
}

// Record builds the single ActivityRecord for one completed pipeline run.
// Persistence happens atomically with the record update in the store.
func (l *ActivityLogger) Record(item models.Item, decision Decision, breakdown Breakdown) (*models.ActivityRecord, error) {
	snapshot, err := json.Marshal(breakdown)
	if err != nil {
		return nil, fmt.Errorf("marshal breakdown snapshot: %w", err)
	}
	return &models.ActivityRecord{
		ID:         uuid.New(),
		Kind:       item.ItemKind(),
		ItemID:     item.RecordID(),
		Decision:   string(decision.Outcome),
		Confidence: decision.Confidence,
		Reason:     decision.Reason,
		Snapshot:   snapshot,
		LoggedAt:   decision.DecidedAt,
	}, nil
}

// Recent returns the newest activity records, newest first.
func (l *ActivityLogger) Recent(ctx context.Context, limit int) ([]models.ActivityRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	var records []models.ActivityRecord
	err := l.db.WithContext(ctx).
		Order("logged_at DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("list activity records: %w", err)
	}
	return records, nil
}
