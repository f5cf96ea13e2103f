package store

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/triage-engine/internal/models"
	"gorm.io/gorm"
)

// Pending scopes a query to records still awaiting a decision.
func Pending(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", models.StatusPending)
}

// NotTerminated excludes rejected and deleted records, the states the
// duplicate detector must ignore.
func NotTerminated(db *gorm.DB) *gorm.DB {
	return db.Where("status NOT IN ?", []models.Status{models.StatusRejected, models.StatusDeleted})
}

// CreatedSince scopes a query to records created at or after the cutoff.
func CreatedSince(since time.Time) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("created_at >= ?", since)
	}
}
