package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ahmetcoskunkizilkaya/triage-engine/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormStore implements RecordStore on top of the marketplace Postgres schema.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Item(ctx context.Context, kind models.Kind, id uuid.UUID) (models.Item, error) {
	var item models.Item
	switch kind {
	case models.KindListing:
		item = &models.Listing{}
	case models.KindProfile:
		item = &models.Profile{}
	case models.KindSellerReply:
		item = &models.SellerReply{}
	default:
		return nil, fmt.Errorf("unknown record kind %q", kind)
	}
	err := s.db.WithContext(ctx).First(item, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read %s %s: %w", kind, id, err)
	}
	return item, nil
}

func (s *GormStore) PendingItems(ctx context.Context) ([]models.Item, error) {
	var items []models.Item

	var listings []models.Listing
	if err := s.db.WithContext(ctx).Scopes(Pending).Find(&listings).Error; err != nil {
		return nil, fmt.Errorf("list pending listings: %w", err)
	}
	for i := range listings {
		items = append(items, &listings[i])
	}

	var profiles []models.Profile
	if err := s.db.WithContext(ctx).Scopes(Pending).Find(&profiles).Error; err != nil {
		return nil, fmt.Errorf("list pending profiles: %w", err)
	}
	for i := range profiles {
		items = append(items, &profiles[i])
	}

	var replies []models.SellerReply
	if err := s.db.WithContext(ctx).Scopes(Pending).Find(&replies).Error; err != nil {
		return nil, fmt.Errorf("list pending seller replies: %w", err)
	}
	for i := range replies {
		items = append(items, &replies[i])
	}

	return items, nil
}

func (s *GormStore) RecentListings(ctx context.Context, since time.Time) ([]*models.Listing, error) {
	var listings []*models.Listing
	err := s.db.WithContext(ctx).
		Scopes(CreatedSince(since), NotTerminated).
		Order("created_at ASC").
		Find(&listings).Error
	if err != nil {
		return nil, fmt.Errorf("list recent listings: %w", err)
	}
	return listings, nil
}

func (s *GormStore) CommitDecision(ctx context.Context, item models.Item, activity *models.ActivityRecord, update DecisionUpdate) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var target models.Item
		switch item.ItemKind() {
		case models.KindListing:
			target = &models.Listing{}
		case models.KindProfile:
			target = &models.Profile{}
		case models.KindSellerReply:
			target = &models.SellerReply{}
		default:
			return fmt.Errorf("unknown record kind %q", item.ItemKind())
		}

		result := tx.Model(target).
			Where("id = ?", item.RecordID()).
			Updates(map[string]interface{}{
				"status":     update.Status,
				"analysis":   update.Analysis,
				"decided_at": update.DecidedAt,
			})
		if result.Error != nil {
			return fmt.Errorf("update %s %s: %w", item.ItemKind(), item.RecordID(), result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}

		if err := tx.Create(activity).Error; err != nil {
			return fmt.Errorf("append activity record: %w", err)
		}
		return nil
	})
}
