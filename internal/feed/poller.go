package feed

import (
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/triage-engine/internal/models"
	"github.com/ahmetcoskunkizilkaya/triage-engine/internal/store"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Poller implements Feed by polling the record tables for pending rows whose
// updated_at advanced past a watermark. Rows that slip past the watermark
// (equal timestamps) are picked up by the orchestrator's catch-up sweep.
type Poller struct {
	db       *gorm.DB
	interval time.Duration
}

func NewPoller(db *gorm.DB, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = time.Second
	}
	return &Poller{db: db, interval: interval}
}

type pendingRow struct {
	ID        uuid.UUID
	UpdatedAt time.Time
}

func (p *Poller) Subscribe(handler Handler) (func(), error) {
	stop := make(chan struct{})

	go func() {
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		watermark := time.Now().UTC()
		for {
			select {
			case <-ticker.C:
				watermark = p.poll(handler, watermark)
			case <-stop:
				return
			}
		}
	}()

	return func() { close(stop) }, nil
}

func (p *Poller) poll(handler Handler, watermark time.Time) time.Time {
	next := watermark
	for kind, model := range map[models.Kind]interface{}{
		models.KindListing:     &models.Listing{},
		models.KindProfile:     &models.Profile{},
		models.KindSellerReply: &models.SellerReply{},
	} {
		var rows []pendingRow
		err := p.db.Model(model).
			Select("id", "updated_at").
			Scopes(store.Pending).
			Where("updated_at > ?", watermark).
			Order("updated_at ASC").
			Find(&rows).Error
		if err != nil {
			slog.Warn("feed poll failed", "component", "feed", "kind", string(kind), "error", err)
			continue
		}
		for _, row := range rows {
			handler(Event{Kind: kind, ItemID: row.ID})
			if row.UpdatedAt.After(next) {
				next = row.UpdatedAt
			}
		}
	}
	return next
}
