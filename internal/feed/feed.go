package feed

import (
	"github.com/ahmetcoskunkizilkaya/triage-engine/internal/models"
	"github.com/google/uuid"
)

// Event announces that a pending record was added or modified.
type Event struct {
	Kind   models.Kind
	ItemID uuid.UUID
}

// Handler receives feed events. It must return quickly; the orchestrator's
// admission path is O(1) so delivery never blocks on pipeline work.
type Handler func(Event)

// Feed is a subscription over new and modified pending records.
type Feed interface {
	// Subscribe registers the handler and returns an unsubscribe function.
	Subscribe(handler Handler) (func(), error)
}
