package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ahmetcoskunkizilkaya/triage-engine/internal/feed"
	"github.com/ahmetcoskunkizilkaya/triage-engine/internal/models"
	"github.com/ahmetcoskunkizilkaya/triage-engine/internal/store"
	"github.com/google/uuid"
)

// Runner executes the triage pipeline for one record.
type Runner interface {
	Run(ctx context.Context, kind models.Kind, id uuid.UUID) error
}

type itemKey struct {
	kind models.Kind
	id   uuid.UUID
}

// Orchestrator subscribes to the change feed and drives the pipeline. The
// in-flight set gives each (kind, id) key at most one live entry, so a burst
// of rapid writes to one record yields exactly one pipeline run; the settle
// delay absorbs those edits before analysis starts.
type Orchestrator struct {
	feed   feed.Feed
	store  store.RecordStore
	runner Runner
	settle time.Duration

	mu          sync.Mutex
	inFlight    map[itemKey]struct{}
	running     bool
	unsubscribe func()
}

func New(f feed.Feed, s store.RecordStore, r Runner, settle time.Duration) *Orchestrator {
	if settle <= 0 {
		settle = 2 * time.Second
	}
	return &Orchestrator{
		feed:     f,
		store:    s,
		runner:   r,
		settle:   settle,
		inFlight: make(map[itemKey]struct{}),
	}
}

// Start subscribes to the change feed. Safe to call once per instance;
// calling it while running is an error.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.mu.Lock()
	if o.running {
		o.mu.Unlock()
		return fmt.Errorf("orchestrator already running")
	}
	o.running = true
	o.mu.Unlock()

	unsubscribe, err := o.feed.Subscribe(func(ev feed.Event) {
		o.admit(ctx, ev.Kind, ev.ItemID)
	})
	if err != nil {
		o.mu.Lock()
		o.running = false
		o.mu.Unlock()
		return fmt.Errorf("subscribe to change feed: %w", err)
	}

	o.mu.Lock()
	o.unsubscribe = unsubscribe
	o.mu.Unlock()

	slog.Info("orchestrator started", "component", "orchestrator", "settle_delay", o.settle.String())
	return nil
}

// Stop unsubscribes and prevents any still-pending settle timer from doing
// work when it fires. Best effort: a pipeline run already in progress is
// not interrupted.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	if !o.running {
		o.mu.Unlock()
		return
	}
	o.running = false
	unsubscribe := o.unsubscribe
	o.unsubscribe = nil
	o.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	slog.Info("orchestrator stopped", "component", "orchestrator")
}

// SweepPending lists every pending record and admits the ones not already
// in flight. Idempotent; called at startup to recover work missed while the
// engine was offline.
func (o *Orchestrator) SweepPending(ctx context.Context) error {
	items, err := o.store.PendingItems(ctx)
	if err != nil {
		return fmt.Errorf("list pending records: %w", err)
	}
	admitted := 0
	for _, item := range items {
		if o.admit(ctx, item.ItemKind(), item.RecordID()) {
			admitted++
		}
	}
	slog.Info("catch-up sweep scheduled", "component", "orchestrator",
		"pending", len(items), "admitted", admitted)
	return nil
}

// admit inserts the key into the in-flight set and schedules processing
// after the settle delay. Duplicate keys and stopped orchestrators drop the
// event in O(1) without blocking feed delivery.
func (o *Orchestrator) admit(ctx context.Context, kind models.Kind, id uuid.UUID) bool {
	key := itemKey{kind: kind, id: id}

	o.mu.Lock()
	if !o.running {
		o.mu.Unlock()
		return false
	}
	if _, busy := o.inFlight[key]; busy {
		o.mu.Unlock()
		return false
	}
	o.inFlight[key] = struct{}{}
	o.mu.Unlock()

	time.AfterFunc(o.settle, func() {
		o.process(ctx, key)
	})
	return true
}

func (o *Orchestrator) process(ctx context.Context, key itemKey) {
	// The entry leaves the in-flight set on every exit path, success or not.
	defer func() {
		o.mu.Lock()
		delete(o.inFlight, key)
		o.mu.Unlock()
	}()

	o.mu.Lock()
	running := o.running
	o.mu.Unlock()
	if !running {
		return
	}

	if err := o.runner.Run(ctx, key.kind, key.id); err != nil {
		slog.Error("pipeline run failed", "component", "orchestrator",
			"kind", string(key.kind), "item_id", key.id.String(), "error", err)
	}
}
