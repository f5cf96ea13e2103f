package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/triage-engine/internal/models"
	"github.com/ahmetcoskunkizilkaya/triage-engine/internal/store"
	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
)

// Pipeline runs the full triage for one record: duplicate check (listings
// only), scoring, decision, then one atomic commit of status, analysis and
// the audit row.
type Pipeline struct {
	store    store.RecordStore
	detector *DuplicateDetector
	scorer   *ScoringEngine
	decider  *DecisionPolicy
	activity *ActivityLogger
}

func NewPipeline(s store.RecordStore, detector *DuplicateDetector, scorer *ScoringEngine, decider *DecisionPolicy, activity *ActivityLogger) *Pipeline {
	return &Pipeline{
		store:    s,
		detector: detector,
		scorer:   scorer,
		decider:  decider,
		activity: activity,
	}
}

type analysisBlock struct {
	Breakdown  Breakdown        `json:"breakdown,omitempty"`
	Confidence int              `json:"confidence"`
	Outcome    Outcome          `json:"outcome"`
	Reason     string           `json:"reason"`
	DecidedAt  time.Time        `json:"decided_at"`
	Duplicates []DuplicateMatch `json:"duplicates,omitempty"`
}

// Run executes the pipeline for one record. Any failure leaves the record
// pending and untouched; no retry is scheduled here, the item comes back
// through a later feed event or a catch-up sweep.
func (p *Pipeline) Run(ctx context.Context, kind models.Kind, id uuid.UUID) error {
	item, err := p.store.Item(ctx, kind, id)
	if errors.Is(err, store.ErrNotFound) {
		slog.Info("record vanished before processing", "component", "pipeline",
			"kind", string(kind), "item_id", id.String())
		return nil
	}
	if err != nil {
		sentry.CaptureException(err)
		return err
	}

	// The feed or sweep may hand us records another actor already settled.
	// Re-reading the status here is the only trusted signal.
	if item.RecordStatus() != models.StatusPending {
		return nil
	}

	var dup DuplicateReport
	if listing, ok := item.(*models.Listing); ok {
		dup = p.detector.Check(ctx, listing)
	}

	var breakdown Breakdown
	var confidence int
	if !dup.IsDuplicate {
		breakdown, confidence = p.scorer.Score(item)
	}

	decision := p.decider.Decide(item, breakdown, confidence, dup)

	analysis, err := json.Marshal(analysisBlock{
		Breakdown:  breakdown,
		Confidence: decision.Confidence,
		Outcome:    decision.Outcome,
		Reason:     decision.Reason,
		DecidedAt:  decision.DecidedAt,
		Duplicates: decision.DuplicateMatches,
	})
	if err != nil {
		return fmt.Errorf("marshal analysis for %s %s: %w", kind, id, err)
	}

	record, err := p.activity.Record(item, decision, breakdown)
	if err != nil {
		return fmt.Errorf("build activity record for %s %s: %w", kind, id, err)
	}

	update := store.DecisionUpdate{
		Status:    decision.Outcome.Status(),
		Analysis:  analysis,
		DecidedAt: decision.DecidedAt,
	}
	if err := p.store.CommitDecision(ctx, item, record, update); err != nil {
		sentry.CaptureException(err)
		return fmt.Errorf("commit decision for %s %s: %w", kind, id, err)
	}

	slog.Info("moderation decision", "component", "pipeline",
		"kind", string(kind), "item_id", id.String(),
		"decision", string(decision.Outcome), "confidence", decision.Confidence)
	return nil
}
