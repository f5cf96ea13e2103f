package services

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/triage-engine/internal/config"
	"github.com/ahmetcoskunkizilkaya/triage-engine/internal/models"
)

// Outcome is the terminal state the engine routes a pending record into.
type Outcome string

const (
	OutcomeApproved Outcome = "approved"
	OutcomeFlagged  Outcome = "flagged"
	OutcomeRejected Outcome = "rejected"
)

// Status maps the outcome onto the record status enum.
func (o Outcome) Status() models.Status {
	switch o {
	case OutcomeApproved:
		return models.StatusApproved
	case OutcomeRejected:
		return models.StatusRejected
	default:
		return models.StatusFlagged
	}
}

// Decision is the full result of one pipeline run for one record.
type Decision struct {
	Outcome          Outcome          `json:"outcome"`
	Confidence       int              `json:"confidence"`
	Reason           string           `json:"reason"`
	DecidedAt        time.Time        `json:"decided_at"`
	DuplicateMatches []DuplicateMatch `json:"duplicate_matches,omitempty"`
}

// DecisionPolicy turns (confidence, duplicate report) into an outcome using
// injected thresholds. Duplicates always win: a matched listing is flagged
// with confidence zero before scoring is even consulted.
type DecisionPolicy struct {
	policy *config.Policy
	now    func() time.Time
}

func NewDecisionPolicy(policy *config.Policy) *DecisionPolicy {
	return &DecisionPolicy{policy: policy, now: time.Now}
}

func (p *DecisionPolicy) Decide(item models.Item, breakdown Breakdown, confidence int, dup DuplicateReport) Decision {
	decidedAt := p.now().UTC()

	if item.ItemKind() == models.KindListing && dup.IsDuplicate {
		return Decision{
			Outcome:          OutcomeFlagged,
			Confidence:       0,
			Reason:           duplicateReason(dup.Matches),
			DecidedAt:        decidedAt,
			DuplicateMatches: dup.Matches,
		}
	}

	kind := p.policy.ForKind(string(item.ItemKind()))
	switch {
	case confidence >= kind.ApproveThreshold:
		return Decision{
			Outcome:    OutcomeApproved,
			Confidence: confidence,
			Reason:     fmt.Sprintf("auto-approved: confidence %d meets approval threshold %d", confidence, kind.ApproveThreshold),
			DecidedAt:  decidedAt,
		}
	case confidence >= kind.FlagThreshold:
		return Decision{
			Outcome:    OutcomeFlagged,
			Confidence: confidence,
			Reason: fmt.Sprintf("needs review: confidence %d below approval threshold %d%s",
				confidence, kind.ApproveThreshold, weakDimensionSuffix(breakdown, kind.DimensionFloor)),
			DecidedAt: decidedAt,
		}
	default:
		return Decision{
			Outcome:    OutcomeRejected,
			Confidence: confidence,
			Reason: fmt.Sprintf("auto-rejected: confidence %d below flag threshold %d%s",
				confidence, kind.FlagThreshold, weakDimensionSuffix(breakdown, kind.DimensionFloor)),
			DecidedAt: decidedAt,
		}
	}
}

func duplicateReason(matches []DuplicateMatch) string {
	ids := make([]string, len(matches))
	for i, m := range matches {
		ids[i] = m.MatchedID.String()
	}
	return fmt.Sprintf("duplicate content: matches %d recent listing(s): %s",
		len(matches), strings.Join(ids, ", "))
}

// weakDimensionSuffix names the sub-dimensions below the per-dimension
// floor, sorted for deterministic reasons.
func weakDimensionSuffix(breakdown Breakdown, floor int) string {
	var weak []string
	for dimension, score := range breakdown {
		if score < floor {
			weak = append(weak, dimension)
		}
	}
	if len(weak) == 0 {
		return ""
	}
	sort.Strings(weak)
	return "; weak dimensions: " + strings.Join(weak, ", ")
}
