package services

import (
	"strings"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/triage-engine/internal/config"
	"github.com/ahmetcoskunkizilkaya/triage-engine/internal/models"
	"github.com/google/uuid"
)

func testDecider(t *testing.T) *DecisionPolicy {
	t.Helper()
	p := NewDecisionPolicy(config.DefaultPolicy())
	p.now = func() time.Time { return time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC) }
	return p
}

func TestDecideThresholdRouting(t *testing.T) {
	decider := testDecider(t)
	listing := &models.Listing{ID: uuid.New(), Status: models.StatusPending}
	policy := config.DefaultPolicy().Listing

	cases := []struct {
		confidence int
		want       Outcome
	}{
		{100, OutcomeApproved},
		{policy.ApproveThreshold, OutcomeApproved},
		{policy.ApproveThreshold - 1, OutcomeFlagged},
		{policy.FlagThreshold, OutcomeFlagged},
		{policy.FlagThreshold - 1, OutcomeRejected},
		{0, OutcomeRejected},
	}
	for _, tc := range cases {
		decision := decider.Decide(listing, Breakdown{}, tc.confidence, DuplicateReport{})
		if decision.Outcome != tc.want {
			t.Fatalf("confidence %d: expected %s, got %s", tc.confidence, tc.want, decision.Outcome)
		}
		if decision.Confidence != tc.confidence {
			t.Fatalf("confidence %d not carried through, got %d", tc.confidence, decision.Confidence)
		}
		if decision.Reason == "" {
			t.Fatalf("confidence %d: reason must not be empty", tc.confidence)
		}
	}
}

func TestDecideDuplicateShortCircuitsScoring(t *testing.T) {
	decider := testDecider(t)
	listing := &models.Listing{ID: uuid.New()}
	match := DuplicateMatch{MatchedID: uuid.New(), OwnerID: uuid.New(), CreatedAt: time.Now()}
	dup := DuplicateReport{IsDuplicate: true, Matches: []DuplicateMatch{match}}

	// Even a perfect confidence loses to a duplicate match.
	decision := decider.Decide(listing, Breakdown{}, 100, dup)
	if decision.Outcome != OutcomeFlagged {
		t.Fatalf("duplicate must flag, got %s", decision.Outcome)
	}
	if decision.Confidence != 0 {
		t.Fatalf("duplicate decisions carry confidence 0, got %d", decision.Confidence)
	}
	if len(decision.DuplicateMatches) != 1 || decision.DuplicateMatches[0].MatchedID != match.MatchedID {
		t.Fatalf("expected match attached, got %+v", decision.DuplicateMatches)
	}
	if !strings.Contains(decision.Reason, match.MatchedID.String()) {
		t.Fatalf("reason should reference the matched listing: %q", decision.Reason)
	}
}

func TestDecideDuplicateOnlyAppliesToListings(t *testing.T) {
	decider := testDecider(t)
	profile := &models.Profile{ID: uuid.New()}
	dup := DuplicateReport{IsDuplicate: true, Matches: []DuplicateMatch{{MatchedID: uuid.New()}}}

	decision := decider.Decide(profile, Breakdown{}, 90, dup)
	if decision.Outcome != OutcomeApproved {
		t.Fatalf("duplicate reports must not affect non-listing kinds, got %s", decision.Outcome)
	}
}

func TestDecideReasonNamesWeakDimensions(t *testing.T) {
	decider := testDecider(t)
	listing := &models.Listing{ID: uuid.New()}
	breakdown := Breakdown{
		DimContentQuality: 10,
		DimLegitimacy:     80,
		DimRisk:           30,
		DimCategoryMatch:  90,
	}

	decision := decider.Decide(listing, breakdown, 50, DuplicateReport{})
	if decision.Outcome != OutcomeFlagged {
		t.Fatalf("expected flagged, got %s", decision.Outcome)
	}
	if !strings.Contains(decision.Reason, DimContentQuality) || !strings.Contains(decision.Reason, DimRisk) {
		t.Fatalf("reason should list the weak dimensions: %q", decision.Reason)
	}
	if strings.Contains(decision.Reason, DimLegitimacy) {
		t.Fatalf("healthy dimensions must not appear: %q", decision.Reason)
	}
	// Weak dimensions are sorted, so the reason is reproducible.
	if strings.Index(decision.Reason, DimContentQuality) > strings.Index(decision.Reason, DimRisk) {
		t.Fatalf("weak dimensions should be sorted: %q", decision.Reason)
	}
}

func TestDecideReasonIsDeterministic(t *testing.T) {
	decider := testDecider(t)
	listing := &models.Listing{ID: uuid.New()}
	breakdown := Breakdown{DimContentQuality: 20, DimLegitimacy: 20, DimRisk: 20, DimCategoryMatch: 20}

	first := decider.Decide(listing, breakdown, 20, DuplicateReport{})
	second := decider.Decide(listing, breakdown, 20, DuplicateReport{})
	if first.Reason != second.Reason {
		t.Fatalf("reason changed between identical runs: %q vs %q", first.Reason, second.Reason)
	}
}

func TestOutcomeStatusMapping(t *testing.T) {
	cases := map[Outcome]models.Status{
		OutcomeApproved: models.StatusApproved,
		OutcomeFlagged:  models.StatusFlagged,
		OutcomeRejected: models.StatusRejected,
	}
	for outcome, want := range cases {
		if got := outcome.Status(); got != want {
			t.Fatalf("outcome %s maps to %s, want %s", outcome, got, want)
		}
	}
}
