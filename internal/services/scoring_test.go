package services

import (
	"strings"
	"testing"

	"github.com/ahmetcoskunkizilkaya/triage-engine/internal/config"
	"github.com/ahmetcoskunkizilkaya/triage-engine/internal/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

func testEngine(t *testing.T) *ScoringEngine {
	t.Helper()
	return NewScoringEngine(config.DefaultPolicy())
}

func TestScoreGoodListingApproves(t *testing.T) {
	engine := testEngine(t)
	listing := &models.Listing{
		ID:    uuid.New(),
		Title: "Need a plumber for bathroom repair",
		Description: "Looking for an experienced plumber to fix a leaking bathroom sink " +
			"and replace the old shower fittings. Materials can be discussed.",
		Budget:        3000,
		Category:      "services",
		Location:      "Pune",
		OwnerID:       uuid.New(),
		OwnerVerified: true,
	}

	breakdown, confidence := engine.Score(listing)
	if len(breakdown) != 4 {
		t.Fatalf("expected 4 dimensions, got %d", len(breakdown))
	}
	approve := config.DefaultPolicy().Listing.ApproveThreshold
	if confidence < approve {
		t.Fatalf("expected confidence >= %d for a solid listing, got %d (breakdown %v)", approve, confidence, breakdown)
	}
}

func TestScoreThinListingRejects(t *testing.T) {
	engine := testEngine(t)
	listing := &models.Listing{ID: uuid.New(), Title: "hi", OwnerID: uuid.New()}

	_, confidence := engine.Score(listing)
	flag := config.DefaultPolicy().Listing.FlagThreshold
	if confidence >= flag {
		t.Fatalf("expected confidence < %d for an empty listing, got %d", flag, confidence)
	}
}

func TestScoreBoundsHoldForExtremeItems(t *testing.T) {
	engine := testEngine(t)
	long := strings.Repeat("x", 10000)

	items := []models.Item{
		&models.Listing{},
		&models.Listing{Title: long, Description: long, Budget: -50, Urgent: true},
		&models.Listing{Title: "free money wire transfer", Description: "guaranteed income, click this link www.spam.example now", Budget: 9999999, Urgent: true},
		&models.Profile{},
		&models.Profile{DisplayName: long, Phone: "not-a-phone", DocumentURLs: datatypes.JSON(`"broken`)},
		&models.SellerReply{},
		&models.SellerReply{Message: long, Price: -3},
	}

	for i, item := range items {
		breakdown, confidence := engine.Score(item)
		if confidence < 0 || confidence > 100 {
			t.Fatalf("item %d: confidence %d out of range", i, confidence)
		}
		for dimension, score := range breakdown {
			if score < 0 || score > 100 {
				t.Fatalf("item %d: dimension %s score %d out of range", i, dimension, score)
			}
		}
	}
}

func TestScoreIsDeterministic(t *testing.T) {
	engine := testEngine(t)
	reply := &models.SellerReply{
		ListingTitle:  "Garden landscaping work",
		Message:       "I can handle the landscaping work for your garden, available next week.",
		Price:         1200,
		OwnerVerified: true,
	}

	first, firstConf := engine.Score(reply)
	second, secondConf := engine.Score(reply)
	if firstConf != secondConf {
		t.Fatalf("confidence changed between runs: %d vs %d", firstConf, secondConf)
	}
	for dimension, score := range first {
		if second[dimension] != score {
			t.Fatalf("dimension %s changed between runs: %d vs %d", dimension, score, second[dimension])
		}
	}
}

func TestAggregateMonotonicity(t *testing.T) {
	engine := testEngine(t)
	base := Breakdown{
		DimContentQuality: 50,
		DimLegitimacy:     60,
		DimRisk:           70,
		DimCategoryMatch:  40,
	}
	baseline := engine.aggregate(models.KindListing, base)

	for dimension := range base {
		for bump := 1; bump <= 50; bump += 7 {
			raised := Breakdown{}
			for d, s := range base {
				raised[d] = s
			}
			raised[dimension] = clampScore(base[dimension] + bump)
			if got := engine.aggregate(models.KindListing, raised); got < baseline {
				t.Fatalf("raising %s by %d lowered confidence from %d to %d", dimension, bump, baseline, got)
			}
		}
	}
}

func TestRunScorerDefaultsLowOnPanic(t *testing.T) {
	engine := testEngine(t)
	score := engine.runScorer(DimContentQuality, func() int {
		panic("scorer exploded")
	})
	if score != conservativeScore {
		t.Fatalf("expected conservative default %d, got %d", conservativeScore, score)
	}
	approve := config.DefaultPolicy().Listing.ApproveThreshold
	if score >= approve {
		t.Fatalf("conservative default %d must not reach the approval threshold", score)
	}
}

func TestVerifiedOwnerRaisesLegitimacy(t *testing.T) {
	engine := testEngine(t)
	listing := &models.Listing{Title: "Deck repair needed", Description: "Fix the backyard deck boards.", Category: "services", Location: "Mumbai", Budget: 500}

	_, unverified := engine.Score(listing)
	listing.OwnerVerified = true
	_, verified := engine.Score(listing)
	if verified <= unverified {
		t.Fatalf("verified owner should not score lower: %d vs %d", verified, unverified)
	}
}

func TestReplyPriceOutsideBoundsScoresLow(t *testing.T) {
	engine := testEngine(t)
	inBounds := engine.replyPriceReasonableness(&models.SellerReply{Price: 1000})
	outOfBounds := engine.replyPriceReasonableness(&models.SellerReply{Price: 10000000})
	missing := engine.replyPriceReasonableness(&models.SellerReply{})

	if inBounds <= outOfBounds {
		t.Fatalf("in-bounds price should outscore out-of-bounds: %d vs %d", inBounds, outOfBounds)
	}
	if missing >= outOfBounds {
		t.Fatalf("missing price should score lowest: %d vs %d", missing, outOfBounds)
	}
}
