package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/triage-engine/internal/models"
	"github.com/google/uuid"
)

type fakeListingSource struct {
	listings []*models.Listing
	err      error
	gotSince time.Time
}

func (f *fakeListingSource) RecentListings(_ context.Context, since time.Time) ([]*models.Listing, error) {
	f.gotSince = since
	if f.err != nil {
		return nil, f.err
	}
	var out []*models.Listing
	for _, l := range f.listings {
		if !l.CreatedAt.Before(since) {
			out = append(out, l)
		}
	}
	return out, nil
}

func TestDuplicateDetectionIsNormalizationInvariant(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	original := &models.Listing{
		ID:          uuid.New(),
		Title:       "Need a plumber for bathroom repair",
		Description: "Leaking sink needs fixing.",
		OwnerID:     uuid.New(),
		CreatedAt:   now.Add(-2 * time.Hour),
	}
	source := &fakeListingSource{listings: []*models.Listing{original}}
	detector := NewDuplicateDetector(source, 24*time.Hour)
	detector.now = func() time.Time { return now }

	second := &models.Listing{
		ID:          uuid.New(),
		Title:       "  need a   PLUMBER for bathroom    repair ",
		Description: "LEAKING   sink needs fixing.  ",
		OwnerID:     uuid.New(),
		CreatedAt:   now.Add(-time.Hour),
	}

	report := detector.Check(context.Background(), second)
	if !report.IsDuplicate {
		t.Fatal("expected whitespace/case variants to match")
	}
	if len(report.Matches) != 1 {
		t.Fatalf("expected one match, got %d", len(report.Matches))
	}
	match := report.Matches[0]
	if match.MatchedID != original.ID {
		t.Fatalf("expected match against %s, got %s", original.ID, match.MatchedID)
	}
	if match.SameOwner {
		t.Fatal("different owners must report is_same_owner=false")
	}
}

func TestDuplicateDetectionFlagsSameOwner(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	owner := uuid.New()
	original := &models.Listing{
		ID: uuid.New(), Title: "Sofa for sale", Description: "Blue three-seater.",
		OwnerID: owner, CreatedAt: now.Add(-time.Hour),
	}
	detector := NewDuplicateDetector(&fakeListingSource{listings: []*models.Listing{original}}, 24*time.Hour)
	detector.now = func() time.Time { return now }

	repost := &models.Listing{
		ID: uuid.New(), Title: "Sofa for sale", Description: "Blue three-seater.",
		OwnerID: owner, CreatedAt: now.Add(-time.Minute),
	}
	report := detector.Check(context.Background(), repost)
	if !report.IsDuplicate || !report.Matches[0].SameOwner {
		t.Fatalf("expected same-owner duplicate, got %+v", report)
	}
}

func TestDuplicateCheckIgnoresSelfAndLaterListings(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	self := &models.Listing{
		ID: uuid.New(), Title: "Fence painting", Description: "Paint my fence.",
		OwnerID: uuid.New(), CreatedAt: now.Add(-time.Hour),
	}
	later := &models.Listing{
		ID: uuid.New(), Title: "Fence painting", Description: "Paint my fence.",
		OwnerID: uuid.New(), CreatedAt: now.Add(-time.Minute),
	}
	detector := NewDuplicateDetector(&fakeListingSource{listings: []*models.Listing{self, later}}, 24*time.Hour)
	detector.now = func() time.Time { return now }

	report := detector.Check(context.Background(), self)
	if report.IsDuplicate {
		t.Fatalf("the record itself and later submissions must not count: %+v", report)
	}
}

func TestDuplicateCheckHonorsWindow(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	stale := &models.Listing{
		ID: uuid.New(), Title: "Old post", Description: "Same text.",
		OwnerID: uuid.New(), CreatedAt: now.Add(-48 * time.Hour),
	}
	source := &fakeListingSource{listings: []*models.Listing{stale}}
	detector := NewDuplicateDetector(source, 24*time.Hour)
	detector.now = func() time.Time { return now }

	fresh := &models.Listing{
		ID: uuid.New(), Title: "Old post", Description: "Same text.",
		OwnerID: uuid.New(), CreatedAt: now,
	}
	report := detector.Check(context.Background(), fresh)
	if report.IsDuplicate {
		t.Fatal("listings outside the trailing window must not match")
	}
	wantStart := now.Add(-24 * time.Hour)
	if !source.gotSince.Equal(wantStart) {
		t.Fatalf("expected window start %v, got %v", wantStart, source.gotSince)
	}
}

func TestDuplicateCheckFailsOpen(t *testing.T) {
	detector := NewDuplicateDetector(&fakeListingSource{err: errors.New("store down")}, 24*time.Hour)
	listing := &models.Listing{ID: uuid.New(), Title: "Anything", OwnerID: uuid.New(), CreatedAt: time.Now()}

	report := detector.Check(context.Background(), listing)
	if report.IsDuplicate || len(report.Matches) != 0 {
		t.Fatalf("store failure must fail open, got %+v", report)
	}
}

func TestNormalizeText(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"   ", ""},
		{"Hello World", "hello world"},
		{"  HELLO    world\t again ", "hello world again"},
		{"already normal", "already normal"},
	}
	for _, tc := range cases {
		if got := NormalizeText(tc.in); got != tc.want {
			t.Fatalf("NormalizeText(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
