package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/triage-engine/internal/models"
	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
)

// ListingSource is the slice of the record store the detector needs.
type ListingSource interface {
	RecentListings(ctx context.Context, since time.Time) ([]*models.Listing, error)
}

// DuplicateMatch describes one recent listing with identical normalized
// title and description.
type DuplicateMatch struct {
	MatchedID uuid.UUID `json:"matched_item_id"`
	OwnerID   uuid.UUID `json:"owner_id"`
	SameOwner bool      `json:"is_same_owner"`
	CreatedAt time.Time `json:"created_at"`
}

type DuplicateReport struct {
	IsDuplicate bool             `json:"is_duplicate"`
	Matches     []DuplicateMatch `json:"matches,omitempty"`
}

// DuplicateDetector finds exact normalized-text duplicates of a listing
// within a trailing time window. No fuzzy matching: only titles and
// descriptions that are identical after normalization count.
type DuplicateDetector struct {
	source ListingSource
	window time.Duration
	now    func() time.Time
}

func NewDuplicateDetector(source ListingSource, window time.Duration) *DuplicateDetector {
	if window <= 0 {
		window = 24 * time.Hour
	}
	return &DuplicateDetector{source: source, window: window, now: time.Now}
}

// Check reports duplicates of the given listing. A store failure fails
// open: the report says no duplicate and the pipeline continues.
func (d *DuplicateDetector) Check(ctx context.Context, listing *models.Listing) DuplicateReport {
	windowStart := d.now().Add(-d.window)
	candidates, err := d.source.RecentListings(ctx, windowStart)
	if err != nil {
		slog.Warn("duplicate check failed open", "component", "duplicates",
			"item_id", listing.ID.String(), "error", err)
		sentry.CaptureException(err)
		return DuplicateReport{}
	}

	title := NormalizeText(listing.Title)
	description := NormalizeText(listing.Description)

	var matches []DuplicateMatch
	for _, candidate := range candidates {
		if candidate.ID == listing.ID {
			continue
		}
		// Only earlier submissions count as the original; otherwise two
		// listings processed together would flag each other.
		if candidate.CreatedAt.After(listing.CreatedAt) {
			continue
		}
		if NormalizeText(candidate.Title) != title || NormalizeText(candidate.Description) != description {
			continue
		}
		matches = append(matches, DuplicateMatch{
			MatchedID: candidate.ID,
			OwnerID:   candidate.OwnerID,
			SameOwner: candidate.OwnerID == listing.OwnerID,
			CreatedAt: candidate.CreatedAt,
		})
	}

	return DuplicateReport{IsDuplicate: len(matches) > 0, Matches: matches}
}

// NormalizeText lowercases, trims, and collapses internal whitespace so that
// purely cosmetic differences never defeat duplicate matching.
func NormalizeText(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}
