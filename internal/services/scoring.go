package services

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"strings"

	"github.com/ahmetcoskunkizilkaya/triage-engine/internal/config"
	"github.com/ahmetcoskunkizilkaya/triage-engine/internal/models"
	"github.com/getsentry/sentry-go"
)

// Sub-dimension names. Each kind is scored on exactly four of these and the
// names appear verbatim in analysis snapshots and activity records.
const (
	DimContentQuality      = "contentQuality"
	DimLegitimacy          = "legitimacy"
	DimRisk                = "risk"
	DimCategoryMatch       = "categoryMatch"
	DimDocumentClarity     = "documentClarity"
	DimAuthenticity        = "authenticity"
	DimCompliance          = "compliance"
	DimResponseQuality     = "responseQuality"
	DimPriceReasonableness = "priceReasonableness"
	DimOwnerCredibility    = "ownerCredibility"
	DimContentRelevance    = "contentRelevance"
)

// conservativeScore is what a failed sub-scorer defaults to. Low enough that
// a broken dimension can pull an item into review, never into auto-approval.
const conservativeScore = 20

var SuspiciousPhrases = []string{
	"free money", "guaranteed income", "guaranteed profit",
	"wire transfer", "advance fee", "processing fee upfront",
	"crypto investment", "double your money",
	"no questions asked", "click this link", "limited time offer",
}

// Breakdown maps sub-dimension name to its 0-100 score. Risk dimensions are
// stored already inverted, so a higher value is always better.
type Breakdown map[string]int

// ScoringEngine computes a deterministic confidence from item fields alone.
// The same item always produces the same breakdown.
type ScoringEngine struct {
	policy             *config.Policy
	suspiciousRegexps  []*regexp.Regexp
	urlPattern         *regexp.Regexp
	emailPattern       *regexp.Regexp
	phonePattern       *regexp.Regexp
	phoneFormatPattern *regexp.Regexp
}

func NewScoringEngine(policy *config.Policy) *ScoringEngine {
	e := &ScoringEngine{policy: policy}

	e.suspiciousRegexps = make([]*regexp.Regexp, 0, len(SuspiciousPhrases))
	for _, phrase := range SuspiciousPhrases {
		pattern := `(?i)\b` + regexp.QuoteMeta(phrase) + `\b`
		re, err := regexp.Compile(pattern)
		if err == nil {
			e.suspiciousRegexps = append(e.suspiciousRegexps, re)
		}
	}

	e.urlPattern = regexp.MustCompile(`(?i)(https?://\S+|www\.\S+\.\S+)`)
	e.emailPattern = regexp.MustCompile(`(?i)\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Z|a-z]{2,}\b`)
	e.phonePattern = regexp.MustCompile(`\d{3}[-.\s]?\d{3}[-.\s]?\d{4}|\(\d{3}\)\s*\d{3}[-.\s]?\d{4}`)
	e.phoneFormatPattern = regexp.MustCompile(`^\+?[0-9][0-9\-\s]{6,18}[0-9]$`)
	return e
}

// Score produces the four-dimension breakdown and aggregate confidence for
// an item. Panicking sub-scorers are caught here and defaulted low.
func (e *ScoringEngine) Score(item models.Item) (Breakdown, int) {
	var breakdown Breakdown
	switch it := item.(type) {
	case *models.Listing:
		breakdown = Breakdown{
			DimContentQuality: e.runScorer(DimContentQuality, func() int { return e.listingContentQuality(it) }),
			DimLegitimacy:     e.runScorer(DimLegitimacy, func() int { return e.listingLegitimacy(it) }),
			DimRisk:           e.runScorer(DimRisk, func() int { return e.listingRisk(it) }),
			DimCategoryMatch:  e.runScorer(DimCategoryMatch, func() int { return e.listingCategoryMatch(it) }),
		}
	case *models.Profile:
		breakdown = Breakdown{
			DimDocumentClarity: e.runScorer(DimDocumentClarity, func() int { return e.profileDocumentClarity(it) }),
			DimAuthenticity:    e.runScorer(DimAuthenticity, func() int { return e.profileAuthenticity(it) }),
			DimRisk:            e.runScorer(DimRisk, func() int { return e.profileRisk(it) }),
			DimCompliance:      e.runScorer(DimCompliance, func() int { return e.profileCompliance(it) }),
		}
	case *models.SellerReply:
		breakdown = Breakdown{
			DimResponseQuality:     e.runScorer(DimResponseQuality, func() int { return e.replyResponseQuality(it) }),
			DimPriceReasonableness: e.runScorer(DimPriceReasonableness, func() int { return e.replyPriceReasonableness(it) }),
			DimOwnerCredibility:    e.runScorer(DimOwnerCredibility, func() int { return e.replyOwnerCredibility(it) }),
			DimContentRelevance:    e.runScorer(DimContentRelevance, func() int { return e.replyContentRelevance(it) }),
		}
	default:
		return Breakdown{}, 0
	}

	return breakdown, e.aggregate(item.ItemKind(), breakdown)
}

func (e *ScoringEngine) runScorer(dimension string, fn func() int) (score int) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("sub-scorer %s panicked: %v", dimension, r)
			slog.Error("sub-scorer failed", "component", "scoring", "dimension", dimension, "error", err)
			sentry.CaptureException(err)
			score = conservativeScore
		}
	}()
	return clampScore(fn())
}

func (e *ScoringEngine) aggregate(kind models.Kind, breakdown Breakdown) int {
	policy := e.policy.ForKind(string(kind))
	var sum, weights float64
	for dimension, score := range breakdown {
		w := policy.Weight(dimension)
		sum += w * float64(score)
		weights += w
	}
	if weights == 0 {
		return 0
	}
	return clampScore(int(math.Round(sum / weights)))
}

// --- Listing sub-scorers ---

func (e *ScoringEngine) listingContentQuality(l *models.Listing) int {
	title := len(strings.TrimSpace(l.Title))
	desc := len(strings.TrimSpace(l.Description))

	var titleScore int
	switch {
	case title < 5:
		titleScore = 10
	case title < 20:
		titleScore = 40
	case title <= 80:
		titleScore = 90
	default:
		titleScore = 70
	}

	var descScore int
	switch {
	case desc == 0:
		descScore = 0
	case desc < 30:
		descScore = 30
	case desc < 100:
		descScore = 60
	case desc <= 500:
		descScore = 95
	default:
		descScore = 80
	}

	return (titleScore + descScore) / 2
}

func (e *ScoringEngine) listingLegitimacy(l *models.Listing) int {
	score := 60
	if l.OwnerVerified {
		score += 20
	}
	text := l.Title + " " + l.Description
	for _, re := range e.suspiciousRegexps {
		if re.MatchString(text) {
			score -= 30
		}
	}
	if e.urlPattern.MatchString(text) || e.emailPattern.MatchString(text) || e.phonePattern.MatchString(text) {
		score -= 25
	}
	return score
}

func (e *ScoringEngine) listingRisk(l *models.Listing) int {
	risk := 10
	switch {
	case l.Budget <= 0:
		risk += 15
	case l.Budget > 100000:
		risk += 40
	case l.Budget > 25000:
		risk += 25
	}
	if l.Urgent {
		risk += 20
	}
	if strings.TrimSpace(l.Location) == "" {
		risk += 25
	}
	return 100 - risk
}

func (e *ScoringEngine) listingCategoryMatch(l *models.Listing) int {
	category := strings.ToLower(strings.TrimSpace(l.Category))
	switch {
	case category == "":
		return 20
	case e.policy.CategoryAllowed(category):
		return 95
	default:
		return 45
	}
}

// --- Profile sub-scorers ---

func (e *ScoringEngine) profileDocumentClarity(p *models.Profile) int {
	switch docs := documentCount(p); {
	case docs == 0:
		return 10
	case docs == 1:
		return 55
	default:
		return 90
	}
}

func (e *ScoringEngine) profileAuthenticity(p *models.Profile) int {
	score := 40
	name := strings.TrimSpace(p.DisplayName)
	if len(name) >= 3 {
		score += 20
	}
	if strings.Contains(name, " ") {
		score += 10
	}
	if p.Phone != "" && e.phoneFormatPattern.MatchString(strings.TrimSpace(p.Phone)) {
		score += 25
	}
	return score
}

func (e *ScoringEngine) profileRisk(p *models.Profile) int {
	risk := 10
	if strings.TrimSpace(p.Phone) == "" {
		risk += 30
	}
	if documentCount(p) == 0 {
		risk += 35
	}
	if len(strings.TrimSpace(p.DisplayName)) < 2 {
		risk += 25
	}
	return 100 - risk
}

func (e *ScoringEngine) profileCompliance(p *models.Profile) int {
	score := 70
	name := p.DisplayName
	for _, re := range e.suspiciousRegexps {
		if re.MatchString(name) {
			score -= 40
		}
	}
	if e.urlPattern.MatchString(name) || e.emailPattern.MatchString(name) {
		score -= 30
	}
	if strings.TrimSpace(p.Phone) != "" {
		score += 15
	}
	return score
}

// --- Seller reply sub-scorers ---

func (e *ScoringEngine) replyResponseQuality(r *models.SellerReply) int {
	msg := len(strings.TrimSpace(r.Message))

	var msgScore int
	switch {
	case msg == 0:
		msgScore = 0
	case msg < 20:
		msgScore = 25
	case msg < 60:
		msgScore = 55
	case msg <= 400:
		msgScore = 90
	default:
		msgScore = 75
	}

	titleScore := 40
	if strings.TrimSpace(r.ListingTitle) != "" {
		titleScore = 80
	}

	return (msgScore + titleScore) / 2
}

func (e *ScoringEngine) replyPriceReasonableness(r *models.SellerReply) int {
	switch {
	case r.Price <= 0:
		return 20
	case r.Price >= e.policy.MinReplyPrice && r.Price <= e.policy.MaxReplyPrice:
		return 90
	default:
		return 40
	}
}

func (e *ScoringEngine) replyOwnerCredibility(r *models.SellerReply) int {
	score := 40
	if r.OwnerVerified {
		score += 35
	}
	if r.PhoneVerified {
		score += 20
	}
	return score
}

func (e *ScoringEngine) replyContentRelevance(r *models.SellerReply) int {
	title := tokenSet(r.ListingTitle)
	if len(title) == 0 {
		return 50
	}
	score := 45
	for token := range tokenSet(r.Message) {
		if title[token] {
			score += 15
		}
	}
	if score > 95 {
		score = 95
	}
	return score
}

// --- helpers ---

func documentCount(p *models.Profile) int {
	if len(p.DocumentURLs) == 0 {
		return 0
	}
	var urls []string
	if err := json.Unmarshal(p.DocumentURLs, &urls); err != nil {
		return 0
	}
	count := 0
	for _, u := range urls {
		if strings.TrimSpace(u) != "" {
			count++
		}
	}
	return count
}

// tokenSet extracts lowercase tokens longer than three characters.
func tokenSet(text string) map[string]bool {
	tokens := make(map[string]bool)
	for _, field := range strings.Fields(strings.ToLower(text)) {
		field = strings.Trim(field, ".,!?:;\"'()")
		if len(field) > 3 {
			tokens[field] = true
		}
	}
	return tokens
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
