package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// KindPolicy holds the decision tuning for one record kind. Thresholds are
// confidence values on the 0-100 scale; weights are keyed by sub-dimension
// name and default to 1.0 when absent, which makes the aggregate a plain
// arithmetic mean.
type KindPolicy struct {
	Weights          map[string]float64 `yaml:"weights"`
	ApproveThreshold int                `yaml:"approve_threshold"`
	FlagThreshold    int                `yaml:"flag_threshold"`
	DimensionFloor   int                `yaml:"dimension_floor"`
}

// Weight returns the configured weight for a sub-dimension, defaulting to 1.
func (p KindPolicy) Weight(dimension string) float64 {
	if w, ok := p.Weights[dimension]; ok {
		return w
	}
	return 1.0
}

// Policy is the full moderation policy, loaded once at startup and passed
// as data so thresholds are never baked into scoring code.
type Policy struct {
	Listing     KindPolicy `yaml:"listing"`
	Profile     KindPolicy `yaml:"profile"`
	SellerReply KindPolicy `yaml:"seller_reply"`

	AllowedCategories []string `yaml:"allowed_categories"`
	MinReplyPrice     float64  `yaml:"min_reply_price"`
	MaxReplyPrice     float64  `yaml:"max_reply_price"`
}

// ForKind selects the per-kind tuning by the kind's string name.
func (p *Policy) ForKind(kind string) KindPolicy {
	switch kind {
	case "profile":
		return p.Profile
	case "seller_reply":
		return p.SellerReply
	default:
		return p.Listing
	}
}

// CategoryAllowed reports whether a listing category is in the allowed set.
func (p *Policy) CategoryAllowed(category string) bool {
	for _, c := range p.AllowedCategories {
		if c == category {
			return true
		}
	}
	return false
}

// DefaultPolicy returns conservative defaults: items need a clearly good
// score to auto-approve and a clearly bad one to auto-reject.
func DefaultPolicy() *Policy {
	kind := KindPolicy{
		ApproveThreshold: 70,
		FlagThreshold:    40,
		DimensionFloor:   50,
	}
	return &Policy{
		Listing:           kind,
		Profile:           kind,
		SellerReply:       kind,
		AllowedCategories: []string{"services", "goods", "rentals", "jobs"},
		MinReplyPrice:     1,
		MaxReplyPrice:     500000,
	}
}

// LoadPolicy reads the YAML policy file at path, or returns DefaultPolicy
// when path is empty. The result is always validated.
func LoadPolicy(path string) (*Policy, error) {
	policy := DefaultPolicy()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read policy file: %w", err)
		}
		if err := yaml.Unmarshal(data, policy); err != nil {
			return nil, fmt.Errorf("parse policy file: %w", err)
		}
	}
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	return policy, nil
}

// Validate enforces the threshold ordering every decision depends on.
func (p *Policy) Validate() error {
	for _, kp := range []struct {
		name   string
		policy KindPolicy
	}{
		{"listing", p.Listing},
		{"profile", p.Profile},
		{"seller_reply", p.SellerReply},
	} {
		if kp.policy.FlagThreshold < 0 || kp.policy.ApproveThreshold > 100 {
			return fmt.Errorf("policy %s: thresholds must stay within 0-100", kp.name)
		}
		if kp.policy.ApproveThreshold <= kp.policy.FlagThreshold {
			return fmt.Errorf("policy %s: approve_threshold (%d) must exceed flag_threshold (%d)",
				kp.name, kp.policy.ApproveThreshold, kp.policy.FlagThreshold)
		}
		if kp.policy.DimensionFloor < 0 || kp.policy.DimensionFloor > 100 {
			return fmt.Errorf("policy %s: dimension_floor must stay within 0-100", kp.name)
		}
		for dim, w := range kp.policy.Weights {
			if w <= 0 {
				return fmt.Errorf("policy %s: weight for %s must be positive", kp.name, dim)
			}
		}
	}
	if p.MaxReplyPrice <= p.MinReplyPrice {
		return fmt.Errorf("policy: max_reply_price must exceed min_reply_price")
	}
	return nil
}
