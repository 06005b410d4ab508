package classify

import (
	"strings"

	"github.com/orbitwatch/orbitgraph/internal/config"
)

// FallbackCategory is assigned when no rule matches.
const FallbackCategory = "Other"

// Rule maps any of its keywords (substring match on the lowercased function
// text) to a category.
type Rule struct {
	Category string
	Keywords []string
}

// Classifier buckets free-text function descriptions into coarse categories.
// Rules are evaluated top to bottom, first match wins. Best-effort keyword
// matching: precision is not guaranteed.
type Classifier struct {
	rules []Rule
}

// DefaultRules mirror the categories of the legacy registry browser.
func DefaultRules() []Rule {
	return []Rule{
		{Category: "Communications", Keywords: []string{"communicat", "telecom"}},
		{Category: "Earth Observation", Keywords: []string{"earth", "observation", "remote sens", "resources"}},
		{Category: "Scientific Research", Keywords: []string{"investigation", "scientific", "atmosphere", "space"}},
		{Category: "Navigation", Keywords: []string{"navigation", "glonass", "gps", "position"}},
		{Category: "Military-Defense", Keywords: []string{"defense", "defence", "military"}},
		{Category: "Space Station", Keywords: []string{"station", "mir", "iss", "delivery"}},
		{Category: "Technology-Testing", Keywords: []string{"technolog", "experiment", "test", "demonstration"}},
	}
}

func New(rules []Rule) *Classifier {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Classifier{rules: rules}
}

// FromConfig builds a classifier from tunable config data, falling back to
// the default rule set when none are configured.
func FromConfig(cfg config.ClassifyConfig) *Classifier {
	var rules []Rule
	for _, r := range cfg.Rules {
		if r.Category == "" || len(r.Keywords) == 0 {
			continue
		}
		rules = append(rules, Rule{Category: r.Category, Keywords: r.Keywords})
	}
	return New(rules)
}

// Classify returns the category for a function description, or the fallback
// category if nothing matches. Empty input returns "".
func (c *Classifier) Classify(function string) string {
	if function == "" {
		return ""
	}
	lower := strings.ToLower(function)
	for _, rule := range c.rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(lower, kw) {
				return rule.Category
			}
		}
	}
	return FallbackCategory
}

// Categories lists every category the classifier can produce, in rule order,
// ending with the fallback.
func (c *Classifier) Categories() []string {
	out := make([]string, 0, len(c.rules)+1)
	for _, r := range c.rules {
		out = append(out, r.Category)
	}
	return append(out, FallbackCategory)
}
