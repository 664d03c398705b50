package cache

import "strings"

// TierRule binds a key namespace to tier placement. Match is a key
// prefix unless Exact is set, in which case it must equal the whole key.
type TierRule struct {
	Match   string
	Exact   bool
	Durable bool
}

// TierPolicy decides which cache keys are mirrored to the durable
// tier. Rules are evaluated in order, first match wins, and keys
// matching no rule stay volatile-only.
type TierPolicy struct {
	rules []TierRule
}

// NewTierPolicy creates a policy from an ordered rule set.
func NewTierPolicy(rules []TierRule) *TierPolicy {
	return &TierPolicy{rules: rules}
}

// DefaultTierRules covers the widget's resource namespaces that are
// worth keeping across restarts: ticket details, ticket lists, search
// results, knowledge base articles, and the request type catalog.
func DefaultTierRules() []TierRule {
	return []TierRule{
		{Match: "ticket_detail_", Durable: true},
		{Match: "tickets_", Durable: true},
		{Match: "search_", Durable: true},
		{Match: "kb_article_", Durable: true},
		{Match: "request_types", Exact: true, Durable: true},
	}
}

// Durable reports whether the key should be mirrored to the durable tier.
func (p *TierPolicy) Durable(key string) bool {
	for _, r := range p.rules {
		if r.Exact {
			if key == r.Match {
				return r.Durable
			}
			continue
		}
		if strings.HasPrefix(key, r.Match) {
			return r.Durable
		}
	}
	return false
}

// Namespace returns the metrics label for a key: the matched rule's
// namespace, or "other" for unmatched keys.
func (p *TierPolicy) Namespace(key string) string {
	for _, r := range p.rules {
		if r.Exact {
			if key == r.Match {
				return r.Match
			}
			continue
		}
		if strings.HasPrefix(key, r.Match) {
			return strings.TrimSuffix(r.Match, "_")
		}
	}
	return "other"
}
