package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTierPolicy_Durable(t *testing.T) {
	policy := NewTierPolicy(DefaultTierRules())

	tests := []struct {
		key     string
		durable bool
	}{
		{"ticket_detail_7", true},
		{"tickets_open_2025_42", true},
		{"tickets_closed_2024_42", true},
		{"search_printer offline", true},
		{"kb_article_33", true},
		{"request_types", true},
		{"request_types_v2", false}, // exact rule must not prefix-match
		{"session_state_abc", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.durable, policy.Durable(tt.key))
		})
	}
}

func TestTierPolicy_FirstMatchWins(t *testing.T) {
	policy := NewTierPolicy([]TierRule{
		{Match: "tickets_internal_", Durable: false},
		{Match: "tickets_", Durable: true},
	})

	assert.False(t, policy.Durable("tickets_internal_2025_42"))
	assert.True(t, policy.Durable("tickets_open_2025_42"))
}

func TestTierPolicy_Namespace(t *testing.T) {
	policy := NewTierPolicy(DefaultTierRules())

	tests := []struct {
		key       string
		namespace string
	}{
		{"ticket_detail_7", "ticket_detail"},
		{"tickets_open_2025_42", "tickets"},
		{"search_vpn", "search"},
		{"kb_article_9", "kb_article"},
		{"request_types", "request_types"},
		{"unknown_key", "other"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.namespace, policy.Namespace(tt.key))
		})
	}
}
