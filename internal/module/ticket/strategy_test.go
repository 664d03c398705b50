package ticket

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func testRules() TTLRules {
	return TTLRules{
		ArchivedDetail: 24 * time.Hour,
		ClosedDetail:   4 * time.Hour,
		ActiveDetail:   10 * time.Minute,
		ArchivedList:   12 * time.Hour,
		ClosedList:     time.Hour,
		ActiveList:     5 * time.Minute,
	}
}

func TestTTLRules_DetailTTL(t *testing.T) {
	rules := testRules()

	tests := []struct {
		name        string
		ticketYear  int
		currentYear int
		closed      bool
		wantTTL     time.Duration
	}{
		{"previous year open", 2023, 2025, false, rules.ArchivedDetail},
		{"previous year closed dominates status", 2024, 2025, true, rules.ArchivedDetail},
		{"current year closed", 2025, 2025, true, rules.ClosedDetail},
		{"current year active", 2025, 2025, false, rules.ActiveDetail},
		{"future year treated as current", 2026, 2025, false, rules.ActiveDetail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := rules.DetailTTL(tt.ticketYear, tt.currentYear, tt.closed)
			assert.Equal(t, tt.wantTTL, d.TTL)
			assert.NotEmpty(t, d.Description)
			assert.NotEmpty(t, d.Reason)
		})
	}
}

func TestTTLRules_ListTTL(t *testing.T) {
	rules := testRules()

	tests := []struct {
		name        string
		year        int
		currentYear int
		category    StatusCategory
		wantTTL     time.Duration
	}{
		{"previous year active dominates status", 2024, 2025, CategoryActive, rules.ArchivedList},
		{"previous year closed", 2023, 2025, CategoryClosed, rules.ArchivedList},
		{"current year closed", 2025, 2025, CategoryClosed, rules.ClosedList},
		{"current year active", 2025, 2025, CategoryActive, rules.ActiveList},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := rules.ListTTL(tt.year, tt.currentYear, tt.category)
			assert.Equal(t, tt.wantTTL, d.TTL)
			assert.NotEmpty(t, d.Reason)
		})
	}
}

func TestCategoryForStatus(t *testing.T) {
	assert.Equal(t, CategoryActive, CategoryForStatus(StatusNew))
	assert.Equal(t, CategoryActive, CategoryForStatus(StatusOpen))
	assert.Equal(t, CategoryActive, CategoryForStatus(StatusPending))
	assert.Equal(t, CategoryClosed, CategoryForStatus(StatusClosedSuccessful))
	assert.Equal(t, CategoryClosed, CategoryForStatus(StatusClosedUnsuccessful))
	assert.Equal(t, CategoryClosed, CategoryForStatus(StatusMerged))

	// Unknown upstream states stay visible in the active view.
	assert.Equal(t, CategoryActive, CategoryForStatus(99))
}
