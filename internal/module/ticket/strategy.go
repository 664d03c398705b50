package ticket

import (
	"time"

	"github.com/deskgate/server/internal/shared/config"
)

// Decision is one TTL policy outcome: the freshness window plus a
// human-readable justification logged when the entry is stored.
type Decision struct {
	TTL         time.Duration
	Description string
	Reason      string
}

// TTLRules holds the configured freshness windows the policy selects
// among. The rules only order and pick; the magnitudes come from
// configuration.
type TTLRules struct {
	ArchivedDetail time.Duration
	ClosedDetail   time.Duration
	ActiveDetail   time.Duration
	ArchivedList   time.Duration
	ClosedList     time.Duration
	ActiveList     time.Duration
}

// NewTTLRules builds the rule set from configuration.
func NewTTLRules(cfg config.CacheTTLConfig) TTLRules {
	return TTLRules{
		ArchivedDetail: cfg.ArchivedDetail,
		ClosedDetail:   cfg.ClosedDetail,
		ActiveDetail:   cfg.ActiveDetail,
		ArchivedList:   cfg.ArchivedList,
		ClosedList:     cfg.ClosedList,
		ActiveList:     cfg.ActiveList,
	}
}

// DetailTTL selects the freshness window for a single ticket. Archival
// dominates status: a previous-year ticket gets the archived window no
// matter its state, because nothing about it changes anymore. Status
// only matters within the current year.
func (r TTLRules) DetailTTL(ticketYear, currentYear int, closed bool) Decision {
	switch {
	case ticketYear < currentYear:
		return Decision{
			TTL:         r.ArchivedDetail,
			Description: "archived ticket detail",
			Reason:      "ticket belongs to a previous period",
		}
	case closed:
		return Decision{
			TTL:         r.ClosedDetail,
			Description: "closed ticket detail",
			Reason:      "closed, current period",
		}
	default:
		return Decision{
			TTL:         r.ActiveDetail,
			Description: "active ticket detail",
			Reason:      "active, current period",
		}
	}
}

// ListTTL selects the freshness window for a filtered ticket list,
// with the same archival-dominates-status ordering as DetailTTL.
func (r TTLRules) ListTTL(year, currentYear int, category StatusCategory) Decision {
	switch {
	case year < currentYear:
		return Decision{
			TTL:         r.ArchivedList,
			Description: "archived ticket list",
			Reason:      "list covers a previous period",
		}
	case category == CategoryClosed:
		return Decision{
			TTL:         r.ClosedList,
			Description: "closed ticket list",
			Reason:      "closed tickets, current period",
		}
	default:
		return Decision{
			TTL:         r.ActiveList,
			Description: "active ticket list",
			Reason:      "active tickets, current period",
		}
	}
}
