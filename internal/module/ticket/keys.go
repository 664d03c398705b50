package ticket

import "fmt"

// Cache key grammar. The shapes are load-bearing: durable entries
// written by a previous process are found again only if the builders
// stay byte-compatible, and the tier policy routes on these prefixes.

// DetailKey returns the cache key for a single ticket.
func DetailKey(ticketID int64) string {
	return fmt.Sprintf("ticket_detail_%d", ticketID)
}

// ListKey returns the cache key for a filtered ticket list. Sort order
// is deliberately absent: the cached collection is unsorted and every
// read applies its own ordering.
func ListKey(category StatusCategory, year int, userID string) string {
	return fmt.Sprintf("tickets_%s_%d_%s", category, year, userID)
}

// ListPatternForUser returns the invalidation glob covering every
// cached list of one user, across all categories and years. Mutations
// sweep with this pattern because a new or changed ticket can move
// between list views.
func ListPatternForUser(userID string) string {
	return fmt.Sprintf("tickets_*_%s", userID)
}

// RequestTypesKey returns the fixed cache key for the request type
// catalog.
func RequestTypesKey() string {
	return "request_types"
}
