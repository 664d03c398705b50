package ticket

import (
	"sort"
	"strings"
)

// SortOrder selects the ordering applied to a ticket list on read.
type SortOrder string

// Supported sort orders.
const (
	SortDateDesc SortOrder = "date_desc"
	SortDateAsc  SortOrder = "date_asc"
	SortStatus   SortOrder = "status"
	SortSubject  SortOrder = "subject"
)

// ParseSortOrder maps a request parameter to a sort order, falling
// back to date_desc for unknown or empty values.
func ParseSortOrder(s string) SortOrder {
	switch SortOrder(s) {
	case SortDateAsc, SortStatus, SortSubject:
		return SortOrder(s)
	default:
		return SortDateDesc
	}
}

// Sort returns a sorted copy of the tickets. The input slice is never
// reordered: list caching stores the unsorted collection once and each
// read applies its own ordering, so mutating the shared slice here
// would corrupt every later read.
func Sort(tickets []Ticket, order SortOrder) []Ticket {
	sorted := make([]Ticket, len(tickets))
	copy(sorted, tickets)

	switch order {
	case SortDateAsc:
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
		})
	case SortStatus:
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].StatusCode < sorted[j].StatusCode
		})
	case SortSubject:
		sort.SliceStable(sorted, func(i, j int) bool {
			return strings.ToLower(sorted[i].Subject) < strings.ToLower(sorted[j].Subject)
		})
	default:
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
		})
	}

	return sorted
}
