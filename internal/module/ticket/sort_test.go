package ticket

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func sampleTickets() []Ticket {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	return []Ticket{
		{ID: 1, Subject: "Printer offline", StatusCode: StatusOpen, CreatedAt: base.Add(48 * time.Hour)},
		{ID: 2, Subject: "account locked", StatusCode: StatusNew, CreatedAt: base},
		{ID: 3, Subject: "VPN drops", StatusCode: StatusClosedSuccessful, CreatedAt: base.Add(24 * time.Hour)},
	}
}

func ids(tickets []Ticket) []int64 {
	out := make([]int64, len(tickets))
	for i, t := range tickets {
		out[i] = t.ID
	}
	return out
}

func TestSort_Orders(t *testing.T) {
	tickets := sampleTickets()

	tests := []struct {
		order SortOrder
		want  []int64
	}{
		{SortDateDesc, []int64{1, 3, 2}},
		{SortDateAsc, []int64{2, 3, 1}},
		{SortStatus, []int64{2, 3, 1}},   // status codes 1, 2, 4
		{SortSubject, []int64{2, 1, 3}},  // case-insensitive
	}

	for _, tt := range tests {
		t.Run(string(tt.order), func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Sort(tickets, tt.order)))
		})
	}
}

func TestSort_DoesNotMutateInput(t *testing.T) {
	tickets := sampleTickets()
	original := ids(tickets)

	_ = Sort(tickets, SortSubject)
	_ = Sort(tickets, SortDateAsc)

	assert.Equal(t, original, ids(tickets))
}

func TestParseSortOrder(t *testing.T) {
	assert.Equal(t, SortDateDesc, ParseSortOrder(""))
	assert.Equal(t, SortDateDesc, ParseSortOrder("date_desc"))
	assert.Equal(t, SortDateAsc, ParseSortOrder("date_asc"))
	assert.Equal(t, SortStatus, ParseSortOrder("status"))
	assert.Equal(t, SortSubject, ParseSortOrder("subject"))
	assert.Equal(t, SortDateDesc, ParseSortOrder("bogus"))
}
