package ticket

import "time"

// StatusCategory buckets the upstream's numeric ticket states into the
// two classes the widget filters by.
type StatusCategory string

// Status categories.
const (
	CategoryActive StatusCategory = "active"
	CategoryClosed StatusCategory = "closed"
)

// Valid reports whether the category is one of the known buckets.
func (c StatusCategory) Valid() bool {
	return c == CategoryActive || c == CategoryClosed
}

// Upstream helpdesk status codes.
const (
	StatusNew                = 1
	StatusClosedSuccessful   = 2
	StatusClosedUnsuccessful = 3
	StatusOpen               = 4
	StatusPending            = 6
	StatusMerged             = 7
)

// CategoryForStatus maps an upstream status code to its category.
// Unknown codes count as active so a new upstream state is never
// silently hidden from the default list view.
func CategoryForStatus(code int) StatusCategory {
	switch code {
	case StatusClosedSuccessful, StatusClosedUnsuccessful, StatusMerged:
		return CategoryClosed
	default:
		return CategoryActive
	}
}

// Ticket is the normalized helpdesk ticket as served to the widget.
// Derived fields (Year, Category, ReplyCount, LastActivityAt) are
// computed at the adapter boundary before caching, so the cached shape
// equals the returned shape.
type Ticket struct {
	ID            int64          `json:"id"`
	Subject       string         `json:"subject"`
	Description   string         `json:"description,omitempty"`
	StatusCode    int            `json:"status_code"`
	StatusLabel   string         `json:"status_label"`
	Category      StatusCategory `json:"category"`
	RequestTypeID int64          `json:"request_type_id,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`

	Year           int       `json:"year"`
	ReplyCount     int       `json:"reply_count"`
	LastActivityAt time.Time `json:"last_activity_at"`

	// Replies is populated for detail fetches only; list entries carry
	// the count alone.
	Replies []Reply `json:"replies,omitempty"`
}

// Closed reports whether the ticket is in a closed state.
func (t *Ticket) Closed() bool {
	return t.Category == CategoryClosed
}

// Reply is a single message on a ticket's conversation.
type Reply struct {
	ID        int64     `json:"id"`
	Author    string    `json:"author"`
	Body      string    `json:"body"`
	FromAgent bool      `json:"from_agent"`
	CreatedAt time.Time `json:"created_at"`
}

// RequestType is a ticket category offered by the upstream helpdesk.
type RequestType struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// ListFilter selects which ticket list the widget wants.
type ListFilter struct {
	Category StatusCategory
	Year     int
}
