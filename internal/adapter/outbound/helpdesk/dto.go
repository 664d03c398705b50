package helpdesk

import "time"

// Upstream wire shapes. These stay inside the adapter; everything
// leaving this package is a normalized domain model.

type upstreamTicket struct {
	ID           int64             `json:"id"`
	Subject      string            `json:"subject"`
	Description  string            `json:"description"`
	StateID      int               `json:"state_id"`
	State        string            `json:"state"`
	TypeID       int64             `json:"type_id"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
	Articles     []upstreamArticle `json:"articles"`
	ArticleCount int               `json:"article_count"`
}

type upstreamArticle struct {
	ID         int64     `json:"id"`
	From       string    `json:"from"`
	Body       string    `json:"body"`
	SenderType string    `json:"sender_type"`
	CreatedAt  time.Time `json:"created_at"`
}

type upstreamTicketList struct {
	Tickets []upstreamTicket `json:"tickets"`
}

type upstreamRequestType struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type upstreamRequestTypeList struct {
	RequestTypes []upstreamRequestType `json:"request_types"`
}

type upstreamKBArticle struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Category  string    `json:"category"`
	UpdatedAt time.Time `json:"updated_at"`
}

// upstreamSearchResult tolerates both id spellings the search API has
// used across versions.
type upstreamSearchResult struct {
	ArticleID int64   `json:"article_id"`
	ID        int64   `json:"id"`
	Title     string  `json:"title"`
	Snippet   string  `json:"snippet"`
	Score     float64 `json:"score"`
}

// Request payloads.

type createTicketRequest struct {
	RequesterID string `json:"requester_id"`
	Subject     string `json:"subject"`
	Description string `json:"description,omitempty"`
	TypeID      int64  `json:"type_id,omitempty"`
}

type addArticleRequest struct {
	RequesterID string `json:"requester_id"`
	Body        string `json:"body"`
}

type closeTicketRequest struct {
	RequesterID string `json:"requester_id"`
}
