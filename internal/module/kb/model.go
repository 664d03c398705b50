package kb

import "time"

// Article is a knowledge base article.
type Article struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Category  string    `json:"category,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SearchResult is one knowledge base search match.
type SearchResult struct {
	ArticleID int64   `json:"article_id"`
	Title     string  `json:"title"`
	Snippet   string  `json:"snippet,omitempty"`
	Score     float64 `json:"score,omitempty"`
}

// SearchResults bundles the matches with their highlight metadata.
// Both travel through the cache as one entry so a cached search
// renders identically to a fresh one.
type SearchResults struct {
	Results    []SearchResult      `json:"results"`
	Highlights map[string][]string `json:"highlights,omitempty"`
}
