package kb

import (
	"fmt"
	"strings"
)

// NormalizeQuery canonicalizes a search query for key construction:
// trimmed, lower-cased, inner whitespace collapsed to single spaces.
// "  Printer  SETUP " and "printer setup" share one cache entry.
func NormalizeQuery(query string) string {
	return strings.ToLower(strings.Join(strings.Fields(query), " "))
}

// SearchKey returns the cache key for a normalized search query.
func SearchKey(normalizedQuery string) string {
	return "search_" + normalizedQuery
}

// ArticleKey returns the cache key for a single article.
func ArticleKey(articleID int64) string {
	return fmt.Sprintf("kb_article_%d", articleID)
}
