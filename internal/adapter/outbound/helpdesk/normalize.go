package helpdesk

import (
	"encoding/json"
	"fmt"

	"github.com/deskgate/server/internal/module/kb"
	"github.com/deskgate/server/internal/module/ticket"
)

// normalizeTicket flattens an upstream ticket into the domain model,
// computing the derived fields before anything is cached: the cached
// shape must equal the served shape.
func normalizeTicket(dto *upstreamTicket) *ticket.Ticket {
	t := &ticket.Ticket{
		ID:            dto.ID,
		Subject:       dto.Subject,
		Description:   dto.Description,
		StatusCode:    dto.StateID,
		StatusLabel:   dto.State,
		Category:      ticket.CategoryForStatus(dto.StateID),
		RequestTypeID: dto.TypeID,
		CreatedAt:     dto.CreatedAt,
		UpdatedAt:     dto.UpdatedAt,
		Year:          dto.CreatedAt.Year(),
		ReplyCount:    dto.ArticleCount,
	}

	if len(dto.Articles) > 0 {
		t.ReplyCount = len(dto.Articles)
		t.Replies = make([]ticket.Reply, len(dto.Articles))
		for i, a := range dto.Articles {
			t.Replies[i] = ticket.Reply{
				ID:        a.ID,
				Author:    a.From,
				Body:      a.Body,
				FromAgent: a.SenderType == "agent",
				CreatedAt: a.CreatedAt,
			}
		}
	}

	t.LastActivityAt = dto.UpdatedAt
	if t.LastActivityAt.IsZero() {
		t.LastActivityAt = dto.CreatedAt
	}
	for _, a := range dto.Articles {
		if a.CreatedAt.After(t.LastActivityAt) {
			t.LastActivityAt = a.CreatedAt
		}
	}

	return t
}

func normalizeTickets(dtos []upstreamTicket) []ticket.Ticket {
	tickets := make([]ticket.Ticket, len(dtos))
	for i := range dtos {
		tickets[i] = *normalizeTicket(&dtos[i])
	}
	return tickets
}

// searchEnvelope covers every response shape the search endpoint has
// shipped. Older deployments wrap the hits in "result" or "answers",
// the current one uses "results", and one intermediate version nests
// the whole thing under "data". The shapes are resolved here, once, at
// the transport boundary; nothing past this function knows they exist.
type searchEnvelope struct {
	Results    []upstreamSearchResult `json:"results"`
	Result     []upstreamSearchResult `json:"result"`
	Answers    []upstreamSearchResult `json:"answers"`
	Highlights map[string][]string    `json:"highlights"`
	Data       *searchEnvelopeData    `json:"data"`
}

type searchEnvelopeData struct {
	Results    []upstreamSearchResult `json:"results"`
	Highlights map[string][]string    `json:"highlights"`
}

// normalizeSearchBody decodes a search response body of any supported
// envelope version into the canonical result bundle.
func normalizeSearchBody(body []byte) (*kb.SearchResults, error) {
	var env searchEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	hits := env.Results
	highlights := env.Highlights
	switch {
	case hits != nil:
	case env.Result != nil:
		hits = env.Result
	case env.Answers != nil:
		hits = env.Answers
	case env.Data != nil:
		hits = env.Data.Results
		if highlights == nil {
			highlights = env.Data.Highlights
		}
	}

	results := make([]kb.SearchResult, len(hits))
	for i, hit := range hits {
		articleID := hit.ArticleID
		if articleID == 0 {
			articleID = hit.ID
		}
		results[i] = kb.SearchResult{
			ArticleID: articleID,
			Title:     hit.Title,
			Snippet:   hit.Snippet,
			Score:     hit.Score,
		}
	}

	return &kb.SearchResults{Results: results, Highlights: highlights}, nil
}

// normalizeKBArticle maps an upstream article to the domain model.
func normalizeKBArticle(dto *upstreamKBArticle) *kb.Article {
	return &kb.Article{
		ID:        dto.ID,
		Title:     dto.Title,
		Body:      dto.Body,
		Category:  dto.Category,
		UpdatedAt: dto.UpdatedAt,
	}
}

// normalizeRequestTypes maps the upstream catalog to domain models.
func normalizeRequestTypes(dtos []upstreamRequestType) []ticket.RequestType {
	types := make([]ticket.RequestType, len(dtos))
	for i, dto := range dtos {
		types[i] = ticket.RequestType{
			ID:          dto.ID,
			Name:        dto.Name,
			Description: dto.Description,
		}
	}
	return types
}
