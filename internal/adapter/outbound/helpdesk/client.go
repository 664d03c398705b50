package helpdesk

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/deskgate/server/internal/module/kb"
	"github.com/deskgate/server/internal/module/ticket"
	apperrors "github.com/deskgate/server/internal/shared/errors"
)

// Client is the typed endpoint layer over the helpdesk transport. It
// decodes 2xx bodies into upstream DTOs, normalizes them into domain
// models, and maps every other status onto the shared error taxonomy.
type Client struct {
	transport *Transport
}

// Compile-time interface checks.
var (
	_ ticket.Remote = (*Client)(nil)
	_ kb.Remote     = (*Client)(nil)
)

// NewClient creates a helpdesk client.
func NewClient(transport *Transport) *Client {
	return &Client{transport: transport}
}

// --- ticket.Remote ---

// FetchTicket retrieves a single ticket scoped to the requester.
func (c *Client) FetchTicket(ctx context.Context, userID string, ticketID int64) (*ticket.Ticket, error) {
	query := url.Values{"requester_id": {userID}}
	resp, err := c.transport.Request(ctx, http.MethodGet, fmt.Sprintf("/api/v1/tickets/%d", ticketID), query, nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, upstreamError(resp)
	}

	var dto upstreamTicket
	if err := json.Unmarshal(resp.Body, &dto); err != nil {
		return nil, fmt.Errorf("decode ticket response: %w", err)
	}
	return normalizeTicket(&dto), nil
}

// FetchTickets retrieves the requester's tickets filtered server-side.
func (c *Client) FetchTickets(ctx context.Context, q ticket.ListQuery) ([]ticket.Ticket, error) {
	query := url.Values{
		"requester_id": {q.UserID},
		"state_type":   {string(q.Category)},
		"year":         {strconv.Itoa(q.Year)},
	}
	resp, err := c.transport.Request(ctx, http.MethodGet, "/api/v1/tickets", query, nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, upstreamError(resp)
	}

	var dto upstreamTicketList
	if err := json.Unmarshal(resp.Body, &dto); err != nil {
		return nil, fmt.Errorf("decode ticket list response: %w", err)
	}
	return normalizeTickets(dto.Tickets), nil
}

// CreateTicket submits a new ticket on behalf of the requester.
func (c *Client) CreateTicket(ctx context.Context, userID string, input ticket.CreateTicketInput) (*ticket.Ticket, error) {
	body := createTicketRequest{
		RequesterID: userID,
		Subject:     input.Subject,
		Description: input.Description,
		TypeID:      input.RequestTypeID,
	}
	resp, err := c.transport.Request(ctx, http.MethodPost, "/api/v1/tickets", nil, body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return nil, upstreamError(resp)
	}

	var dto upstreamTicket
	if err := json.Unmarshal(resp.Body, &dto); err != nil {
		return nil, fmt.Errorf("decode create ticket response: %w", err)
	}
	return normalizeTicket(&dto), nil
}

// AddReply appends an article to a ticket and returns the updated
// ticket.
func (c *Client) AddReply(ctx context.Context, userID string, ticketID int64, input ticket.ReplyInput) (*ticket.Ticket, error) {
	body := addArticleRequest{RequesterID: userID, Body: input.Body}
	resp, err := c.transport.Request(ctx, http.MethodPost, fmt.Sprintf("/api/v1/tickets/%d/articles", ticketID), nil, body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return nil, upstreamError(resp)
	}

	var dto upstreamTicket
	if err := json.Unmarshal(resp.Body, &dto); err != nil {
		return nil, fmt.Errorf("decode add reply response: %w", err)
	}
	return normalizeTicket(&dto), nil
}

// CloseTicket closes a ticket and returns its final state.
func (c *Client) CloseTicket(ctx context.Context, userID string, ticketID int64) (*ticket.Ticket, error) {
	body := closeTicketRequest{RequesterID: userID}
	resp, err := c.transport.Request(ctx, http.MethodPost, fmt.Sprintf("/api/v1/tickets/%d/close", ticketID), nil, body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, upstreamError(resp)
	}

	var dto upstreamTicket
	if err := json.Unmarshal(resp.Body, &dto); err != nil {
		return nil, fmt.Errorf("decode close ticket response: %w", err)
	}
	return normalizeTicket(&dto), nil
}

// FetchRequestTypes retrieves the request type catalog.
func (c *Client) FetchRequestTypes(ctx context.Context) ([]ticket.RequestType, error) {
	resp, err := c.transport.Request(ctx, http.MethodGet, "/api/v1/request_types", nil, nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, upstreamError(resp)
	}

	var dto upstreamRequestTypeList
	if err := json.Unmarshal(resp.Body, &dto); err != nil {
		return nil, fmt.Errorf("decode request types response: %w", err)
	}
	return normalizeRequestTypes(dto.RequestTypes), nil
}

// --- kb.Remote ---

// SearchArticles runs a knowledge base search and normalizes whatever
// envelope version the upstream speaks.
func (c *Client) SearchArticles(ctx context.Context, query string) (*kb.SearchResults, error) {
	params := url.Values{"query": {query}}
	resp, err := c.transport.Request(ctx, http.MethodGet, "/api/v1/kb/search", params, nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, upstreamError(resp)
	}

	return normalizeSearchBody(resp.Body)
}

// FetchArticle retrieves a single knowledge base article.
func (c *Client) FetchArticle(ctx context.Context, articleID int64) (*kb.Article, error) {
	resp, err := c.transport.Request(ctx, http.MethodGet, fmt.Sprintf("/api/v1/kb/articles/%d", articleID), nil, nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, upstreamError(resp)
	}

	var dto upstreamKBArticle
	if err := json.Unmarshal(resp.Body, &dto); err != nil {
		return nil, fmt.Errorf("decode article response: %w", err)
	}
	return normalizeKBArticle(&dto), nil
}

// upstreamError converts a non-2xx response into a taxonomy error,
// salvaging the upstream's message when the body carries one.
func upstreamError(resp *Response) error {
	var errBody struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	message := ""
	if err := json.Unmarshal(resp.Body, &errBody); err == nil {
		message = errBody.Error
		if message == "" {
			message = errBody.Message
		}
	}
	return apperrors.NewUpstreamError(resp.StatusCode, message)
}
