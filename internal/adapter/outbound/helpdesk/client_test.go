package helpdesk

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deskgate/server/internal/module/ticket"
	apperrors "github.com/deskgate/server/internal/shared/errors"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(newTestTransport(srv.URL, 1))
}

func TestClient_FetchTicket_Normalizes(t *testing.T) {
	created := time.Date(2024, 11, 3, 9, 0, 0, 0, time.UTC)
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/tickets/7", r.URL.Path)
		assert.Equal(t, "42", r.URL.Query().Get("requester_id"))

		_ = json.NewEncoder(w).Encode(upstreamTicket{
			ID:        7,
			Subject:   "printer offline",
			StateID:   ticket.StatusClosedSuccessful,
			State:     "closed successful",
			CreatedAt: created,
			UpdatedAt: created.Add(time.Hour),
			Articles: []upstreamArticle{
				{ID: 1, From: "Pat", Body: "it broke", SenderType: "customer", CreatedAt: created},
				{ID: 2, From: "Agent Kim", Body: "rebooted", SenderType: "agent", CreatedAt: created.Add(2 * time.Hour)},
			},
		})
	}))

	got, err := client.FetchTicket(context.Background(), "42", 7)
	require.NoError(t, err)

	assert.Equal(t, int64(7), got.ID)
	assert.Equal(t, ticket.CategoryClosed, got.Category)
	assert.Equal(t, 2024, got.Year)
	assert.Equal(t, 2, got.ReplyCount)
	assert.Equal(t, created.Add(2*time.Hour), got.LastActivityAt, "latest article wins over updated_at")
	require.Len(t, got.Replies, 2)
	assert.False(t, got.Replies[0].FromAgent)
	assert.True(t, got.Replies[1].FromAgent)
}

func TestClient_FetchTicket_ErrorMapping(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusNotFound, apperrors.ErrNotFound},
		{http.StatusForbidden, apperrors.ErrForbidden},
		{http.StatusUnauthorized, apperrors.ErrUnauthorized},
		{http.StatusInternalServerError, apperrors.ErrUpstreamUnavailable},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"error":"nope"}`))
			}))

			_, err := client.FetchTicket(context.Background(), "42", 7)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)

			var upstreamErr *apperrors.UpstreamError
			require.ErrorAs(t, err, &upstreamErr)
			assert.Equal(t, tt.status, upstreamErr.StatusCode)
			assert.Equal(t, "nope", upstreamErr.Message)
		})
	}
}

func TestClient_FetchTickets_BuildsQuery(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/tickets", r.URL.Path)
		assert.Equal(t, "42", r.URL.Query().Get("requester_id"))
		assert.Equal(t, "closed", r.URL.Query().Get("state_type"))
		assert.Equal(t, "2024", r.URL.Query().Get("year"))

		_ = json.NewEncoder(w).Encode(upstreamTicketList{Tickets: []upstreamTicket{
			{ID: 1, StateID: ticket.StatusClosedSuccessful, ArticleCount: 3},
		}})
	}))

	got, err := client.FetchTickets(context.Background(), ticket.ListQuery{
		UserID:   "42",
		Category: ticket.CategoryClosed,
		Year:     2024,
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 3, got[0].ReplyCount)
	assert.Nil(t, got[0].Replies, "list entries carry the count only")
}

func TestClient_CreateTicket(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)

		var req createTicketRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "42", req.RequesterID)
		assert.Equal(t, "new issue", req.Subject)

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(upstreamTicket{ID: 99, Subject: req.Subject, StateID: ticket.StatusNew})
	}))

	got, err := client.CreateTicket(context.Background(), "42", ticket.CreateTicketInput{Subject: "new issue"})
	require.NoError(t, err)
	assert.Equal(t, int64(99), got.ID)
	assert.Equal(t, ticket.CategoryActive, got.Category)
}

func TestClient_CloseTicket(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/tickets/7/close", r.URL.Path)
		_ = json.NewEncoder(w).Encode(upstreamTicket{ID: 7, StateID: ticket.StatusClosedSuccessful})
	}))

	got, err := client.CloseTicket(context.Background(), "42", 7)
	require.NoError(t, err)
	assert.Equal(t, ticket.CategoryClosed, got.Category)
}

func TestClient_FetchRequestTypes(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/request_types", r.URL.Path)
		_ = json.NewEncoder(w).Encode(upstreamRequestTypeList{RequestTypes: []upstreamRequestType{
			{ID: 1, Name: "Incident"},
			{ID: 2, Name: "Service request"},
		}})
	}))

	got, err := client.FetchRequestTypes(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Incident", got[0].Name)
}

func TestClient_SearchArticles(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/kb/search", r.URL.Path)
		assert.Equal(t, "printer setup", r.URL.Query().Get("query"))
		_, _ = w.Write([]byte(`{"results":[{"article_id":5,"title":"Printer setup"}],"highlights":{"5":["<em>printer</em>"]}}`))
	}))

	got, err := client.SearchArticles(context.Background(), "printer setup")
	require.NoError(t, err)
	require.Len(t, got.Results, 1)
	assert.Equal(t, int64(5), got.Results[0].ArticleID)
	assert.Equal(t, []string{"<em>printer</em>"}, got.Highlights["5"])
}

func TestClient_FetchArticle(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/kb/articles/5", r.URL.Path)
		_ = json.NewEncoder(w).Encode(upstreamKBArticle{ID: 5, Title: "Printer setup", Body: "Plug it in."})
	}))

	got, err := client.FetchArticle(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, "Printer setup", got.Title)
}
