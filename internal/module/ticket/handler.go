package ticket

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/deskgate/server/internal/module/session"
	"github.com/deskgate/server/internal/shared/response"
)

// Handler handles HTTP requests for tickets.
type Handler struct {
	service *Service
}

// NewHandler creates a new ticket handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the ticket routes on an authenticated group.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	tickets := r.Group("/tickets")
	{
		tickets.GET("", h.List)
		tickets.POST("", h.Create)
		tickets.GET("/:id", h.Get)
		tickets.POST("/:id/replies", h.AddReply)
		tickets.POST("/:id/close", h.Close)
	}
	r.GET("/request-types", h.RequestTypes)
}

// Get returns a single ticket.
func (h *Handler) Get(c *gin.Context) {
	identity, ok := session.MustIdentity(c)
	if !ok {
		return
	}

	ticketID, ok := parseTicketID(c)
	if !ok {
		return
	}

	t, err := h.service.Get(c.Request.Context(), identity, ticketID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, t)
}

// List returns the user's tickets for a category/year, sorted as
// requested.
func (h *Handler) List(c *gin.Context) {
	identity, ok := session.MustIdentity(c)
	if !ok {
		return
	}

	filter := ListFilter{Category: StatusCategory(c.Query("category"))}
	if yearStr := c.Query("year"); yearStr != "" {
		year, err := strconv.Atoi(yearStr)
		if err != nil {
			response.BadRequest(c, "invalid year")
			return
		}
		filter.Year = year
	}
	order := ParseSortOrder(c.Query("sort"))

	tickets, err := h.service.List(c.Request.Context(), identity, filter, order)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tickets": tickets, "count": len(tickets)})
}

// Create submits a new ticket.
func (h *Handler) Create(c *gin.Context) {
	identity, ok := session.MustIdentity(c)
	if !ok {
		return
	}

	var input CreateTicketInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	created, err := h.service.Create(c.Request.Context(), identity, input)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

// AddReply appends a reply to a ticket.
func (h *Handler) AddReply(c *gin.Context) {
	identity, ok := session.MustIdentity(c)
	if !ok {
		return
	}

	ticketID, ok := parseTicketID(c)
	if !ok {
		return
	}

	var input ReplyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	updated, err := h.service.AddReply(c.Request.Context(), identity, ticketID, input)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

// Close closes a ticket.
func (h *Handler) Close(c *gin.Context) {
	identity, ok := session.MustIdentity(c)
	if !ok {
		return
	}

	ticketID, ok := parseTicketID(c)
	if !ok {
		return
	}

	closed, err := h.service.Close(c.Request.Context(), identity, ticketID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, closed)
}

// RequestTypes returns the request type catalog.
func (h *Handler) RequestTypes(c *gin.Context) {
	types, err := h.service.RequestTypes(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"request_types": types})
}

func parseTicketID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, "invalid ticket id")
		return 0, false
	}
	return id, true
}

func handleError(c *gin.Context, err error) {
	response.HandleErrorWithDefault(c, err, []response.ErrorMapping{
		{Err: ErrTicketNotFound, Status: http.StatusNotFound, Message: "ticket not found"},
		{Err: ErrTicketForbidden, Status: http.StatusForbidden, Message: "ticket access denied"},
		{Err: ErrTicketClosed, Status: http.StatusConflict, Message: "ticket already closed"},
	})
}
