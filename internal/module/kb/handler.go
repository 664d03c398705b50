package kb

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/deskgate/server/internal/shared/response"
)

// Handler handles HTTP requests for the knowledge base.
type Handler struct {
	service *Service
}

// NewHandler creates a new knowledge base handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the knowledge base routes on an
// authenticated group.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	kb := r.Group("/kb")
	{
		kb.GET("/search", h.Search)
		kb.GET("/articles/:id", h.Article)
	}
}

// Search runs a knowledge base search.
func (h *Handler) Search(c *gin.Context) {
	results, err := h.service.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, results)
}

// Article returns a single knowledge base article.
func (h *Handler) Article(c *gin.Context) {
	articleID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || articleID <= 0 {
		response.BadRequest(c, "invalid article id")
		return
	}

	article, err := h.service.Article(c.Request.Context(), articleID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, article)
}

func handleError(c *gin.Context, err error) {
	response.HandleErrorWithDefault(c, err, []response.ErrorMapping{
		{Err: ErrQueryTooShort, Status: http.StatusBadRequest, Message: "search query too short"},
		{Err: ErrArticleNotFound, Status: http.StatusNotFound, Message: "article not found"},
	})
}
