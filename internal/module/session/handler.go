package session

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/deskgate/server/internal/shared/response"
)

// Handler handles HTTP requests for widget sessions.
type Handler struct {
	manager    *JWTManager
	demoTokens bool
}

// NewHandler creates a new session handler. demoTokens enables the
// development-only mint endpoint.
func NewHandler(manager *JWTManager, demoTokens bool) *Handler {
	return &Handler{manager: manager, demoTokens: demoTokens}
}

// RegisterRoutes registers the session routes on an authenticated group.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/session", h.GetSession)
}

// RegisterPublicRoutes registers routes reachable without a session.
func (h *Handler) RegisterPublicRoutes(r *gin.RouterGroup) {
	if h.demoTokens {
		r.POST("/session/demo-token", h.MintDemoToken)
	}
}

// GetSession echoes the verified identity back to the widget.
func (h *Handler) GetSession(c *gin.Context) {
	identity, ok := MustIdentity(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, identity)
}

// MintDemoTokenRequest is the demo token mint request.
type MintDemoTokenRequest struct {
	UserID string `json:"user_id" binding:"required"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}

// MintDemoTokenResponse is the demo token mint response.
type MintDemoTokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// MintDemoToken mints a session token without host-page involvement.
// Only registered when session.demo_tokens is enabled.
func (h *Handler) MintDemoToken(c *gin.Context) {
	var req MintDemoTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	token, expiresAt, err := h.manager.Mint(Identity{
		UserID: req.UserID,
		Email:  req.Email,
		Name:   req.Name,
	})
	if err != nil {
		response.HandleErrorWithDefault(c, err, nil)
		return
	}

	c.JSON(http.StatusOK, MintDemoTokenResponse{Token: token, ExpiresAt: expiresAt})
}
