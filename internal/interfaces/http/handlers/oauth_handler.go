package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"equi-cloud.backend/internal/interfaces/http/response"
	"equi-cloud.backend/internal/usecases"
)

// OAuthHandler handles the Discord OAuth endpoints
type OAuthHandler struct {
	oauthUsecase *usecases.OAuthUsecase
}

// NewOAuthHandler creates a new OAuth handler
func NewOAuthHandler(oauthUsecase *usecases.OAuthUsecase) *OAuthHandler {
	return &OAuthHandler{oauthUsecase: oauthUsecase}
}

// GetSettings returns the public OAuth client configuration
// GET /v1/oauth/settings
func (h *OAuthHandler) GetSettings(c *gin.Context) {
	response.Success(c, http.StatusOK, h.oauthUsecase.Settings())
}

// Callback completes the authorization code flow
// GET /v1/oauth/callback?code=...
func (h *OAuthHandler) Callback(c *gin.Context) {
	result, err := h.oauthUsecase.HandleCallback(c.Request.Context(), c.Query("code"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}
