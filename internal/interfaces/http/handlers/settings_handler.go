package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	domainerrors "equi-cloud.backend/internal/domain/errors"
	"equi-cloud.backend/internal/interfaces/http/middleware"
	"equi-cloud.backend/internal/interfaces/http/response"
	"equi-cloud.backend/internal/usecases"
)

const settingsContentType = "application/octet-stream"

// SettingsHandler handles the settings backup endpoints
type SettingsHandler struct {
	settingsUsecase *usecases.SettingsUsecase
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(settingsUsecase *usecases.SettingsUsecase) *SettingsHandler {
	return &SettingsHandler{settingsUsecase: settingsUsecase}
}

// GetSettings returns the stored settings blob
// GET /v1/settings
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("Unauthorized"))
		return
	}

	result, err := h.settingsUsecase.Fetch(c.Request.Context(), userID, c.GetHeader("If-None-Match"))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("ETag", result.Record.ETag())
	if result.NotModified {
		c.Status(http.StatusNotModified)
		return
	}
	c.Data(http.StatusOK, settingsContentType, result.Record.Blob)
}

// HeadSettings reports whether a settings record exists
// HEAD /v1/settings
func (h *SettingsHandler) HeadSettings(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.Status(http.StatusUnauthorized)
		return
	}

	record, err := h.settingsUsecase.Head(c.Request.Context(), userID)
	if err != nil {
		// HEAD responses carry no body
		if appErr, okApp := err.(*domainerrors.AppError); okApp {
			c.Status(appErr.Status)
			return
		}
		c.Status(statusForSentinel(err))
		return
	}

	c.Header("ETag", record.ETag())
	c.Status(http.StatusNoContent)
}

func statusForSentinel(err error) int {
	switch {
	case errors.Is(err, domainerrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domainerrors.ErrBackendUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// PutSettings stores the settings blob
// PUT /v1/settings
func (h *SettingsHandler) PutSettings(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("Unauthorized"))
		return
	}

	if !strings.HasPrefix(c.ContentType(), settingsContentType) {
		response.Error(c, domainerrors.UnsupportedMediaType("Settings must be application/octet-stream"))
		return
	}

	blob, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.Error(c, domainerrors.BadRequest("Failed to read request body"))
		return
	}

	record, err := h.settingsUsecase.Store(c.Request.Context(), userID, blob)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"written": record.UpdatedAt})
}

// DeleteSettings removes the stored settings
// DELETE /v1/settings
func (h *SettingsHandler) DeleteSettings(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("Unauthorized"))
		return
	}

	if err := h.settingsUsecase.Delete(c.Request.Context(), userID); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
