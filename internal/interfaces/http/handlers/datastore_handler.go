package handlers

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"equi-cloud.backend/internal/domain/entities"
	domainerrors "equi-cloud.backend/internal/domain/errors"
	"equi-cloud.backend/internal/interfaces/http/middleware"
	"equi-cloud.backend/internal/interfaces/http/response"
	"equi-cloud.backend/internal/usecases"
)

// DataStoreHandler handles the keyed datastore endpoints
type DataStoreHandler struct {
	dataStoreUsecase *usecases.DataStoreUsecase
}

// NewDataStoreHandler creates a new datastore handler
func NewDataStoreHandler(dataStoreUsecase *usecases.DataStoreUsecase) *DataStoreHandler {
	return &DataStoreHandler{dataStoreUsecase: dataStoreUsecase}
}

// keyParam extracts the datastore key from the wildcard route segment.
func keyParam(c *gin.Context) string {
	return strings.TrimPrefix(c.Param("key"), "/")
}

// GetKey returns the value stored at a key
// GET /v2/data/*key
func (h *DataStoreHandler) GetKey(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("Unauthorized"))
		return
	}

	entry, notModified, err := h.dataStoreUsecase.Get(
		c.Request.Context(), userID, keyParam(c), c.GetHeader("If-None-Match"))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("ETag", entry.Checksum)
	c.Header("X-Version", strconv.FormatInt(entry.Version, 10))
	if notModified {
		c.Status(http.StatusNotModified)
		return
	}
	c.Data(http.StatusOK, settingsContentType, entry.Value)
}

// PutKey stores a value at a key
// PUT /v2/data/*key
func (h *DataStoreHandler) PutKey(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("Unauthorized"))
		return
	}

	if !strings.HasPrefix(c.ContentType(), settingsContentType) {
		response.Error(c, domainerrors.UnsupportedMediaType("Values must be application/octet-stream"))
		return
	}

	value, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.Error(c, domainerrors.BadRequest("Failed to read request body"))
		return
	}

	entry, err := h.dataStoreUsecase.Put(c.Request.Context(), userID, keyParam(c), value)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"version":    entry.Version,
		"checksum":   entry.Checksum,
		"updated_at": entry.UpdatedAt,
	})
}

// DeleteKey removes the value stored at a key
// DELETE /v2/data/*key
func (h *DataStoreHandler) DeleteKey(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("Unauthorized"))
		return
	}

	if err := h.dataStoreUsecase.Delete(c.Request.Context(), userID, keyParam(c)); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetManifest lists the user's stored keys
// GET /v2/manifest
func (h *DataStoreHandler) GetManifest(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("Unauthorized"))
		return
	}

	manifest, err := h.dataStoreUsecase.Manifest(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, manifest)
}

// Sync reconciles the client's manifest against the server's
// POST /v2/sync
func (h *DataStoreHandler) Sync(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("Unauthorized"))
		return
	}

	var req entities.SyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, domainerrors.BadRequest("Invalid sync request body"))
		return
	}

	resp, err := h.dataStoreUsecase.Sync(c.Request.Context(), userID, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp)
}
