package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	domainerrors "equi-cloud.backend/internal/domain/errors"
)

// Success sends a success response
func Success(c *gin.Context, status int, data interface{}) {
	c.JSON(status, data)
}

// Error sends an error response. Bare sentinel errors from the storage layer
// are mapped to their HTTP shape here so usecases can return them directly.
func Error(c *gin.Context, err error) {
	var appErr *domainerrors.AppError
	if !errors.As(err, &appErr) {
		appErr = fromSentinel(err)
	}

	c.JSON(appErr.Status, gin.H{
		"code":    appErr.Code,
		"message": appErr.Message,
		"error":   appErr.Message, // Backward compatibility
	})
}

func fromSentinel(err error) *domainerrors.AppError {
	switch {
	case errors.Is(err, domainerrors.ErrNotFound):
		return domainerrors.NotFound("Resource not found")
	case errors.Is(err, domainerrors.ErrUnauthorized):
		return domainerrors.Unauthorized("Unauthorized")
	case errors.Is(err, domainerrors.ErrForbidden):
		return domainerrors.Forbidden("Forbidden")
	case errors.Is(err, domainerrors.ErrInvalidInput):
		return domainerrors.BadRequest("Invalid input")
	case errors.Is(err, domainerrors.ErrPayloadTooLarge), errors.Is(err, domainerrors.ErrQuotaExceeded):
		return domainerrors.PayloadTooLarge("Payload too large")
	case errors.Is(err, domainerrors.ErrUnsupportedMedia):
		return domainerrors.UnsupportedMediaType("Unsupported media type")
	case errors.Is(err, domainerrors.ErrBackendUnavailable):
		return domainerrors.NewAppError(http.StatusServiceUnavailable, domainerrors.CodeInternal,
			"Storage backend unavailable", err)
	default:
		return domainerrors.InternalError(err)
	}
}

// ErrorWithError sends an error response with a specific status and message
func ErrorWithError(c *gin.Context, status int, code string, message string) {
	c.JSON(status, gin.H{
		"code":    code,
		"message": message,
	})
}
