package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/uniedit/storage-oss/internal/shared/errors"
)

// Error sends an error response with the given status, code and message.
func Error(c *gin.Context, status int, code, message string) {
	c.JSON(status, apperrors.ErrorResponse{
		Error: apperrors.ErrorDetail{Code: code, Message: message},
	})
}

// AppError writes an application error using its own status and code.
func AppError(c *gin.Context, err *apperrors.AppError) {
	c.JSON(err.StatusCode, err.ToResponse())
}

// InternalError sends a 500 response without exposing the cause.
func InternalError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "internal error")
}

// HandleError writes the response for the *AppError in err's chain. Returns
// false when there is none and no response was written.
func HandleError(c *gin.Context, err error) bool {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		AppError(c, appErr)
		return true
	}
	return false
}
