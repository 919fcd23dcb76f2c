package response

import (
	"errors"
	"net/http"

	"funding-platform/pkg/apperror"

	"github.com/gin-gonic/gin"
)

// ErrorBody is the error envelope: a machine-readable tag the caller can
// branch on.
type ErrorBody struct {
	Error string `json:"error"`
}

// OK sends a 200 response with the given payload.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Error sends an error response. It checks if err is an *apperror.AppError
// and maps its status and tag, otherwise returns a generic 500.
func Error(c *gin.Context, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.HTTPStatus, ErrorBody{Error: appErr.Code})
		return
	}

	c.JSON(http.StatusInternalServerError, ErrorBody{Error: "internal_error"})
}
