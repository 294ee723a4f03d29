package httputil

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	apperrors "github.com/fajrglobal/clinic-api/pkg/errors"
)

// ErrorBody is the body of every non-2xx JSON response.
// Detail carries the message the web client displays.
type ErrorBody struct {
	Detail string `json:"detail"`
	Code   int    `json:"code"`
}

// RespondWithSuccess sends the resource as the response body
func RespondWithSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// RespondWithError sends an error response
func RespondWithError(c *gin.Context, err error) {
	var statusCode int
	var message string

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		statusCode = appErr.StatusCode()
		message = appErr.Message
	} else {
		statusCode = http.StatusInternalServerError
		message = "Internal server error"
	}

	if statusCode >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
	}

	c.AbortWithStatusJSON(statusCode, ErrorBody{
		Detail: message,
		Code:   statusCode,
	})
}
