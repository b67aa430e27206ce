package response

import (
	"net/http"

	"riddlehunt/utils/apperror"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const ErrInternal = "Internal server error"

// Error sends a standardized error response
func Error(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"detail": message})
}

// ValidationError sends a response for request body validation errors
func ValidationError(c *gin.Context, errors map[string]string) {
	c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid request", "errors": errors})
}

// StatusFor maps an application error kind to an HTTP status code
func StatusFor(err error) int {
	switch apperror.KindOf(err) {
	case apperror.KindNotFound:
		return http.StatusNotFound
	case apperror.KindValidation:
		return http.StatusBadRequest
	case apperror.KindConflict:
		return http.StatusConflict
	case apperror.KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// FromError writes err using its kind. Internal errors are logged and
// replaced by a generic message.
func FromError(c *gin.Context, logger logrus.FieldLogger, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		logger.WithError(err).WithField("path", c.FullPath()).Error("request failed")
	}
	Error(c, status, apperror.MessageOf(err, ErrInternal))
}
