package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	ierr "github.com/surveyloop/surveyloop/internal/errors"
)

// errorResponse is the uniform error envelope returned by every
// endpoint.
type errorResponse struct {
	Success bool        `json:"success"`
	Error   errorDetail `json:"error"`
}

type errorDetail struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// ErrorHandler converts errors attached via c.Error into a JSON
// response with the status derived from the error's mark. Handlers
// never write error bodies themselves.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err

		message := ierr.Hint(err)
		if message == "" {
			message = "Something went wrong"
		}

		c.JSON(httpStatusFromError(err), errorResponse{
			Success: false,
			Error: errorDetail{
				Message: message,
				Details: ierr.ReportableDetails(err),
			},
		})
	}
}

func httpStatusFromError(err error) int {
	switch {
	case ierr.IsValidation(err):
		return http.StatusBadRequest
	case ierr.IsPermissionDenied(err):
		return http.StatusUnauthorized
	case ierr.IsNotFound(err):
		return http.StatusNotFound
	case ierr.IsAlreadyExists(err), ierr.IsConflict(err):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
