package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vektah/gqlparser/v2/gqlerror"

	"github.com/zekoder/zegraphql/business"
	"github.com/zekoder/zegraphql/zegraphql/manager"
)

// Error codes carried in extensions.code
const (
	CodeNotFound     = "NOT_FOUND"
	CodeBadUserInput = "BAD_USER_INPUT"
	CodeForbidden    = "FORBIDDEN"
	CodeInternal     = "INTERNAL_SERVER_ERROR"
)

// mapError converts a service error into an HTTP status and a GraphQL error
func mapError(err error, operation string) (int, *gqlerror.Error) {
	var validation *manager.ValidationError
	var integrity *manager.IntegrityError

	switch {
	case errors.Is(err, business.ErrUnknownEntity), errors.Is(err, manager.ErrNotFound):
		return http.StatusNotFound, newError(err.Error(), CodeNotFound, operation)

	case errors.As(err, &validation):
		gerr := newError(err.Error(), CodeBadUserInput, operation)
		gerr.Extensions["field"] = validation.Field
		return http.StatusUnprocessableEntity, gerr

	case errors.As(err, &integrity):
		gerr := newError(err.Error(), CodeBadUserInput, operation)
		gerr.Extensions["entity"] = integrity.Entity
		return http.StatusUnprocessableEntity, gerr

	case errors.Is(err, manager.ErrInvalidQuery):
		return http.StatusUnprocessableEntity, newError(err.Error(), CodeBadUserInput, operation)
	}

	// InternalError already carries a message safe to show; anything else is hidden
	var internal *manager.InternalError
	if errors.As(err, &internal) {
		return http.StatusInternalServerError, newError(internal.Error(), CodeInternal, operation)
	}
	return http.StatusInternalServerError, newError("internal server error", CodeInternal, operation)
}

func newError(message, code, operation string) *gqlerror.Error {
	return &gqlerror.Error{
		Message: message,
		Extensions: map[string]interface{}{
			"code":      code,
			"operation": operation,
		},
	}
}

// abortWithError writes {"errors": [...]} and stops the handler chain
func abortWithError(c *gin.Context, status int, gerr *gqlerror.Error) {
	if status >= http.StatusInternalServerError {
		_ = c.Error(gerr)
	}
	c.AbortWithStatusJSON(status, gin.H{"errors": gqlerror.List{gerr}})
}

func (s *Server) fail(c *gin.Context, operation string, err error) {
	status, gerr := mapError(err, operation)
	abortWithError(c, status, gerr)
}

func badRequest(c *gin.Context, operation string, err error) {
	abortWithError(c, http.StatusBadRequest, newError("invalid request body: "+err.Error(), CodeBadUserInput, operation))
}
