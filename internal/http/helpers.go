package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/entities"
	domainerrors "github.com/mrlokans/bookshelf/internal/errors"
	"github.com/mrlokans/bookshelf/internal/identity"
	"github.com/mrlokans/bookshelf/internal/library"
	"github.com/mrlokans/bookshelf/internal/logger"
	"github.com/mrlokans/bookshelf/internal/ratings"
	"github.com/mrlokans/bookshelf/internal/social"
)

// statusClientClosedRequest is the nginx convention for a client that went away.
const statusClientClosedRequest = 499

// --- Response Types ---

// ErrorResponse is the standard error response format for all API errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`    // machine-readable error code
	Details any    `json:"details,omitempty"` // additional context (validation errors, etc.)
}

// --- Error Response Helpers ---

// respondBadRequest sends a 400 with the validation code.
func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message, Code: string(domainerrors.CodeValidation)})
}

// respondError maps err to a status through its domain code. Errors without a
// domain code are logged and reported as internal without exposing the cause.
func respondError(c *gin.Context, log *logger.Logger, err error) {
	switch {
	case errors.Is(err, context.Canceled):
		c.AbortWithStatus(statusClientClosedRequest)
		return
	case errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusGatewayTimeout, ErrorResponse{Error: "request timed out", Code: string(domainerrors.CodeInternal)})
		return
	}

	var domainErr *domainerrors.Error
	if !errors.As(err, &domainErr) {
		log.Error("unhandled error", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error", Code: string(domainerrors.CodeInternal)})
		return
	}

	status := domainErr.HTTPStatus()
	if status >= http.StatusInternalServerError {
		// Persistence and internal causes are logged by the services; only the message leaves.
		c.JSON(status, ErrorResponse{Error: domainErr.Message, Code: string(domainErr.Code)})
		return
	}
	c.JSON(status, ErrorResponse{Error: domainErr.Message, Code: string(domainErr.Code), Details: domainErr.Details})
}

// --- Identity ---

// currentUser returns the caller attached by the identity middleware, or
// responds 401 when the route was reached without one.
func currentUser(c *gin.Context) (identity.User, bool) {
	user, ok := identity.FromContext(c)
	if !ok || user.UID == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
			Error: "authentication required",
			Code:  string(domainerrors.CodeUnauthorized),
		})
		return identity.User{}, false
	}
	return user, true
}

func socialCaller(u identity.User) social.Caller {
	return social.Caller{UID: u.UID, DisplayName: u.DisplayName, Email: u.Email}
}

func reviewAuthor(u identity.User) ratings.Author {
	return ratings.Author{UID: u.UID, DisplayName: u.DisplayName, Email: u.Email}
}

// --- Parameter Parsing ---

// parseShelfParam validates a shelf from the URL or query. An empty value
// yields fallback. Responds 400 and returns false when the shelf is unknown.
func parseShelfParam(c *gin.Context, value string, fallback entities.Shelf, log *logger.Logger) (entities.Shelf, bool) {
	if value == "" {
		return fallback, true
	}
	shelf, err := library.ParseShelf(value)
	if err != nil {
		respondError(c, log, err)
		return "", false
	}
	return shelf, true
}
