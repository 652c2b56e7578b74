package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"rebuyrnot/internal/services"

	"github.com/gin-gonic/gin"
)

// Error codes returned in the "error" field.
const (
	CodeAlreadyVoted    = "already_voted"
	CodeRateLimited     = "rate_limited"
	CodeInvalidComment  = "invalid_comment"
	CodeInvalidVoteType = "invalid_vote_type"
	CodeNotFound        = "not_found"
	CodeUnauthorized    = "unauthorized"
	CodeForbidden       = "forbidden"
	CodeBadRequest      = "bad_request"
	CodeInternal        = "internal"
)

// RespondError writes {"error": code, "message": text}.
func RespondError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": code, "message": message})
}

// HandleError maps service errors to HTTP responses. Backend failures are
// logged and reported without their cause.
func HandleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrAlreadyVoted):
		RespondError(c, http.StatusConflict, CodeAlreadyVoted, err.Error())
	case errors.Is(err, services.ErrRateLimited):
		RespondError(c, http.StatusTooManyRequests, CodeRateLimited, err.Error())
	case errors.Is(err, services.ErrInvalidComment):
		RespondError(c, http.StatusUnprocessableEntity, CodeInvalidComment, err.Error())
	case errors.Is(err, services.ErrInvalidVoteType):
		RespondError(c, http.StatusBadRequest, CodeInvalidVoteType, err.Error())
	case errors.Is(err, services.ErrProductNotFound), errors.Is(err, services.ErrNotFound):
		RespondError(c, http.StatusNotFound, CodeNotFound, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		RespondError(c, http.StatusUnauthorized, CodeUnauthorized, err.Error())
	case errors.Is(err, services.ErrEmailTaken):
		RespondError(c, http.StatusBadRequest, CodeBadRequest, err.Error())
	case errors.Is(err, services.ErrInvalidInput):
		RespondError(c, http.StatusBadRequest, CodeBadRequest, err.Error())
	default:
		slog.Error("request failed", "method", c.Request.Method, "path", c.FullPath(), "error", err)
		RespondError(c, http.StatusInternalServerError, CodeInternal, "something went wrong, please try again")
	}
}

// BadRequest is shorthand for a 400 bad_request.
func BadRequest(c *gin.Context, message string) {
	RespondError(c, http.StatusBadRequest, CodeBadRequest, message)
}

// paramID parses a numeric :id path parameter.
func paramID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		BadRequest(c, "invalid id")
		return 0, false
	}
	return uint(id), true
}
