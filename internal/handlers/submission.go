package handlers

import (
	"net/http"

	"rebuyrnot/internal/middleware"
	"rebuyrnot/internal/services"

	"github.com/gin-gonic/gin"
)

type SubmissionHandler struct {
	submissions *services.SubmissionService
}

func NewSubmissionHandler(submissions *services.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{submissions: submissions}
}

// Create 用户推荐商品, signed in or not.
func (h *SubmissionHandler) Create(c *gin.Context) {
	var in services.SubmissionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		BadRequest(c, "invalid request body")
		return
	}

	sub, err := h.submissions.Submit(c.Request.Context(), middleware.CurrentUserID(c), in)
	if err != nil {
		HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"submission": sub})
}
