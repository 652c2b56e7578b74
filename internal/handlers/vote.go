package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"rebuyrnot/internal/middleware"
	"rebuyrnot/internal/models"
	"rebuyrnot/internal/services"

	"github.com/gin-gonic/gin"
)

type VoteHandler struct {
	votes   *services.VoteService
	catalog *services.CatalogStore
}

func NewVoteHandler(votes *services.VoteService, catalog *services.CatalogStore) *VoteHandler {
	return &VoteHandler{votes: votes, catalog: catalog}
}

type voteRequest struct {
	VoteType models.VoteType `json:"vote_type"`
	Comment  string          `json:"comment"`
}

// Check returns the caller's vote on the product, if any.
func (h *VoteHandler) Check(c *gin.Context) {
	productID := c.Param("id")
	if _, err := h.catalog.GetByID(productID); err != nil {
		HandleError(c, err)
		return
	}

	voteType, voted, err := h.votes.CheckVote(c.Request.Context(), productID, middleware.CurrentVoter(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"voted": voted, "vote_type": voteOrNil(voteType, voted)})
}

// Submit records a rebuy/not vote with an optional comment.
func (h *VoteHandler) Submit(c *gin.Context) {
	var req voteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request body")
		return
	}

	productID := c.Param("id")
	voter := middleware.CurrentVoter(c)
	ctx := c.Request.Context()

	vote, err := h.votes.SubmitVote(ctx, productID, req.VoteType, voter, req.Comment)
	if err != nil {
		if errors.Is(err, services.ErrAlreadyVoted) {
			// 以服务端记录为准, resync the client marker
			if stored, found, checkErr := h.votes.CheckVote(ctx, productID, voter); checkErr == nil && found {
				markVoted(c, productID, stored)
			} else if checkErr != nil {
				slog.Warn("failed to load stored vote", "product", productID, "error", checkErr)
			}
		}
		HandleError(c, err)
		return
	}

	markVoted(c, productID, vote.VoteType)

	resp := gin.H{"vote": vote}
	if p, err := h.catalog.GetByID(productID); err == nil {
		resp["product"] = newProductView(p)
	}
	resp["total_votes"] = h.catalog.TotalVotes()
	c.JSON(http.StatusCreated, resp)
}
