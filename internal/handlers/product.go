package handlers

import (
	"net/http"

	"rebuyrnot/internal/middleware"
	"rebuyrnot/internal/models"
	"rebuyrnot/internal/services"
	"rebuyrnot/internal/utils"

	"github.com/gin-gonic/gin"
)

const detailCommentLimit = 50

// ProductView is a product with its derived numbers.
type ProductView struct {
	models.Product
	TotalVotes   int64   `json:"total_votes"`
	RebuyPercent float64 `json:"rebuy_percent"`
}

func newProductView(p models.Product) ProductView {
	return ProductView{
		Product:      p,
		TotalVotes:   p.TotalVotes(),
		RebuyPercent: utils.RebuyPercent(p.RebuyVotes, p.NotVotes),
	}
}

type ProductHandler struct {
	catalog *services.CatalogStore
	votes   *services.VoteService
}

func NewProductHandler(catalog *services.CatalogStore, votes *services.VoteService) *ProductHandler {
	return &ProductHandler{catalog: catalog, votes: votes}
}

// List 商品列表, optionally filtered by ?category=
func (h *ProductHandler) List(c *gin.Context) {
	products := h.catalog.ListByCategory(c.Query("category"))
	views := make([]ProductView, 0, len(products))
	for _, p := range products {
		views = append(views, newProductView(p))
	}
	c.JSON(http.StatusOK, gin.H{
		"products":    views,
		"total_votes": h.catalog.TotalVotes(),
	})
}

// Detail returns one product with its rendered description, latest comments
// and the caller's vote.
func (h *ProductHandler) Detail(c *gin.Context) {
	p, err := h.catalog.GetByID(c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}

	ctx := c.Request.Context()
	comments, err := h.votes.Comments(ctx, p.ID, detailCommentLimit)
	if err != nil {
		HandleError(c, err)
		return
	}
	voteType, voted, err := h.votes.CheckVote(ctx, p.ID, middleware.CurrentVoter(c))
	if err != nil {
		HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"product":          newProductView(p),
		"description_html": h.catalog.DescriptionHTML(p),
		"comments":         comments,
		"user_vote":        voteOrNil(voteType, voted),
	})
}

// Stats is the homepage counter.
func (h *ProductHandler) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"total_votes":   h.catalog.TotalVotes(),
		"product_count": h.catalog.Count(),
	})
}

func voteOrNil(t models.VoteType, ok bool) any {
	if !ok {
		return nil
	}
	return t
}
