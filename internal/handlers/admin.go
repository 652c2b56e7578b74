package handlers

import (
	"net/http"
	"strconv"

	"rebuyrnot/internal/models"
	"rebuyrnot/internal/services"

	"github.com/gin-gonic/gin"
)

const adminCommentLimit = 500

// AdminHandler 后台管理
type AdminHandler struct {
	admin       *services.AdminService
	submissions *services.SubmissionService
}

func NewAdminHandler(admin *services.AdminService, submissions *services.SubmissionService) *AdminHandler {
	return &AdminHandler{admin: admin, submissions: submissions}
}

// bindJSON decodes the body or writes a 400.
func bindJSON(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		BadRequest(c, "invalid request body")
		return false
	}
	return true
}

// respond writes result or maps err.
func respond(c *gin.Context, status int, key string, result any, err error) {
	if err != nil {
		HandleError(c, err)
		return
	}
	c.JSON(status, gin.H{key: result})
}

func deleted(c *gin.Context, err error) {
	if err != nil {
		HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// ---------- products ----------

func (h *AdminHandler) CreateProduct(c *gin.Context) {
	var in services.ProductInput
	if !bindJSON(c, &in) {
		return
	}
	p, err := h.admin.CreateProduct(c.Request.Context(), in)
	respond(c, http.StatusCreated, "product", p, err)
}

func (h *AdminHandler) UpdateProduct(c *gin.Context) {
	var in services.ProductInput
	if !bindJSON(c, &in) {
		return
	}
	p, err := h.admin.UpdateProduct(c.Request.Context(), c.Param("id"), in)
	respond(c, http.StatusOK, "product", p, err)
}

func (h *AdminHandler) DeleteProduct(c *gin.Context) {
	deleted(c, h.admin.DeleteProduct(c.Request.Context(), c.Param("id")))
}

func (h *AdminHandler) ListProductVotes(c *gin.Context) {
	votes, err := h.admin.ListVotes(c.Request.Context(), c.Param("id"))
	respond(c, http.StatusOK, "votes", votes, err)
}

// ---------- brands ----------

func (h *AdminHandler) ListBrands(c *gin.Context) {
	brands, err := h.admin.ListBrands(c.Request.Context())
	respond(c, http.StatusOK, "brands", brands, err)
}

func (h *AdminHandler) CreateBrand(c *gin.Context) {
	var in services.BrandInput
	if !bindJSON(c, &in) {
		return
	}
	b, err := h.admin.CreateBrand(c.Request.Context(), in)
	respond(c, http.StatusCreated, "brand", b, err)
}

func (h *AdminHandler) UpdateBrand(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var in services.BrandInput
	if !bindJSON(c, &in) {
		return
	}
	b, err := h.admin.UpdateBrand(c.Request.Context(), id, in)
	respond(c, http.StatusOK, "brand", b, err)
}

func (h *AdminHandler) DeleteBrand(c *gin.Context) {
	if id, ok := paramID(c); ok {
		deleted(c, h.admin.DeleteBrand(c.Request.Context(), id))
	}
}

// ---------- categories ----------

func (h *AdminHandler) ListCategories(c *gin.Context) {
	categories, err := h.admin.ListCategories(c.Request.Context())
	respond(c, http.StatusOK, "categories", categories, err)
}

func (h *AdminHandler) CreateCategory(c *gin.Context) {
	var in services.CategoryInput
	if !bindJSON(c, &in) {
		return
	}
	cat, err := h.admin.CreateCategory(c.Request.Context(), in)
	respond(c, http.StatusCreated, "category", cat, err)
}

func (h *AdminHandler) UpdateCategory(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var in services.CategoryInput
	if !bindJSON(c, &in) {
		return
	}
	cat, err := h.admin.UpdateCategory(c.Request.Context(), id, in)
	respond(c, http.StatusOK, "category", cat, err)
}

func (h *AdminHandler) DeleteCategory(c *gin.Context) {
	if id, ok := paramID(c); ok {
		deleted(c, h.admin.DeleteCategory(c.Request.Context(), id))
	}
}

// ---------- site content ----------

func (h *AdminHandler) ListContent(c *gin.Context) {
	rows, err := h.admin.ListContent(c.Request.Context())
	respond(c, http.StatusOK, "content", rows, err)
}

func (h *AdminHandler) CreateContent(c *gin.Context) {
	var in services.ContentInput
	if !bindJSON(c, &in) {
		return
	}
	row, err := h.admin.CreateContent(c.Request.Context(), in)
	respond(c, http.StatusCreated, "content", row, err)
}

func (h *AdminHandler) UpdateContent(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var in services.ContentInput
	if !bindJSON(c, &in) {
		return
	}
	row, err := h.admin.UpdateContent(c.Request.Context(), id, in)
	respond(c, http.StatusOK, "content", row, err)
}

func (h *AdminHandler) DeleteContent(c *gin.Context) {
	if id, ok := paramID(c); ok {
		deleted(c, h.admin.DeleteContent(c.Request.Context(), id))
	}
}

// ---------- comments, votes, users ----------

func (h *AdminHandler) ListComments(c *gin.Context) {
	limit := adminCommentLimit
	if l, err := strconv.Atoi(c.Query("limit")); err == nil && l > 0 && l < limit {
		limit = l
	}
	comments, err := h.admin.ListComments(c.Request.Context(), limit)
	respond(c, http.StatusOK, "comments", comments, err)
}

func (h *AdminHandler) DeleteComment(c *gin.Context) {
	deleted(c, h.admin.DeleteComment(c.Request.Context(), c.Param("id")))
}

func (h *AdminHandler) DeleteVote(c *gin.Context) {
	deleted(c, h.admin.DeleteVote(c.Request.Context(), c.Param("id")))
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.admin.ListUsers(c.Request.Context())
	respond(c, http.StatusOK, "users", users, err)
}

// ---------- submissions ----------

type reviewRequest struct {
	Notes string `json:"notes"`
}

func (h *AdminHandler) ListSubmissions(c *gin.Context) {
	status := models.SubmissionStatus(c.Query("status"))
	switch status {
	case "", models.SubmissionPending, models.SubmissionApproved, models.SubmissionRejected:
	default:
		BadRequest(c, "unknown status")
		return
	}
	subs, err := h.submissions.List(c.Request.Context(), status, c.Query("q"))
	respond(c, http.StatusOK, "submissions", subs, err)
}

func (h *AdminHandler) ApproveSubmission(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req reviewRequest
	// body is optional
	_ = c.ShouldBindJSON(&req)
	p, err := h.submissions.Approve(c.Request.Context(), id, req.Notes)
	respond(c, http.StatusOK, "product", p, err)
}

func (h *AdminHandler) RejectSubmission(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req reviewRequest
	_ = c.ShouldBindJSON(&req)
	if err := h.submissions.Reject(c.Request.Context(), id, req.Notes); err != nil {
		HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": models.SubmissionRejected})
}

func (h *AdminHandler) DeleteSubmission(c *gin.Context) {
	if id, ok := paramID(c); ok {
		deleted(c, h.submissions.Delete(c.Request.Context(), id))
	}
}
