package handlers

import (
	"net/http"

	"rebuyrnot/internal/services"

	"github.com/gin-gonic/gin"
)

type ContentHandler struct {
	reference *services.ReferenceStore
}

func NewContentHandler(reference *services.ReferenceStore) *ContentHandler {
	return &ContentHandler{reference: reference}
}

func (h *ContentHandler) Brands(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"brands": h.reference.Brands()})
}

func (h *ContentHandler) Categories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": h.reference.Categories()})
}

// Bundle returns every translated string for ?lang= (default en).
func (h *ContentHandler) Bundle(c *gin.Context) {
	lang := c.DefaultQuery("lang", services.LangEN)
	c.JSON(http.StatusOK, gin.H{"lang": lang, "content": h.reference.Bundle(lang)})
}

// Get returns one string; unknown keys echo the key back.
func (h *ContentHandler) Get(c *gin.Context) {
	key := c.Param("key")
	lang := c.DefaultQuery("lang", services.LangEN)
	c.JSON(http.StatusOK, gin.H{"key": key, "lang": lang, "text": h.reference.GetContent(key, lang)})
}
