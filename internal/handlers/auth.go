package handlers

import (
	"context"
	"net/http"

	"rebuyrnot/internal/middleware"
	"rebuyrnot/internal/models"
	"rebuyrnot/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// ProfileLoader loads the signed-in user's profile.
type ProfileLoader interface {
	Profile(ctx context.Context, userID string) (*models.Profile, error)
}

type AuthHandler struct {
	accounts *services.AccountService
	tokens   *services.TokenManager
}

func NewAuthHandler(accounts *services.AccountService, tokens *services.TokenManager) *AuthHandler {
	return &AuthHandler{accounts: accounts, tokens: tokens}
}

type credentials struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request body")
		return
	}

	profile, err := h.accounts.Register(c.Request.Context(), req.Email, req.Password, req.DisplayName)
	if err != nil {
		HandleError(c, err)
		return
	}
	h.signIn(c, http.StatusCreated, profile)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request body")
		return
	}

	profile, err := h.accounts.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		HandleError(c, err)
		return
	}
	h.signIn(c, http.StatusOK, profile)
}

// signIn starts the cookie session and also returns a bearer token.
func (h *AuthHandler) signIn(c *gin.Context, status int, profile *models.Profile) {
	token, expires, err := h.tokens.Issue(profile.ID, profile.Email)
	if err != nil {
		HandleError(c, err)
		return
	}

	session := sessions.Default(c)
	session.Set(middleware.SessionUserID, profile.ID)
	if err := session.Save(); err != nil {
		HandleError(c, err)
		return
	}

	c.JSON(status, gin.H{
		"user":       profile,
		"is_admin":   h.accounts.IsAdmin(c.Request.Context(), profile.ID),
		"token":      token,
		"expires_at": expires,
	})
}

// Logout ends the session but keeps the fingerprint and vote markers.
func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Delete(middleware.SessionUserID)
	if err := session.Save(); err != nil {
		HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"signed_out": true})
}

func (h *AuthHandler) Me(c *gin.Context) {
	uid := middleware.CurrentUserID(c)
	profile, err := h.accounts.Profile(c.Request.Context(), uid)
	if err != nil {
		HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user":     profile,
		"is_admin": h.accounts.IsAdmin(c.Request.Context(), uid),
	})
}

func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var req struct {
		DisplayName string `json:"display_name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request body")
		return
	}

	profile, err := h.accounts.UpdateProfile(c.Request.Context(), middleware.CurrentUserID(c), req.DisplayName)
	if err != nil {
		HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": profile})
}
