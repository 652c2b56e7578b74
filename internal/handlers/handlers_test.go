package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"rebuyrnot/internal/db"
	"rebuyrnot/internal/middleware"
	"rebuyrnot/internal/models"
	"rebuyrnot/internal/notify"
	"rebuyrnot/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	engine    *gin.Engine
	db        *gorm.DB
	catalog   *services.CatalogStore
	reference *services.ReferenceStore
	votes     *services.VoteService
	tokens    *services.TokenManager
}

func newTestServer(t *testing.T, newLimiter func(*gorm.DB) services.RateLimiter) *testServer {
	t.Helper()
	gdb := db.OpenTest(t)
	var limiter services.RateLimiter
	if newLimiter != nil {
		limiter = newLimiter(gdb)
	}
	bus := notify.NewBus()
	catalog := services.NewCatalogStore(gdb, bus)
	t.Cleanup(catalog.Close)
	reference := services.NewReferenceStore(gdb, bus)
	t.Cleanup(reference.Close)
	votes := services.NewVoteService(gdb, limiter, bus)
	accounts := services.NewAccountService(gdb, bus, nil)
	tokens := services.NewTokenManager("test-secret", time.Hour)

	r := gin.New()
	r.Use(sessions.Sessions("test_session", cookie.NewStore([]byte("test-session-secret"))))
	r.Use(middleware.LoadUser(tokens))
	r.Use(middleware.Identity())

	products := NewProductHandler(catalog, votes)
	vote := NewVoteHandler(votes, catalog)
	content := NewContentHandler(reference)
	session := NewSessionHandler(accounts)
	subs := NewSubmissionHandler(services.NewSubmissionService(gdb, bus))
	auth := NewAuthHandler(accounts, tokens)

	r.GET("/products", products.List)
	r.GET("/products/:id", products.Detail)
	r.GET("/products/:id/vote", vote.Check)
	r.POST("/products/:id/vote", vote.Submit)
	r.GET("/stats", products.Stats)
	r.GET("/content", content.Bundle)
	r.GET("/content/:key", content.Get)
	r.GET("/brands", content.Brands)
	r.GET("/session", session.Get)
	r.POST("/session/onboarding", session.MarkOnboarding)
	r.POST("/submissions", subs.Create)
	r.POST("/auth/register", auth.Register)
	r.POST("/auth/login", auth.Login)

	return &testServer{engine: r, db: gdb, catalog: catalog, reference: reference, votes: votes, tokens: tokens}
}

func (s *testServer) addProduct(t *testing.T, id string, rebuy, not int64) {
	t.Helper()
	require.NoError(t, s.db.Create(&models.Product{ID: id, Name: "Product " + id, Brand: "Brand", Category: "tech", RebuyVotes: rebuy, NotVotes: not}).Error)
	require.NoError(t, s.catalog.Refresh(t.Context()))
}

func (s *testServer) refreshReference(t *testing.T) {
	t.Helper()
	require.NoError(t, s.reference.Refresh(t.Context()))
}

func (s *testServer) reload(t *testing.T, id string) models.Product {
	t.Helper()
	var p models.Product
	require.NoError(t, s.db.First(&p, "id = ?", id).Error)
	return p
}

// client keeps the session cookie between requests like a browser.
type client struct {
	t       *testing.T
	srv     *testServer
	cookies []*http.Cookie
	header  http.Header
}

func (s *testServer) client(t *testing.T) *client {
	return &client{t: t, srv: s, header: http.Header{}}
}

func (c *client) do(method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	c.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range c.header {
		req.Header[k] = v
	}
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}

	w := httptest.NewRecorder()
	c.srv.engine.ServeHTTP(w, req)

	if set := w.Result().Cookies(); len(set) > 0 {
		// last Set-Cookie wins
		c.cookies = []*http.Cookie{set[len(set)-1]}
	}

	var out map[string]any
	if w.Body.Len() > 0 {
		require.NoError(c.t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	}
	return w, out
}
