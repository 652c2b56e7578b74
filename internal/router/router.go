package router

import (
	"net/http"

	"rebuyrnot/internal/handlers"
	"rebuyrnot/internal/middleware"
	"rebuyrnot/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

const sessionName = "rebuyrnot_session"

// Deps are the long-lived objects built in main.
type Deps struct {
	SessionSecret string
	SiteURL       string

	Catalog     *services.CatalogStore
	Reference   *services.ReferenceStore
	Votes       *services.VoteService
	Accounts    *services.AccountService
	Admin       *services.AdminService
	Submissions *services.SubmissionService
	Tokens      *services.TokenManager
}

// New builds the engine with sessions, identity and every route.
func New(d Deps) *gin.Engine {
	r := gin.Default()

	store := cookie.NewStore([]byte(d.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   365 * 24 * 60 * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(sessionName, store))
	r.Use(middleware.LoadUser(d.Tokens))
	r.Use(middleware.Identity())

	RegisterRoutes(r, d)
	return r
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	productHandler := handlers.NewProductHandler(d.Catalog, d.Votes)
	voteHandler := handlers.NewVoteHandler(d.Votes, d.Catalog)
	contentHandler := handlers.NewContentHandler(d.Reference)
	sessionHandler := handlers.NewSessionHandler(d.Accounts)
	submissionHandler := handlers.NewSubmissionHandler(d.Submissions)
	authHandler := handlers.NewAuthHandler(d.Accounts, d.Tokens)
	adminHandler := handlers.NewAdminHandler(d.Admin, d.Submissions)
	seoHandler := handlers.NewSEOHandler(d.Catalog, d.SiteURL)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/robots.txt", seoHandler.RobotsTxt)
	r.GET("/sitemap.xml", seoHandler.SitemapXML)

	// 公共接口 (Public API)
	api := r.Group("/api")
	{
		api.GET("/products", productHandler.List)          // 商品列表
		api.GET("/products/:id", productHandler.Detail)    // 商品详情
		api.GET("/products/:id/vote", voteHandler.Check)   // 当前访客的投票
		api.POST("/products/:id/vote", voteHandler.Submit) // 投票
		api.GET("/stats", productHandler.Stats)            // 总票数

		api.GET("/brands", contentHandler.Brands)
		api.GET("/categories", contentHandler.Categories)
		api.GET("/content", contentHandler.Bundle)
		api.GET("/content/:key", contentHandler.Get)

		api.GET("/session", sessionHandler.Get)
		api.POST("/session/onboarding", sessionHandler.MarkOnboarding)

		api.POST("/submissions", submissionHandler.Create) // 推荐商品

		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", authHandler.Login)
		api.POST("/auth/logout", authHandler.Logout)
	}

	// 受保护接口 (Protected API)
	authorized := api.Group("/auth")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.GET("/me", authHandler.Me)
		authorized.PUT("/profile", authHandler.UpdateProfile)
	}

	// 后台管理 (Admin API)
	admin := api.Group("/admin")
	admin.Use(middleware.AuthRequired(), middleware.AdminRequired(d.Accounts))
	{
		admin.GET("/products", productHandler.List)
		admin.POST("/products", adminHandler.CreateProduct)
		admin.PUT("/products/:id", adminHandler.UpdateProduct)
		admin.DELETE("/products/:id", adminHandler.DeleteProduct)
		admin.GET("/products/:id/votes", adminHandler.ListProductVotes)

		admin.GET("/brands", adminHandler.ListBrands)
		admin.POST("/brands", adminHandler.CreateBrand)
		admin.PUT("/brands/:id", adminHandler.UpdateBrand)
		admin.DELETE("/brands/:id", adminHandler.DeleteBrand)

		admin.GET("/categories", adminHandler.ListCategories)
		admin.POST("/categories", adminHandler.CreateCategory)
		admin.PUT("/categories/:id", adminHandler.UpdateCategory)
		admin.DELETE("/categories/:id", adminHandler.DeleteCategory)

		admin.GET("/content", adminHandler.ListContent)
		admin.POST("/content", adminHandler.CreateContent)
		admin.PUT("/content/:id", adminHandler.UpdateContent)
		admin.DELETE("/content/:id", adminHandler.DeleteContent)

		admin.GET("/comments", adminHandler.ListComments)
		admin.DELETE("/comments/:id", adminHandler.DeleteComment)
		admin.DELETE("/votes/:id", adminHandler.DeleteVote)
		admin.GET("/users", adminHandler.ListUsers)

		admin.GET("/submissions", adminHandler.ListSubmissions)
		admin.POST("/submissions/:id/approve", adminHandler.ApproveSubmission)
		admin.POST("/submissions/:id/reject", adminHandler.RejectSubmission)
		admin.DELETE("/submissions/:id", adminHandler.DeleteSubmission)
	}
}
