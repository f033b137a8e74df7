package http

import (
	"context"
	"embed"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/sujalbistaa/qanda/internal/ws"
)

//go:embed templates/*.html
var templateFS embed.FS

// SetupRoutes configures all application routes and middleware. ctx bounds
// the lifetime of the rate limiter's janitor.
func SetupRoutes(ctx context.Context, router *gin.Engine, env *Env) {
	router.SetHTMLTemplate(template.Must(template.ParseFS(templateFS, "templates/*.html")))

	// --- Middleware ---
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(SecurityHeadersMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{env.Cfg.CORSOrigin},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-Admin-Token"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: env.Cfg.CORSOrigin != "*",
	}))
	router.Use(Authenticate(env.Store))

	// Login, registration and asking share one per-IP budget of POSTs.
	limiter := NewIPRateLimiter(rate.Limit(env.Cfg.AuthRatePerMin/60), env.Cfg.AuthRateBurst)
	go limiter.Janitor(ctx, 10*time.Minute)
	limit := RateLimitMiddleware(limiter)

	login := RequireLogin(false)
	anon := AnonymousOnly()

	// --- Public ---
	router.GET("/", env.Index)
	router.GET("/search/", env.Search)
	router.POST("/search/", env.Search)

	// --- Entry pages ---
	router.GET("/register/", anon, env.RegisterPage)
	router.POST("/register/", anon, limit, env.Register)
	router.GET("/login/", anon, env.LoginPage)
	router.POST("/login/", anon, limit, env.Login)
	router.GET("/logout/", env.Logout)
	router.POST("/logout/", env.Logout)

	// --- Questions and answers ---
	router.GET("/question/new/", login, env.AskQuestionPage)
	router.POST("/question/new/", login, limit, env.AskQuestion)
	router.GET("/question/:id/", login, env.Detail)
	router.POST("/question/:id/", login, env.PostAnswer)
	router.POST("/vote/:id/", login, env.Upvote)
	router.POST("/downvote/:id/", login, env.Downvote)
	router.GET("/question/edit/:id/", login, env.EditQuestionPage)
	router.POST("/question/edit/:id/", login, env.EditQuestion)
	router.GET("/question/delete/:id/", login, env.DeleteQuestionPage)
	router.POST("/question/delete/:id/", login, env.DeleteQuestion)
	router.GET("/answer/edit/:id/", login, env.EditAnswerPage)
	router.POST("/answer/edit/:id/", login, env.EditAnswer)
	router.GET("/answer/delete/:id/", login, env.DeleteAnswerPage)
	router.POST("/answer/delete/:id/", login, env.DeleteAnswer)

	// --- Profile ---
	router.GET("/profile/", RequireLogin(true), env.Profile)
	router.GET("/profile/disable/:id/", login, env.DisableAccountPage)
	router.POST("/profile/disable/:id/", login, env.DisableAccount)

	// --- Admin ---
	if env.Cfg.AdminToken != "" {
		admin := router.Group("/admin", AdminAuthMiddleware(env.Cfg.AdminToken))
		admin.POST("/users/:id/activate/", env.ActivateUser)
	}

	// --- WebSocket feed ---
	router.GET("/ws/", func(c *gin.Context) {
		ws.ServeWs(env.Hub, c.Writer, c.Request)
	})

	router.NoRoute(func(c *gin.Context) {
		renderError(c, http.StatusNotFound, "The page you are looking for does not exist.")
	})
}
