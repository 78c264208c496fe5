// api/router.go
package api

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/Annany2002/opentextbook-backend/api/handlers"
	"github.com/Annany2002/opentextbook-backend/api/middleware"
	"github.com/Annany2002/opentextbook-backend/config"
	"github.com/Annany2002/opentextbook-backend/internal/content"
	"github.com/Annany2002/opentextbook-backend/internal/logger"
	"github.com/Annany2002/opentextbook-backend/internal/render"
	"github.com/Annany2002/opentextbook-backend/internal/session"
)

var customLog = logger.NewLogger()

// SetupRouter initializes the Gin router and sets up all routes.
// The returned limiter must be stopped on shutdown.
func SetupRouter(db *sql.DB, cfg *config.Config, sessions *session.Manager) (*gin.Engine, *middleware.RateLimiter) {
	router := gin.New()
	// ClientIP, and so the login throttle, only honours X-Forwarded-For from these.
	if err := router.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		customLog.Errorf("Router: Ignoring invalid trusted proxies %v: %v", cfg.TrustedProxies, err)
		_ = router.SetTrustedProxies(nil)
	}
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())

	if len(cfg.CORSAllowedOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORSAllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-Id"},
			ExposeHeaders:    []string{"X-Request-Id"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	if cfg.ForceHTTPS {
		router.Use(middleware.ForceHTTPS())
	}

	// Session first, so the error handler can still drain flashes into
	// re-rendered forms, and identity after it so its errors get mapped.
	renderer := render.NewJSONRenderer()
	router.Use(middleware.SessionMiddleware(sessions))
	router.Use(middleware.ErrorHandler(renderer))
	router.Use(middleware.IdentityMiddleware(db))

	// Initialize Handlers
	svc := content.NewService(db)
	userHandler := handlers.NewUserHandler(db, cfg, sessions, svc, renderer)
	bookHandler := handlers.NewBookHandler(svc, renderer)

	limiter := middleware.NewRateLimiter(cfg.LoginRatePerMinute, 10*time.Minute)
	throttle := middleware.RateLimitMiddleware(limiter)
	requireAuth := middleware.RequireAuth()

	router.NoRoute(func(c *gin.Context) { c.String(http.StatusNotFound, "Page Not Found") })

	// --- Public Routes ---
	router.GET("/checking", func(c *gin.Context) { c.String(http.StatusOK, "The server is working") })
	router.GET("/", bookHandler.Index)

	userRoutes := router.Group("/users")
	{
		userRoutes.GET("/register", userHandler.RegisterForm)
		userRoutes.POST("/register", throttle, userHandler.Register)
		userRoutes.GET("/login", userHandler.LoginForm)
		userRoutes.POST("/login", throttle, userHandler.Login)
		userRoutes.GET("/logout", userHandler.Logout)

		userRoutes.GET("/modify", requireAuth, userHandler.ModifyForm)
		userRoutes.POST("/modify", requireAuth, userHandler.Modify)
		userRoutes.GET("/profile", requireAuth, userHandler.Profile)
	}

	bookRoutes := router.Group("/books")
	{
		bookRoutes.GET("/all", bookHandler.ListBooks)
		bookRoutes.GET("/:id", bookHandler.ShowBook)
		bookRoutes.GET("/page/:id", bookHandler.ShowPage)

		// --- Protected Routes ---
		authed := bookRoutes.Group("", requireAuth)
		authed.GET("/add", bookHandler.AddBookForm)
		authed.POST("/add", bookHandler.CreateBook)
		authed.GET("/genre", bookHandler.GenreForm)
		authed.POST("/genre", bookHandler.CreateGenre)
		authed.GET("/modify/:id", bookHandler.ModifyBookForm)
		authed.POST("/modify/:id", bookHandler.ModifyBook)
		authed.GET("/page/modify/:id", bookHandler.ModifyPageForm)
		authed.POST("/page/modify/:id", bookHandler.ModifyPage)
		authed.GET("/delete/:id", bookHandler.DeleteBookForm)
		authed.DELETE("/delete/:id", bookHandler.DeleteBook)
		authed.DELETE("/page/delete/:id", bookHandler.DeletePage)
		authed.GET("/request/:id", bookHandler.RequestAccessForm)
		authed.POST("/request/:id", bookHandler.RequestAccess)
		authed.POST("/:id", bookHandler.CreatePage)
	}

	return router, limiter
}
