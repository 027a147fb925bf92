package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cppla/inkblog/config"
	"github.com/cppla/inkblog/controllers"
	"github.com/cppla/inkblog/middleware"
	"github.com/cppla/inkblog/services"
	"github.com/cppla/inkblog/utils"
)

// Dependencies carries the long-lived objects the handlers need.
type Dependencies struct {
	Users      *services.UserService
	Categories *services.CategoryService
	Posts      *services.PostService
	Blacklist  *utils.TokenBlacklist
	Metrics    *middleware.Metrics
	Logger     *zap.Logger
	// AccessLogger receives the request log; nil falls back to plain recovery.
	AccessLogger *zap.Logger
}

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(cfg config.AppConfig, deps Dependencies) *gin.Engine {
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if deps.AccessLogger != nil {
		r.Use(ginzap.Ginzap(deps.AccessLogger, time.RFC3339, true))
		r.Use(ginzap.RecoveryWithZap(deps.AccessLogger, false))
	} else {
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 0 || (len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*") {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	if deps.Metrics != nil {
		r.Use(deps.Metrics.Middleware())
		r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	auth := middleware.NewAuthenticator(cfg.JWTSecret, deps.Blacklist)
	limiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute)

	postController := controllers.NewPostController(deps.Posts)
	categoryController := controllers.NewCategoryController(deps.Categories)
	userController := controllers.NewUserController(deps.Users)
	authController := controllers.NewAuthController(deps.Blacklist, logger)

	api := r.Group("/api/v1")

	public := api.Group("")
	public.Use(auth.Optional())
	public.GET("/posts", postController.ListPosts)
	public.GET("/posts/slug/:slug", postController.GetPostBySlug)
	public.GET("/feed", postController.Feed)
	public.GET("/categories", categoryController.ListCategories)
	public.GET("/users/:id", userController.GetUserPublic)

	protected := api.Group("")
	protected.Use(auth.Required(), limiter.Middleware())
	protected.POST("/posts", postController.CreatePost)
	protected.PATCH("/posts/:id", postController.UpdatePost)
	protected.DELETE("/posts/:id", postController.DeletePost)
	protected.POST("/categories", categoryController.CreateCategory)
	protected.PATCH("/categories/:id", categoryController.UpdateCategory)
	protected.DELETE("/categories/:id", categoryController.DeleteCategory)
	protected.GET("/users/me", userController.Me)
	protected.PUT("/users/me", userController.SyncMe)
	protected.GET("/users/me/stats", userController.Stats)
	protected.POST("/auth/logout", authController.Logout)

	r.NoRoute(func(ctx *gin.Context) {
		if strings.HasPrefix(ctx.Request.URL.Path, "/api/") {
			utils.Error(ctx, http.StatusNotFound, 40400, "api route not found")
			return
		}
		utils.Error(ctx, http.StatusNotFound, 40400, "not found")
	})

	return r
}
