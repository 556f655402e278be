package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"tasklist/internal/handlers"
	"tasklist/internal/middleware"
	"tasklist/internal/services"
)

type Handlers struct {
	Auth      *handlers.AuthHandler
	TaskLists *handlers.TaskListHandler
	Tasks     *handlers.TaskHandler
}

// SetupRoutes mounts the API under /api/v1. limiter guards the public auth
// endpoints; gatherer, when set, is exposed on /metrics.
func SetupRoutes(
	r *gin.Engine,
	h Handlers,
	auth services.AuthService,
	limiter *middleware.RateLimiter,
	gatherer prometheus.Gatherer,
) *gin.Engine {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	if gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	api := r.Group("/api/v1")

	// ---- public
	public := api.Group("/auth")
	if limiter != nil {
		public.Use(limiter.Limit())
	}
	{
		public.POST("/register", h.Auth.Register)
		public.POST("/login", h.Auth.Login)
		public.POST("/send-code", h.Auth.SendCode)
		public.POST("/verify", h.Auth.Verify)
		public.POST("/resend", h.Auth.Resend)
	}

	// ---- protected
	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(auth))
	{
		protected.GET("/auth/me", h.Auth.Me)
		protected.POST("/auth/logout", h.Auth.Logout)

		lists := protected.Group("/task-lists")
		lists.POST("", h.TaskLists.Create)
		lists.GET("", h.TaskLists.List)
		lists.GET("/:id", h.TaskLists.Get)
		lists.PUT("/:id", h.TaskLists.Update)
		lists.DELETE("/:id", h.TaskLists.Delete)
		lists.GET("/:id/export", h.TaskLists.Export)
		lists.POST("/:id/tasks", h.Tasks.Create)
		lists.GET("/:id/tasks", h.Tasks.List)

		tasks := protected.Group("/tasks")
		tasks.GET("/:id", h.Tasks.GetByID)
		tasks.PUT("/:id", h.Tasks.Update)
		tasks.DELETE("/:id", h.Tasks.Delete)
	}

	return r
}
