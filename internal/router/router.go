package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"publicpulse/internal/domain"
	"publicpulse/internal/handler"
	"publicpulse/internal/middleware"
	"publicpulse/internal/service"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	authSvc service.AuthService,
	authH *handler.AuthHandler,
	subH *handler.SubmissionHandler,
	reportH *handler.ReportHandler,
	healthH *handler.HealthHandler,
	allowedOrigins []string,
	log *zap.Logger,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(log))
	r.Use(middleware.CORS(allowedOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")

	// Public auth routes
	auth := v1.Group("/auth")
	auth.POST("/register", authH.Register)
	auth.POST("/login", authH.Login)

	// Protected routes - require valid JWT
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(authSvc))

	// Submission routes
	subs := protected.Group("/submissions")
	subs.POST("", subH.Create)
	subs.GET("", subH.ListMine)
	subs.GET("/:id", subH.Get)
	subs.GET("/:id/images", subH.ImageURLs)
	subs.POST("/:id/review", middleware.RequireRole(domain.RoleOfficial, domain.RoleAdmin), subH.Review)
	subs.POST("/:id/decision", middleware.RequireRole(domain.RoleAdmin), subH.Decide)
	subs.POST("/:id/re-extract", middleware.RequireRole(domain.RoleOfficial, domain.RoleAdmin), subH.ReExtract)

	// Processing queue for officials
	protected.GET("/queue", middleware.RequireRole(domain.RoleOfficial, domain.RoleAdmin), subH.ListQueue)

	// Reports
	reports := protected.Group("/reports")
	reports.Use(middleware.RequireRole(domain.RoleOfficial, domain.RoleAdmin))
	reports.GET("/submissions.xlsx", reportH.ExportXLSX)

	return r
}
