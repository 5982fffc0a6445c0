package http

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/prithwish249/qr-attendence/internal/config"
	"github.com/prithwish249/qr-attendence/internal/http/handlers"
	"github.com/prithwish249/qr-attendence/internal/http/middleware"
	"github.com/prithwish249/qr-attendence/internal/models"
	"github.com/prithwish249/qr-attendence/internal/services"
)

type Dependencies struct {
	Config            *config.Config
	AuthService       *services.AuthService
	SessionService    *services.SessionService
	AttendanceService *services.AttendanceService
	Logger            *slog.Logger
	RateLimiter       *middleware.RateLimiter
}

func NewRouter(deps Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(deps.Logger))
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(deps.Config.AllowedOrigins))

	authHandler := handlers.NewAuthHandler(deps.AuthService)
	sessionHandler := handlers.NewSessionHandler(deps.SessionService)
	attendanceHandler := handlers.NewAttendanceHandler(deps.AttendanceService)
	reportHandler := handlers.NewReportHandler(deps.AttendanceService)
	userHandler := handlers.NewUserHandler(deps.AuthService)

	router.GET("/healthz", handlers.Health)

	api := router.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Use(deps.RateLimiter.Middleware())
	authGroup.POST("/login", authHandler.Login)

	// Any authenticated user: probe the session, submit a scan, view own history.
	authed := api.Group("")
	authed.Use(middleware.JWTAuth(middleware.AuthConfig{Secret: deps.Config.JWTSecret}))
	{
		authed.GET("/session/today", sessionHandler.GetToday)
		authed.POST("/attendance/submit", attendanceHandler.Submit)
		authed.GET("/attendance/by-user/:id", attendanceHandler.ByUser)
	}

	// Admin only. RequireRole fails closed before any handler runs.
	admin := api.Group("")
	admin.Use(middleware.JWTAuth(middleware.AuthConfig{Secret: deps.Config.JWTSecret}))
	admin.Use(middleware.RequireRole(models.RoleAdmin))
	{
		admin.POST("/admin/session/new", sessionHandler.Create)
		admin.DELETE("/admin/session/today", sessionHandler.DeleteToday)
		admin.GET("/admin/session/qr", sessionHandler.QRCode)

		admin.GET("/attendance/today", attendanceHandler.Today)
		admin.GET("/admin/report/today/export", reportHandler.Export)

		admin.GET("/admin/users/all", userHandler.List)
		admin.POST("/admin/users/add", userHandler.Add)
		admin.DELETE("/admin/users/:id", userHandler.Delete)
		admin.PUT("/admin/users/:id/password", userHandler.ChangePassword)
	}

	return router
}
