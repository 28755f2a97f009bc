package routes

import (
	"attendance_backend/attendance"
	"attendance_backend/db"
	"attendance_backend/handlers"
	"attendance_backend/logger"
	"attendance_backend/middleware"

	"github.com/gin-gonic/gin"
)

type Deps struct {
	DB        *db.DB
	Directory handlers.UserDirectory
	Service   *attendance.Service
	Reports   *attendance.Reports
	JWTSecret []byte
	Log       *logger.Logger
}

// SetupRoutes configures all the routes for the application
func SetupRoutes(r *gin.Engine, deps Deps) {
	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(deps.DB)
	attendanceHandler := handlers.NewAttendanceHandler(deps.Service, deps.Reports)
	userHandler := handlers.NewUserHandler(deps.Directory, deps.Log)

	// Public routes
	r.GET("/health", healthHandler.HealthCheck)

	// Protected routes
	protected := r.Group("/")
	protected.Use(middleware.AuthMiddleware(deps.JWTSecret, deps.Log))
	{
		// Attendance routes
		protected.POST("/attendance/scan", attendanceHandler.RegisterScan)
		protected.GET("/attendance/summary", attendanceHandler.GetSummary)

		// Activity routes
		protected.GET("/activities/:id/qr", attendanceHandler.GetQRCodes)
		protected.GET("/activities/:id/attendees", attendanceHandler.GetAttendees)

		// User routes
		protected.GET("/me", userHandler.GetUserInfo)
		protected.GET("/users/:id/hours", attendanceHandler.GetUserHours)
	}
}
