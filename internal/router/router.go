package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/guptas/lms-backend/internal/config"
	"github.com/guptas/lms-backend/internal/handler"
	"github.com/guptas/lms-backend/internal/middleware"
	"github.com/guptas/lms-backend/internal/model"
	"github.com/guptas/lms-backend/internal/response"
	"github.com/guptas/lms-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth        *handler.AuthHandler
	Admin       *handler.AdminHandler
	Teacher     *handler.TeacherHandler
	User        *handler.UserHandler
	Course      *handler.CourseHandler
	Assignment  *handler.AssignmentHandler
	Certificate *handler.CertificateHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	userService *service.UserService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for auth and verification routes (30 requests per minute per IP).
	authLimiter := middleware.NewRateLimiter(30, time.Minute)

	requireAuth := middleware.RequireAuth(authService)

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	auth := router.Group("/api/v1/auth")
	auth.Use(authLimiter.Middleware())
	{
		auth.POST("/register", handlers.Auth.Register)
		auth.POST("/login", handlers.Auth.Login)
		auth.POST("/refresh", handlers.Auth.Refresh)

		auth.POST("/logout", requireAuth, handlers.Auth.Logout)
		auth.GET("/me", requireAuth, handlers.Auth.Me)
	}

	// ─── 2. Admin Group ────────────────────────────────────────────────
	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(requireAuth, middleware.RequireRole(model.RoleAdmin))
	{
		adminAPI.GET("/pending-teachers", handlers.Admin.ListPendingTeachers)
		adminAPI.POST("/approve-teacher/:teacherId", handlers.Admin.ApproveTeacher)
		adminAPI.POST("/reject-teacher/:teacherId", handlers.Admin.RejectTeacher)
		adminAPI.GET("/users", handlers.Admin.ListUsers)
	}

	// ─── 3. Teacher Group ──────────────────────────────────────────────
	// Admins are admitted for wire compatibility with the original route
	// guard even though they hold no access codes of their own.
	teacherAPI := router.Group("/api/v1/teachers")
	teacherAPI.Use(requireAuth, middleware.RequireRole(model.RoleTeacher, model.RoleAdmin))
	{
		teacherAPI.POST("/verify-code", authLimiter.Middleware(), handlers.Teacher.VerifyCode)
	}

	// ─── 4. User Group ─────────────────────────────────────────────────
	userAPI := router.Group("/api/v1/users")
	userAPI.Use(requireAuth)
	{
		userAPI.GET("/:id", handlers.User.GetUser)
		userAPI.PUT("/:id", handlers.User.UpdateUser)
		userAPI.GET("/:id/courses", handlers.User.GetUserCourses)
		userAPI.GET("/:id/stats", handlers.User.GetUserStats)
		userAPI.GET("/:id/certificates", handlers.User.GetUserCertificates)
	}

	// ─── 5. Course Group ───────────────────────────────────────────────
	// Creation and updates require a teacher whose persisted row is
	// verified (token claims alone are never trusted for this gate).
	verifiedTeacher := middleware.RequireVerifiedTeacher(userService)

	courseAPI := router.Group("/api/v1/courses")
	courseAPI.Use(requireAuth)
	{
		courseAPI.GET("", handlers.Course.List)
		courseAPI.GET("/:courseId", handlers.Course.Get)
		courseAPI.POST("", verifiedTeacher, handlers.Course.Create)
		courseAPI.PUT("/:courseId", verifiedTeacher, handlers.Course.Update)
		courseAPI.POST("/:courseId/enroll", middleware.RequireRole(model.RoleStudent), handlers.Course.Enroll)
	}

	// ─── 6. Assignment Group ───────────────────────────────────────────
	assignmentAPI := router.Group("/api/v1/assignments")
	assignmentAPI.Use(requireAuth)
	{
		assignmentAPI.POST("", verifiedTeacher, handlers.Assignment.Create)
		assignmentAPI.GET("", handlers.Assignment.ListByCourse)
		assignmentAPI.POST("/:assignmentId/submissions", middleware.RequireRole(model.RoleStudent), handlers.Assignment.Submit)
		assignmentAPI.GET("/:assignmentId/submissions", verifiedTeacher, handlers.Assignment.ListSubmissions)
		assignmentAPI.PUT("/:assignmentId/submissions/:studentId/grade", verifiedTeacher, handlers.Assignment.Grade)
	}

	// ─── 7. Certificate Group ──────────────────────────────────────────
	certificateAPI := router.Group("/api/v1/certificates")
	certificateAPI.Use(requireAuth, middleware.RequireRole(model.RoleTeacher, model.RoleAdmin))
	{
		certificateAPI.POST("", verifiedTeacher, handlers.Certificate.Issue)
	}

	return router
}
