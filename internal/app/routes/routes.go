package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/yigit/pointsboard/internal/app/controllers"
	"github.com/yigit/pointsboard/internal/app/models"
	"github.com/yigit/pointsboard/internal/middleware"
	"github.com/yigit/pointsboard/internal/pkg/websocket"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	authController *controllers.AuthController,
	classController *controllers.ClassController,
	studentController *controllers.StudentController,
	groupController *controllers.GroupController,
	adminController *controllers.AdminController,
	scoreboardHandler *websocket.Handler,
	authMiddleware *middleware.AuthMiddleware,
) {
	// API version group
	v1 := router.Group("/api/v1")

	// --- Public Auth routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/register/verify-code", authController.VerifyCode)
		auth.POST("/register", authController.Register)
		auth.POST("/login", authController.Login)
		auth.POST("/admin/login", authController.AdminLogin)
	}

	// --- Teacher routes ---
	teacher := v1.Group("")
	teacher.Use(authMiddleware.JWTAuth(), authMiddleware.RoleRequired(models.RoleTeacher))

	// Expired teachers can still read their profile to show the lock screen
	teacher.GET("/me", authController.Me)

	active := teacher.Group("")
	active.Use(authMiddleware.ActiveTeacherRequired())
	{
		classes := active.Group("/classes")
		{
			classes.GET("", classController.ListClasses)
			classes.POST("", classController.CreateClass)
			classes.GET("/:id", classController.GetClass)
			classes.PUT("/:id", classController.UpdateClass)
			classes.DELETE("/:id", classController.DeleteClass)

			classes.GET("/:id/leaderboard", groupController.Leaderboard)
			classes.GET("/:id/scoreboard/ws", scoreboardHandler.HandleConnection)
			classes.POST("/:id/drafts", groupController.OpenDraft)
		}

		students := active.Group("/students")
		{
			students.GET("", studentController.ListStudents)
			students.POST("", studentController.CreateStudent)
			students.PATCH("/:id", studentController.RenameStudent)
			students.PATCH("/:id/points", studentController.AdjustPoints)
			students.DELETE("/:id", studentController.DeleteStudent)
		}

		drafts := active.Group("/drafts/:draftId")
		{
			drafts.GET("", groupController.GetDraft)
			drafts.DELETE("", groupController.DiscardDraft)
			drafts.POST("/moves", groupController.MoveStudent)
			drafts.POST("/leader", groupController.SetLeader)
			drafts.POST("/groups", groupController.CreateGroup)
			drafts.PATCH("/groups/:groupId", groupController.RenameGroup)
			drafts.DELETE("/groups/:groupId", groupController.RemoveGroup)
			drafts.POST("/commit", groupController.Commit)
		}
	}

	// --- Admin routes ---
	admin := v1.Group("/admin")
	admin.Use(authMiddleware.JWTAuth(), authMiddleware.RoleRequired(models.RoleAdmin))
	{
		admin.POST("/codes", adminController.GenerateCode)
		admin.GET("/codes", adminController.ListCodes)
		admin.DELETE("/codes/:id", adminController.DeleteCode)

		admin.GET("/teachers", adminController.ListTeachers)
		admin.POST("/teachers/:id/renew", adminController.RenewTeacher)
		admin.DELETE("/teachers/:id", adminController.DeleteTeacher)

		admin.GET("/settings", adminController.GetSettings)
		admin.PUT("/settings", adminController.UpdateSettings)
	}
}
