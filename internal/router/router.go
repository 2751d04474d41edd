package router

import (
	"github.com/bimakw/pmo/internal/handler"
	"github.com/bimakw/pmo/internal/middleware"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Deps struct {
	DB                  *gorm.DB
	JWTSecret           string
	AuthHandler         *handler.AuthHandler
	UserHandler         *handler.UserHandler
	ProjectHandler      *handler.ProjectHandler
	MilestoneHandler    *handler.MilestoneHandler
	TaskHandler         *handler.TaskHandler
	TeamHandler         *handler.TeamHandler
	TagHandler          *handler.TagHandler
	TimeEntryHandler    *handler.TimeEntryHandler
	AttachmentHandler   *handler.AttachmentHandler
	ActivityHandler     *handler.ActivityHandler
	NotificationHandler *handler.NotificationHandler
	DashboardHandler    *handler.DashboardHandler
}

func Setup(r *gin.Engine, deps Deps) {
	corsCfg := cors.DefaultConfig()
	corsCfg.AllowAllOrigins = true
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization", "Last-Event-ID")
	r.Use(cors.New(corsCfg))

	api := r.Group("/api/v1")

	// Public routes (no auth)
	auth := api.Group("/auth")
	{
		auth.POST("/register", deps.AuthHandler.Register)
		auth.POST("/login", deps.AuthHandler.Login)
	}

	// Authenticated routes
	authed := api.Group("")
	authed.Use(middleware.AuthMiddleware(deps.JWTSecret, deps.DB))
	{
		authed.GET("/auth/me", deps.AuthHandler.GetMe)

		// Users
		authed.GET("/users", deps.UserHandler.List)
		authed.GET("/users/search", deps.UserHandler.Search)
		authed.GET("/users/:id", deps.UserHandler.GetDetail)
		authed.PUT("/users/:id", deps.UserHandler.Update)

		// Admin routes
		admin := authed.Group("/admin")
		admin.Use(middleware.RequireAdmin())
		{
			admin.POST("/users", deps.UserHandler.Create)
			admin.DELETE("/users/:id", deps.UserHandler.Delete)
		}

		// Projects
		projects := authed.Group("/projects")
		{
			projects.POST("", deps.ProjectHandler.Create)
			projects.GET("", deps.ProjectHandler.List)
			projects.GET("/:id", deps.ProjectHandler.GetDetail)
			projects.PUT("/:id", deps.ProjectHandler.Update)
			projects.POST("/:id/transfer", deps.ProjectHandler.TransferOwner)
			projects.DELETE("/:id", deps.ProjectHandler.Delete)
			projects.GET("/:id/stats", deps.ProjectHandler.Stats)
			projects.POST("/:id/members", deps.ProjectHandler.AddMembers)
			projects.DELETE("/:id/members/:user_id", deps.ProjectHandler.RemoveMember)

			// Milestones under projects
			projects.POST("/:id/milestones", deps.MilestoneHandler.Create)
			projects.GET("/:id/milestones", deps.MilestoneHandler.ListByProject)

			// Tasks under projects
			projects.GET("/:id/tasks", deps.TaskHandler.ListByProject)

			// Activity
			projects.GET("/:id/activity", deps.ActivityHandler.ListByProject)
			projects.GET("/:id/activity/stream", deps.ActivityHandler.Stream)
		}

		// Milestones (standalone)
		milestones := authed.Group("/milestones")
		{
			milestones.GET("/:id", deps.MilestoneHandler.GetDetail)
			milestones.PUT("/:id", deps.MilestoneHandler.Update)
			milestones.DELETE("/:id", deps.MilestoneHandler.Delete)
		}

		// Tasks
		tasks := authed.Group("/tasks")
		{
			tasks.POST("", deps.TaskHandler.Create)
			tasks.GET("/mine", deps.TaskHandler.ListMine)
			tasks.GET("/:id", deps.TaskHandler.GetDetail)
			tasks.PUT("/:id", deps.TaskHandler.Update)
			tasks.PUT("/:id/status", deps.TaskHandler.Transition)
			tasks.PUT("/:id/assignee", deps.TaskHandler.Assign)
			tasks.DELETE("/:id", deps.TaskHandler.Delete)

			tasks.POST("/:id/comments", deps.TaskHandler.AddComment)
			tasks.GET("/:id/comments", deps.TaskHandler.ListComments)
			tasks.DELETE("/comments/:comment_id", deps.TaskHandler.DeleteComment)

			tasks.POST("/:id/tags/:tag_id", deps.TaskHandler.AttachTag)
			tasks.DELETE("/:id/tags/:tag_id", deps.TaskHandler.DetachTag)
			tasks.GET("/:id/tags", deps.TaskHandler.ListTags)

			tasks.POST("/:id/time-entries", deps.TimeEntryHandler.Record)
			tasks.GET("/:id/time-entries", deps.TimeEntryHandler.ListByTask)

			tasks.POST("/:id/attachments", deps.AttachmentHandler.Upload)
			tasks.GET("/:id/attachments", deps.AttachmentHandler.ListByTask)
		}

		// Time entries (standalone)
		authed.GET("/time-entries/mine", deps.TimeEntryHandler.ListMine)
		authed.DELETE("/time-entries/:id", deps.TimeEntryHandler.Delete)

		// Attachments (standalone)
		authed.GET("/attachments/:id/download", deps.AttachmentHandler.Download)
		authed.DELETE("/attachments/:id", deps.AttachmentHandler.Delete)

		// Teams
		teams := authed.Group("/teams")
		{
			teams.POST("", middleware.RequireRole("admin", "manager"), deps.TeamHandler.Create)
			teams.GET("", deps.TeamHandler.List)
			teams.GET("/:id", deps.TeamHandler.GetDetail)
			teams.PUT("/:id", deps.TeamHandler.Update)
			teams.PUT("/:id/lead", deps.TeamHandler.SetLead)
			teams.DELETE("/:id", middleware.RequireRole("admin", "manager"), deps.TeamHandler.Delete)
			teams.POST("/:id/members", deps.TeamHandler.AddMember)
			teams.DELETE("/:id/members/:user_id", deps.TeamHandler.RemoveMember)
		}

		// Tags
		tags := authed.Group("/tags")
		{
			tags.POST("", deps.TagHandler.Create)
			tags.GET("", deps.TagHandler.List)
			tags.PUT("/:id", deps.TagHandler.Update)
			tags.DELETE("/:id", deps.TagHandler.Delete)
		}

		// Activity by entity
		authed.GET("/activity/entity/:type/:id", deps.ActivityHandler.ListByEntity)

		// Notifications
		notifications := authed.Group("/notifications")
		{
			notifications.GET("", deps.NotificationHandler.List)
			notifications.GET("/unread-count", deps.NotificationHandler.UnreadCount)
			notifications.PUT("/read-all", deps.NotificationHandler.MarkAllRead)
			notifications.PUT("/:id/read", deps.NotificationHandler.MarkRead)
			notifications.DELETE("/:id", deps.NotificationHandler.Delete)
		}

		// Dashboard
		authed.GET("/dashboard/stats", deps.DashboardHandler.GetStats)
	}
}
