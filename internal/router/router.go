// Package router assembles the HTTP surface.
package router

import (
	"log/slog"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/workboard-api/internal/access"
	"github.com/yukikurage/workboard-api/internal/config"
	"github.com/yukikurage/workboard-api/internal/constants"
	"github.com/yukikurage/workboard-api/internal/handlers"
	"github.com/yukikurage/workboard-api/internal/middleware"
	"github.com/yukikurage/workboard-api/internal/repository"
	"github.com/yukikurage/workboard-api/internal/services"
	"github.com/yukikurage/workboard-api/internal/storage"
)

// Dependencies are the collaborators the router wires into handlers.
// Images and AI may be nil.
type Dependencies struct {
	Config   *config.Config
	Log      *slog.Logger
	Store    *repository.Store
	Sessions services.SessionStore
	Images   storage.ImageStore
	AI       *services.AIService
}

// New builds the gin engine with every route mounted
func New(deps Dependencies) *gin.Engine {
	cfg := deps.Config
	log := deps.Log

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log))
	r.NoRoute(middleware.NoRoute)

	// The cookie only carries the opaque token; the session itself lives in Redis
	cookieStore := cookie.NewStore([]byte(cfg.SessionSecret))
	cookieStore.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(constants.SessionCookieName, cookieStore))

	resolver := access.NewResolver(deps.Store.Members)
	authService := services.NewAuthService(deps.Store.Users, deps.Sessions, log)
	gate := access.NewGate(authService, resolver)

	authHandler := handlers.NewAuthHandler(authService, log)
	workspaceHandler := handlers.NewWorkspaceHandler(services.NewWorkspaceService(deps.Store, deps.Images, log), log)
	memberHandler := handlers.NewMemberHandler(services.NewMemberService(deps.Store, resolver, log), log)
	projectHandler := handlers.NewProjectHandler(services.NewProjectService(deps.Store, deps.Images, log), log)
	taskHandler := handlers.NewTaskHandler(services.NewTaskService(deps.Store, deps.AI, log), log)
	analyticsHandler := handlers.NewAnalyticsHandler(services.NewAnalyticsService(deps.Store), log)

	r.GET("/health", func(c *gin.Context) {
		sqlDB, err := deps.Store.DB().DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			log.ErrorContext(c.Request.Context(), "health check failed", slog.Any("error", err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	requireAuth := middleware.RequireAuth(gate)

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", requireAuth, authHandler.Me)
		}

		workspaces := api.Group("/workspaces", requireAuth)
		{
			workspaces.GET("", workspaceHandler.ListWorkspaces)
			workspaces.POST("", workspaceHandler.CreateWorkspace)
			workspaces.POST("/:workspaceId/join", workspaceHandler.JoinWorkspace)
		}

		member := workspaces.Group("/:workspaceId", middleware.RequireWorkspaceAccess(gate, access.AnyMember))
		{
			member.GET("", workspaceHandler.GetWorkspace)
			member.GET("/analytics", analyticsHandler.WorkspaceAnalytics)

			member.GET("/members", memberHandler.ListMembers)
			member.DELETE("/members/:memberId", memberHandler.RemoveMember)

			member.GET("/projects", projectHandler.ListProjects)
			member.POST("/projects", projectHandler.CreateProject)
			member.GET("/projects/:projectId", projectHandler.GetProject)
			member.PATCH("/projects/:projectId", projectHandler.UpdateProject)
			member.DELETE("/projects/:projectId", projectHandler.DeleteProject)
			member.GET("/projects/:projectId/analytics", analyticsHandler.ProjectAnalytics)

			member.GET("/tasks", taskHandler.ListTasks)
			member.POST("/tasks", taskHandler.CreateTask)
			member.GET("/tasks/board", taskHandler.Board)
			member.POST("/tasks/bulk-update", taskHandler.BulkUpdateTasks)
			member.POST("/tasks/generate", taskHandler.GenerateTasks)
			member.GET("/tasks/:taskId", taskHandler.GetTask)
			member.PATCH("/tasks/:taskId", taskHandler.UpdateTask)
			member.DELETE("/tasks/:taskId", taskHandler.DeleteTask)
			member.POST("/tasks/:taskId/move", taskHandler.MoveTask)
		}

		admin := workspaces.Group("/:workspaceId", middleware.RequireWorkspaceAccess(gate, access.AdminOnly))
		{
			admin.PATCH("", workspaceHandler.UpdateWorkspace)
			admin.DELETE("", workspaceHandler.DeleteWorkspace)
			admin.POST("/reset-invite-code", workspaceHandler.ResetInviteCode)
			admin.PATCH("/members/:memberId", memberHandler.UpdateMemberRole)
		}
	}

	return r
}
