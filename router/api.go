package router

import (
	"database/sql"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"

	"github.com/rosterly/rosterly/authz"
	"github.com/rosterly/rosterly/handlers"
	"github.com/rosterly/rosterly/modules"
	"github.com/rosterly/rosterly/services"
)

func NewGinRouter(pg *sql.DB, rdb *redis.Client) *gin.Engine {
	r := gin.Default()

	// CORS middleware
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, PATCH, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Initialize services
	userService := services.NewUserService(pg, rdb)
	authService := services.NewAuthService(pg, rdb, userService)
	teamService := services.NewTeamService(pg)
	classService := services.NewClassService(pg)
	moduleService := modules.NewService(pg)

	// Initialize authz components (the enforcement core)
	resolver, membershipMgr, orgRepo := authz.NewSimpleBackend(pg)
	orgService := authz.NewOrgService(resolver, membershipMgr, orgRepo)
	authzMiddleware := authz.NewAuthzMiddleware(resolver)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	orgHandler := handlers.NewOrgHandler(orgService)
	moduleHandler := handlers.NewModuleHandler(moduleService)
	teamHandler := handlers.NewTeamHandler(teamService)
	classHandler := handlers.NewClassHandler(classService)

	// Initialize middleware
	authMiddleware := handlers.NewAuthMiddleware(authService.JWTService, userService)

	// PUBLIC ENDPOINTS (no authentication required)
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	authRoutes := r.Group("/auth")
	{
		authRoutes.POST("/signup", authHandler.Signup)
		authRoutes.POST("/login", authHandler.Login)
		authRoutes.POST("/refresh", authHandler.Refresh)
		authRoutes.POST("/logout", authHandler.Logout)
	}

	// PROTECTED ENDPOINTS (require authentication)
	protected := r.Group("/")
	protected.Use(authMiddleware.RequireAuth())
	{
		// ORGANIZATION MANAGEMENT
		// Explicit org ids in the path; the service layer resolves the
		// actor's role in that org for every call.
		orgRoutes := protected.Group("/orgs")
		{
			orgRoutes.POST("", orgHandler.CreateOrg) // Anyone authenticated can create
			orgRoutes.GET("", orgHandler.ListOrgs)   // Returns only user's orgs

			orgDetailRoutes := orgRoutes.Group("/:id")
			{
				orgDetailRoutes.GET("", orgHandler.GetOrg)
				orgDetailRoutes.PATCH("", orgHandler.UpdateOrg)
				orgDetailRoutes.DELETE("", orgHandler.DeleteOrg)
				orgDetailRoutes.PUT("/theme", orgHandler.UpdateOrgTheme)
				orgDetailRoutes.PUT("/default", orgHandler.SwitchDefaultOrg)
				orgDetailRoutes.GET("/members", orgHandler.GetOrgMembers)
				orgDetailRoutes.POST("/members", orgHandler.AddOrgMember)
				orgDetailRoutes.PATCH("/members/:user_id", orgHandler.UpdateOrgMemberRole)
				orgDetailRoutes.DELETE("/members/:user_id", orgHandler.RemoveOrgMember)
			}
		}

		// FEATURE MODULES
		// Reads for any member; toggling is admin/owner only (role-list
		// mode - the module resolver is a client of the middleware).
		moduleRoutes := protected.Group("/modules")
		moduleRoutes.Use(authzMiddleware.RequireRoles(authz.ManagementRoles...))
		{
			moduleRoutes.GET("", moduleHandler.ListModules)
			moduleRoutes.GET("/enabled", moduleHandler.GetEnabledModules)
			moduleRoutes.GET("/:key/requirements", moduleHandler.CheckModule)
		}
		moduleAdminRoutes := protected.Group("/modules")
		moduleAdminRoutes.Use(authzMiddleware.RequireRoles(authz.RoleAdmin, authz.RoleOwner))
		{
			moduleAdminRoutes.POST("/:key/enable", moduleHandler.EnableModule)
			moduleAdminRoutes.POST("/:key/disable", moduleHandler.DisableModule)
			moduleAdminRoutes.PUT("/:key/settings", moduleHandler.UpdateModuleSettings)
		}

		// TEAMS (role-list mode)
		teamRoutes := protected.Group("/teams")
		{
			teamRoutes.GET("", authzMiddleware.RequireRoles(authz.ManagementRoles...), teamHandler.ListTeams)
			teamRoutes.POST("", authzMiddleware.RequireRoles(authz.RoleCoach, authz.RoleAdmin, authz.RoleOwner), teamHandler.CreateTeam)
			teamRoutes.DELETE("/:id", authzMiddleware.RequirePermission(authz.PermissionDeleteContent), teamHandler.DeleteTeam)
		}

		// CLASSES & ATTENDANCE (permission-key mode)
		classRoutes := protected.Group("/classes")
		{
			classRoutes.GET("", authzMiddleware.RequireRoles(append(authz.ManagementRoles, authz.RoleTeacher, authz.RoleStudent)...), classHandler.ListClasses)
			classRoutes.POST("", authzMiddleware.RequirePermission(authz.PermissionCreateContent), classHandler.CreateClass)
			classRoutes.POST("/:id/attendance", authzMiddleware.RequirePermission(authz.PermissionRecordAttendance), classHandler.RecordAttendance)
			classRoutes.GET("/:id/attendance", authzMiddleware.RequirePermission(authz.PermissionViewReports), classHandler.ListAttendance)
		}
	}

	return r
}
