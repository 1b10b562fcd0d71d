package router

import (
	"time"

	"github.com/campushub/campushub/internal/handlers"
	"github.com/campushub/campushub/internal/middleware"
	"github.com/campushub/campushub/internal/types"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func New(guard *middleware.Guard, authHandler *handlers.AuthHandler, eventHandler *handlers.EventHandler, registrationHandler *handlers.RegistrationHandler) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     types.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/", handlers.Root)
	r.GET("/health-check", handlers.HealthCheck)

	user := r.Group("/user")
	{
		user.POST("/signup", authHandler.SignupUser)
		user.POST("/signin", authHandler.SigninUser)
		user.GET("/profile", guard.RequireAuth(), authHandler.UserProfile)
		user.GET("/events", eventHandler.ListEvents)
		user.POST("/register-event/:id", guard.RequireAuth(), registrationHandler.RegisterForEvent)
	}

	admin := r.Group("/admin")
	{
		admin.POST("/signup", authHandler.SignupAdmin)
		admin.POST("/signin", authHandler.SigninAdmin)
		admin.GET("/profile", guard.RequireAuth(), authHandler.AdminProfile)

		gated := admin.Group("", guard.RequireAuth(), guard.RequireRole(types.RoleAdmin))
		{
			gated.GET("/events", eventHandler.ListEventsWithCounts)
			gated.POST("/create-event", eventHandler.CreateEvent)
			gated.PUT("/edit-event/:id", eventHandler.EditEvent)
			gated.DELETE("/delete-event/:id", eventHandler.DeleteEvent)
			gated.GET("/event/:id/registrations", eventHandler.EventRegistrations)
			gated.GET("/event/:id/live", handlers.LiveRegistrations)
		}
	}

	return r
}
