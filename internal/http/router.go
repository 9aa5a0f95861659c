package http

import (
	"net/http"
	"time"

	"github.com/geocoder89/intervue/internal/domain/user"
	"github.com/geocoder89/intervue/internal/http/handlers"
	"github.com/geocoder89/intervue/internal/http/middlewares"
	"github.com/geocoder89/intervue/internal/observability"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const serviceName = "intervue"

// Deps carries the explicitly constructed collaborators; nothing in
// the router reaches for ambient globals.
type Deps struct {
	Env            string
	AllowedOrigins []string

	Prom    *observability.Prom
	Metrics http.Handler
	Ping    func() error
	Tracing bool

	Auth  *middlewares.AuthMiddleware
	Roles middlewares.RoleReader

	Webhook  *handlers.ClerkWebhookHandler
	Users    *handlers.UsersHandler
	Meetings *handlers.MeetingsHandler
	Calls    *handlers.CallsHandler
}

func NewRouter(deps Deps) *gin.Engine {
	if deps.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// middleware
	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.MaxBodyBytes(1 << 20)) // 1 MiB is plenty for every payload we accept

	if deps.Tracing {
		r.Use(otelgin.Middleware(serviceName))
	}

	if deps.Prom != nil {
		r.Use(deps.Prom.GinHandleMiddleware())
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     deps.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "If-None-Match"},
		ExposeHeaders:    []string{"Content-Length", "ETag", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// health
	h := handlers.NewHealthHandler(deps.Ping)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	if deps.Metrics != nil {
		r.GET("/metrics", gin.WrapH(deps.Metrics))
	}

	// Webhook ingress: signature-verified, never session-authenticated.
	webhookLimiter := middlewares.NewRateLimiter(60, time.Minute)
	r.POST("/clerk-webhook",
		webhookLimiter.RateLimiterMiddleware(middlewares.KeyByIP),
		deps.Webhook.HandleClerkWebhook,
	)

	// Authenticated API surface
	api := r.Group("/api")
	api.Use(deps.Auth.RequireAuth())
	api.Use(middlewares.RequireJSON())

	api.GET("/users", deps.Users.ListUsers)
	api.GET("/users/me", deps.Users.GetMe)
	api.PUT("/users/me/role", deps.Users.UpdateMyRole)
	api.GET("/users/:externalId", deps.Users.GetUserByExternalID)

	api.GET("/meetings", deps.Meetings.ListMeetings)
	api.GET("/meetings/:id", deps.Meetings.GetMeetingByID)
	api.POST("/meetings", deps.Auth.RequireRole(deps.Roles, user.RoleInterviewer), deps.Meetings.CreateMeeting)
	api.PUT("/meetings/:id/status", deps.Meetings.UpdateMeetingStatus)

	api.GET("/calls/token", deps.Calls.GetCallToken)

	return r
}
