package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/fabiandiazmartinez20/backend-raicesmx/internal/infra/config"
	"github.com/fabiandiazmartinez20/backend-raicesmx/internal/infra/oauth"
	"github.com/fabiandiazmartinez20/backend-raicesmx/internal/transport/http/handlers"
	"github.com/fabiandiazmartinez20/backend-raicesmx/internal/transport/http/middleware"
	"github.com/fabiandiazmartinez20/backend-raicesmx/internal/usecase"
)

// ServiceSet groups the services the HTTP layer depends on.
type ServiceSet struct {
	Auth          *usecase.AuthService
	PasswordReset *usecase.PasswordResetService
}

// Dependencies encapsulates the objects required to register routes.
type Dependencies struct {
	Config   *config.AppConfig
	Logger   *zap.Logger
	Services ServiceSet
	Google   *oauth.GoogleProvider
	Metrics  *middleware.HTTPMetrics
}

// Register configures the Gin engine with routes and middleware.
func Register(deps Dependencies) *gin.Engine {
	if deps.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.EnrichContext())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.CORS(deps.Config.App.AllowedOrigins))
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Handler())
	}

	authMiddleware := middleware.RequireAuth(deps.Services.Auth)

	healthHandler := handlers.NewHealthHandler()
	r.GET("/healthz", healthHandler.Status)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	cookies := handlers.CookieSettings{
		MaxAge: int(deps.Services.Auth.TokenTTL().Seconds()),
		Secure: deps.Config.IsProduction(),
	}
	authHandler := handlers.NewAuthHandler(deps.Services.Auth, deps.Google, cookies, deps.Config.App.FrontendURL, deps.Logger)
	passwordHandler := handlers.NewPasswordHandler(deps.Services.PasswordReset)

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")

		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/logout", authHandler.Logout)
		authGroup.GET("/profile", authMiddleware, authHandler.Profile)

		if authHandler.GoogleEnabled() {
			authGroup.GET("/google", authHandler.GoogleLogin)
			authGroup.GET("/google/callback", authHandler.GoogleCallback)
		}

		passwordGroup := authGroup.Group("/password")
		passwordGroup.POST("/request", passwordHandler.RequestReset)
		passwordGroup.POST("/verify", passwordHandler.VerifyCode)
		passwordGroup.POST("/reset", passwordHandler.ResetPassword)
	}

	return r
}
