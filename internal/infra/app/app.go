package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/fabiandiazmartinez20/backend-raicesmx/internal/core/port"
	"github.com/fabiandiazmartinez20/backend-raicesmx/internal/infra/config"
	"github.com/fabiandiazmartinez20/backend-raicesmx/internal/infra/database"
	"github.com/fabiandiazmartinez20/backend-raicesmx/internal/infra/logger"
	"github.com/fabiandiazmartinez20/backend-raicesmx/internal/infra/mail"
	"github.com/fabiandiazmartinez20/backend-raicesmx/internal/infra/oauth"
	"github.com/fabiandiazmartinez20/backend-raicesmx/internal/infra/security"
	postgresrepo "github.com/fabiandiazmartinez20/backend-raicesmx/internal/repository/postgres"
	"github.com/fabiandiazmartinez20/backend-raicesmx/internal/transport/http/middleware"
	"github.com/fabiandiazmartinez20/backend-raicesmx/internal/transport/http/routes"
	"github.com/fabiandiazmartinez20/backend-raicesmx/internal/usecase"
)

type Application struct {
	cfg    *config.AppConfig
	engine *gin.Engine
	logger *zap.Logger
	pool   *pgxpool.Pool
	reset  *usecase.PasswordResetService
}

func New(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, log)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}

	tokenManager, err := security.NewTokenManager(cfg.JWT.Secret, cfg.App.Name, cfg.JWT.TokenTTL)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("init token manager: %w", err)
	}

	repos := postgresrepo.NewRepositories(pool)

	mailer, err := buildMailer(cfg, log)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("init mailer: %w", err)
	}

	var googleProvider *oauth.GoogleProvider
	if cfg.Google.ClientID != "" {
		googleProvider, err = oauth.NewGoogleProvider(oauth.GoogleConfig{
			ClientID:     cfg.Google.ClientID,
			ClientSecret: cfg.Google.ClientSecret,
			RedirectURL:  cfg.Google.RedirectURL,
		})
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("init google oauth: %w", err)
		}
		log.Info("google oauth enabled")
	} else {
		log.Info("google oauth not configured, routes disabled")
	}

	authService := usecase.NewAuthService(repos.Users, tokenManager, log)
	resetService := usecase.NewPasswordResetService(repos.Users, repos.ResetCodes, mailer, log).
		WithTTL(cfg.Reset.CodeTTL)

	metrics, err := middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("init http metrics: %w", err)
	}

	engine := routes.Register(routes.Dependencies{
		Config:  cfg,
		Logger:  log,
		Google:  googleProvider,
		Metrics: metrics,
		Services: routes.ServiceSet{
			Auth:          authService,
			PasswordReset: resetService,
		},
	})

	return &Application{
		cfg:    cfg,
		engine: engine,
		logger: log,
		pool:   pool,
		reset:  resetService,
	}, nil
}

// buildMailer selects the delivery backend. Production requires Brevo
// credentials (enforced by config.Validate); development without an API
// key logs the codes instead.
func buildMailer(cfg *config.AppConfig, log *zap.Logger) (port.Mailer, error) {
	if cfg.Brevo.APIKey == "" {
		log.Warn("brevo api key not set, reset codes will only be logged")
		return mail.NewLoggingMailer(log), nil
	}

	return mail.NewBrevoMailer(mail.BrevoConfig{
		APIKey:    cfg.Brevo.APIKey,
		FromEmail: cfg.Brevo.FromEmail,
		FromName:  cfg.Brevo.FromName,
		BaseURL:   cfg.Brevo.BaseURL,
	}, log)
}

func (a *Application) Run(ctx context.Context) error {
	defer func() {
		_ = a.logger.Sync()
	}()
	defer func() {
		if a.pool != nil {
			a.pool.Close()
		}
	}()

	go a.runCodeCleanup(ctx)

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.cfg.App.Host, a.cfg.App.Port),
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	a.logger.Info("starting auth API",
		zap.String("env", a.cfg.App.Env),
		zap.String("address", srv.Addr),
	)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- fmt.Errorf("run server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	case err := <-serverErrCh:
		return err
	}
}

// runCodeCleanup sweeps expired reset codes on an interval. Failures are
// logged and retried on the next tick; expiry is also enforced at
// verification time so the sweep is purely hygiene.
func (a *Application) runCodeCleanup(ctx context.Context) {
	interval := a.cfg.Reset.CleanupInterval
	if interval <= 0 {
		interval = time.Hour
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sweepCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			if err := a.reset.CleanupExpiredCodes(sweepCtx); err != nil {
				a.logger.Warn("reset code cleanup failed", zap.Error(err))
			}
			cancel()
		}
	}
}
