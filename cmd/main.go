package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/lshigami/orientation-event/config"
	"github.com/lshigami/orientation-event/database"
	_ "github.com/lshigami/orientation-event/docs"
	"github.com/lshigami/orientation-event/internal/cache"
	adminctrl "github.com/lshigami/orientation-event/internal/controller/admin"
	userctrl "github.com/lshigami/orientation-event/internal/controller/user"
	"github.com/lshigami/orientation-event/internal/dto"
	"github.com/lshigami/orientation-event/internal/logger"
	"github.com/lshigami/orientation-event/internal/middleware"
	"github.com/lshigami/orientation-event/internal/repository"
	"github.com/lshigami/orientation-event/internal/router"
	"github.com/lshigami/orientation-event/internal/service"
)

// @title Orientation Event API
// @version 1.0
// @description Event registration, orientation questionnaire and QR check-in.
// @host localhost:8080
// @BasePath /apis
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logger.Init("info", true)

	app := fx.New(
		fx.Provide(
			config.NewConfig,
			database.NewDatabase,
			cache.NewRedisClient,
			NewStatsCache,
			NewGinEngine,
		),

		fx.Provide(
			repository.NewUserRepository,
			repository.NewOrientationTestRepository,
		),

		fx.Provide(
			service.NewAuthService,
			service.NewStatsService,
			service.NewOrientationService,
			service.NewAdminUserService,
			service.NewStaffService,
			service.NewInvitationRenderer,
			service.NewInvitationService,
		),

		fx.Provide(
			middleware.NewAuthMiddleware,
			userctrl.NewAuthController,
			userctrl.NewOrientationController,
			adminctrl.NewAdminUserController,
			adminctrl.NewStaffController,
		),

		fx.Invoke(ConfigureLogger),
		fx.Invoke(AutoMigrateDB),
		fx.Invoke(RegisterRoutesAndStartServer),
		fx.NopLogger,
	)

	if err := app.Start(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to start application")
	}

	<-app.Done()
	log.Info().Msg("Application shutting down gracefully...")
	stopCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := app.Stop(stopCtx); err != nil {
		log.Error().Err(err).Msg("Failed to stop application cleanly")
	}
}

func ConfigureLogger(cfg *config.Config) error {
	logger.Init(cfg.LogLevel, !cfg.IsProduction())
	return dto.RegisterValidators()
}

// NewStatsCache closes the redis client on shutdown. client is nil when
// REDIS_URL is unset.
func NewStatsCache(lc fx.Lifecycle, client *redis.Client) *cache.Cache {
	if client != nil {
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				if err := client.Ping(ctx).Err(); err != nil {
					log.Warn().Err(err).Msg("Redis unreachable, stats are computed on every request")
				}
				return nil
			},
			OnStop: func(context.Context) error {
				return client.Close()
			},
		})
	}
	return cache.New(client, "orientation:stats:")
}

func NewGinEngine(cfg *config.Config) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	r.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		log.Info().
			Str("client_ip", param.ClientIP).
			Str("method", param.Method).
			Str("path", param.Path).
			Int("status_code", param.StatusCode).
			Dur("latency", param.Latency).
			Str("user_agent", param.Request.UserAgent()).
			Str("error_message", param.ErrorMessage).
			Msg("gin_request")
		return ""
	}))
	r.Use(gin.Recovery())

	corsConfig := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{"Content-Length", "Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}
	if len(cfg.Server.AllowedOrigins) == 0 || cfg.Server.AllowedOrigins[0] == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.Server.AllowedOrigins
		corsConfig.AllowCredentials = true
	}
	r.Use(cors.New(corsConfig))

	// http://localhost:PORT/swagger/index.html
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

func RegisterRoutesAndStartServer(
	lc fx.Lifecycle,
	engine *gin.Engine,
	cfg *config.Config,
	handlers router.Handlers,
) {
	router.Register(engine, handlers)

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msgf("Orientation API server starting on port %s", cfg.Server.Port)
			log.Info().Msgf("Swagger UI available at http://localhost:%s/swagger/index.html", cfg.Server.Port)
			go func() {
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal().Err(err).Msg("Server ListenAndServe failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Server shutting down...")
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	})
}

func AutoMigrateDB(db *gorm.DB) error {
	log.Info().Msg("Running database migrations...")
	if err := database.Migrate(db); err != nil {
		log.Error().Err(err).Msg("Database migration failed")
		return err
	}
	log.Info().Msg("Database migration completed successfully.")
	return nil
}
