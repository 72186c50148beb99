package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "storyfeed-backend/docs"
	"storyfeed-backend/internal/common/cache"
	"storyfeed-backend/internal/common/config"
	"storyfeed-backend/internal/common/logger"
	"storyfeed-backend/internal/common/middleware"
	authhttp "storyfeed-backend/internal/features/auth/delivery/http"
	sessionredis "storyfeed-backend/internal/features/auth/repository/redis"
	authservice "storyfeed-backend/internal/features/auth/service"
	cataloghttp "storyfeed-backend/internal/features/catalog/delivery/http"
	catalogrepo "storyfeed-backend/internal/features/catalog/repository"
	catalogservice "storyfeed-backend/internal/features/catalog/service"
	feedhttp "storyfeed-backend/internal/features/feed/delivery/http"
	feedrepo "storyfeed-backend/internal/features/feed/repository"
	feedservice "storyfeed-backend/internal/features/feed/service"
	guesshttp "storyfeed-backend/internal/features/guess/delivery/http"
	guessrepo "storyfeed-backend/internal/features/guess/repository"
	guessservice "storyfeed-backend/internal/features/guess/service"
	socialhttp "storyfeed-backend/internal/features/social/delivery/http"
	socialrepo "storyfeed-backend/internal/features/social/repository"
	socialservice "storyfeed-backend/internal/features/social/service"
	subscriptionhttp "storyfeed-backend/internal/features/subscription/delivery/http"
	subscriptionrepo "storyfeed-backend/internal/features/subscription/repository"
	subscriptionservice "storyfeed-backend/internal/features/subscription/service"
	"storyfeed-backend/internal/features/subscription/worker"
	userhttp "storyfeed-backend/internal/features/user/delivery/http"
	userrepo "storyfeed-backend/internal/features/user/repository"
	userservice "storyfeed-backend/internal/features/user/service"
	redisp "storyfeed-backend/internal/platform/redis"
	"storyfeed-backend/internal/platform/store"
)

const serviceName = "storyfeed-backend"

// App holds the HTTP router and the background workers sharing its services.
type App struct {
	Router        *gin.Engine
	PaymentWorker *worker.PaymentStreamWorker
	Users         userservice.UserService
}

// NewApp builds the application with routes and middlewares wired.
func NewApp(st store.Store, rdb *redisp.Client, cfg *config.Config) *App {
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	// Domain deps
	subscriptions := subscriptionservice.NewSubscriptionService(
		subscriptionrepo.NewSubscriptionRepository(st), cfg.Payments.PriceLevels, nil)
	social := socialservice.NewSocialService(socialrepo.NewShareRepository(st), nil)
	users := userservice.NewUserService(
		userrepo.NewUserRepository(st),
		cache.NewCacheService(rdb, "stats:"),
		subscriptions,
		social,
		userservice.Config{BcryptCost: cfg.Auth.BcryptCost, StatsTTL: cfg.Cache.StatsTTL},
	)
	auth := authservice.NewAuthService(sessionredis.NewRepository(rdb), users, cfg.Auth.SessionTTL)
	feeds := feedservice.NewFeedService(feedrepo.NewFeedRepository(st), feedrepo.NewCommentRepository(st), nil)
	guesses := guessservice.NewGuessService(guessrepo.NewGuessRepository(st), nil)
	catalog := catalogservice.NewCatalogService(catalogrepo.NewCategoryRepository(st), catalogrepo.NewStoryRepository(st), nil)

	router := gin.New()
	// Client IPs key the guess quota, so forwarding headers count only from known proxies.
	if err := router.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		logger.Error().Err(err).Strs("trusted_proxies", cfg.Server.TrustedProxies).Msg("Invalid TRUSTED_PROXIES, trusting none")
		_ = router.SetTrustedProxies(nil)
	}
	router.Use(middleware.RequestID())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.Logger("/health", "/live", "/ready"))

	// CORS for frontends
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Server.Origin}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader}
	corsConfig.AllowCredentials = true
	router.Use(cors.New(corsConfig))

	registerProbes(router, st, rdb)
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := router.Group("/api/v1",
		middleware.ErrorResponder(),
		middleware.RequestTimeout(cfg.Server.RequestTimeout),
		middleware.Identify(auth),
	)
	authhttp.NewAuthHandler(auth).RegisterRoutes(v1)
	userhttp.NewUserHandler(users).RegisterRoutes(v1)
	feedhttp.NewFeedHandler(feeds).RegisterRoutes(v1)
	guesshttp.NewGuessHandler(guesses).RegisterRoutes(v1)
	cataloghttp.NewCatalogHandler(catalog, rdb, cache.NewCacheService(rdb, middleware.HTTPCachePrefix), cfg.Cache.HTTPTTL).RegisterRoutes(v1)
	subscriptionhttp.NewSubscriptionHandler(subscriptions).RegisterRoutes(v1)
	socialhttp.NewSocialHandler(social).RegisterRoutes(v1)

	return &App{
		Router: router,
		PaymentWorker: worker.NewPaymentStreamWorker(rdb, subscriptions, worker.Config{
			Stream:        cfg.Payments.Stream,
			Group:         cfg.Payments.Group,
			Consumer:      cfg.Payments.Consumer,
			RetryInterval: cfg.Payments.RetryInterval,
		}),
		Users: users,
	}
}

func registerProbes(router *gin.Engine, st store.Store, rdb *redisp.Client) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC(),
			"service":   serviceName,
		})
	})

	// Liveness probe
	router.GET("/live", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	// Readiness probe
	router.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := st.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unready",
				"error":   "store unavailable",
				"details": err.Error(),
			})
			return
		}

		if err := rdb.HealthCheck(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unready",
				"error":   "redis unavailable",
				"details": err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "ready",
			"timestamp": time.Now().UTC(),
			"service":   serviceName,
		})
	})
}
