package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/empezz5-crypto/mdmoney/internal/config"
	"github.com/empezz5-crypto/mdmoney/internal/handler"
	accounthandler "github.com/empezz5-crypto/mdmoney/internal/handler/account"
	aihandler "github.com/empezz5-crypto/mdmoney/internal/handler/ai"
	bankhandler "github.com/empezz5-crypto/mdmoney/internal/handler/bank"
	budgethandler "github.com/empezz5-crypto/mdmoney/internal/handler/budget"
	pushhandler "github.com/empezz5-crypto/mdmoney/internal/handler/push"
	shortshandler "github.com/empezz5-crypto/mdmoney/internal/handler/shorts"
	txhandler "github.com/empezz5-crypto/mdmoney/internal/handler/transaction"
	"github.com/empezz5-crypto/mdmoney/internal/middleware"
	"github.com/empezz5-crypto/mdmoney/pkg/metrics"
)

// Dependencies carries everything the HTTP surface needs; handlers may be
// nil when their feature is not configured, in which case their routes are
// simply not registered.
type Dependencies struct {
	Config  *config.Config
	Logger  zerolog.Logger
	Metrics *metrics.Metrics

	Health      *handler.Handler
	Push        *pushhandler.Handler
	Shorts      *shortshandler.Handler
	Accounts    *accounthandler.Handler
	Transaction *txhandler.Handler
	Budgets     *budgethandler.Handler
	Bank        *bankhandler.Handler
	AI          *aihandler.Handler
}

func New(deps Dependencies) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestID())
	engine.Use(middleware.Logger(deps.Logger))
	engine.Use(middleware.CORS(corsConfig(deps.Config)))

	if deps.Metrics != nil {
		engine.Use(middleware.Metrics(deps.Metrics))
	}
	if deps.Config.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(
			deps.Config.RateLimit.RequestsPerSecond,
			deps.Config.RateLimit.Burst,
		)
		engine.Use(limiter.RateLimit())
	}

	if deps.Config.Monitoring.PrometheusEnabled {
		engine.GET(deps.Config.Monitoring.MetricsPath, gin.WrapH(promhttp.Handler()))
	}

	api := engine.Group("/api")
	{
		api.GET("/health", deps.Health.LivenessCheck)
		api.GET("/health/ready", deps.Health.ReadinessCheck)

		deps.Push.RegisterRoutes(api)
		deps.Shorts.RegisterRoutes(api)
		deps.Accounts.RegisterRoutes(api)
		deps.Transaction.RegisterRoutes(api)
		deps.Budgets.RegisterRoutes(api)
		deps.Bank.RegisterRoutes(api)
		if deps.AI != nil {
			deps.AI.RegisterRoutes(api)
		}
	}

	return engine
}

func corsConfig(cfg *config.Config) middleware.CORSConfig {
	corsCfg := middleware.DefaultCORSConfig()
	if len(cfg.Security.AllowedOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.Security.AllowedOrigins
	}
	if len(cfg.Security.AllowedMethods) > 0 {
		corsCfg.AllowMethods = cfg.Security.AllowedMethods
	}
	if len(cfg.Security.AllowedHeaders) > 0 {
		corsCfg.AllowHeaders = cfg.Security.AllowedHeaders
	}
	return corsCfg
}
