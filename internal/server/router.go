package server

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/sma-marks/api/swagger"
	"github.com/noah-isme/sma-marks/internal/app"
	"github.com/noah-isme/sma-marks/internal/handler"
	internalmiddleware "github.com/noah-isme/sma-marks/internal/middleware"
	"github.com/noah-isme/sma-marks/pkg/config"
	"github.com/noah-isme/sma-marks/pkg/logger"
	corsmiddleware "github.com/noah-isme/sma-marks/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/sma-marks/pkg/middleware/requestid"
)

// NewRouter wires the HTTP routes for a.
func NewRouter(a *app.App) *gin.Engine {
	cfg := a.Config
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(a.Logger))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(a.Metrics, "/metrics"))

	checks := make(map[string]handler.ReadinessCheck, len(a.Checks))
	for name, check := range a.Checks {
		checks[name] = handler.ReadinessCheck(check)
	}
	metricsHandler := handler.NewMetricsHandler(a.Metrics, checks)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	records := handler.NewRecordHandler(a.Records, a.Views, a.Exports)
	jokes := handler.NewJokeHandler(a.Jokes)
	admin := internalmiddleware.AdminAuth(a.Tokens, cfg.Auth.Enabled)

	api := r.Group(cfg.APIPrefix)
	{
		recordRoutes := api.Group("/records")
		recordRoutes.GET("", records.Overview)
		recordRoutes.GET("/lookup", records.Lookup)
		recordRoutes.GET("/sorted", records.Sorted)
		recordRoutes.GET("/extreme", records.Extreme)
		recordRoutes.GET("/export", records.Export)

		mutations := recordRoutes.Group("", admin)
		mutations.POST("", records.Create)
		mutations.POST("/reload", records.Reload)
		mutations.PATCH("/:selector", records.Update)
		mutations.DELETE("/:selector", records.Delete)

		if a.ExportJobs != nil {
			exportJobs := handler.NewExportJobHandler(a.ExportJobs)
			recordRoutes.GET("/exports", exportJobs.List)
			recordRoutes.GET("/exports/:id", exportJobs.Status)
			recordRoutes.GET("/exports/:id/download", exportJobs.Download)
			mutations.POST("/exports", exportJobs.Submit)
		}

		api.POST("/auth/token", handler.NewAuthHandler(a.Tokens).Token)

		jokeRoutes := api.Group("/jokes")
		jokeRoutes.GET("/next", jokes.Next)
		jokeRoutes.GET("/punchline", jokes.Punchline)
	}

	return r
}
