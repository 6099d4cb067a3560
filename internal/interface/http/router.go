package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yanqian/skinscan/internal/domain/auth"
	"github.com/yanqian/skinscan/internal/infra/config"
)

// NewRouter wires up the HTTP handlers and returns a configured server.
func NewRouter(cfg *config.Config, handler *Handler) *http.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.MaxMultipartMemory = uploadBodyLimit(cfg.Detection.MaxImageBytes)
	router.Use(
		gin.Recovery(),
		requestLogger(handler.logger),
		metricsMiddleware(),
		corsMiddleware(cfg.HTTP.AllowedOrigins),
		errorHandlingMiddleware(handler.logger),
		rateLimitMiddleware(cfg.HTTP.RateLimit, handler.logger),
	)

	router.GET("/healthz", handler.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")
	{
		api.POST("/chat", handler.Chat)
		api.GET("/chat/trending", handler.TrendingQuestions)

		api.POST("/auth/register", handler.Register)
		api.POST("/auth/login", handler.Login)
		api.POST("/auth/refresh", handler.Refresh)

		api.GET("/classes", handler.ListClasses)

		secured := api.Group("")
		secured.Use(authMiddleware(handler.authSvc))
		{
			secured.GET("/auth/me", handler.Me)

			secured.POST("/patients", requireScope(auth.ScopePatientsWrite), handler.CreatePatient)
			secured.GET("/patients", requireScope(auth.ScopePatientsRead), handler.ListPatients)
			secured.GET("/patients/:id", requireScope(auth.ScopePatientsRead), handler.GetPatient)
			secured.PATCH("/patients/:id", requireScope(auth.ScopePatientsWrite), handler.UpdatePatient)
			secured.GET("/patients/:id/detections", requireScope(auth.ScopeDetectionsRead), handler.PatientDetections)

			secured.POST("/detections", requireScope(auth.ScopeDetectionsWrite), limitBody(uploadBodyLimit(cfg.Detection.MaxImageBytes)), handler.CreateDetection)
			secured.GET("/detections", requireScope(auth.ScopeDetectionsRead), handler.ListDetections)
			secured.GET("/detections/:id", requireScope(auth.ScopeDetectionsRead), handler.GetDetection)
			secured.GET("/detections/:id/image", requireScope(auth.ScopeDetectionsRead), handler.DetectionImage)
		}
	}

	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        withRetry(router, cfg.HTTP.Retry, handler.logger),
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		attrs := append(requestAttrs(c), "status", c.Writer.Status(), "latency_ms", time.Since(start).Milliseconds())
		logger.Info("http request", attrs...)
	}
}
