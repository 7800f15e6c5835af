package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/scc-digitalhub/custom-resource-manager/internal/api/handlers"
	"github.com/scc-digitalhub/custom-resource-manager/internal/api/middleware"
	"github.com/scc-digitalhub/custom-resource-manager/internal/config"
)

type Server struct {
	config *config.ServerConfig
	logger *zap.Logger
	router *gin.Engine
	server *http.Server
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	registry *prometheus.Registry,
	metrics *middleware.Metrics,
	resourceHandler *handlers.ResourceHandler,
	schemaHandler *handlers.SchemaHandler,
	crdHandler *handlers.CRDHandler,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	router.Use(middleware.ErrorHandler(logger))
	router.Use(middleware.RequestLogger(logger))
	router.Use(metrics.Middleware())
	router.Use(middleware.CORSMiddleware(cfg.Server.CORSOrigins))
	router.Use(middleware.ErrorMapper(logger))

	api := router.Group("/api/v1")
	{
		crs := api.Group("/crs")
		{
			crs.GET("/:crdId", resourceHandler.ListResources)
			crs.POST("/:crdId", resourceHandler.CreateResource)
			crs.GET("/:crdId/:id", resourceHandler.GetResource)
			crs.PUT("/:crdId/:id", resourceHandler.UpdateResource)
			crs.PATCH("/:crdId/:id", resourceHandler.PatchResource)
			crs.DELETE("/:crdId/:id", resourceHandler.DeleteResource)
		}

		crd := api.Group("/crd")
		{
			crd.GET("", crdHandler.ListDefinitions)
			crd.GET("/:crdId", crdHandler.GetDefinition)
		}

		schemas := api.Group("/schemas")
		{
			schemas.GET("", schemaHandler.ListSchemas)
			schemas.GET("/:crdId/:version", schemaHandler.GetSchema)
			schemas.PUT("/:crdId/:version", schemaHandler.PutSchema)
			schemas.DELETE("/:crdId/:version", schemaHandler.DeleteSchema)
		}
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	return router
}

func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	router *gin.Engine,
) *Server {
	return &Server{
		config: &cfg.Server,
		logger: logger,
		router: router,
	}
}

// Start serves until ctx is done, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.config.Host, s.config.Port),
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info("Starting HTTP server",
		zap.String("addr", s.server.Addr),
		zap.Int("port", s.config.Port))

	serveErr := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		return s.Stop(context.Background())
	}
}

func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping HTTP server")

	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	return s.server.Shutdown(shutdownCtx)
}
