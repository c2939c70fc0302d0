package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	chatdocs "chefgpt-server/docs/swagger"
	"chefgpt-server/internal/config"
	domain "chefgpt-server/internal/domain/conversation"
	"chefgpt-server/internal/interfaces/httpserver/handlers"
	"chefgpt-server/internal/interfaces/httpserver/middlewares"
	"chefgpt-server/internal/interfaces/httpserver/requests"
	v1 "chefgpt-server/internal/interfaces/httpserver/routes/v1"
)

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HttpServer wraps the gin engine with graceful shutdown helpers.
type HttpServer struct {
	cfg    *config.Config
	engine *gin.Engine
	log    zerolog.Logger
}

// New constructs the HTTP server with middleware, health probes and the v1 routes.
func New(cfg *config.Config, log zerolog.Logger, service domain.Service, resolver middlewares.IdentityResolver, readiness Pinger) *HttpServer {
	if !cfg.IsDev() {
		gin.SetMode(gin.ReleaseMode)
	}
	chatdocs.SwaggerInfo.BasePath = "/"
	requests.RegisterValidators()

	engine := gin.New()
	engine.Use(
		gin.Recovery(),
		middlewares.RequestID(),
		middlewares.Tracing(cfg.ServiceName),
		middlewares.Logging(log),
		middlewares.Metrics(),
		middlewares.CORS(cfg.CORSOrigin),
		middlewares.Identity(resolver),
	)

	registerCoreRoutes(engine, cfg, readiness)
	v1.NewRoutes(handlers.NewProvider(service, log)).Register(engine)

	return &HttpServer{cfg: cfg, engine: engine, log: log}
}

// Engine exposes the router, mainly for tests.
func (s *HttpServer) Engine() *gin.Engine {
	return s.engine
}

// Run starts the HTTP listener and shuts down gracefully when ctx is cancelled.
func (s *HttpServer) Run(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.cfg.HTTPPort)
	server := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("HTTP server listening")
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		s.log.Info().Msg("context cancelled, shutting down HTTP server")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func registerCoreRoutes(engine *gin.Engine, cfg *config.Config, readiness Pinger) {
	engine.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": cfg.ServiceName,
			"status":  "ok",
		})
	})

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	engine.GET("/readyz", func(c *gin.Context) {
		if readiness != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := readiness.Ping(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	if cfg.EnableSwagger {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}
}
