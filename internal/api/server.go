package api

import (
	"context"
	"time"

	"response-guard/internal/api/respond"
	v1 "response-guard/internal/api/v1"
	"response-guard/internal/common/config"
	apperrors "response-guard/internal/common/errors"
	"response-guard/internal/common/logger"
	"response-guard/internal/common/metrics"
	"response-guard/internal/contract"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// Server is the fiber application with every route mounted.
type Server struct {
	app    *fiber.App
	cfg    *config.Config
	logger logger.Logger
}

type Deps struct {
	Config     *config.Config
	Logger     logger.Logger
	Metrics    *metrics.Metrics
	Contracts  *contract.Registry
	Responder  *respond.Responder
	Issues     *v1.Handler
	Debug      *DebugHandler
	HealthDeps map[string]Pinger
}

func NewServer(d Deps) *Server {
	app := fiber.New(fiber.Config{
		AppName:               d.Config.App.Name,
		ReadTimeout:           config.GetDuration(d.Config.API.ReadTimeout),
		WriteTimeout:          config.GetDuration(d.Config.API.WriteTimeout),
		BodyLimit:             d.Config.API.BodyLimit,
		DisableStartupMessage: true,
		ErrorHandler:          ErrorHandler(apperrors.NewHandler(d.Logger), d.Responder),
	})

	app.Use(recover.New())
	app.Use(RequestID())
	app.Use(metrics.HTTPMetricsMiddleware(d.Metrics, d.Logger))
	app.Use(ParamLimits(d.Config.RequestLimits))

	app.Get("/ping", Pong)
	app.Get("/health", Health(d.HealthDeps))
	app.Get("/metrics", adaptor.HTTPHandler(d.Metrics.Handler()))

	declared := respond.Register(app.Group("/v1"), d.Issues.Routes(), d.Contracts)
	declared += respond.Register(app.Group("/debug"), d.Debug.Routes(), d.Contracts)
	d.Metrics.SetContractsDeclared(d.Contracts.Len())

	d.Logger.Info("routes registered", map[string]interface{}{
		"declared_contracts":  declared,
		"effective_contracts": d.Contracts.Len(),
	})

	return &Server{app: app, cfg: d.Config, logger: d.Logger}
}

func (s *Server) App() *fiber.App {
	return s.app
}

// Start listens in the background. A listen failure is logged.
func (s *Server) Start() {
	go func() {
		s.logger.Info("HTTP server listening", map[string]interface{}{"address": s.cfg.API.Port})
		if err := s.app.Listen(s.cfg.API.Port); err != nil {
			s.logger.Error("HTTP server stopped", map[string]interface{}{"error": err.Error()})
		}
	}()
}

func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.app.ShutdownWithContext(ctx)
}
