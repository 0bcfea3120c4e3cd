package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"response-guard/internal/api"
	"response-guard/internal/api/respond"
	v1 "response-guard/internal/api/v1"
	"response-guard/internal/common/config"
	"response-guard/internal/common/database"
	apperrors "response-guard/internal/common/errors"
	"response-guard/internal/common/logger"
	"response-guard/internal/common/metrics"
	"response-guard/internal/common/observability"
	"response-guard/internal/contract"
	"response-guard/internal/response"
	"response-guard/internal/violations"
	"response-guard/pkg/registry"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

func newZapLogger(cfg *config.Config, lc fx.Lifecycle) *zap.Logger {
	l := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			_ = l.Sync()
			return nil
		},
	})
	return l
}

func newLogger(l *zap.Logger, cfg *config.Config) logger.Logger {
	return logger.NewZapAdapter(l).WithFields(map[string]interface{}{
		"service": cfg.App.Name,
		"version": cfg.App.Version,
	})
}

func newObservability(cfg *config.Config, m *metrics.Metrics, lc fx.Lifecycle) (*observability.Observability, error) {
	obs, err := observability.New(cfg.App.Name, m.Registry)
	if err != nil {
		return nil, fmt.Errorf("init observability: %w", err)
	}
	lc.Append(fx.Hook{OnStop: obs.Shutdown})
	return obs, nil
}

func newContracts(cfg *config.Config) *contract.Registry {
	return contract.NewRegistry(contract.NewExtractor(cfg.Contracts.Tag))
}

type violationsOut struct {
	fx.Out

	Reader   api.ViolationReader
	Observer response.ViolationObserver
	Health   map[string]api.Pinger
}

// newViolations connects to Redis and starts the recorder when violation
// recording is enabled. Otherwise every output is empty.
func newViolations(cfg *config.Config, log logger.Logger, m *metrics.Metrics, lc fx.Lifecycle) (violationsOut, error) {
	out := violationsOut{Health: map[string]api.Pinger{}}
	if !cfg.Violations.Enabled {
		log.Info("violation recording disabled", nil)
		return out, nil
	}

	client := database.NewRedis(cfg.Database.Redis)
	err := retryWithBackoff(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return client.Ping(ctx)
	}, 5, 500*time.Millisecond, log, "Redis connection")
	if err != nil {
		client.Close()
		return out, err
	}

	store := violations.NewStore(client.Client, cfg.Violations.MaxPerHandler, time.Duration(cfg.Violations.TTL)*time.Second)
	recorder := violations.NewRecorder(store, cfg.Violations.BufferSize, log, m)

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			closeErr := recorder.Close(ctx)
			return errors.Join(closeErr, client.Close())
		},
	})

	out.Reader = store
	out.Observer = recorder
	out.Health["redis"] = client
	return out, nil
}

type builderParams struct {
	fx.In

	Config    *config.Config
	Contracts *contract.Registry
	Logger    logger.Logger
	Metrics   *metrics.Metrics
	Obs       *observability.Observability
	Observer  response.ViolationObserver
}

func newBuilder(p builderParams) *response.Builder {
	opts := []response.Option{
		response.WithEnabled(p.Config.Contracts.Enabled),
		response.WithMetrics(p.Metrics),
		response.WithObservability(p.Obs),
	}
	if p.Observer != nil {
		opts = append(opts, response.WithObserver(p.Observer))
	}
	return response.NewBuilder(response.NewJSONProtocol(), p.Contracts, p.Logger, opts...)
}

type serverParams struct {
	fx.In

	Config     *config.Config
	Logger     logger.Logger
	Metrics    *metrics.Metrics
	Contracts  *contract.Registry
	Responder  *respond.Responder
	Issues     *v1.Handler
	Debug      *api.DebugHandler
	HealthDeps map[string]api.Pinger
}

func newServer(p serverParams) *api.Server {
	return api.NewServer(api.Deps{
		Config:     p.Config,
		Logger:     p.Logger,
		Metrics:    p.Metrics,
		Contracts:  p.Contracts,
		Responder:  p.Responder,
		Issues:     p.Issues,
		Debug:      p.Debug,
		HealthDeps: p.HealthDeps,
	})
}

// loadRegistry applies the registry document, if configured, and keeps it in
// sync when watching is enabled. A missing document is not fatal.
func loadRegistry(cfg *config.Config, contracts *contract.Registry, m *metrics.Metrics, log logger.Logger, lc fx.Lifecycle) error {
	path := cfg.Contracts.RegistryPath
	if path == "" {
		return nil
	}

	reg, err := registry.LoadRegistry(path)
	switch {
	case err == nil:
		if err := applyRegistry(reg, contracts, m, log); err != nil {
			return err
		}
	case isRegistryNotFound(err):
		log.Warn("contract registry not found, using route docs only", map[string]interface{}{"path": path})
	default:
		return err
	}

	if !cfg.Contracts.WatchRegistry {
		return nil
	}

	var watcher *registry.Watcher
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			w, err := registry.Watch(context.Background(), path, log, func(reg *registry.ContractRegistry, err error) {
				if err != nil {
					m.RecordRegistryReload(false)
					return
				}
				if err := applyRegistry(reg, contracts, m, log); err != nil {
					m.RecordRegistryReload(false)
					log.WithError(err).Warn("registry reload rejected", nil)
					return
				}
				m.RecordRegistryReload(true)
			})
			if err != nil {
				return fmt.Errorf("watch registry: %w", err)
			}
			watcher = w
			return nil
		},
		OnStop: func(context.Context) error {
			if watcher != nil {
				watcher.Stop()
			}
			return nil
		},
	})
	return nil
}

func applyRegistry(reg *registry.ContractRegistry, contracts *contract.Registry, m *metrics.Metrics, log logger.Logger) error {
	literals, err := reg.Literals()
	if err != nil {
		return err
	}
	usable := contracts.ReplaceOverrides(literals)
	m.SetContractsDeclared(contracts.Len())

	log.Info("contract registry applied", map[string]interface{}{
		"version":   reg.Version,
		"entries":   len(literals),
		"usable":    usable,
		"effective": contracts.Len(),
	})
	return nil
}

func isRegistryNotFound(err error) bool {
	var stdErr *apperrors.StandardError
	return errors.As(err, &stdErr) && stdErr.Code == apperrors.ErrCodeRegistryNotFound
}

func startServer(srv *api.Server, lc fx.Lifecycle) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			srv.Start()
			return nil
		},
		OnStop: srv.Shutdown,
	})
}

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log logger.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName), map[string]interface{}{
				"error":       err.Error(),
				"attempt":     i + 1,
				"maxRetries":  maxRetries,
				"nextRetryIn": delay.String(),
			})
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}
