// cmd/server/main.go
package main

import (
	"response-guard/internal/api"
	"response-guard/internal/api/respond"
	v1 "response-guard/internal/api/v1"
	"response-guard/internal/common/config"
	"response-guard/internal/common/metrics"
	"response-guard/internal/common/validation"
	"response-guard/internal/service"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

func main() {
	fx.New(
		fx.Provide(
			config.Load,
			newZapLogger,
			newLogger,
			metrics.New,
			newObservability,
			newContracts,
			newViolations,
			newBuilder,
			respond.New,
			validation.New,
			service.NewIssueService,
			v1.NewHandler,
			api.NewDebugHandler,
			newServer,
		),
		fx.WithLogger(func(l *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: l.Named("fx")}
		}),
		fx.Invoke(loadRegistry, startServer),
	).Run()
}
