package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/scc-digitalhub/custom-resource-manager/internal/api/server"
	"github.com/scc-digitalhub/custom-resource-manager/internal/app"
)

func main() {
	fxApp := fx.New(
		app.APIModule,
		fx.WithLogger(func(logger *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: logger.Named("fx")}
		}),
		fx.Invoke(startServer),
	)

	fxApp.Run()
}

func startServer(lc fx.Lifecycle, shutdowner fx.Shutdowner, srv *server.Server, logger *zap.Logger) {
	ctx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

			go func() {
				select {
				case <-sigChan:
					logger.Info("Received shutdown signal")
					cancel()
				case <-ctx.Done():
				}
			}()

			go func() {
				logger.Info("Starting Custom Resource Manager API")
				if err := srv.Start(ctx); err != nil {
					logger.Error("Server stopped with error", zap.Error(err))
					_ = shutdowner.Shutdown(fx.ExitCode(1))
					return
				}
				_ = shutdowner.Shutdown()
			}()
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
}
