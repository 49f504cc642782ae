package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// WaitForShutdown blocks until a shutdown signal arrives or ctx ends, then
// closes the application within timeout.
func (app *App) WaitForShutdown(ctx context.Context, timeout time.Duration) error {
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(interrupt)

	app.Logger.Info("Waiting for shutdown signal")
	select {
	case <-interrupt:
		app.Logger.Info("Shutdown signal received")
	case <-ctx.Done():
		app.Logger.Info("Application context canceled")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return app.Close(shutdownCtx)
}
