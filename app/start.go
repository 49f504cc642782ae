package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/Black-And-White-Club/frolf-bot-shared/observability/attr"
)

// Start runs the HTTP server, the message router and the evaluation module.
// It returns once the router is running.
func (app *App) Start(ctx context.Context) error {
	app.wg.Add(1)
	go app.EvaluationModule.Run(ctx, &app.wg)

	go func() {
		app.Logger.Info("Starting HTTP server", attr.String("address", app.httpServer.Addr))
		if err := app.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.Logger.Error("HTTP server stopped", attr.Error(err))
		}
	}()

	routerErr := make(chan error, 1)
	go func() {
		routerErr <- app.Router.Run(ctx)
	}()

	select {
	case <-app.Router.Running():
		app.Logger.Info("Message router running")
		return nil
	case err := <-routerErr:
		return fmt.Errorf("message router stopped: %w", err)
	case <-ctx.Done():
		return ctx.Err()
	}
}
