package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/urfave/cli/v2"
	"github.com/yair/eventfinder/pkg/interfaces"
	"go.uber.org/zap"
)

func (a *app) serveCmd() *cli.Command {
	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Run the HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "port", Usage: "overrides server.port"},
		},
		Action: func(c *cli.Context) error {
			if port := c.String("port"); port != "" {
				a.cfg.Server.Port = port
			}

			ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return a.serve(ctx)
		},
	}
}

// serve runs the API until ctx is done, then shuts the server down
// gracefully.
func (a *app) serve(ctx context.Context) error {
	a.logger.Info("starting eventfinder")

	catalog, err := a.catalog(true)
	if err != nil {
		return err
	}

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	service := interfaces.NewEventService(catalog)
	router := interfaces.NewRouter(a.logger.Named("http"),
		interfaces.NewEventHandler(service, a.logger),
		interfaces.NewSavedHandler(store, service, a.logger),
		interfaces.NewHealthHandler(store),
	)

	router.Walk(func(route *mux.Route, router *mux.Router, ancestors []*mux.Route) error {
		path, _ := route.GetPathTemplate()
		methods, _ := route.GetMethods()
		a.logger.Debug("route", zap.Strings("methods", methods), zap.String("path", path))
		return nil
	})

	srv := &http.Server{
		Addr:         ":" + a.cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	a.logger.Info("shutting down server")

	timeout := a.cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("server forced to shutdown", zap.Error(err))
		return err
	}

	a.logger.Info("server stopped")
	return nil
}
