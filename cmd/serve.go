/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"koubei/internal/bootstrap"
	"koubei/internal/bootstrap/logging"
	"koubei/internal/errs"
	"koubei/internal/infrastructure/httpapi"
)

// serveCmd starts the reference gateway: REST rows plus the WebSocket insert feed.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the testimonial gateway (REST + realtime feed)",
	RunE: withServer(func(cmd *cobra.Command, app *bootstrap.App, server *httpapi.Server, broadcaster *httpapi.Broadcaster) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		ctx = logging.WithAttrs(ctx, slog.String("command", cmd.CommandPath()))

		if err := app.InitSchema(ctx); err != nil {
			return errs.Wrap(err, "initialize schema")
		}

		httpServer := &http.Server{
			Addr:    app.Config.Server.Addr,
			Handler: server.Router(),
		}

		go broadcaster.Run(ctx)

		serveErr := make(chan error, 1)
		go func() {
			serveErr <- httpServer.ListenAndServe()
		}()

		logging.Info(ctx, "gateway listening",
			slog.String("addr", app.Config.Server.Addr),
			slog.String("table", app.Config.Gateway.Table),
		)
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "gateway listening on %s\n", app.Config.Server.Addr); err != nil {
			return errs.Wrap(err, "write serve output")
		}

		select {
		case err := <-serveErr:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return errs.Wrap(err, "serve http")
			}
			return nil
		case <-ctx.Done():
		}

		logging.Info(ctx, "gateway shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return errs.Wrap(err, "shutdown http server")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
