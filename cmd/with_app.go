package cmd

import (
	"context"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"koubei/internal/bootstrap"
	"koubei/internal/bootstrap/logging"
	"koubei/internal/errs"
	"koubei/internal/infrastructure/httpapi"
	"koubei/internal/usecase/wall"
)

func withApp(run func(cmd *cobra.Command, app *bootstrap.App, wallSvc *wall.Service) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		var app *bootstrap.App
		var wallSvc *wall.Service
		return runWithFx(cmd, fx.Populate(&app, &wallSvc), func() error {
			return run(cmd, app, wallSvc)
		})
	}
}

func withServer(run func(cmd *cobra.Command, app *bootstrap.App, server *httpapi.Server, broadcaster *httpapi.Broadcaster) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		var app *bootstrap.App
		var server *httpapi.Server
		var broadcaster *httpapi.Broadcaster
		return runWithFx(cmd, fx.Populate(&app, &server, &broadcaster), func() error {
			return run(cmd, app, server, broadcaster)
		})
	}
}

func runWithFx(cmd *cobra.Command, populate fx.Option, run func() error) error {
	ctx := logging.WithAttrs(
		cmd.Context(),
		slog.String("command", cmd.CommandPath()),
		slog.String("config_file", cfgFile),
	)

	fxApp := fx.New(
		bootstrap.Module,
		fx.Provide(func() context.Context { return ctx }),
		fx.Provide(
			fx.Annotate(
				func() string { return cfgFile },
				fx.ResultTags(`name:"configFile"`),
			),
		),
		populate,
	)

	startCtx, cancelStart := context.WithTimeout(ctx, 10*time.Second)
	defer cancelStart()
	if err := fxApp.Start(startCtx); err != nil {
		logging.Error(ctx, "bootstrap application failed", slog.Any("err", errs.Loggable(err)))
		return errs.Wrap(err, "start fx application")
	}

	defer func() {
		stopCtx, cancelStop := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancelStop()
		if err := fxApp.Stop(stopCtx); err != nil {
			logging.Error(ctx, "fx application stop failed", slog.Any("err", errs.Loggable(err)))
		}
	}()

	if err := run(); err != nil {
		return errs.Wrap(err, "run command")
	}
	return nil
}
