/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"koubei/internal/bootstrap"
	"koubei/internal/bootstrap/logging"
	"koubei/internal/domain/testimonial"
	"koubei/internal/errs"
	"koubei/internal/usecase/wall"
)

// followCmd tails the live insert feed and prints each row until interrupted.
var followCmd = &cobra.Command{
	Use:   "follow",
	Short: "Follow the live testimonial feed",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, wallSvc *wall.Service) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		ctx = logging.WithAttrs(ctx, slog.String("command", cmd.CommandPath()))

		bridge := wall.NewBridge(wallSvc.Gateway())
		err := bridge.Start(ctx, func(row testimonial.Row) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d★ %s (%s): %s\n",
				row.CreatedAt, row.Rating, row.Name, row.Organization, row.Text)
		})
		if err != nil {
			return errs.Wrap(err, "start feed bridge")
		}

		logging.Info(ctx, "following testimonial feed")
		<-ctx.Done()
		bridge.Stop()
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(followCmd)
}
