/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"koubei/internal/bootstrap"
	"koubei/internal/bootstrap/logging"
	"koubei/internal/errs"
	"koubei/internal/usecase/wall"
)

// seedCmd represents the seed command
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Submit testimonials from a TOML seed file",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, wallSvc *wall.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		file, _ := cmd.Flags().GetString("file")
		count, err := wallSvc.Seed(ctx, file)
		if err != nil {
			return errs.Wrapf(err, "seed from %s (inserted %d)", file, count)
		}

		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "seeded %d testimonials from %s\n", count, file); err != nil {
			return errs.Wrap(err, "write seed output")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(seedCmd)
	seedCmd.Flags().String("file", "seed.toml", "Path to the TOML seed file")
}
