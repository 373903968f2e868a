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
	"koubei/internal/domain/testimonial"
	"koubei/internal/errs"
	"koubei/internal/usecase/wall"
)

// submitCmd represents the submit command
var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit a single testimonial",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, wallSvc *wall.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		name, _ := cmd.Flags().GetString("name")
		organization, _ := cmd.Flags().GetString("organization")
		rating, _ := cmd.Flags().GetInt("rating")
		text, _ := cmd.Flags().GetString("text")

		row, err := wallSvc.Submit(ctx, testimonial.Draft{
			Name:         name,
			Organization: organization,
			Rating:       rating,
			Text:         text,
		})
		if err != nil {
			return errs.Wrap(err, "submit testimonial")
		}

		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "submitted %s (%s, %d star)\n", row.ID, row.Name, row.Rating); err != nil {
			return errs.Wrap(err, "write submit output")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(submitCmd)
	submitCmd.Flags().String("name", "", "Author name (required)")
	submitCmd.Flags().String("organization", "", "Author organization (required)")
	submitCmd.Flags().Int("rating", 0, "Rating 1-5 (required)")
	submitCmd.Flags().String("text", "", "Testimonial text (required)")
}
