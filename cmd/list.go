/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"koubei/internal/bootstrap"
	"koubei/internal/bootstrap/logging"
	"koubei/internal/errs"
	"koubei/internal/usecase/wall"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List testimonials from the gateway",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, wallSvc *wall.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		format, _ := cmd.Flags().GetString("format")

		rows, err := wallSvc.Fetch(ctx)
		if err != nil {
			return errs.Wrap(err, "fetch testimonials")
		}

		out := cmd.OutOrStdout()
		switch strings.ToLower(strings.TrimSpace(format)) {
		case "", "table":
			if len(rows) == 0 {
				_, err = fmt.Fprintln(out, "no testimonials")
				return err
			}
			for _, row := range rows {
				if _, err := fmt.Fprintf(out, "%-36s %d★ %-20s %-20s %s\n",
					row.ID, row.Rating, row.Name, row.Organization, row.Text); err != nil {
					return errs.Wrap(err, "write list output")
				}
			}
			return nil
		case "yaml":
			encoded, err := yaml.Marshal(rows)
			if err != nil {
				return errs.Wrap(err, "encode testimonials as yaml")
			}
			if _, err := out.Write(encoded); err != nil {
				return errs.Wrap(err, "write list output")
			}
			return nil
		default:
			return fmt.Errorf("unsupported format %q (table|yaml)", format)
		}
	}),
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().String("format", "table", "Output format (table|yaml)")
}
