package cmd

import (
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"koubei/internal/bootstrap"
	"koubei/internal/bootstrap/logging"
	"koubei/internal/errs"
	"koubei/internal/usecase/wall"
	"koubei/internal/usecase/wallconsole"
)

var consoleWallCmd = &cobra.Command{
	Use:   "wall",
	Short: "Start the testimonial wall console (form + carousel)",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, wallSvc *wall.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		visible, _ := cmd.Flags().GetInt("visible")

		model := wallconsole.NewWallModel(ctx, wallSvc, wallconsole.WallOptions{
			VisibleCards: visible,
		})

		program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
		if _, err := program.Run(); err != nil {
			return errs.Wrap(err, "run wall console")
		}
		return nil
	}),
}

func init() {
	consoleCmd.AddCommand(consoleWallCmd)
	consoleWallCmd.Flags().Int("visible", 3, "Number of cards visible at once")
}
