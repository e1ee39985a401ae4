package root

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ShawrmaM8/Tracktion/internal/ui"
)

const Version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:           "trk",
	Short:         "Tracktion turns long-term goals into rankable daily tasks",
	Long:          "Tracktion is a local-first CLI planner that converts goals into daily plans and rewards consistent effort with XP, levels, streaks and achievements.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")

	rootCmd.AddCommand(
		newAddCmd(),
		newPlanCmd(),
		newDoneCmd(),
		newStatusCmd(),
		newListCmd(),
		newSnapshotCmd(),
		newBoardCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.Bad.Render(ui.IconError+" "+err.Error()))
		os.Exit(1)
	}
}
