package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ShawrmaM8/Tracktion/internal/engine"
	"github.com/ShawrmaM8/Tracktion/internal/ui"
)

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show level, streaks and achievements",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, _, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			report, err := svc.Status(ctx)
			if err != nil {
				return err
			}
			s := report.State

			fmt.Fprintln(cmd.OutOrStdout(), ui.Heading(ui.IconSparkle, "Progression"))
			fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("Level", s.Level))
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n",
				ui.Key.Render("Progress:"),
				ui.ProgressBar(report.Progress, 30),
				ui.Muted.Render(fmt.Sprintf("%d / %d XP", s.TotalXP, report.XPForNext)))
			fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("Streak", fmt.Sprintf("%s %d days (longest %d)", ui.IconFlame, s.StreakDays, s.LongestStreak)))
			fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("Recorded", fmt.Sprintf("%d min across %d completions", report.TotalMinutes, report.EventCount)))
			fmt.Fprintln(cmd.OutOrStdout(), "")

			fmt.Fprintln(cmd.OutOrStdout(), ui.H2.Render(ui.IconTrophy+" Achievements"))
			unlockedIDs := map[string]bool{}
			for _, a := range report.Achievements {
				if a.UnlockedAt == nil {
					continue
				}
				unlockedIDs[a.ID] = true
				fmt.Fprintf(cmd.OutOrStdout(), "- %s %s %s\n", ui.IconDone, ui.Good.Render(a.Title), ui.Muted.Render(a.Description))
			}
			for _, def := range engine.AchievementDefs() {
				if unlockedIDs[def.ID] {
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "- %s\n", ui.Muted.Render(def.Title+": "+def.Description))
			}
			return nil
		},
	}

	return cmd
}
