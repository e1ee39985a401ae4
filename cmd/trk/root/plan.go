package root

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ShawrmaM8/Tracktion/internal/ui"
)

func newPlanCmd() *cobra.Command {
	var date string
	var minutes int
	var maxTasks int

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Generate today's plan from the goal hierarchy",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cfg, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			if date == "" {
				date = time.Now().Format("2006-01-02")
			}
			if minutes <= 0 {
				minutes = cfg.DailyMinutes
			}
			if maxTasks <= 0 {
				maxTasks = cfg.MaxPlanTasks
			}

			plan, err := svc.PlanDay(ctx, date, minutes, maxTasks)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), ui.Heading(ui.IconCal, "Plan for "+plan.Date))
			if len(plan.Tasks) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("(nothing to plan; add tasks first)"))
				return nil
			}

			total := 0
			for i, entry := range plan.Tasks {
				title := entry.TaskID
				if t, err := svc.GoalRepo().GetTask(ctx, entry.TaskID); err == nil && t != nil {
					title = t.Title
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%2d. %s %s\n", i+1, title,
					ui.Muted.Render(fmt.Sprintf("(%d min, %s)", entry.PlannedMinutes, entry.TaskID)))
				total += entry.PlannedMinutes
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("Planned", fmt.Sprintf("%d min of %d", total, minutes)))
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Plan date (YYYY-MM-DD, default today)")
	cmd.Flags().IntVarP(&minutes, "minutes", "m", 0, "Daily minute budget (default from config)")
	cmd.Flags().IntVar(&maxTasks, "max", 0, "Maximum tasks in the plan (default from config)")
	return cmd
}
