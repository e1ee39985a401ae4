package root

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ShawrmaM8/Tracktion/internal/engine"
	"github.com/ShawrmaM8/Tracktion/internal/ui"
)

func newDoneCmd() *cobra.Command {
	var minutes int

	cmd := &cobra.Command{
		Use:   "done <task-id>",
		Short: "Complete a task and record the work",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("task id is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, _, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			taskID := args[0]
			mins := minutes
			if mins <= 0 {
				mins, err = resolveMinutes(ctx, svc, taskID)
				if err != nil {
					return err
				}
			}

			res, err := svc.CompleteTask(ctx, taskID, mins)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n",
				ui.Good.Render(ui.IconDone+" Done"),
				ui.Muted.Render(fmt.Sprintf("(%d min, +%d XP)", res.Minutes, res.XPAwarded)))
			fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("Level", fmt.Sprintf("%d → %d", res.LevelBefore, res.LevelAfter)))
			if res.LevelUp {
				fmt.Fprintln(cmd.OutOrStdout(), ui.BadgeLevelUp)
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("Streak", fmt.Sprintf("%s %d days (longest %d)", ui.IconFlame, res.StreakDays, res.LongestStreak)))
			for _, a := range res.NewlyUnlocked {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", ui.Gold.Render(ui.IconTrophy+" Unlocked"), a.Title, ui.Muted.Render(a.Description))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&minutes, "minutes", "m", 0, "Minutes worked (default: planned minutes, then estimate)")
	return cmd
}

// resolveMinutes falls back to today's planned minutes for the task,
// then to its estimate.
func resolveMinutes(ctx context.Context, svc *engine.Service, taskID string) (int, error) {
	today := time.Now().Format("2006-01-02")
	plan, err := svc.PlanRepo().Get(ctx, today)
	if err != nil {
		return 0, err
	}
	if plan != nil {
		for _, entry := range plan.Tasks {
			if entry.TaskID == taskID {
				return entry.PlannedMinutes, nil
			}
		}
	}

	task, err := svc.GoalRepo().GetTask(ctx, taskID)
	if err != nil {
		return 0, err
	}
	if task != nil && task.EstimateMinutes != nil && *task.EstimateMinutes > 0 {
		return *task.EstimateMinutes, nil
	}
	return 30, nil
}
