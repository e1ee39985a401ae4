package root

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ShawrmaM8/Tracktion/internal/storage"
	"github.com/ShawrmaM8/Tracktion/internal/ui"
)

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the goal hierarchy (tree view)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, _, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			visions, err := svc.GoalRepo().ListVisions(ctx)
			if err != nil {
				return err
			}
			priorities, err := svc.GoalRepo().ListPriorities(ctx)
			if err != nil {
				return err
			}
			projects, err := svc.GoalRepo().ListProjects(ctx)
			if err != nil {
				return err
			}

			if len(visions) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("(empty; start with `trk add vision`)"))
				return nil
			}

			prioritiesByVision := map[string][]storage.Priority{}
			for _, p := range priorities {
				prioritiesByVision[p.VisionID] = append(prioritiesByVision[p.VisionID], p)
			}
			projectsByPriority := map[string][]storage.Project{}
			for _, p := range projects {
				projectsByPriority[p.PriorityID] = append(projectsByPriority[p.PriorityID], p)
			}

			out := cmd.OutOrStdout()
			for _, v := range visions {
				fmt.Fprintf(out, "%s %s %s\n", ui.IconTarget, ui.Title.Render(v.Title),
					ui.Muted.Render(fmt.Sprintf("(%dy, %s)", v.HorizonYears, v.ID)))
				for _, pr := range prioritiesByVision[v.ID] {
					fmt.Fprintf(out, "  %s %s %s\n", ui.IconFlag, ui.H2.Render(pr.Title),
						ui.Muted.Render(fmt.Sprintf("(w=%.2f, %s)", pr.Weight, pr.ID)))
					for _, proj := range projectsByPriority[pr.ID] {
						fmt.Fprintf(out, "    %s %s %s\n", ui.IconBolt, proj.Title,
							ui.Muted.Render(fmt.Sprintf("[%s] (%s)", proj.Category, proj.ID)))
						for _, m := range proj.Milestones {
							target := ""
							if m.TargetDate != nil {
								target = " due " + time.UnixMilli(*m.TargetDate).Format("2006-01-02")
							}
							fmt.Fprintf(out, "      %s %s%s %s\n", ui.IconCal, m.Title,
								ui.Warn.Render(target), ui.Muted.Render("("+m.ID+")"))
							for _, t := range m.Tasks {
								mark := " "
								if t.CompletedAt != nil {
									mark = ui.IconDone
								}
								est := ""
								if t.EstimateMinutes != nil {
									est = fmt.Sprintf(", %d min", *t.EstimateMinutes)
								}
								fmt.Fprintf(out, "        %s %s %s\n", mark, t.Title,
									ui.Muted.Render(fmt.Sprintf("(%s%s)", t.ID, est)))
							}
						}
					}
				}
			}
			return nil
		},
	}

	return cmd
}
