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

func newAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a vision, priority, project, milestone or task",
	}

	cmd.AddCommand(
		newAddVisionCmd(),
		newAddPriorityCmd(),
		newAddProjectCmd(),
		newAddMilestoneCmd(),
		newAddTaskCmd(),
	)
	return cmd
}

func requireTitle(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return errors.New("title is required")
	}
	return nil
}

func printCreated(cmd *cobra.Command, kind, id, title string) {
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s %s\n",
		ui.Good.Render(ui.IconPlus+" Added"), kind, ui.Key.Render(title), ui.Muted.Render(id))
}

func newAddVisionCmd() *cobra.Command {
	var horizon int
	var desc string

	cmd := &cobra.Command{
		Use:   "vision <title>",
		Short: "Add a long-horizon vision",
		Args:  requireTitle,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, _, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			var d *string
			if desc != "" {
				d = &desc
			}
			v, err := svc.CreateVision(ctx, engine.CreateVisionInput{
				Title:        args[0],
				Description:  d,
				HorizonYears: horizon,
			})
			if err != nil {
				return err
			}
			printCreated(cmd, "vision", v.ID, v.Title)
			return nil
		},
	}

	cmd.Flags().IntVar(&horizon, "horizon", 1, "Horizon in years")
	cmd.Flags().StringVar(&desc, "desc", "", "Description")
	return cmd
}

func newAddPriorityCmd() *cobra.Command {
	var visionID string
	var weight float64

	cmd := &cobra.Command{
		Use:   "priority <title>",
		Short: "Add a priority under a vision",
		Args:  requireTitle,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, _, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			p, err := svc.CreatePriority(ctx, engine.CreatePriorityInput{
				VisionID: visionID,
				Title:    args[0],
				Weight:   weight,
			})
			if err != nil {
				return err
			}
			printCreated(cmd, "priority", p.ID, p.Title)
			return nil
		},
	}

	cmd.Flags().StringVar(&visionID, "vision", "", "Parent vision id")
	cmd.Flags().Float64VarP(&weight, "weight", "w", 0.5, "Scheduling weight in [0,1]")
	_ = cmd.MarkFlagRequired("vision")
	return cmd
}

func newAddProjectCmd() *cobra.Command {
	var priorityID string
	var category string
	var desc string

	cmd := &cobra.Command{
		Use:   "project <title>",
		Short: "Add a project under a priority",
		Args:  requireTitle,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, _, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			var d *string
			if desc != "" {
				d = &desc
			}
			p, err := svc.CreateProject(ctx, engine.CreateProjectInput{
				PriorityID:  priorityID,
				Title:       args[0],
				Category:    category,
				Description: d,
			})
			if err != nil {
				return err
			}
			printCreated(cmd, "project", p.ID, p.Title)
			return nil
		},
	}

	cmd.Flags().StringVar(&priorityID, "priority", "", "Parent priority id")
	cmd.Flags().StringVarP(&category, "category", "c", "other", "Category (code|language|fitness|career|personal|other)")
	cmd.Flags().StringVar(&desc, "desc", "", "Description")
	_ = cmd.MarkFlagRequired("priority")
	return cmd
}

func newAddMilestoneCmd() *cobra.Command {
	var projectID string
	var target string
	var position int

	cmd := &cobra.Command{
		Use:   "milestone <title>",
		Short: "Add a milestone under a project",
		Args:  requireTitle,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, _, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			var targetMillis *int64
			if target != "" {
				t, err := time.ParseInLocation("2006-01-02", target, time.Local)
				if err != nil {
					return fmt.Errorf("invalid --target (want YYYY-MM-DD): %w", err)
				}
				ms := t.UnixMilli()
				targetMillis = &ms
			}
			m, err := svc.CreateMilestone(ctx, engine.CreateMilestoneInput{
				ProjectID:  projectID,
				Title:      args[0],
				TargetDate: targetMillis,
				Position:   position,
			})
			if err != nil {
				return err
			}
			printCreated(cmd, "milestone", m.ID, m.Title)
			return nil
		},
	}

	cmd.Flags().StringVar(&projectID, "project", "", "Parent project id")
	cmd.Flags().StringVar(&target, "target", "", "Target date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&position, "pos", 0, "Ordering position")
	_ = cmd.MarkFlagRequired("project")
	return cmd
}

func newAddTaskCmd() *cobra.Command {
	var milestoneID string
	var estimate int
	var position int

	cmd := &cobra.Command{
		Use:   "task <title>",
		Short: "Add a task under a milestone",
		Args:  requireTitle,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, _, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			var est *int
			if cmd.Flags().Changed("estimate") {
				est = &estimate
			}
			t, err := svc.CreateTask(ctx, engine.CreateTaskInput{
				MilestoneID:     milestoneID,
				Title:           args[0],
				EstimateMinutes: est,
				Position:        position,
			})
			if err != nil {
				return err
			}
			printCreated(cmd, "task", t.ID, t.Title)
			return nil
		},
	}

	cmd.Flags().StringVar(&milestoneID, "milestone", "", "Parent milestone id")
	cmd.Flags().IntVarP(&estimate, "estimate", "e", 30, "Estimated minutes")
	cmd.Flags().IntVar(&position, "pos", 0, "Ordering position")
	_ = cmd.MarkFlagRequired("milestone")
	return cmd
}
