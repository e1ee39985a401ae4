package root

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/ShawrmaM8/Tracktion/internal/tui"
)

func newBoardCmd() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "board",
		Short: "Open the interactive view of today's plan",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, _, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			if date == "" {
				date = time.Now().Format("2006-01-02")
			}
			return tui.RunBoard(ctx, svc, date, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Plan date (YYYY-MM-DD, default today)")
	return cmd
}
