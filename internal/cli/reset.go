package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/salescoach/coach/internal/app/gamification"
)

func init() {
	resetCmd.Flags().BoolVarP(&resetYes, "yes", "y", false, "Skip the confirmation prompt")
	rootCmd.AddCommand(resetCmd)
}

var resetYes bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Erase all XP, streak, badges and history for a profile",
	Args:  cobra.NoArgs,
	RunE:  runReset,
}

func runReset(cmd *cobra.Command, args []string) error {
	return withProfile(cmd, func(ctx context.Context, profile string, svc *gamification.Service) error {
		if !resetYes && !confirm(cmd, fmt.Sprintf("Reset all progress for profile %q?", profile)) {
			fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
			return nil
		}
		if err := svc.Reset(ctx); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Profile %q reset.\n", profile)
		return nil
	})
}
