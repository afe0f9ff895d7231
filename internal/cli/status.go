package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/salescoach/coach/internal/app/gamification"
)

func init() {
	rootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show level, XP, streak and badge count",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	return withProfile(cmd, func(ctx context.Context, profile string, svc *gamification.Service) error {
		snap := svc.Snapshot()
		state := snap.State

		unlocked := 0
		for _, b := range state.Badges {
			if b.Unlocked() {
				unlocked++
			}
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Profile:  %s\n", profile)
		fmt.Fprintf(out, "%s\n", renderLevel(snap.LevelInfo))
		fmt.Fprintf(out, "Total XP: %d (%d to next level)\n", state.XP, gamification.XPToNextLevel(state.XP))
		if state.LastActivityDate != nil {
			fmt.Fprintf(out, "Streak:   %s (last active %s)\n",
				plural(state.StreakDays, "day"), state.LastActivityDate.Local().Format("2006-01-02"))
		} else {
			fmt.Fprintln(out, "Streak:   no activity yet")
		}
		fmt.Fprintf(out, "Badges:   %d/%d unlocked\n", unlocked, len(state.Badges))
		return nil
	})
}
