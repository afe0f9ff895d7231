package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/salescoach/coach/internal/app/gamification"
)

func init() {
	rootCmd.AddCommand(badgesCmd)
}

var badgesCmd = &cobra.Command{
	Use:   "badges",
	Short: "List badges and their progress",
	Args:  cobra.NoArgs,
	RunE:  runBadges,
}

func runBadges(cmd *cobra.Command, args []string) error {
	return withProfile(cmd, func(ctx context.Context, profile string, svc *gamification.Service) error {
		w := newTable(cmd.OutOrStdout())
		fmt.Fprintln(w, "BADGE\tNAME\tPROGRESS\tUNLOCKED\tDESCRIPTION")
		for _, b := range svc.State().Badges {
			unlocked := "-"
			if b.UnlockedAt != nil {
				unlocked = b.UnlockedAt.Local().Format("2006-01-02 15:04")
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				b.ID, b.Name, renderBadgeProgress(b), unlocked, b.Description)
		}
		return w.Flush()
	})
}
