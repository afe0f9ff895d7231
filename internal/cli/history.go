package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/salescoach/coach/internal/app/gamification"
	"github.com/salescoach/coach/internal/domain"
)

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of events to show (max 100)")
	rootCmd.AddCommand(historyCmd)
}

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent XP events, newest first",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func runHistory(cmd *cobra.Command, args []string) error {
	if historyLimit < 1 || historyLimit > domain.HistoryLimit {
		return fmt.Errorf("--limit must be between 1 and %d", domain.HistoryLimit)
	}
	return withProfile(cmd, func(ctx context.Context, profile string, svc *gamification.Service) error {
		history := svc.State().History
		if len(history) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No activity yet. Run 'coach award <type>' to get started.")
			return nil
		}
		if len(history) > historyLimit {
			history = history[:historyLimit]
		}

		w := newTable(cmd.OutOrStdout())
		fmt.Fprintln(w, "WHEN\tTYPE\tXP\tDESCRIPTION")
		for _, e := range history {
			fmt.Fprintf(w, "%s\t%s\t+%d\t%s\n",
				e.Timestamp.Local().Format("2006-01-02 15:04"), e.Type, e.XP, e.Description)
		}
		return w.Flush()
	})
}
