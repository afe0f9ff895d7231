package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/salescoach/coach/internal/app/gamification"
	"github.com/salescoach/coach/internal/domain"
)

func init() {
	rootCmd.AddCommand(awardCmd)
}

var awardCmd = &cobra.Command{
	Use:   "award TYPE [DESCRIPTION]",
	Short: "Award XP for a sales activity",
	Long: `Record one gameplay event and print what it earned.

TYPE is one of: ` + eventTypeList() + `.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runAward,
}

func runAward(cmd *cobra.Command, args []string) error {
	eventType := domain.XPEventType(args[0])
	if !eventType.Valid() {
		return fmt.Errorf("%w %q (want one of: %s)", domain.ErrUnknownEventType, args[0], eventTypeList())
	}
	var description string
	if len(args) > 1 {
		description = args[1]
	}

	return withProfile(cmd, func(ctx context.Context, profile string, svc *gamification.Service) error {
		res, err := svc.AwardXP(ctx, eventType, description)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "+%d XP  %s", res.XPAwarded, eventType)
		if description != "" {
			fmt.Fprintf(out, ": %s", description)
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out, renderLevel(svc.LevelInfo()))

		if res.LeveledUp {
			fmt.Fprintf(out, "Level up! You reached level %d\n", svc.State().Level)
		}
		for _, b := range res.NewBadges {
			fmt.Fprintf(out, "Badge unlocked: %s (%s)\n", b.Name, b.Description)
		}
		if c := res.Celebration; c != nil && c.Type == domain.CelebrateStreakMilestone {
			fmt.Fprintf(out, "%s %s\n", c.Title, c.Message)
		}
		return nil
	})
}

func eventTypeList() string {
	types := domain.EventTypes()
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}
