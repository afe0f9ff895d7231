package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/salescoach/coach/internal/daemon"
)

func init() {
	rootCmd.AddCommand(profilesCmd)
}

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List profiles with stored progress",
	Args:  cobra.NoArgs,
	RunE:  runProfiles,
}

func runProfiles(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	profiles, err := d.Registry.Profiles(ctx)
	if err != nil {
		return err
	}
	if len(profiles) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No profiles yet.")
		return nil
	}

	w := newTable(cmd.OutOrStdout())
	fmt.Fprintln(w, "PROFILE\tLEVEL\tXP\tSTREAK")
	for _, p := range profiles {
		svc, err := d.Registry.Get(ctx, p)
		if err != nil {
			continue
		}
		s := svc.State()
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\n", p, s.Level, s.XP, s.StreakDays)
	}
	return w.Flush()
}
