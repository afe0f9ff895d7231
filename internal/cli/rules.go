package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/salescoach/coach/internal/daemon"
	"github.com/salescoach/coach/internal/domain"
)

func init() {
	rootCmd.AddCommand(rulesCmd)
}

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Show the XP reward table",
	Args:  cobra.NoArgs,
	RunE:  runRules,
}

func runRules(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	rules := d.Registry.Rules()
	w := newTable(cmd.OutOrStdout())
	fmt.Fprintln(w, "TYPE\tXP\tLABEL\tDESCRIPTION")
	for _, t := range domain.EventTypes() {
		r := rules[t]
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", t, r.XP, r.Label, r.Description)
	}
	return w.Flush()
}
