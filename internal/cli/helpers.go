package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/salescoach/coach/internal/app/gamification"
	"github.com/salescoach/coach/internal/daemon"
)

// newLineScanner creates a line scanner from a reader.
func newLineScanner(r io.Reader) *bufio.Scanner {
	return bufio.NewScanner(r)
}

// newTable returns a tabwriter for aligned command output.
func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// withProfile opens the daemon's store, resolves the --profile service and
// runs fn with it.
func withProfile(cmd *cobra.Command, fn func(ctx context.Context, profile string, svc *gamification.Service) error) error {
	d, err := daemon.New()
	if err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	defer d.Close()

	profile := profileFlag
	if profile == "" {
		profile = d.Config.Profile.Default
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	svc, err := d.Profile(ctx, profile)
	if err != nil {
		return err
	}
	return fn(ctx, profile, svc)
}

// confirm asks a yes/no question on cmd's streams. Only "y" and "yes" accept.
func confirm(cmd *cobra.Command, question string) bool {
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N] ", question)
	sc := newLineScanner(cmd.InOrStdin())
	if !sc.Scan() {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(sc.Text())) {
	case "y", "yes":
		return true
	}
	return false
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
