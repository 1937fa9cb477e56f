// Package summary handles the summary command.
package summary

import (
	"os"

	"fjacquet/ledger-import/cmd/root"
	"fjacquet/ledger-import/internal/report"

	"github.com/spf13/cobra"
)

// Cmd represents the summary command.
var Cmd = &cobra.Command{
	Use:   "summary",
	Short: "Show aggregate totals per account and account type",
	Run:   summaryFunc,
}

func summaryFunc(cmd *cobra.Command, args []string) {
	store := root.OpenStore()
	defer func() {
		if err := store.Close(); err != nil {
			root.Log.Warnf("Error closing database: %v", err)
		}
	}()

	ctx := cmd.Context()
	accounts, err := store.Summaries(ctx)
	if err != nil {
		root.Log.Fatalf("Error computing summaries: %v", err)
	}
	totals, err := store.TypeTotals(ctx)
	if err != nil {
		root.Log.Fatalf("Error computing type totals: %v", err)
	}

	if len(accounts) == 0 {
		root.Log.Info("No accounts stored yet; run an import first")
		return
	}
	report.RenderSummaries(os.Stdout, accounts, totals)
}
