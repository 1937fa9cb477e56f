// Package list handles the list command.
package list

import (
	"os"

	"fjacquet/ledger-import/cmd/root"
	"fjacquet/ledger-import/internal/report"

	"github.com/spf13/cobra"
)

var limit int

// Cmd represents the list command.
var Cmd = &cobra.Command{
	Use:   "list",
	Short: "List recently stored transactions",
	Run:   listFunc,
}

func init() {
	Cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of transactions to show")
}

func listFunc(cmd *cobra.Command, args []string) {
	store := root.OpenStore()
	defer func() {
		if err := store.Close(); err != nil {
			root.Log.Warnf("Error closing database: %v", err)
		}
	}()

	txs, err := store.ListTransactions(cmd.Context(), limit)
	if err != nil {
		root.Log.Fatalf("Error listing transactions: %v", err)
	}
	if len(txs) == 0 {
		root.Log.Info("No transactions stored yet; run an import first")
		return
	}
	report.RenderTransactions(os.Stdout, txs)
}
