// Package initialize handles the init command.
package initialize

import (
	"fjacquet/ledger-import/cmd/root"

	"github.com/spf13/cobra"
)

// Cmd represents the init command.
var Cmd = &cobra.Command{
	Use:   "init",
	Short: "Create the ledger database and schema",
	Long: `Create the ledger database file and bring its schema up to date.
Safe to run repeatedly; an existing database is left untouched.`,
	Run: initFunc,
}

func initFunc(cmd *cobra.Command, args []string) {
	store := root.OpenStore()
	defer func() {
		if err := store.Close(); err != nil {
			root.Log.Warnf("Error closing database: %v", err)
		}
	}()

	root.Log.Infof("Database initialized: %s", store.Path())
}
