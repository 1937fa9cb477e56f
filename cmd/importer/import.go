// Package importer handles the import command.
package importer

import (
	"fmt"

	"fjacquet/ledger-import/cmd/root"
	"fjacquet/ledger-import/internal/pipeline"

	"github.com/spf13/cobra"
)

var (
	inputFile    string
	inputDir     string
	formatName   string
	accountLabel string
)

// Cmd represents the import command.
var Cmd = &cobra.Command{
	Use:   "import",
	Short: "Import bank CSV files into the ledger",
	Long: `Import one CSV file, or every CSV file in a directory, into the
local ledger database. Rows that fail to parse are skipped and counted;
rows already stored are skipped as duplicates.`,
	Run: importFunc,
}

func init() {
	Cmd.Flags().StringVarP(&inputFile, "input", "i", "", "Input CSV file")
	Cmd.Flags().StringVarP(&inputDir, "dir", "d", "", "Input directory (defaults to the configured input dir)")
	Cmd.Flags().StringVarP(&formatName, "format", "f", "chase", "Bank export format")
	Cmd.Flags().StringVarP(&accountLabel, "account", "a", "", "Account label (derived from the file name when empty)")
}

func importFunc(cmd *cobra.Command, args []string) {
	store := root.OpenStore()
	defer func() {
		if err := store.Close(); err != nil {
			root.Log.Warnf("Error closing database: %v", err)
		}
	}()

	im := pipeline.New(store, root.NewRegistry(), root.Log)
	im.SetMoveProcessed(root.Cfg.Data.MoveProcessed)
	ctx := cmd.Context()

	if inputFile != "" {
		result, err := im.ImportFile(ctx, inputFile, formatName, accountLabel)
		if err != nil {
			root.Log.Fatalf("Error importing %s: %v", inputFile, err)
		}
		fmt.Println(result)
		return
	}

	dir := inputDir
	if dir == "" {
		dir = root.Cfg.Data.InputDir
	}

	results, err := im.ImportDir(ctx, dir, formatName)
	if err != nil {
		root.Log.Fatalf("Error importing directory %s: %v", dir, err)
	}

	var imported, duplicates, failed int
	for _, result := range results {
		fmt.Println(result)
		imported += result.Imported
		duplicates += result.Duplicates
		failed += result.Failed
	}
	if len(results) > 1 {
		fmt.Printf("total: %d imported, %d duplicates skipped, %d rows failed\n",
			imported, duplicates, failed)
	}
}
