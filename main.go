package main

import (
	"fmt"
	"os"

	"fjacquet/ledger-import/cmd/importer"
	"fjacquet/ledger-import/cmd/initialize"
	"fjacquet/ledger-import/cmd/list"
	"fjacquet/ledger-import/cmd/root"
	"fjacquet/ledger-import/cmd/summary"
)

func init() {
	root.Init()

	root.Cmd.AddCommand(initialize.Cmd)
	root.Cmd.AddCommand(importer.Cmd)
	root.Cmd.AddCommand(summary.Cmd)
	root.Cmd.AddCommand(list.Cmd)
}

func main() {
	if err := root.Cmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
