package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/quadreactor/engine/qstore"
)

var loadCmd = &cobra.Command{
	Use:   "load <file>",
	Short: "Bulk-load a dump file into a freshly printed summary",
	Long: `load reads a quad dump file (see "dump") and reports how many
quads it contains once re-appended through the ordinary dedup path.
Since the store is in-memory only (spec.md §1 Non-goals: no
durability), there is nothing further to persist the load into; this
command exists to validate a dump file before handing it to "repl" or
"http" via --load.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		log := qstore.NewLog()
		n, err := log.Load(f)
		if err != nil {
			return fmt.Errorf("load: %w", err)
		}
		fmt.Printf("loaded %d quad(s), %d distinct after dedup\n", n, len(log.All()))
		return nil
	},
}
