package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Describe how to bring up a fresh store",
	Long: `quadreactor keeps no on-disk database to initialize (spec.md §1
Non-goals: no durability) -- "init" is a no-op kept for familiarity with
the teacher's command set. A fresh store is simply what "repl" and
"http" start with; use --load on either to seed it from a dump file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("nothing to initialize: quadreactor is in-memory only, see --load on repl/http")
		return nil
	},
}
