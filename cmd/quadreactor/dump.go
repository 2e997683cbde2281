package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/quadreactor/engine/qstore"
)

var dumpLoadPath string

var dumpCmd = &cobra.Command{
	Use:   "dump <output-file>",
	Short: "Re-normalize a quad file and write it back out",
	Long: `dump reads quads from --load (or stdin if --load is omitted) and
writes them back out deduped and renumbered, in the same
whitespace-separated quad-template format "load" reads. Grounded on
cmd/cayleyexport (teacher): export is just import followed by a
different serialization target, since this store keeps no on-disk
representation of its own (spec.md §1 Non-goals).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var in *os.File
		if dumpLoadPath == "" {
			in = os.Stdin
		} else {
			f, err := os.Open(dumpLoadPath)
			if err != nil {
				return err
			}
			defer f.Close()
			in = f
		}

		log := qstore.NewLog()
		if _, err := log.Load(in); err != nil {
			return fmt.Errorf("dump: reading input: %w", err)
		}

		out, err := os.Create(args[0])
		if err != nil {
			return err
		}
		defer out.Close()
		if err := log.Dump(out); err != nil {
			return fmt.Errorf("dump: writing output: %w", err)
		}
		fmt.Printf("wrote %d quad(s) to %s\n", len(log.All()), args[0])
		return nil
	},
}

func init() {
	dumpCmd.Flags().StringVar(&dumpLoadPath, "load", "", "input quad file (default: stdin)")
}
