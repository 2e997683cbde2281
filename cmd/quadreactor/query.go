package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/quadreactor/engine/atom"
	"github.com/quadreactor/engine/engine"
	"github.com/quadreactor/engine/internal/engineconfig"
	"github.com/quadreactor/engine/pattern"
)

var (
	queryLoadPath    string
	queryPatternPath string
)

var queryCmd = &cobra.Command{
	Use:   "query <pattern-file>",
	Short: "Evaluate a pattern once against a seeded store and print the bindings as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := readPatternFileAt(args[0])
		if err != nil {
			return err
		}
		s, err := buildStore(engineconfig.Default(), queryLoadPath)
		if err != nil {
			return err
		}
		return printBindingsJSON(s, p)
	},
}

func init() {
	queryCmd.Flags().StringVar(&queryLoadPath, "load", "", "dump file to seed the store from before querying")
}

func readPatternFileAt(path string) (*pattern.Pattern, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readPatternFile(f)
}

func printBindingsJSON(s *engine.Store, p *pattern.Pattern) error {
	bindings := s.Query(p)
	out := make([]map[string]string, 0, len(bindings))
	for _, b := range bindings {
		m := make(map[string]string)
		b.ForEach(func(name string, v atom.Value) { m[name] = v.String() })
		out = append(out, m)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
