package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/quadreactor/engine/atom"
	"github.com/quadreactor/engine/internal/engineconfig"
	"github.com/quadreactor/engine/pattern"
	"github.com/quadreactor/engine/quad"
)

var watchLoadPath string

var watchCmd = &cobra.Command{
	Use:   "watch <pattern-file>",
	Short: "Install a watcher from a pattern file and print completions as they arrive",
	Long: `watch seeds a Store (optionally via --load), installs the given
pattern as a watcher, then blocks reading further quad-template lines
from stdin, appending each one and printing any resulting completion
as a JSON object until EOF or interrupt.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := readPatternFileAt(args[0])
		if err != nil {
			return err
		}
		s, err := buildStore(engineconfig.Default(), watchLoadPath)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		s.Watch(p, func(b pattern.Binding, _ []quad.Quad) {
			m := make(map[string]string)
			b.ForEach(func(name string, v atom.Value) { m[name] = v.String() })
			_ = enc.Encode(m)
		})

		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, os.Interrupt)

		lines := make(chan string)
		go func() {
			defer close(lines)
			sc := bufio.NewScanner(os.Stdin)
			for sc.Scan() {
				lines <- sc.Text()
			}
		}()

		for {
			select {
			case <-sigc:
				return nil
			case line, ok := <-lines:
				if !ok {
					return nil
				}
				if line == "" {
					continue
				}
				tpl, err := quad.ParseTemplateString(line)
				if err != nil {
					fmt.Fprintln(os.Stderr, "skipping unparseable line:", err)
					continue
				}
				if _, err := s.Append(tpl.Source, tpl.Attribute, tpl.Target, tpl.Context); err != nil {
					fmt.Fprintln(os.Stderr, "append failed:", err)
				}
			}
		}
	},
}

func init() {
	watchCmd.Flags().StringVar(&watchLoadPath, "load", "", "dump file to seed the store from before watching")
}
