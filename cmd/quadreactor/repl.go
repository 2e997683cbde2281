package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/quadreactor/engine/internal/engineconfig"
	"github.com/quadreactor/engine/internal/replshell"
)

var replLoadPath string

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Drop into an interactive shell over a Store",
	Long: `repl brings up a Store, optionally seeded via --load, installs
the reified-rule activator, and hands control to internal/replshell
(":a" to append, ":q"/":w" to query/watch a pattern, ":watchers" to
list installed watchers).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := engineconfig.Default()
		if v := viper.GetInt("log_level"); v != 0 {
			cfg.LogLevel = v
		}
		s, err := buildStore(cfg, replLoadPath)
		if err != nil {
			return err
		}
		return replshell.Run(s)
	},
}

func init() {
	replCmd.Flags().StringVar(&replLoadPath, "load", "", "dump file to seed the store from before starting the shell")
}
