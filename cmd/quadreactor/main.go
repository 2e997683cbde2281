// Command quadreactor is the engine's command-line entry point: it wires
// together qstore, the reactive engine, the reified-rule activator, the
// HTTP introspection surface, and the REPL shell behind a cobra command
// tree, with viper binding config-file/flag/env layering.
//
// Grounded on cmd/cayley/cayley.go (teacher) for the command set (init,
// load, repl, http/serve, dump, version), rebuilt on spf13/cobra +
// spf13/viper the way cmd/nerd/main.go (the other example repo) wires a
// cobra root command with persistent flags and a logger initialized in
// PersistentPreRunE, rather than the teacher's raw flag package.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/quadreactor/engine/internal/clog"
)

// Version is filled in at build time via -ldflags, same convention as
// the teacher's main.Version.
var Version string

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "quadreactor",
	Short: "An in-memory, append-only quad store with reactive watchers",
	Long: `quadreactor holds an append-only log of (source, attribute, target,
context) quads, matches patterns against it incrementally as quads
arrive, and fires callbacks -- including reified rules stored as quads
themselves -- when a pattern's bindings complete.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if v := viper.GetInt("log_level"); v != 0 {
			clog.SetV(v)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: none, flags/env only)")
	rootCmd.PersistentFlags().String("listen-host", "", "host to listen on for the http command")
	rootCmd.PersistentFlags().String("listen-port", "", "port to listen on for the http command")
	rootCmd.PersistentFlags().Int("log-level", 0, "clog verbosity")

	_ = viper.BindPFlag("listen_host", rootCmd.PersistentFlags().Lookup("listen-host"))
	_ = viper.BindPFlag("listen_port", rootCmd.PersistentFlags().Lookup("listen-port"))
	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.SetEnvPrefix("QUADREACTOR")
	viper.AutomaticEnv()

	rootCmd.AddCommand(initCmd, loadCmd, dumpCmd, httpCmd, replCmd, queryCmd, watchCmd, versionCmd)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			clog.Warningf("could not read config file %s: %v", cfgFile, err)
		}
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
