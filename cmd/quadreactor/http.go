package main

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/quadreactor/engine/internal/clog"
	"github.com/quadreactor/engine/internal/engineconfig"
	"github.com/quadreactor/engine/internal/httpapi"
)

var httpLoadPath string

var httpCmd = &cobra.Command{
	Use:   "http",
	Short: "Serve the read-only HTTP introspection surface",
	Long: `http brings up a Store, optionally seeded via --load, and serves
GET /quads, GET /contexts, POST /query, and GET /metrics on the
configured host:port (see --listen-host/--listen-port or a config
file). Grounded on the teacher's internal/http.Serve, trimmed to the
routes SPEC_FULL.md §3.2 names -- there is no write surface here
(spec.md §6.1 keeps Append/Watch programmatic-only).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := engineconfig.Default()
		if viper.GetString("listen_host") != "" {
			cfg.ListenHost = viper.GetString("listen_host")
		}
		if viper.GetString("listen_port") != "" {
			cfg.ListenPort = viper.GetString("listen_port")
		}

		s, err := buildStore(cfg, httpLoadPath)
		if err != nil {
			return err
		}

		addr := fmt.Sprintf("%s:%s", cfg.ListenHost, cfg.ListenPort)
		clog.Infof("listening on %s", addr)
		return http.ListenAndServe(addr, httpapi.NewMux(s))
	},
}

func init() {
	httpCmd.Flags().StringVar(&httpLoadPath, "load", "", "dump file to seed the store from before serving")
}
