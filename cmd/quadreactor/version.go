package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		if Version != "" {
			fmt.Println("quadreactor", Version)
		} else {
			fmt.Println("quadreactor snapshot")
		}
	},
}
