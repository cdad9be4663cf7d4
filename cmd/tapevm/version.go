package main

import (
	"fmt"

	"github.com/aretw0/tapevm"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of tapevm",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "tapevm version %s\n", tapevm.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
