package main

import (
	"fmt"

	"github.com/aretw0/tapevm/internal/cli"
	"github.com/aretw0/tapevm/internal/presentation/graph"
	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph [file|-]",
	Short: "Export the program's control flow as a Mermaid diagram",
	Long: `Outputs a Mermaid diagram (graph TD) of the program's straight-line blocks
and loops. With --session the stored program is drawn and the block holding
the instruction pointer is highlighted.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			output string
			err    error
		)

		if sessionID, _ := cmd.Flags().GetString("session"); sessionID != "" {
			codec, cerr := cli.NewCodec(cfg.Token)
			if cerr != nil {
				return cerr
			}
			output, err = cli.SessionGraph(cmd.Context(), getWallet(cmd), codec, sessionID)
		} else {
			program, perr := programFrom(cmd, args)
			if perr != nil {
				return perr
			}
			output, err = graph.GenerateMermaid(program, nil)
		}
		if err != nil {
			return err
		}

		fmt.Fprint(cmd.OutOrStdout(), output)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().StringP("eval", "e", "", "Program text given inline")
	graphCmd.Flags().StringP("session", "s", "", "Draw the program of a saved session")
}
