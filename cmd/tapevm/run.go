package main

import (
	"os"

	"github.com/aretw0/tapevm/internal/cli"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run [file|-]",
	Short: "Run a program interactively",
	Long: `Runs a program, printing its output and asking for a value each time it
stops on ','. Values are a number 0..255 or a single character.

With --session the token is saved after every step, so the run can be
continued later with 'run --session' or 'step --session'.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID, _ := cmd.Flags().GetString("session")
		fresh, _ := cmd.Flags().GetBool("fresh")
		jsonMode, _ := cmd.Flags().GetBool("json")

		// A stored session carries its own program.
		var program string
		if len(args) > 0 || cmd.Flags().Changed("eval") || sessionID == "" {
			p, err := programFrom(cmd, args)
			if err != nil {
				return err
			}
			program = p
		}

		rt, err := buildRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		opts := cli.RunOptions{
			Program:   program,
			SessionID: sessionID,
			Fresh:     fresh,
			JSON:      jsonMode,
			Engine:    rt.Engine,
			Logger:    logger,
			Stdin:     os.Stdin,
			Stdout:    cmd.OutOrStdout(),
		}
		if sessionID != "" {
			opts.Wallet = getWallet(cmd)
		}

		_, err = cli.Run(cmd.Context(), opts)
		return err
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("eval", "e", "", "Program text given inline")
	runCmd.Flags().StringP("session", "s", "", "Save and resume the token under this name")
	runCmd.Flags().Bool("fresh", false, "Discard a stored session before running")
	runCmd.Flags().Bool("json", false, "Run in JSON mode (NDJSON input/output)")
}
