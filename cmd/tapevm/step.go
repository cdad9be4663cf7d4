package main

import (
	"fmt"

	"github.com/aretw0/tapevm/internal/cli"
	"github.com/aretw0/tapevm/pkg/domain"
	"github.com/aretw0/tapevm/pkg/runner"
	"github.com/spf13/cobra"
)

var stepCmd = &cobra.Command{
	Use:   "step [file|-]",
	Short: "Perform one invocation of a stored session",
	Long: `Runs a session until it finishes or stops on ',', then saves the new token.
The first step of a session needs the program; later steps take --input.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID, _ := cmd.Flags().GetString("session")

		var program string
		if len(args) > 0 || cmd.Flags().Changed("eval") {
			p, err := programFrom(cmd, args)
			if err != nil {
				return err
			}
			program = p
		}

		opts := cli.StepOptions{SessionID: sessionID, Program: program}
		if cmd.Flags().Changed("input") {
			in, _ := cmd.Flags().GetString("input")
			if err := runner.CheckInput(in); err != nil {
				return err
			}
			opts.Input = &in
		}

		rt, err := buildRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		resp, err := cli.Step(cmd.Context(), rt.Engine, getWallet(cmd), opts)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		switch resp.Outcome {
		case domain.OutcomeInputRejected:
			fmt.Fprintf(cmd.ErrOrStderr(), ">>> %s\n", resp.Output)
		case domain.OutcomeSuspended:
			fmt.Fprint(out, resp.Output)
			fmt.Fprintf(cmd.ErrOrStderr(), "\n>>> Waiting for input. Continue with 'tapevm step --session %s --input <value>'.\n", sessionID)
		default:
			fmt.Fprint(out, resp.Output)
			fmt.Fprintln(cmd.ErrOrStderr(), "\n>>> Finished.")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(stepCmd)

	stepCmd.Flags().StringP("eval", "e", "", "Program text given inline (first step only)")
	stepCmd.Flags().StringP("session", "s", "", "Session name (required)")
	stepCmd.Flags().StringP("input", "i", "", "Value for the pending ',': 0..255 or a single character")
	_ = stepCmd.MarkFlagRequired("session")
}
