package main

import (
	"fmt"

	"github.com/aretw0/tapevm"
	"github.com/aretw0/tapevm/internal/cli"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [file|-]",
	Short: "Check that a program only uses the eight instructions",
	Long: `Checks the program text without running it.
Bracket balance is not part of validation: unmatched brackets are reported
when execution reaches them.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		program, err := programFrom(cmd, args)
		if err != nil {
			return err
		}
		if err := tapevm.New().Validate(program); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Program is valid! ✅")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().StringP("eval", "e", "", "Program text given inline")
}

// programFrom reads the program from --eval or the first argument.
func programFrom(cmd *cobra.Command, args []string) (string, error) {
	inline, _ := cmd.Flags().GetString("eval")
	var path string
	if len(args) > 0 {
		path = args[0]
	}
	return cli.ReadProgram(inline, path, cmd.InOrStdin())
}
