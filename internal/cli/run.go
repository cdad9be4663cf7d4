package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/tapevm/internal/presentation/tui"
	"github.com/aretw0/tapevm/pkg/domain"
	"github.com/aretw0/tapevm/pkg/ports"
	"github.com/aretw0/tapevm/pkg/runner"
)

// RunOptions contains all the configuration for the run command.
type RunOptions struct {
	Program   string
	SessionID string
	Fresh     bool
	JSON      bool

	Engine ports.Executor
	Wallet ports.TokenWallet
	Logger *slog.Logger

	Stdin  io.Reader
	Stdout io.Writer
}

// Run drives a program interactively until it finishes or the input ends.
func Run(ctx context.Context, opts RunOptions) (*runner.Result, error) {
	if opts.Fresh && opts.SessionID != "" && opts.Wallet != nil {
		if err := opts.Wallet.Delete(ctx, opts.SessionID); err != nil {
			return nil, fmt.Errorf("reset session: %w", err)
		}
	}

	interactive := !opts.JSON && runner.IsTerminal(opts.Stdin)
	if interactive {
		tui.PrintBanner(opts.Stdout)
	}

	var handler runner.IOHandler
	if opts.JSON {
		handler = runner.NewJSONHandler(opts.Stdin, opts.Stdout)
	} else {
		handler = runner.NewTextHandler(opts.Stdin, opts.Stdout)
	}

	r := runner.NewRunner(
		runner.WithEngine(opts.Engine),
		runner.WithLogger(opts.Logger),
		runner.WithInputHandler(handler),
		runner.WithWallet(opts.Wallet),
		runner.WithSessionID(opts.SessionID),
		runner.WithSignals(true),
	)

	res, err := r.Run(ctx, opts.Program)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			if !opts.JSON {
				fmt.Fprintln(opts.Stdout)
				printSystemMessage(opts.Stdout, "Interrupted.")
			}
			return res, nil
		}
		return res, err
	}

	if !opts.JSON && opts.SessionID != "" && res.Outcome == domain.OutcomeSuspended {
		printSystemMessage(opts.Stdout, "Session '%s' saved. Continue with 'tapevm step --session %s --input <value>'.", opts.SessionID, opts.SessionID)
	}
	return res, nil
}
