package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/tapevm/internal/presentation/graph"
	"github.com/aretw0/tapevm/internal/presentation/tui"
	"github.com/aretw0/tapevm/pkg/domain"
	"github.com/aretw0/tapevm/pkg/ports"
	"github.com/aretw0/tapevm/pkg/token"
)

// StepOptions describes one invocation against a wallet-held token.
type StepOptions struct {
	SessionID string
	// Program starts the session when the wallet has no token for it.
	Program string
	Input   *string
}

// Step performs exactly one engine invocation for a named session and stores
// the returned token back in the wallet.
func Step(ctx context.Context, engine ports.Executor, wallet ports.TokenWallet, opts StepOptions) (*ports.Response, error) {
	if opts.SessionID == "" {
		return nil, errors.New("step needs a session name")
	}

	prior, err := wallet.Load(ctx, opts.SessionID)
	switch {
	case errors.Is(err, domain.ErrWalletNotFound):
		if opts.Program == "" {
			return nil, fmt.Errorf("session '%s' does not exist; give a program to start it", opts.SessionID)
		}
		prior = ""
	case err != nil:
		return nil, fmt.Errorf("load session '%s': %w", opts.SessionID, err)
	}

	resp, err := engine.Execute(ctx, ports.Request{
		Program:    opts.Program,
		PriorState: prior,
		Input:      opts.Input,
	})
	if err != nil {
		return nil, err
	}

	if err := wallet.Save(ctx, opts.SessionID, resp.NextState); err != nil {
		return resp, fmt.Errorf("save session '%s': %w", opts.SessionID, err)
	}
	return resp, nil
}

// LoadSession decodes the token stored under name.
func LoadSession(ctx context.Context, wallet ports.TokenWallet, codec token.Codec, name string) (*domain.State, error) {
	tok, err := wallet.Load(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("load session '%s': %w", name, err)
	}
	if token.IsEmpty(tok) {
		return nil, fmt.Errorf("session '%s' holds an empty token", name)
	}
	return codec.Decode(tok)
}

// InspectSession renders a stored session as terminal markdown.
func InspectSession(ctx context.Context, wallet ports.TokenWallet, codec token.Codec, name string) (string, error) {
	st, err := LoadSession(ctx, wallet, codec, name)
	if err != nil {
		return "", err
	}
	return tui.NewRenderer()(tui.SessionMarkdown(name, st))
}

// SessionGraph renders the control flow of a stored session's program with
// its instruction pointer highlighted.
func SessionGraph(ctx context.Context, wallet ports.TokenWallet, codec token.Codec, name string) (string, error) {
	st, err := LoadSession(ctx, wallet, codec, name)
	if err != nil {
		return "", err
	}
	return graph.GenerateMermaid(st.Program, &graph.Overlay{
		InstructionPointer: st.InstructionPointer,
		Finished:           st.Finished(),
	})
}
