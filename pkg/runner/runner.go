package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/tapevm/pkg/domain"
	"github.com/aretw0/tapevm/pkg/ports"
)

// Runner drives a program to completion against a local IOHandler:
// execute, print new output, ask for a value on suspension, resume.
type Runner struct {
	Engine  ports.Executor
	Handler IOHandler

	// Logger is used for internal debug logging.
	// If nil, a no-op logger is used.
	Logger *slog.Logger

	// Sessions stores the token after every invocation when SessionID is set.
	Sessions  *SessionManager
	SessionID string

	// Token, when set, is resumed instead of starting the program fresh.
	Token string

	HandleSignals bool
}

// Result is where a run stopped.
type Result struct {
	Output  string
	Token   string
	Outcome domain.Outcome
	Steps   uint64
}

// NewRunner creates a Runner with a TextHandler on stdin and stdout.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{}
	for _, opt := range opts {
		opt(r)
	}
	if r.Handler == nil {
		r.Handler = NewTextHandler(nil, nil)
	}
	if r.Logger == nil {
		r.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if r.Sessions == nil {
		r.Sessions = NewSessionManager(nil)
	}
	return r
}

// Run executes program until it finishes, the input ends or ctx is cancelled.
// Running out of input is not an error: the result is suspended and carries the token.
func (r *Runner) Run(ctx context.Context, program string) (*Result, error) {
	if r.Engine == nil {
		return nil, errors.New("runner: no engine configured")
	}

	var signals *SignalManager
	if r.HandleSignals {
		signals = NewSignalManager(ctx)
		defer signals.Stop()
		ctx = signals.Context()
	}

	token := r.Token
	if token == "" {
		stored, found, err := r.Sessions.Load(ctx, r.SessionID)
		if err != nil {
			return nil, err
		}
		if found {
			r.Logger.Debug("resuming session", "session_id", r.SessionID)
			token = stored
		}
	}

	res := &Result{Token: token}
	req := ports.Request{Program: program, PriorState: token}
	printed := 0

	for {
		resp, err := r.Engine.Execute(ctx, req)
		if err != nil {
			return res, fmt.Errorf("execution failed: %w", err)
		}
		res.Steps += resp.Steps

		if resp.Outcome == domain.OutcomeInputRejected {
			// No input is how a resumed token asks for its first value.
			if req.Input != nil {
				if err := r.Handler.SystemOutput(ctx, resp.Output); err != nil {
					return res, err
				}
			}
		} else {
			if len(resp.Output) > printed {
				if err := r.Handler.Output(ctx, resp.Output[printed:]); err != nil {
					return res, fmt.Errorf("output error: %w", err)
				}
				printed = len(resp.Output)
			}
			res.Output = resp.Output
		}
		res.Token = resp.NextState
		res.Outcome = resp.Outcome

		if err := r.Sessions.Save(ctx, r.SessionID, res.Token); err != nil {
			return res, fmt.Errorf("critical persistence error: %w", err)
		}

		if !resp.AwaitingInput {
			break
		}
		if res.Outcome == domain.OutcomeInputRejected {
			res.Outcome = domain.OutcomeSuspended
		}

		in, err := r.Handler.Input(ctx)
		if err != nil {
			if signals != nil {
				signals.CheckRace()
			}
			if ctx.Err() != nil {
				return res, ctx.Err()
			}
			if errors.Is(err, io.EOF) {
				r.Logger.Debug("input closed while suspended", "session_id", r.SessionID)
				break
			}
			return res, fmt.Errorf("input error: %w", err)
		}

		req = ports.Request{PriorState: resp.NextState, Input: &in}
	}

	if d, ok := r.Handler.(interface {
		Done(context.Context, *Result) error
	}); ok {
		if err := d.Done(ctx, res); err != nil {
			return res, err
		}
	}
	return res, nil
}
