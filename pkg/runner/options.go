package runner

import (
	"log/slog"

	"github.com/aretw0/tapevm/pkg/ports"
)

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithEngine configures the executor. Required.
func WithEngine(engine ports.Executor) Option {
	return func(r *Runner) {
		r.Engine = engine
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.Logger = logger
	}
}

// WithInputHandler configures a custom IOHandler.
func WithInputHandler(handler IOHandler) Option {
	return func(r *Runner) {
		r.Handler = handler
	}
}

// WithWallet keeps the latest token of the session in wallet.
func WithWallet(wallet ports.TokenWallet) Option {
	return func(r *Runner) {
		r.Sessions = NewSessionManager(wallet)
	}
}

// WithSessionID names the session for the wallet.
// When the wallet already holds a token for it, Run resumes from that token.
func WithSessionID(id string) Option {
	return func(r *Runner) {
		r.SessionID = id
	}
}

// WithInitialToken resumes from token instead of starting the program fresh.
func WithInitialToken(token string) Option {
	return func(r *Runner) {
		r.Token = token
	}
}

// WithSignals makes Run stop cleanly on SIGINT or SIGTERM.
func WithSignals(enabled bool) Option {
	return func(r *Runner) {
		r.HandleSignals = enabled
	}
}
