package runner

import "context"

// IOHandler defines the strategy for interacting with the user.
// This allows switching between Text (terminal) and JSON (structured) modes.
type IOHandler interface {
	// Output writes program output. It is called with each new chunk only.
	Output(ctx context.Context, text string) error

	// Input reads one value for a pending ','.
	Input(ctx context.Context) (string, error)

	// SystemOutput presents a meta-message (diagnostics, status) distinct from program output.
	SystemOutput(ctx context.Context, msg string) error
}
