package ports

import (
	"context"

	"github.com/aretw0/tapevm/pkg/domain"
)

// Request is one invocation as seen by the engine.
type Request struct {
	// Program is used when PriorState is empty. Otherwise the program inside the token wins.
	Program string

	// PriorState is the opaque token returned by an earlier invocation.
	PriorState string

	// Input is the value for a pending ',' instruction.
	Input *string

	// MaxSteps lowers the engine's instruction budget for this call. Zero keeps the default.
	MaxSteps uint64
}

// Response is the result of a non-faulting invocation.
type Response struct {
	Program       string
	Output        string
	NextState     string
	AwaitingInput bool
	Outcome       domain.Outcome
	Steps         uint64
	Cached        bool
}

// Executor runs programs. Implementations must be safe for concurrent use with distinct tokens.
// Two calls racing on the same token are the caller's problem: the token is not a lock.
type Executor interface {
	Execute(ctx context.Context, req Request) (*Response, error)
	Validate(program string) error
}
