package runtime

import (
	"context"
	"fmt"
	"strings"

	"github.com/aretw0/tapevm/pkg/domain"
)

// DefaultMaxSteps bounds a single invocation.
// It protects the host from programs that never terminate or never ask for input.
const DefaultMaxSteps uint64 = 50_000_000

// cancelCheckInterval is how many instructions run between context checks.
const cancelCheckInterval = 4096

// Machine is the resumable fetch-execute loop.
// It holds configuration only; all mutable data lives in the *domain.State
// passed to Step, so one Machine can serve concurrent invocations.
type Machine struct {
	maxSteps  uint64
	jumpTable bool
}

// Option configures a Machine.
type Option func(*Machine)

// WithMaxSteps sets the instruction budget of one invocation. Zero disables the limit.
func WithMaxSteps(n uint64) Option {
	return func(m *Machine) {
		m.maxSteps = n
	}
}

// WithJumpTable precomputes bracket pairs instead of scanning on every jump.
func WithJumpTable(enabled bool) Option {
	return func(m *Machine) {
		m.jumpTable = enabled
	}
}

// NewMachine creates a Machine with the default step budget.
func NewMachine(opts ...Option) *Machine {
	m := &Machine{maxSteps: DefaultMaxSteps}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Result summarizes one Step.
type Result struct {
	Outcome domain.Outcome
	Steps   uint64 // Instructions executed in this invocation
}

// Step advances state in place until the program finishes, suspends on ',' or faults.
//
// When state is awaiting input, input is decoded first. A value that cannot be decoded
// overwrites the output with domain.InputDiagnostic, leaves the machine suspended and
// executes nothing. A nil input counts as undecodable.
//
// Faults (*domain.StructuralError, *domain.PointerError, *domain.InternalError,
// domain.ErrStepLimit, context errors) leave state in an unspecified intermediate shape.
func (m *Machine) Step(ctx context.Context, state *domain.State, input *string) (Result, error) {
	if state.AwaitingInput {
		raw := ""
		if input != nil {
			raw = *input
		}
		value, err := DecodeInput(raw)
		if err != nil {
			state.Output = domain.InputDiagnostic
			return Result{Outcome: domain.OutcomeInputRejected}, nil
		}
		state.Tape[state.DataPointer] = value
		state.AwaitingInput = false
		// The ',' that suspended us is now complete.
		state.InstructionPointer++
	}

	prog := Compile(state.Program)
	if m.jumpTable {
		prog.BuildJumpTable()
	}

	var out strings.Builder
	out.WriteString(state.Output)
	defer func() {
		state.Output = out.String()
	}()

	var steps uint64
	last := uint32(len(state.Tape) - 1)

	for int(state.InstructionPointer) < prog.Len() {
		if m.maxSteps > 0 && steps >= m.maxSteps {
			return Result{Steps: steps}, fmt.Errorf("%w: %d instructions without finishing or suspending", domain.ErrStepLimit, steps)
		}
		if steps%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return Result{Steps: steps}, err
			}
		}
		steps++

		ip := state.InstructionPointer
		symbol := prog.At(int(ip))

		switch symbol {
		case ">":
			if state.DataPointer >= last {
				return Result{Steps: steps}, &domain.PointerError{Position: ip, DataPointer: state.DataPointer, Symbol: symbol}
			}
			state.DataPointer++
		case "<":
			if state.DataPointer == 0 {
				return Result{Steps: steps}, &domain.PointerError{Position: ip, DataPointer: state.DataPointer, Symbol: symbol}
			}
			state.DataPointer--
		case "+":
			state.Tape[state.DataPointer]++
		case "-":
			state.Tape[state.DataPointer]--
		case ".":
			out.WriteRune(rune(state.Tape[state.DataPointer]))
		case ",":
			state.AwaitingInput = true
			return Result{Outcome: domain.OutcomeSuspended, Steps: steps}, nil
		case "[":
			if state.Tape[state.DataPointer] == 0 {
				target, err := prog.MatchForward(int(ip))
				if err != nil {
					return Result{Steps: steps}, err
				}
				state.InstructionPointer = uint32(target)
			}
		case "]":
			if state.Tape[state.DataPointer] != 0 {
				target, err := prog.MatchBackward(int(ip))
				if err != nil {
					return Result{Steps: steps}, err
				}
				state.InstructionPointer = uint32(target)
			}
		default:
			return Result{Steps: steps}, &domain.InternalError{Position: ip, Symbol: symbol}
		}

		state.InstructionPointer++
	}

	return Result{Outcome: domain.OutcomeFinished, Steps: steps}, nil
}
