package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidProgram is returned when a program is empty or contains a symbol outside the alphabet.
var ErrInvalidProgram = errors.New("invalid program")

// ErrInputDecode is returned when an input value is neither 0..255 nor a single character.
var ErrInputDecode = errors.New("input is neither 0..255 nor a single character")

// ErrUnmatchedBracket is the sentinel behind StructuralError.
var ErrUnmatchedBracket = errors.New("unmatched bracket")

// ErrPointerOutOfRange is the sentinel behind PointerError.
var ErrPointerOutOfRange = errors.New("data pointer out of range")

// ErrInternal is the sentinel behind InternalError.
var ErrInternal = errors.New("internal error")

// ErrStepLimit is returned when an invocation executes more instructions than allowed.
var ErrStepLimit = errors.New("step limit exceeded")

// ErrInvalidToken is returned when a serialized state cannot be decoded or violates invariants.
var ErrInvalidToken = errors.New("invalid state token")

// ErrCacheMiss is returned by result caches when no entry exists for a key.
var ErrCacheMiss = errors.New("cache miss")

// ErrWalletNotFound is returned when a named token cannot be found in a wallet.
var ErrWalletNotFound = errors.New("token not found")

// StructuralError reports a bracket scan that ran off the program without finding its pair.
type StructuralError struct {
	Position uint32 // Position of the bracket that started the scan
	Symbol   string // "[" or "]"
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("unmatched %q at position %d", e.Symbol, e.Position)
}

func (e *StructuralError) Unwrap() error { return ErrUnmatchedBracket }

// PointerError reports a '<' at cell 0 or a '>' at the last cell.
type PointerError struct {
	Position    uint32 // Instruction pointer of the offending move
	DataPointer uint32
	Symbol      string
}

func (e *PointerError) Error() string {
	return fmt.Sprintf("%q at position %d would move data pointer %d off the tape", e.Symbol, e.Position, e.DataPointer)
}

func (e *PointerError) Unwrap() error { return ErrPointerOutOfRange }

// InternalError reports a symbol the dispatcher does not know.
// It means the validator and the machine disagree.
type InternalError struct {
	Position uint32
	Symbol   string
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("unknown instruction %q at position %d", e.Symbol, e.Position)
}

func (e *InternalError) Unwrap() error { return ErrInternal }

// Kind maps an error to a stable identifier used by transports.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidProgram):
		return "invalid_program"
	case errors.Is(err, ErrInputDecode):
		return "input_decode"
	case errors.Is(err, ErrUnmatchedBracket):
		return "unmatched_bracket"
	case errors.Is(err, ErrPointerOutOfRange):
		return "pointer_out_of_range"
	case errors.Is(err, ErrStepLimit):
		return "step_limit"
	case errors.Is(err, ErrInvalidToken):
		return "invalid_token"
	case errors.Is(err, ErrInternal):
		return "internal"
	default:
		return "unknown"
	}
}

// IsFault reports whether err ends an invocation without a usable state.
func IsFault(err error) bool {
	return errors.Is(err, ErrUnmatchedBracket) ||
		errors.Is(err, ErrPointerOutOfRange) ||
		errors.Is(err, ErrInternal) ||
		errors.Is(err, ErrStepLimit)
}
