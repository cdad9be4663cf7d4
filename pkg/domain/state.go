package domain

import (
	"bytes"
	"fmt"

	"github.com/rivo/uniseg"
)

// TapeSize is the number of cells on every tape.
const TapeSize = 30000

// State represents the current snapshot of a machine.
// It is the unit of serialization: a token is an encoded State.
type State struct {
	// Program is the instruction text. It never changes after creation.
	Program string `json:"program_code"`

	// InstructionPointer indexes Program by grapheme.
	// The machine is finished when it equals the grapheme count of Program.
	InstructionPointer uint32 `json:"instruction_pointer"`

	// Tape holds exactly TapeSize cells.
	Tape []byte `json:"tape"`

	// Output accumulates emitted characters, one code point (0-255) per cell value.
	Output string `json:"stdout"`

	// DataPointer indexes Tape.
	DataPointer uint32 `json:"data_pointer"`

	// AwaitingInput is true when the machine stopped on ',' and has not consumed a value yet.
	AwaitingInput bool `json:"expecting_input"`
}

// NewState creates a clean state for the given program.
func NewState(program string) *State {
	return &State{
		Program: program,
		Tape:    make([]byte, TapeSize),
	}
}

// Clone returns a deep copy of the state, tape included.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	c := *s
	c.Tape = bytes.Clone(s.Tape)
	return &c
}

// Len returns the number of instructions (graphemes) in Program.
func (s *State) Len() int {
	return uniseg.GraphemeClusterCount(s.Program)
}

// At returns the instruction at position i, or "" when i is past the end.
func (s *State) At(i int) string {
	g := uniseg.NewGraphemes(s.Program)
	for n := 0; g.Next(); n++ {
		if n == i {
			return g.Str()
		}
	}
	return ""
}

// Finished reports whether the instruction pointer has run off the end of the program.
func (s *State) Finished() bool {
	return int(s.InstructionPointer) >= s.Len()
}

// Check verifies the structural invariants of a state that came from outside,
// typically a decoded token.
func (s *State) Check() error {
	if s == nil {
		return fmt.Errorf("%w: empty state", ErrInvalidToken)
	}
	if len(s.Tape) != TapeSize {
		return fmt.Errorf("%w: tape has %d cells, want %d", ErrInvalidToken, len(s.Tape), TapeSize)
	}
	if int(s.DataPointer) >= len(s.Tape) {
		return fmt.Errorf("%w: data pointer %d out of range", ErrInvalidToken, s.DataPointer)
	}
	if n := s.Len(); int(s.InstructionPointer) > n {
		return fmt.Errorf("%w: instruction pointer %d beyond program length %d", ErrInvalidToken, s.InstructionPointer, n)
	}
	// Resuming consumes the ',' under the instruction pointer.
	if s.AwaitingInput {
		if op := s.At(int(s.InstructionPointer)); op != "," {
			return fmt.Errorf("%w: awaiting input at %d but the instruction there is %q", ErrInvalidToken, s.InstructionPointer, op)
		}
	}
	return nil
}

// Equal reports whether two states are identical in every field.
func (s *State) Equal(o *State) bool {
	if s == nil || o == nil {
		return s == o
	}
	return s.Program == o.Program &&
		s.InstructionPointer == o.InstructionPointer &&
		s.DataPointer == o.DataPointer &&
		s.Output == o.Output &&
		s.AwaitingInput == o.AwaitingInput &&
		bytes.Equal(s.Tape, o.Tape)
}
