package dsl

import (
	"fmt"
	"strings"

	"github.com/aretw0/tapevm/internal/runtime"
)

// Builder accumulates program text.
type Builder struct {
	sb strings.Builder
}

// New creates a new program builder.
func New() *Builder {
	return &Builder{}
}

func (b *Builder) repeat(pos, neg string, n int) *Builder {
	op := pos
	if n < 0 {
		op, n = neg, -n
	}
	b.sb.WriteString(strings.Repeat(op, n))
	return b
}

// Add changes the current cell by n (mod 256). Negative n decrements.
func (b *Builder) Add(n int) *Builder {
	return b.repeat("+", "-", n)
}

// Move shifts the data pointer by n cells. Negative n moves left.
func (b *Builder) Move(n int) *Builder {
	return b.repeat(">", "<", n)
}

// Print emits the current cell.
func (b *Builder) Print() *Builder {
	b.sb.WriteString(".")
	return b
}

// Read stores one input value in the current cell.
func (b *Builder) Read() *Builder {
	b.sb.WriteString(",")
	return b
}

// Loop repeats body while the current cell is non-zero.
func (b *Builder) Loop(body func(*Builder)) *Builder {
	b.sb.WriteString("[")
	body(b)
	b.sb.WriteString("]")
	return b
}

// Clear sets the current cell to zero.
func (b *Builder) Clear() *Builder {
	b.sb.WriteString("[-]")
	return b
}

// PrintText prints s byte by byte using the current cell, which ends up holding
// the last byte of s. The cell is cleared first.
func (b *Builder) PrintText(s string) *Builder {
	b.Clear()
	cur := 0
	for i := 0; i < len(s); i++ {
		next := int(s[i])
		delta := next - cur
		// Wrapping is shorter past half the ring.
		switch {
		case delta > 128:
			delta -= 256
		case delta < -128:
			delta += 256
		}
		b.Add(delta).Print()
		cur = next
	}
	return b
}

// Raw appends program text as is.
func (b *Builder) Raw(program string) *Builder {
	b.sb.WriteString(program)
	return b
}

// String returns the program built so far.
func (b *Builder) String() string {
	return b.sb.String()
}

// Build returns the program, checked to contain only instructions.
func (b *Builder) Build() (string, error) {
	program := b.sb.String()
	if err := runtime.CheckProgram(program); err != nil {
		return "", fmt.Errorf("dsl: %w", err)
	}
	return program, nil
}
