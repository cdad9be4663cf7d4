package runtime

import (
	"github.com/aretw0/tapevm/pkg/domain"
	"github.com/rivo/uniseg"
)

// Program is instruction text split into graphemes.
// Positions used by the machine always refer to this split, never to byte offsets.
type Program struct {
	symbols []string
	jumps   []int32 // nil unless BuildJumpTable was called
}

// Compile splits text into graphemes.
func Compile(text string) *Program {
	p := &Program{symbols: make([]string, 0, len(text))}
	g := uniseg.NewGraphemes(text)
	for g.Next() {
		p.symbols = append(p.symbols, g.Str())
	}
	return p
}

// Len returns the number of instructions.
func (p *Program) Len() int { return len(p.symbols) }

// At returns the instruction at position i.
func (p *Program) At(i int) string { return p.symbols[i] }

// MatchForward scans right from the '[' at pos and returns the position of its ']'.
func (p *Program) MatchForward(pos int) (int, error) {
	if p.jumps != nil {
		return p.lookup(pos, "[")
	}
	depth := 0
	for i := pos + 1; i < len(p.symbols); i++ {
		switch p.symbols[i] {
		case "[":
			depth++
		case "]":
			if depth == 0 {
				return i, nil
			}
			depth--
		}
	}
	return 0, &domain.StructuralError{Position: uint32(pos), Symbol: "["}
}

// MatchBackward scans left from the ']' at pos and returns the position of its '['.
func (p *Program) MatchBackward(pos int) (int, error) {
	if p.jumps != nil {
		return p.lookup(pos, "]")
	}
	depth := 0
	for i := pos - 1; i >= 0; i-- {
		switch p.symbols[i] {
		case "]":
			depth++
		case "[":
			if depth == 0 {
				return i, nil
			}
			depth--
		}
	}
	return 0, &domain.StructuralError{Position: uint32(pos), Symbol: "]"}
}

// BuildJumpTable precomputes every bracket pair in one pass.
// Unbalanced brackets are recorded as -1 and only reported when a jump needs them,
// so the table never changes which programs run.
func (p *Program) BuildJumpTable() {
	jumps := make([]int32, len(p.symbols))
	var stack []int32
	for i, s := range p.symbols {
		jumps[i] = -1
		switch s {
		case "[":
			stack = append(stack, int32(i))
		case "]":
			if len(stack) == 0 {
				continue
			}
			open := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			jumps[open] = int32(i)
			jumps[i] = open
		}
	}
	p.jumps = jumps
}

func (p *Program) lookup(pos int, symbol string) (int, error) {
	if target := p.jumps[pos]; target >= 0 {
		return int(target), nil
	}
	return 0, &domain.StructuralError{Position: uint32(pos), Symbol: symbol}
}
