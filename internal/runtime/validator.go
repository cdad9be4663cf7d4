package runtime

import (
	"fmt"
	"regexp"

	"github.com/aretw0/tapevm/pkg/domain"
)

var alphabet = regexp.MustCompile(`^[+\-<>.,\[\]]+$`)

// Validate reports whether program is non-empty and made only of the eight instructions.
func Validate(program string) bool {
	return alphabet.MatchString(program)
}

// CheckProgram is Validate with a reason attached.
func CheckProgram(program string) error {
	if program == "" {
		return fmt.Errorf("%w: program is empty", domain.ErrInvalidProgram)
	}
	if Validate(program) {
		return nil
	}
	p := Compile(program)
	for i := 0; i < p.Len(); i++ {
		if !isInstruction(p.At(i)) {
			return fmt.Errorf("%w: unexpected %q at position %d", domain.ErrInvalidProgram, p.At(i), i)
		}
	}
	// Unreachable unless the regexp and isInstruction disagree.
	return fmt.Errorf("%w: rejected", domain.ErrInvalidProgram)
}

func isInstruction(s string) bool {
	switch s {
	case ">", "<", "+", "-", ".", ",", "[", "]":
		return true
	}
	return false
}
