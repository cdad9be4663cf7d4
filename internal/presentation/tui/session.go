package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/tapevm/pkg/domain"
)

// TapeWindow is how many cells on each side of the data pointer are shown.
const TapeWindow = 8

// SessionMarkdown describes a decoded token as markdown.
func SessionMarkdown(name string, st *domain.State) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# Session `%s`\n\n", name)

	status := "running"
	switch {
	case st.Finished():
		status = "finished"
	case st.AwaitingInput:
		status = "waiting for input"
	}

	sb.WriteString("| Field | Value |\n|---|---|\n")
	fmt.Fprintf(&sb, "| Status | %s |\n", status)
	fmt.Fprintf(&sb, "| Program length | %d |\n", st.Len())
	fmt.Fprintf(&sb, "| Instruction pointer | %d |\n", st.InstructionPointer)
	fmt.Fprintf(&sb, "| Data pointer | %d |\n", st.DataPointer)
	fmt.Fprintf(&sb, "| Output length | %d |\n\n", len([]rune(st.Output)))

	sb.WriteString("## Tape\n\n")
	lo := int(st.DataPointer) - TapeWindow
	if lo < 0 {
		lo = 0
	}
	hi := int(st.DataPointer) + TapeWindow
	if hi > len(st.Tape)-1 {
		hi = len(st.Tape) - 1
	}

	sb.WriteString("| Cell | Value |\n|---|---|\n")
	for i := lo; i <= hi; i++ {
		marker := ""
		if i == int(st.DataPointer) {
			marker = " **<**"
		}
		fmt.Fprintf(&sb, "| %d | %d%s |\n", i, st.Tape[i], marker)
	}

	if st.Output != "" {
		sb.WriteString("\n## Output\n\n```\n")
		sb.WriteString(st.Output)
		sb.WriteString("\n```\n")
	}
	return sb.String()
}
