package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/tapevm/internal/runtime"
)

// MaxLabel is the number of instructions shown in a block label.
const MaxLabel = 16

// Overlay marks where a suspended or finished state currently is.
type Overlay struct {
	InstructionPointer uint32
	Finished           bool
}

type block struct {
	id     string
	symbol string // "[" or "]" for loop nodes, "" for straight-line runs
	text   string
	input  bool
	start  int
	end    int // exclusive
}

// GenerateMermaid produces a Mermaid flowchart of the program's control flow.
// It applies semantic styling:
// - Start/End: ((Circle))
// - Loop test: {Rhombus}
// - Block reading input: [/Parallelogram/]
// - Default: [Rectangle]
// Brackets must be balanced.
func GenerateMermaid(program string, overlay *Overlay) (string, error) {
	if err := runtime.CheckProgram(program); err != nil {
		return "", err
	}
	prog := runtime.Compile(program)
	blocks, owner := split(prog)

	next := func(i int) string {
		if i+1 < len(blocks) {
			return blocks[i+1].id
		}
		return "finish"
	}

	var sb strings.Builder
	sb.WriteString("graph TD\n")
	sb.WriteString("    start((\"start\"))\n")
	sb.WriteString("    finish((\"end\"))\n")

	for _, b := range blocks {
		switch {
		case b.symbol != "":
			sb.WriteString(fmt.Sprintf("    %s{\"%s %d\"}\n", b.id, b.symbol, b.start))
		case b.input:
			sb.WriteString(fmt.Sprintf("    %s[/\"%s\"/]\n", b.id, escape(b.text)))
		default:
			sb.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", b.id, escape(b.text)))
		}
	}

	sb.WriteString(fmt.Sprintf("    start --> %s\n", blocks[0].id))
	for i, b := range blocks {
		switch b.symbol {
		case "[":
			match, err := prog.MatchForward(b.start)
			if err != nil {
				return "", err
			}
			sb.WriteString(fmt.Sprintf("    %s -- \"0\" --> %s\n", b.id, next(owner[match])))
			sb.WriteString(fmt.Sprintf("    %s -- \"not 0\" --> %s\n", b.id, next(i)))
		case "]":
			match, err := prog.MatchBackward(b.start)
			if err != nil {
				return "", err
			}
			sb.WriteString(fmt.Sprintf("    %s -- \"not 0\" --> %s\n", b.id, next(owner[match])))
			sb.WriteString(fmt.Sprintf("    %s -- \"0\" --> %s\n", b.id, next(i)))
		default:
			sb.WriteString(fmt.Sprintf("    %s --> %s\n", b.id, next(i)))
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		current := "finish"
		if ip := int(overlay.InstructionPointer); !overlay.Finished && ip < len(owner) {
			current = blocks[owner[ip]].id
		}
		sb.WriteString(fmt.Sprintf("    class %s current;\n", current))
	}

	return sb.String(), nil
}

// split cuts the program into straight-line runs and single bracket nodes.
// owner maps every instruction position to the index of its block.
func split(prog *runtime.Program) ([]block, []int) {
	var blocks []block
	owner := make([]int, prog.Len())

	for i := 0; i < prog.Len(); i++ {
		sym := prog.At(i)
		if sym == "[" || sym == "]" {
			blocks = append(blocks, block{symbol: sym, start: i, end: i + 1})
		} else if len(blocks) == 0 || blocks[len(blocks)-1].symbol != "" {
			blocks = append(blocks, block{start: i, end: i + 1, text: sym, input: sym == ","})
		} else {
			last := &blocks[len(blocks)-1]
			last.end = i + 1
			last.text += sym
			last.input = last.input || sym == ","
		}
		owner[i] = len(blocks) - 1
	}

	for i := range blocks {
		blocks[i].id = fmt.Sprintf("n%d", i)
		if runes := []rune(blocks[i].text); len(runes) > MaxLabel {
			blocks[i].text = string(runes[:MaxLabel]) + "..."
		}
	}
	return blocks, owner
}

func escape(label string) string {
	r := strings.NewReplacer("<", "#lt;", ">", "#gt;", "\"", "#quot;")
	return r.Replace(label)
}
