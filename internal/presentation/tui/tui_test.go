package tui_test

import (
	"bytes"
	"testing"

	"github.com/aretw0/tapevm/internal/presentation/tui"
	"github.com/aretw0/tapevm/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionMarkdown(t *testing.T) {
	st := domain.NewState(",.")
	st.AwaitingInput = true
	st.Tape[0] = 7
	st.Output = "hi"

	md := tui.SessionMarkdown("demo", st)

	assert.Contains(t, md, "# Session `demo`")
	assert.Contains(t, md, "| Status | waiting for input |")
	assert.Contains(t, md, "| 0 | 7 **<** |")
	assert.Contains(t, md, "| 8 | 0 |")
	assert.NotContains(t, md, "| 9 | 0 |")
	assert.Contains(t, md, "hi")
}

func TestSessionMarkdown_TapeEnd(t *testing.T) {
	st := domain.NewState("+")
	st.InstructionPointer = 1
	st.DataPointer = domain.TapeSize - 1

	md := tui.SessionMarkdown("end", st)
	assert.Contains(t, md, "| Status | finished |")
	assert.Contains(t, md, "| 29999 | 0 **<** |")
	assert.NotContains(t, md, "| 30000 |")
}

func TestNewRenderer(t *testing.T) {
	render := tui.NewRenderer()
	out, err := render("# Title")
	require.NoError(t, err)
	assert.Contains(t, out, "Title")
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	tui.PrintBanner(&buf)
	assert.NotEmpty(t, buf.String())
}
