package graph_test

import (
	"testing"

	"github.com/aretw0/tapevm/internal/presentation/graph"
	"github.com/aretw0/tapevm/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateMermaid(t *testing.T) {
	tests := []struct {
		name     string
		program  string
		contains []string
	}{
		{
			name:    "Straight Line",
			program: "+>.",
			contains: []string{
				"start((\"start\"))",
				"n0[\"+#gt;.\"]",
				"start --> n0",
				"n0 --> finish",
			},
		},
		{
			name:    "Input Block Shape",
			program: "+,.",
			contains: []string{
				"n0[/\"+,.\"/]",
			},
		},
		{
			name:    "Loop",
			program: "+[-].",
			contains: []string{
				"n1{\"[ 1\"}",
				"n3{\"] 3\"}",
				"n1 -- \"0\" --> n4",
				"n1 -- \"not 0\" --> n2",
				"n3 -- \"not 0\" --> n2",
				"n3 -- \"0\" --> n4",
				"n4 --> finish",
			},
		},
		{
			name:    "Nested Loop At End",
			program: "[[]]",
			contains: []string{
				"n0 -- \"0\" --> finish",
				"n1 -- \"0\" --> n3",
				"n2 -- \"not 0\" --> n2",
				"n3 -- \"not 0\" --> n1",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := graph.GenerateMermaid(tt.program, nil)
			require.NoError(t, err)
			for _, want := range tt.contains {
				assert.Contains(t, out, want)
			}
			assert.NotContains(t, out, "classDef")
		})
	}
}

func TestGenerateMermaid_Overlay(t *testing.T) {
	out, err := graph.GenerateMermaid("+[-],.", &graph.Overlay{InstructionPointer: 4})
	require.NoError(t, err)
	assert.Contains(t, out, "class n4 current;")

	out, err = graph.GenerateMermaid("+", &graph.Overlay{InstructionPointer: 1, Finished: true})
	require.NoError(t, err)
	assert.Contains(t, out, "class finish current;")
}

func TestGenerateMermaid_LongLabel(t *testing.T) {
	out, err := graph.GenerateMermaid("++++++++++++++++++++", nil)
	require.NoError(t, err)
	assert.Contains(t, out, "n0[\"++++++++++++++++...\"]")
}

func TestGenerateMermaid_Errors(t *testing.T) {
	_, err := graph.GenerateMermaid("", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidProgram)

	_, err = graph.GenerateMermaid("[+", nil)
	assert.ErrorIs(t, err, domain.ErrUnmatchedBracket)

	_, err = graph.GenerateMermaid("+]", nil)
	assert.ErrorIs(t, err, domain.ErrUnmatchedBracket)
}
