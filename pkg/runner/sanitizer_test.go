package runner_test

import (
	"strings"
	"testing"

	"github.com/aretw0/tapevm/pkg/runner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckInput_SizeLimit(t *testing.T) {
	limit := runner.DefaultMaxInputSize

	assert.NoError(t, runner.CheckInput(strings.Repeat("1", limit)))
	assert.ErrorIs(t, runner.CheckInput(strings.Repeat("1", limit+1)), runner.ErrInputTooLarge)
}

func TestCheckInput_KeepsControlChars(t *testing.T) {
	// A raw byte value like BEL is a legitimate tape input over the API.
	assert.NoError(t, runner.CheckInput("\x07"))
}

func TestCheckInput_EnvOverride(t *testing.T) {
	t.Setenv(runner.EnvMaxInputSize, "3")

	assert.NoError(t, runner.CheckInput("255"))
	assert.ErrorIs(t, runner.CheckInput("2555"), runner.ErrInputTooLarge)
}

func TestSanitizeInput_ControlChars(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Value", "65", "65"},
		{"Latin1", "ÿ", "ÿ"},
		{"Safe Controls", "\t", "\t"},
		{"ANSI Code", "\x1b[A", "[A"},
		{"Null Byte", "6\x005", "65"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := runner.SanitizeInput(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestSanitizeInput_InvalidUTF8(t *testing.T) {
	_, err := runner.SanitizeInput("\xbd\xb2\x3d")
	assert.ErrorIs(t, err, runner.ErrInvalidUTF8)
}
