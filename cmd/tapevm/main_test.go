package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command with args, resetting flags left over from previous runs.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var reset func(c *cobra.Command)
	reset = func(c *cobra.Command) {
		for _, fs := range []*pflag.FlagSet{c.Flags(), c.PersistentFlags()} {
			fs.VisitAll(func(f *pflag.Flag) {
				_ = f.Value.Set(f.DefValue)
				f.Changed = false
			})
		}
		for _, sub := range c.Commands() {
			reset(sub)
		}
	}
	reset(rootCmd)

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetIn(strings.NewReader(""))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), errOut.String(), err
}

func TestVersionCmd(t *testing.T) {
	out, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "tapevm version "))
}

func TestValidateCmd(t *testing.T) {
	out, _, err := execute(t, "validate", "-e", "+[-].")
	require.NoError(t, err)
	assert.Contains(t, out, "valid")

	_, _, err = execute(t, "validate", "-e", "+x")
	assert.ErrorContains(t, err, "validation failed")
}

func TestStepAndSessionCmds(t *testing.T) {
	dir := t.TempDir()

	// 1. First step starts the session
	_, errOut, err := execute(t, "step", "--wallet-dir", dir, "-s", "demo", "-e", ",.")
	require.NoError(t, err)
	assert.Contains(t, errOut, "Waiting for input")

	// 2. The session is listed
	out, _, err := execute(t, "session", "ls", "--wallet-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "- demo")

	// 3. A rejected value is reported, not fatal
	_, errOut, err = execute(t, "step", "--wallet-dir", dir, "-s", "demo", "-i", "999")
	require.NoError(t, err)
	assert.Contains(t, errOut, "Valid inputs")

	// 4. The run finishes
	out, _, err = execute(t, "step", "--wallet-dir", dir, "-s", "demo", "-i", "H")
	require.NoError(t, err)
	assert.Equal(t, "H", out)

	// 5. Graph of the stored program
	out, _, err = execute(t, "graph", "--wallet-dir", dir, "-s", "demo")
	require.NoError(t, err)
	assert.Contains(t, out, "class finish current")

	// 6. Remove
	out, _, err = execute(t, "session", "rm", "--wallet-dir", dir, "demo")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed session 'demo'")

	out, _, err = execute(t, "session", "ls", "--wallet-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "No saved sessions")
}

func TestStepCmd_UnknownSession(t *testing.T) {
	_, _, err := execute(t, "step", "--wallet-dir", t.TempDir(), "-s", "ghost", "-i", "1")
	assert.ErrorContains(t, err, "does not exist")
}

func TestGraphCmd(t *testing.T) {
	out, _, err := execute(t, "graph", "-e", "+[-]")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "graph TD"))
}
