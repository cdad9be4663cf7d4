package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/tapevm/pkg/adapters/file"
	"github.com/aretw0/tapevm/pkg/ports/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWallet_Contract(t *testing.T) {
	tests.RunTokenWalletContract(t, file.New(t.TempDir()))
}

func TestWallet_Layout(t *testing.T) {
	dir := t.TempDir()
	w := file.New(dir)
	ctx := context.Background()

	require.NoError(t, w.Save(ctx, "demo", "abc"))

	data, err := os.ReadFile(filepath.Join(dir, "demo.token"))
	require.NoError(t, err)
	assert.Equal(t, "abc", string(data))

	// No temp files left behind.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestWallet_ListMissingDir(t *testing.T) {
	w := file.New(filepath.Join(t.TempDir(), "nope"))
	names, err := w.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestWallet_RejectsPathNames(t *testing.T) {
	w := file.New(t.TempDir())
	ctx := context.Background()

	for _, name := range []string{"../escape", "a/b", "", ".hidden"} {
		assert.Error(t, w.Save(ctx, name, "x"), name)
		_, err := w.Load(ctx, name)
		assert.Error(t, err, name)
	}
}

func TestNew_DefaultPath(t *testing.T) {
	assert.Equal(t, filepath.Join(".tapevm", "sessions"), file.New("").BasePath)
}
