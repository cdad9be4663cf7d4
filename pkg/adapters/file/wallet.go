package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/aretw0/tapevm/pkg/domain"
)

const ext = ".token"

var validName = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// Wallet implements ports.TokenWallet on the local filesystem.
// Each token is one file named <name>.token in BasePath.
type Wallet struct {
	BasePath string
}

// New creates a Wallet rooted at basePath.
// If basePath is empty, it defaults to ".tapevm/sessions".
func New(basePath string) *Wallet {
	if basePath == "" {
		basePath = filepath.Join(".tapevm", "sessions")
	}
	return &Wallet{BasePath: basePath}
}

func (w *Wallet) path(name string) (string, error) {
	if !validName.MatchString(name) {
		return "", fmt.Errorf("invalid session name %q", name)
	}
	return filepath.Join(w.BasePath, name+ext), nil
}

// Save writes the token atomically: temp file, fsync, rename.
func (w *Wallet) Save(ctx context.Context, name string, token string) error {
	destPath, err := w.path(name)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(w.BasePath, 0o700); err != nil {
		return fmt.Errorf("failed to ensure session directory: %w", err)
	}

	// Same directory so the rename stays on one filesystem.
	tmpFile, err := os.CreateTemp(w.BasePath, "tmp-"+name+"-*"+ext)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.WriteString(token); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// Load reads the token.
func (w *Wallet) Load(ctx context.Context, name string) (string, error) {
	p, err := w.path(name)
	if err != nil {
		return "", err
	}

	data, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return "", domain.ErrWalletNotFound
		}
		return "", fmt.Errorf("failed to read session file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Delete removes the token file.
func (w *Wallet) Delete(ctx context.Context, name string) error {
	p, err := w.path(name)
	if err != nil {
		return err
	}

	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete session file: %w", err)
	}
	return nil
}

// List returns all stored names.
func (w *Wallet) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(w.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	var names []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ext || strings.HasPrefix(name, "tmp-") {
			continue
		}
		names = append(names, strings.TrimSuffix(name, ext))
	}
	return names, nil
}
