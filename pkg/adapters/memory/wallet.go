package memory

import (
	"context"
	"sync"

	"github.com/aretw0/tapevm/pkg/domain"
)

// Wallet implements ports.TokenWallet in memory.
// Safe for concurrent use.
type Wallet struct {
	data map[string]string
	mu   sync.RWMutex
}

// NewWallet creates a new in-memory wallet.
func NewWallet() *Wallet {
	return &Wallet{
		data: make(map[string]string),
	}
}

// Save stores the token.
func (w *Wallet) Save(ctx context.Context, name string, token string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.data[name] = token
	return nil
}

// Load retrieves the token.
func (w *Wallet) Load(ctx context.Context, name string) (string, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	tok, ok := w.data[name]
	if !ok {
		return "", domain.ErrWalletNotFound
	}
	return tok, nil
}

// Delete removes the token.
func (w *Wallet) Delete(ctx context.Context, name string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.data, name)
	return nil
}

// List returns stored names.
func (w *Wallet) List(ctx context.Context) ([]string, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	names := make([]string, 0, len(w.data))
	for name := range w.data {
		names = append(names, name)
	}
	return names, nil
}
